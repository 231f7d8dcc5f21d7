// Package client ties the wallet session, permit cache, poller and action
// dispatcher together behind the operations the local API exposes.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chain-poker/internal/action"
	"chain-poker/internal/amount"
	"chain-poker/internal/game"
	"chain-poker/internal/game/viewmodel"
	"chain-poker/internal/permit"
	"chain-poker/internal/poller"
	"chain-poker/internal/session"
)

// Querier runs a read against one lobby contract.
type Querier interface {
	Query(ctx context.Context, resourceID string, msg any) (json.RawMessage, error)
}

type Deps struct {
	Sessions     *session.Manager
	Permits      *permit.Cache
	Poller       *poller.Poller
	Dispatcher   *action.Dispatcher
	Guard        *action.Guard
	Public       Querier
	ChainID      string
	PollInterval time.Duration
}

type Service struct {
	sessions   *session.Manager
	permits    *permit.Cache
	poller     *poller.Poller
	dispatcher *action.Dispatcher
	guard      *action.Guard
	public     Querier
	chainID    string
	interval   time.Duration
	now        func() time.Time

	mu      sync.Mutex
	watches map[string]*watch
	bets    map[string]*amount.Field
}

func NewService(d Deps) *Service {
	if d.Guard == nil {
		d.Guard = action.NewGuard()
	}
	if d.PollInterval <= 0 {
		d.PollInterval = time.Second
	}
	return &Service{
		sessions:   d.Sessions,
		permits:    d.Permits,
		poller:     d.Poller,
		dispatcher: d.Dispatcher,
		guard:      d.Guard,
		public:     d.Public,
		chainID:    d.ChainID,
		interval:   d.PollInterval,
		now:        time.Now,
		watches:    map[string]*watch{},
		bets:       map[string]*amount.Field{},
	}
}

func (s *Service) viewOf(sess session.Session) SessionView {
	return SessionView{
		Connected:     sess.Connected(),
		Identity:      sess.Identity,
		ChainID:       s.chainID,
		AutoReconnect: sess.AutoReconnect,
	}
}

func (s *Service) Session() SessionView {
	return s.viewOf(s.sessions.Current())
}

func (s *Service) Connect(ctx context.Context) (SessionView, error) {
	if err := s.sessions.Connect(ctx); err != nil {
		return s.Session(), err
	}
	return s.Session(), nil
}

func (s *Service) Disconnect(ctx context.Context) (SessionView, error) {
	err := s.sessions.Disconnect(ctx)
	return s.Session(), err
}

// SessionEvents streams session changes as views.
func (s *Service) SessionEvents() (<-chan SessionView, func()) {
	in, unsubscribe := s.sessions.Subscribe()
	out := make(chan SessionView, 1)
	go func() {
		defer close(out)
		for sess := range in {
			select {
			case <-out:
			default:
			}
			out <- s.viewOf(sess)
		}
	}()
	return out, unsubscribe
}

func (s *Service) DisplayName(ctx context.Context) (string, error) {
	return s.sessions.DisplayName(ctx)
}

func (s *Service) SetDisplayName(ctx context.Context, name string) error {
	return s.sessions.SetDisplayName(ctx, strings.TrimSpace(name))
}

// ValidateAmount runs one validation pass. Malformed bounds are a request
// error, not a validation result.
func (s *Service) ValidateAmount(req AmountRequest) (amount.ValidatedAmount, error) {
	rules := amount.Rules{Required: req.Rules.Required, AllowZero: req.Rules.AllowZero}
	var err error
	if req.Rules.Min != "" {
		if rules.Min, err = amount.ToBaseUnits(req.Rules.Min); err != nil {
			return amount.ValidatedAmount{}, fmt.Errorf("%w: min: %v", ErrInvalidRequest, err)
		}
	}
	if req.Rules.Max != "" {
		if rules.Max, err = amount.ToBaseUnits(req.Rules.Max); err != nil {
			return amount.ValidatedAmount{}, fmt.Errorf("%w: max: %v", ErrInvalidRequest, err)
		}
	}
	return amount.Validate(req.Raw, rules), nil
}

func (s *Service) usernameOr(ctx context.Context, username string) string {
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	name, err := s.sessions.DisplayName(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read display name failed")
	}
	return name
}

// CreateLobby instantiates a lobby seated with the caller as admin. An empty
// username falls back to the stored display name.
func (s *Service) CreateLobby(ctx context.Context, req CreateLobbyRequest) (*CreateLobbyResponse, error) {
	if _, err := s.sessions.Require(); err != nil {
		return nil, err
	}
	intent, err := game.NewCreateLobby(s.usernameOr(ctx, req.Username), req.LobbyConfigInput)
	if err != nil {
		return nil, err
	}
	pending, err := s.guard.Begin("create_lobby")
	if err != nil {
		return nil, err
	}
	defer s.guard.End(pending)

	addr, receipt, err := s.dispatcher.Instantiate(ctx, intent)
	if err != nil {
		return nil, err
	}
	return &CreateLobbyResponse{LobbyID: addr, TxHash: receipt.TxHash}, nil
}

func (s *Service) fetchLobby(ctx context.Context, lobbyID string) (game.LobbyStatus, error) {
	raw, err := s.public.Query(ctx, lobbyID, game.LobbyStatusQuery())
	if err != nil {
		return game.LobbyStatus{}, err
	}
	return game.DecodeLobbyStatus(raw)
}

// LobbyStatus reads the public lobby view. It needs no session; a connected
// identity only adds is_admin and joined flags.
func (s *Service) LobbyStatus(ctx context.Context, lobbyID string) (*LobbyStatusResponse, error) {
	if lobbyID == "" {
		return nil, ErrInvalidRequest
	}
	st, err := s.fetchLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	return &LobbyStatusResponse{
		LobbyID:   lobbyID,
		FetchedAt: s.now().UTC(),
		Lobby:     viewmodel.BuildLobby(st, s.sessions.Current().Identity),
	}, nil
}

// GameStatus reads the permit-authorised game view for the current session.
func (s *Service) GameStatus(ctx context.Context, lobbyID string) (*GameStatusResponse, error) {
	if lobbyID == "" {
		return nil, ErrInvalidRequest
	}
	sess, err := s.sessions.Require()
	if err != nil {
		return nil, err
	}
	var st game.InGameStatus
	err = s.permits.Do(ctx, sess.Identity, lobbyID, sess.Handle, func(p permit.Permit) error {
		raw, err := sess.Handle.Query(ctx, lobbyID, game.GameStatusQuery(p.Token))
		if err != nil {
			return err
		}
		st, err = game.DecodeGameStatus(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GameStatusResponse{
		LobbyID:   lobbyID,
		Identity:  sess.Identity,
		FetchedAt: s.now().UTC(),
		Table:     viewmodel.BuildTable(st, sess.Identity),
		status:    st,
	}, nil
}

// SubmitAction sends one game action. At most one submission per lobby and
// action runs at a time; a second one fails with action.ErrActionPending.
func (s *Service) SubmitAction(ctx context.Context, lobbyID, name string, req game.ActionRequest) (*ActionResponse, error) {
	if lobbyID == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := s.sessions.Require(); err != nil {
		return nil, err
	}
	pending, err := s.guard.Begin(lobbyID + "/" + name)
	if err != nil {
		return nil, err
	}
	defer s.guard.End(pending)

	intent, err := s.intentFor(ctx, lobbyID, name, req)
	if err != nil {
		return nil, err
	}
	receipt, err := s.dispatcher.Submit(ctx, intent, lobbyID)
	resp := &ActionResponse{
		ActionID: pending.ID,
		Action:   name,
		LobbyID:  lobbyID,
		TxHash:   receipt.TxHash,
		Outcome:  action.OutcomeOf(err),
	}
	return resp, err
}

func (s *Service) intentFor(ctx context.Context, lobbyID, name string, req game.ActionRequest) (game.Intent, error) {
	switch name {
	case game.ActionBuyIn:
		st, err := s.fetchLobby(ctx, lobbyID)
		if err != nil {
			return nil, err
		}
		req.Username = s.usernameOr(ctx, req.Username)
		return game.IntentFor(name, req, st.LobbyConfig, amount.Rules{})
	case ActionBet:
		return s.betIntent(ctx, lobbyID)
	case game.ActionRaise:
		gs, err := s.GameStatus(ctx, lobbyID)
		if err != nil {
			return nil, err
		}
		return game.IntentFor(name, req, game.LobbyConfig{}, gs.status.BetRules(gs.Identity))
	default:
		return game.IntentFor(name, req, game.LobbyConfig{}, amount.Rules{})
	}
}
