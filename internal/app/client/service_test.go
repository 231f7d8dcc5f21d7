package client

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chain-poker/internal/action"
	"chain-poker/internal/chain"
	"chain-poker/internal/form"
	"chain-poker/internal/game"
	"chain-poker/internal/kvstore"
	"chain-poker/internal/permit"
	"chain-poker/internal/poller"
	"chain-poker/internal/session"
)

const (
	me    = "secret1me"
	lobby = "secret1lobby"
)

type stubProvider struct{}

func (stubProvider) Enable(context.Context, string) error { return nil }
func (stubProvider) Identity(context.Context, string) (string, error) {
	return me, nil
}
func (stubProvider) Signer(string) (chain.Signer, error) { return nil, nil }

const lobbyJSON = `{
	"admin": "secret1me",
	"lobby_config": {"big_blind": 100000, "max_buy_in_bb": 100, "min_buy_in_bb": 20},
	"is_started": false,
	"balances": [["secret1me", "5000000"]]
}`

const gameJSON = `{
	"balances": [["secret1me", "900000"], ["secret1you", "1100000"]],
	"table": [0, 13, 26],
	"pot": "200000",
	"hand": [1, 2],
	"current_turn": "secret1me",
	"button_player": "secret1you",
	"min_bet": "100000"
}`

type publicStub struct {
	mu      sync.Mutex
	queries int
}

func (p *publicStub) Query(context.Context, string, any) (json.RawMessage, error) {
	p.mu.Lock()
	p.queries++
	p.mu.Unlock()
	return json.RawMessage(lobbyJSON), nil
}

type chainStub struct {
	mu       sync.Mutex
	signs    int
	executed []string
	block    chan struct{}
	receipt  chain.Receipt
}

func (h *chainStub) Identity() string { return me }

func (h *chainStub) Query(_ context.Context, _ string, msg any) (json.RawMessage, error) {
	raw, _ := json.Marshal(msg)
	if !strings.Contains(string(raw), "view_game_status") {
		return json.RawMessage(lobbyJSON), nil
	}
	return json.RawMessage(gameJSON), nil
}

func (h *chainStub) Execute(ctx context.Context, _ string, msg any, _ []chain.Coin, _ uint64) (chain.Receipt, error) {
	if h.block != nil {
		select {
		case <-h.block:
		case <-ctx.Done():
			return chain.Receipt{}, ctx.Err()
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executed = append(h.executed, string(msg.(json.RawMessage)))
	return h.receipt, nil
}

func (h *chainStub) Instantiate(context.Context, any, string, uint64) (chain.Receipt, error) {
	return chain.Receipt{
		TxHash: "ABC",
		Logs: []chain.TxLog{{Events: []chain.Event{{
			Type:       "message",
			Attributes: []chain.Attribute{{Key: "contract_address", Value: "secret1new"}},
		}}}},
	}, nil
}

func (h *chainStub) SignPermit(context.Context, string, string) (chain.PermitToken, error) {
	h.mu.Lock()
	h.signs++
	h.mu.Unlock()
	return chain.PermitToken{Params: chain.NewPermitParams("pulsar-3", lobby)}, nil
}

func newTestService(t *testing.T, h *chainStub) (*Service, *session.Manager) {
	t.Helper()
	store := kvstore.NewMemory()
	sessions := session.NewManager(stubProvider{}, "pulsar-3", store, func(string, chain.Signer) (chain.Handle, error) {
		return h, nil
	})
	svc := NewService(Deps{
		Sessions:     sessions,
		Permits:      permit.NewCache(store),
		Poller:       poller.New(),
		Dispatcher:   action.NewDispatcher(sessions),
		Public:       &publicStub{},
		ChainID:      "pulsar-3",
		PollInterval: 10 * time.Millisecond,
	})
	return svc, sessions
}

func TestConnectAndDisconnect(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	ctx := context.Background()

	require.False(t, svc.Session().Connected)
	view, err := svc.Connect(ctx)
	require.NoError(t, err)
	require.True(t, view.Connected)
	require.Equal(t, me, view.Identity)
	require.Equal(t, "pulsar-3", view.ChainID)

	view, err = svc.Disconnect(ctx)
	require.NoError(t, err)
	require.False(t, view.Connected)
}

func TestGameStatusRequiresSession(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	_, err := svc.GameStatus(context.Background(), lobby)
	require.ErrorIs(t, err, chain.ErrNotConnected)
}

func TestGameStatusReusesPermit(t *testing.T) {
	h := &chainStub{}
	svc, _ := newTestService(t, h)
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, err := svc.GameStatus(ctx, lobby)
		require.NoError(t, err)
		require.True(t, resp.Table.IsMyTurn)
		require.Equal(t, "0.9", resp.Table.MyBalance)
	}
	require.Equal(t, 1, h.signs)
}

func TestLobbyStatusWithoutSession(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	resp, err := svc.LobbyStatus(context.Background(), lobby)
	require.NoError(t, err)
	require.False(t, resp.Lobby.IsAdmin)
	require.Equal(t, "2", resp.Lobby.MinBuyIn)
}

func TestSubmitActionRaiseUsesBetRules(t *testing.T) {
	h := &chainStub{}
	svc, _ := newTestService(t, h)
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)

	_, err = svc.SubmitAction(ctx, lobby, game.ActionRaise, game.ActionRequest{Amount: "5"})
	require.ErrorIs(t, err, form.ErrValidationFailed)

	resp, err := svc.SubmitAction(ctx, lobby, game.ActionRaise, game.ActionRequest{Amount: "0.25"})
	require.NoError(t, err)
	require.Equal(t, action.OutcomeAccepted, resp.Outcome)
	require.Equal(t, []string{`{"raise":{"raise_amount":"250000"}}`}, h.executed)
}

func TestSubmitActionBuyInFallsBackToDisplayName(t *testing.T) {
	h := &chainStub{}
	svc, _ := newTestService(t, h)
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SetDisplayName(ctx, "alice"))

	_, err = svc.SubmitAction(ctx, lobby, game.ActionBuyIn, game.ActionRequest{Amount: "3"})
	require.NoError(t, err)
	require.Equal(t, []string{`{"buy_in":{"username":"alice"}}`}, h.executed)
}

func TestSubmitActionGuardsConcurrentSubmits(t *testing.T) {
	h := &chainStub{block: make(chan struct{})}
	svc, _ := newTestService(t, h)
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SubmitAction(ctx, lobby, game.ActionFold, game.ActionRequest{})
		done <- err
	}()
	require.Eventually(t, func() bool {
		_, busy := svc.guard.Pending(lobby + "/" + game.ActionFold)
		return busy
	}, time.Second, 5*time.Millisecond)

	_, err = svc.SubmitAction(ctx, lobby, game.ActionFold, game.ActionRequest{})
	require.ErrorIs(t, err, action.ErrActionPending)

	close(h.block)
	require.NoError(t, <-done)
}

func TestSubmitActionUnknown(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitAction(ctx, lobby, "shove", game.ActionRequest{})
	require.ErrorIs(t, err, game.ErrUnknownAction)
}

func TestCreateLobby(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)

	resp, err := svc.CreateLobby(ctx, CreateLobbyRequest{
		Username:         "alice",
		LobbyConfigInput: game.LobbyConfigInput{BigBlind: "0.1", MinBuyInBB: "20", MaxBuyInBB: "100"},
	})
	require.NoError(t, err)
	require.Equal(t, "secret1new", resp.LobbyID)
	require.Equal(t, "ABC", resp.TxHash)
}

func TestValidateAmount(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	v, err := svc.ValidateAmount(AmountRequest{Raw: "12.5", Rules: AmountRules{Required: true, Min: "1", Max: "20"}})
	require.NoError(t, err)
	require.True(t, v.Valid())
	require.Equal(t, "12500000", v.BaseUnits.String())

	_, err = svc.ValidateAmount(AmountRequest{Raw: "1", Rules: AmountRules{Min: "abc"}})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestWatchLobbySharesOnePoll(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})

	first := svc.WatchLobby(lobby)
	second := svc.WatchLobby(lobby)
	require.Equal(t, 2, svc.watching(lobbyKey(lobby)))

	select {
	case u := <-first.Updates:
		require.NoError(t, u.Err)
		require.NotNil(t, u.Snapshot)
		resp, ok := u.Snapshot.Data.(*LobbyStatusResponse)
		require.True(t, ok)
		require.Equal(t, lobby, resp.LobbyID)
	case <-time.After(2 * time.Second):
		t.Fatal("no lobby update")
	}

	first.Release()
	first.Release()
	require.Equal(t, 1, svc.watching(lobbyKey(lobby)))
	second.Release()
	require.Equal(t, 0, svc.watching(lobbyKey(lobby)))
}

func TestRestartedGameWatchDropsPreviousSessionView(t *testing.T) {
	svc, _ := newTestService(t, &chainStub{})
	ctx := context.Background()
	_, err := svc.Connect(ctx)
	require.NoError(t, err)

	first := svc.WatchGame(lobby)
	select {
	case u := <-first.Updates:
		require.NoError(t, u.Err)
		require.NotNil(t, u.Snapshot)
	case <-time.After(2 * time.Second):
		t.Fatal("no game update")
	}
	first.Release()
	_, err = svc.Disconnect(ctx)
	require.NoError(t, err)

	second := svc.WatchGame(lobby)
	defer second.Release()
	require.Nil(t, second.Initial)
	third := svc.WatchGame(lobby)
	defer third.Release()

	// any update of the new poll was fetched without a session
	if third.Initial != nil {
		require.Nil(t, third.Initial.Snapshot)
		require.ErrorIs(t, third.Initial.Err, chain.ErrNotConnected)
	}
}

func TestBetFieldHidesErrorUntilEdited(t *testing.T) {
	h := &chainStub{}
	svc, _ := newTestService(t, h)
	ctx := context.Background()

	require.Empty(t, svc.Bet(lobby).VisibleError)

	_, err := svc.SetBet(ctx, lobby, "1")
	require.ErrorIs(t, err, chain.ErrNotConnected)

	_, err = svc.Connect(ctx)
	require.NoError(t, err)

	resp, err := svc.SetBet(ctx, lobby, "5")
	require.NoError(t, err)
	require.Equal(t, "This field cannot exceed 0.9", resp.VisibleError)
	require.Empty(t, resp.Action)

	resp, err = svc.SetBet(ctx, lobby, "0")
	require.NoError(t, err)
	require.Empty(t, resp.VisibleError)
	require.Equal(t, game.ActionCheck, resp.Action)

	_, err = svc.SubmitAction(ctx, lobby, ActionBet, game.ActionRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{`{"check":{}}`}, h.executed)
}
