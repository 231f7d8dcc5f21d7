package client

import (
	"context"

	"chain-poker/internal/amount"
	"chain-poker/internal/game"
)

// ActionBet submits the bet field: zero checks, anything else raises.
const ActionBet = "bet"

type BetRequest struct {
	Raw string `json:"raw"`
}

type BetResponse struct {
	Amount       amount.ValidatedAmount `json:"amount"`
	VisibleError string                 `json:"visible_error,omitempty"`
	Action       string                 `json:"action,omitempty"`
}

func (s *Service) betField(lobbyID string) *amount.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.bets[lobbyID]
	if f == nil {
		f = amount.NewField(amount.Rules{Required: true}, "")
		s.bets[lobbyID] = f
	}
	return f
}

// refreshBetRules rebinds an existing bet field to the latest minimum bet
// and balance.
func (s *Service) refreshBetRules(lobbyID string, gs *GameStatusResponse) {
	s.mu.Lock()
	f := s.bets[lobbyID]
	s.mu.Unlock()
	if f != nil {
		f.SetRules(gs.status.BetRules(gs.Identity))
	}
}

func betResponse(f *amount.Field) *BetResponse {
	v := f.Value()
	resp := &BetResponse{Amount: v, VisibleError: f.VisibleError()}
	if intent, err := game.NewBet(v); err == nil {
		resp.Action = intent.Name()
	}
	return resp
}

// SetBet edits the bet input of a lobby against fresh game bounds.
func (s *Service) SetBet(ctx context.Context, lobbyID, raw string) (*BetResponse, error) {
	if lobbyID == "" {
		return nil, ErrInvalidRequest
	}
	gs, err := s.GameStatus(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	f := s.betField(lobbyID)
	f.SetRules(gs.status.BetRules(gs.Identity))
	f.Set(raw)
	return betResponse(f), nil
}

// Bet returns the current bet input of a lobby without touching it.
func (s *Service) Bet(lobbyID string) *BetResponse {
	return betResponse(s.betField(lobbyID))
}

func (s *Service) betIntent(ctx context.Context, lobbyID string) (game.Intent, error) {
	gs, err := s.GameStatus(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	return game.NewBet(s.betField(lobbyID).SetRules(gs.status.BetRules(gs.Identity)))
}
