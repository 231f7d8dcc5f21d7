// Package game holds the chain poker contract's message shapes: typed lobby
// and in-game views, queries and execute intents.
package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"chain-poker/internal/amount"
	"chain-poker/internal/chain"
)

// Uint128 decodes a contract u128 sent either as a JSON number or string.
type Uint128 struct{ big.Int }

func (u *Uint128) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if _, ok := u.SetString(s, 10); !ok || u.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBalance, b)
	}
	return nil
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// Balance is one (address, uSCRT) entry.
type Balance struct {
	Address string
	Amount  *big.Int
}

func (b *Balance) UnmarshalJSON(raw []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("%w: %s", ErrInvalidBalance, raw)
	}
	if err := json.Unmarshal(pair[0], &b.Address); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBalance, err)
	}
	var amt Uint128
	if err := amt.UnmarshalJSON(pair[1]); err != nil {
		return err
	}
	b.Amount = &amt.Int
	return nil
}

func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Address string `json:"address"`
		Amount  string `json:"amount"`
		Display string `json:"display"`
	}{b.Address, b.Amount.String(), amount.MustDecimal(b.Amount)})
}

type Balances []Balance

// Of returns the balance of address, or nil when it has not bought in.
func (bs Balances) Of(address string) *big.Int {
	for _, b := range bs {
		if b.Address == address {
			return b.Amount
		}
	}
	return nil
}

// LobbyStatus is the public pre-start view of a lobby.
type LobbyStatus struct {
	Admin       string      `json:"admin"`
	LobbyConfig LobbyConfig `json:"lobby_config"`
	IsStarted   bool        `json:"is_started"`
	Balances    Balances    `json:"balances"`
}

func DecodeLobbyStatus(raw json.RawMessage) (LobbyStatus, error) {
	var s LobbyStatus
	if err := json.Unmarshal(raw, &s); err != nil {
		return LobbyStatus{}, fmt.Errorf("decode lobby status: %w", err)
	}
	return s, nil
}

// InGameStatus is the permit-authorised view of a running game.
type InGameStatus struct {
	Balances     Balances `json:"balances"`
	Table        []Card   `json:"table"`
	Pot          *big.Int `json:"pot"`
	Hand         []Card   `json:"hand,omitempty"`
	CurrentTurn  string   `json:"current_turn"`
	ButtonPlayer string   `json:"button_player"`
	MinBet       *big.Int `json:"min_bet"`
}

type inGameWire struct {
	Balances     Balances  `json:"balances"`
	Table        []uint8   `json:"table"`
	Pot          Uint128   `json:"pot"`
	Hand         *[2]uint8 `json:"hand"`
	CurrentTurn  string    `json:"current_turn"`
	ButtonPlayer string    `json:"button_player"`
	MinBet       Uint128   `json:"min_bet"`
}

func DecodeGameStatus(raw json.RawMessage) (InGameStatus, error) {
	var w inGameWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return InGameStatus{}, fmt.Errorf("decode game status: %w", err)
	}
	table, err := decodeCards(w.Table)
	if err != nil {
		return InGameStatus{}, err
	}
	s := InGameStatus{
		Balances:     w.Balances,
		Table:        table,
		Pot:          &w.Pot.Int,
		CurrentTurn:  w.CurrentTurn,
		ButtonPlayer: w.ButtonPlayer,
		MinBet:       &w.MinBet.Int,
	}
	if w.Hand != nil {
		if s.Hand, err = decodeCards(w.Hand[:]); err != nil {
			return InGameStatus{}, err
		}
	}
	return s, nil
}

func (s InGameStatus) IsTurnOf(identity string) bool {
	return identity != "" && s.CurrentTurn == identity
}

// BetRules bound a bet input for identity: at least the minimum bet, at
// most the player's balance, with zero meaning check.
func (s InGameStatus) BetRules(identity string) amount.Rules {
	max := s.Balances.Of(identity)
	if max == nil {
		max = new(big.Int)
	}
	return amount.Rules{Required: true, Min: s.MinBet, Max: max, AllowZero: true}
}

// LobbyStatusQuery is the public lobby view query.
func LobbyStatusQuery() any {
	return map[string]any{"view_lobby_status": struct{}{}}
}

// GameStatusQuery is the permit-authorised game view query.
func GameStatusQuery(permit chain.PermitToken) any {
	return map[string]any{"view_game_status": map[string]any{"permit": permit}}
}
