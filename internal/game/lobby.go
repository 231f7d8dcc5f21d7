package game

import (
	"fmt"
	"math/big"

	"chain-poker/internal/amount"
	"chain-poker/internal/form"
)

// LobbyConfig is fixed at lobby creation. BigBlind is in uSCRT; buy-in bounds
// are multiples of it.
type LobbyConfig struct {
	BigBlind   uint32 `json:"big_blind"`
	MaxBuyInBB uint8  `json:"max_buy_in_bb"`
	MinBuyInBB uint8  `json:"min_buy_in_bb"`
}

func (c LobbyConfig) MinBuyIn() *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(c.BigBlind)), big.NewInt(int64(c.MinBuyInBB)))
}

func (c LobbyConfig) MaxBuyIn() *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(c.BigBlind)), big.NewInt(int64(c.MaxBuyInBB)))
}

// BuyInRules bound a buy-in amount for this lobby.
func (c LobbyConfig) BuyInRules() amount.Rules {
	return amount.Rules{Required: true, Min: c.MinBuyIn(), Max: c.MaxBuyIn()}
}

// big_blind is a u32 of uSCRT on chain.
const maxBigBlind = 1<<32 - 1

var buyInBBRules = form.IntRules{Required: true, Min: form.Bound(1), Max: form.Bound(255)}

// LobbyConfigInput is the raw create-lobby form. BigBlind is a decimal SCRT
// amount; the multiples are whole numbers.
type LobbyConfigInput struct {
	BigBlind   string `json:"big_blind"`
	MinBuyInBB string `json:"min_buy_in_bb"`
	MaxBuyInBB string `json:"max_buy_in_bb"`
}

// FieldErrors maps a form field to its first failing rule.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return fmt.Sprintf("%v: %d invalid field(s)", form.ErrValidationFailed, len(f))
}

func (f FieldErrors) Unwrap() error { return form.ErrValidationFailed }

// ParseLobbyConfig validates the create-lobby form.
func ParseLobbyConfig(in LobbyConfigInput) (LobbyConfig, error) {
	errs := FieldErrors{}

	bb := amount.Validate(in.BigBlind, amount.Rules{Required: true, Min: big.NewInt(1), Max: big.NewInt(maxBigBlind)})
	if !bb.Valid() {
		errs["big_blind"] = bb.Error
	}
	minBB := form.ValidateInt(in.MinBuyInBB, buyInBBRules)
	if !minBB.Valid() {
		errs["min_buy_in_bb"] = minBB.Error
	}
	maxBB := form.ValidateInt(in.MaxBuyInBB, buyInBBRules)
	if !maxBB.Valid() {
		errs["max_buy_in_bb"] = maxBB.Error
	}
	if len(errs) == 0 && maxBB.Value < minBB.Value {
		errs["max_buy_in_bb"] = fmt.Sprintf("This field must be at least %d", minBB.Value)
	}
	if len(errs) > 0 {
		return LobbyConfig{}, errs
	}
	return LobbyConfig{
		BigBlind:   uint32(bb.BaseUnits.Uint64()),
		MinBuyInBB: uint8(minBB.Value),
		MaxBuyInBB: uint8(maxBB.Value),
	}, nil
}
