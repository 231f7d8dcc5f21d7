package game

import (
	"fmt"
	"math/big"

	"chain-poker/internal/amount"
	"chain-poker/internal/form"
)

// Gas limits per message.
const (
	GasInstantiate = 400_000
	GasBuyIn       = 500_000
	GasStartGame   = 400_000
	GasBetting     = 50_000
	GasWithdraw    = 50_000
)

// Action names as exposed to callers.
const (
	ActionBuyIn     = "buy_in"
	ActionStartGame = "start_game"
	ActionRaise     = "raise"
	ActionCall      = "call"
	ActionCheck     = "check"
	ActionFold      = "fold"
	ActionWithdraw  = "withdraw"
)

type empty struct{}

// Plain is a message without arguments or funds.
type Plain struct {
	name string
	gas  uint64
}

func (p Plain) Name() string     { return p.name }
func (p Plain) Message() any     { return map[string]empty{p.name: {}} }
func (p Plain) Funds() *big.Int  { return nil }
func (p Plain) GasLimit() uint64 { return p.gas }

func StartGame() Plain { return Plain{name: ActionStartGame, gas: GasStartGame} }
func Call() Plain      { return Plain{name: ActionCall, gas: GasBetting} }
func Check() Plain     { return Plain{name: ActionCheck, gas: GasBetting} }
func Fold() Plain      { return Plain{name: ActionFold, gas: GasBetting} }
func Withdraw() Plain  { return Plain{name: ActionWithdraw, gas: GasWithdraw} }

// BuyIn joins a lobby with Amount uSCRT attached.
type BuyIn struct {
	Username string
	Amount   *big.Int
}

func (BuyIn) Name() string { return ActionBuyIn }
func (b BuyIn) Message() any {
	return map[string]any{"buy_in": map[string]string{"username": b.Username}}
}
func (b BuyIn) Funds() *big.Int  { return b.Amount }
func (BuyIn) GasLimit() uint64 { return GasBuyIn }

// NewBuyIn validates the username and the decimal SCRT amount against the
// lobby's buy-in bounds.
func NewBuyIn(username, rawAmount string, cfg LobbyConfig) (BuyIn, error) {
	if err := form.ValidateText(username, form.DisplayNameRules).Err(); err != nil {
		return BuyIn{}, err
	}
	v := amount.Validate(rawAmount, cfg.BuyInRules())
	if err := v.Err(); err != nil {
		return BuyIn{}, err
	}
	return BuyIn{Username: username, Amount: v.BaseUnits}, nil
}

// Raise increases the bet by Amount uSCRT.
type Raise struct {
	Amount *big.Int
}

func (Raise) Name() string { return ActionRaise }
func (r Raise) Message() any {
	return map[string]any{"raise": map[string]string{"raise_amount": r.Amount.String()}}
}
func (Raise) Funds() *big.Int  { return nil }
func (Raise) GasLimit() uint64 { return GasBetting }

// Intent is the execute-intent contract of this package.
type Intent interface {
	Name() string
	Message() any
	Funds() *big.Int
	GasLimit() uint64
}

// NewBet turns a validated bet input into an intent: zero checks, anything
// else raises.
func NewBet(v amount.ValidatedAmount) (Intent, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	if v.BaseUnits.Sign() == 0 {
		return Check(), nil
	}
	return Raise{Amount: v.BaseUnits}, nil
}

// ActionRequest is the body of an action submission.
type ActionRequest struct {
	Username string `json:"username,omitempty"`
	Amount   string `json:"amount,omitempty"`
}

// IntentFor builds the intent for a named action. cfg is needed for buy-in
// bounds; minBet and balance bound a raise when known.
func IntentFor(name string, req ActionRequest, cfg LobbyConfig, raiseRules amount.Rules) (Intent, error) {
	switch name {
	case ActionBuyIn:
		return NewBuyIn(req.Username, req.Amount, cfg)
	case ActionStartGame:
		return StartGame(), nil
	case ActionCall:
		return Call(), nil
	case ActionCheck:
		return Check(), nil
	case ActionFold:
		return Fold(), nil
	case ActionWithdraw:
		return Withdraw(), nil
	case ActionRaise:
		raiseRules.AllowZero = false
		v := amount.Validate(req.Amount, raiseRules)
		if err := v.Err(); err != nil {
			return nil, err
		}
		return Raise{Amount: v.BaseUnits}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
}

// CreateLobby instantiates a lobby; the creator is seated as admin.
type CreateLobby struct {
	Username string
	Config   LobbyConfig
}

func (c CreateLobby) Message() any {
	return map[string]any{
		"username":      c.Username,
		"big_blind":     c.Config.BigBlind,
		"max_buy_in_bb": c.Config.MaxBuyInBB,
		"min_buy_in_bb": c.Config.MinBuyInBB,
	}
}

func (CreateLobby) GasLimit() uint64 { return GasInstantiate }

func NewCreateLobby(username string, in LobbyConfigInput) (CreateLobby, error) {
	if err := form.ValidateText(username, form.DisplayNameRules).Err(); err != nil {
		return CreateLobby{}, err
	}
	cfg, err := ParseLobbyConfig(in)
	if err != nil {
		return CreateLobby{}, err
	}
	return CreateLobby{Username: username, Config: cfg}, nil
}
