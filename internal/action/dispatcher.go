// Package action submits state-changing intents as signed transactions and
// normalises their outcome.
package action

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"

	"chain-poker/internal/chain"
	"chain-poker/internal/ids"
	"chain-poker/internal/session"
)

// Intent is one execute message for a lobby contract.
type Intent interface {
	// Name is the control the intent belongs to, e.g. "raise".
	Name() string
	Message() any
	// Funds is the uSCRT attached to the message; nil for none.
	Funds() *big.Int
	GasLimit() uint64
}

// InstantiateIntent creates a new lobby contract.
type InstantiateIntent interface {
	Message() any
	GasLimit() uint64
}

// Sessions is the part of session.Manager the dispatcher needs.
type Sessions interface {
	Require() (session.Session, error)
}

// Dispatcher is stateless: each call is a single attempt with no retry and
// no rollback.
type Dispatcher struct {
	sessions Sessions
}

func NewDispatcher(sessions Sessions) *Dispatcher {
	return &Dispatcher{sessions: sessions}
}

// Submit signs and broadcasts intent against resourceID. A non-zero remote
// code is returned as *chain.RemoteError carrying the raw log verbatim.
func (d *Dispatcher) Submit(ctx context.Context, intent Intent, resourceID string) (chain.Receipt, error) {
	metricSubmitTotal.Add(1)
	s, err := d.sessions.Require()
	if err != nil {
		metricSubmitNotSubmitted.Add(1)
		return chain.Receipt{}, err
	}
	msg, err := encode(intent.Message())
	if err != nil {
		metricSubmitNotSubmitted.Add(1)
		return chain.Receipt{}, err
	}
	funds, err := coins(intent.Funds())
	if err != nil {
		metricSubmitNotSubmitted.Add(1)
		return chain.Receipt{}, err
	}

	receipt, err := s.Handle.Execute(ctx, resourceID, msg, funds, intent.GasLimit())
	if err != nil {
		metricSubmitErrors.Add(1)
		log.Warn().Err(err).Str("resource_id", resourceID).Str("action", intent.Name()).Msg("submit failed")
		return chain.Receipt{}, err
	}
	if err := chain.CheckReceipt(receipt); err != nil {
		metricSubmitRejected.Add(1)
		log.Info().
			Str("resource_id", resourceID).
			Str("action", intent.Name()).
			Str("txhash", receipt.TxHash).
			Uint32("code", receipt.Code).
			Msg("submit rejected")
		return receipt, err
	}
	log.Info().
		Str("resource_id", resourceID).
		Str("action", intent.Name()).
		Str("txhash", receipt.TxHash).
		Msg("submit accepted")
	return receipt, nil
}

// Instantiate creates a lobby and returns its contract address from the
// transaction logs.
func (d *Dispatcher) Instantiate(ctx context.Context, intent InstantiateIntent) (string, chain.Receipt, error) {
	metricInstantiateTotal.Add(1)
	s, err := d.sessions.Require()
	if err != nil {
		return "", chain.Receipt{}, err
	}
	msg, err := encode(intent.Message())
	if err != nil {
		return "", chain.Receipt{}, err
	}
	label := "chainpoker-" + ids.New()
	receipt, err := s.Handle.Instantiate(ctx, msg, label, intent.GasLimit())
	if err != nil {
		return "", chain.Receipt{}, err
	}
	if err := chain.CheckReceipt(receipt); err != nil {
		metricSubmitRejected.Add(1)
		return "", receipt, err
	}
	addr, err := receipt.FindInLogs("contract_address")
	if err != nil {
		return "", receipt, err
	}
	log.Info().Str("resource_id", addr).Str("label", label).Str("txhash", receipt.TxHash).Msg("lobby created")
	return addr, receipt, nil
}

func encode(msg any) (json.RawMessage, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return raw, nil
}

func coins(funds *big.Int) ([]chain.Coin, error) {
	if funds == nil || funds.Sign() == 0 {
		return nil, nil
	}
	if funds.Sign() < 0 {
		return nil, ErrInvalidFunds
	}
	return []chain.Coin{{Denom: chain.Denom, Amount: funds.String()}}, nil
}
