package action

import (
	"errors"

	"chain-poker/internal/chain"
)

var (
	ErrNotConnected  = chain.ErrNotConnected
	ErrActionPending = errors.New("action_pending")
	ErrSerialization = errors.New("serialization_failed")
	ErrInvalidFunds  = errors.New("invalid_funds")
)

// Outcome classifies how far a submission got.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeRejected        Outcome = "rejected"
	OutcomeNotSubmitted    Outcome = "not_submitted"
	OutcomeDeliveryUnknown Outcome = "delivery_unknown"
)

// OutcomeOf classifies the error returned by Submit or Instantiate.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, chain.ErrRemoteRejected):
		return OutcomeRejected
	case errors.Is(err, chain.ErrTransient):
		return OutcomeDeliveryUnknown
	default:
		return OutcomeNotSubmitted
	}
}
