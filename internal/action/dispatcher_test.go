package action

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chain-poker/internal/chain"
	"chain-poker/internal/session"
)

type recordingHandle struct {
	resourceID string
	msg        json.RawMessage
	funds      []chain.Coin
	gas        uint64
	label      string
	receipt    chain.Receipt
	err        error
}

func (h *recordingHandle) Identity() string { return "secret1me" }

func (h *recordingHandle) Query(context.Context, string, any) (json.RawMessage, error) {
	return nil, nil
}

func (h *recordingHandle) Execute(_ context.Context, resourceID string, msg any, funds []chain.Coin, gas uint64) (chain.Receipt, error) {
	h.resourceID = resourceID
	h.msg = msg.(json.RawMessage)
	h.funds = funds
	h.gas = gas
	return h.receipt, h.err
}

func (h *recordingHandle) Instantiate(_ context.Context, msg any, label string, gas uint64) (chain.Receipt, error) {
	h.msg = msg.(json.RawMessage)
	h.label = label
	h.gas = gas
	return h.receipt, h.err
}

func (h *recordingHandle) SignPermit(context.Context, string, string) (chain.PermitToken, error) {
	return chain.PermitToken{}, nil
}

type staticSessions struct{ s session.Session }

func (s staticSessions) Require() (session.Session, error) {
	if !s.s.Connected() {
		return session.Session{}, session.ErrNotConnected
	}
	return s.s, nil
}

func connected(h chain.Handle) Sessions {
	return staticSessions{s: session.Session{Identity: "secret1me", Handle: h}}
}

type testIntent struct {
	name  string
	msg   any
	funds *big.Int
	gas   uint64
}

func (i testIntent) Name() string     { return i.name }
func (i testIntent) Message() any     { return i.msg }
func (i testIntent) Funds() *big.Int  { return i.funds }
func (i testIntent) GasLimit() uint64 { return i.gas }

func TestSubmitWithoutSession(t *testing.T) {
	d := NewDispatcher(staticSessions{})
	_, err := d.Submit(context.Background(), testIntent{name: "fold", msg: map[string]any{"fold": struct{}{}}}, "secret1lobby")
	require.ErrorIs(t, err, ErrNotConnected)
	require.Equal(t, OutcomeNotSubmitted, OutcomeOf(err))
}

func TestSubmitAttachesFundsAndGas(t *testing.T) {
	h := &recordingHandle{receipt: chain.Receipt{TxHash: "AA"}}
	d := NewDispatcher(connected(h))

	intent := testIntent{
		name:  "buy_in",
		msg:   map[string]any{"buy_in": map[string]string{"username": "alice"}},
		funds: new(big.Int).SetUint64(18_446_744_073_709_551_615),
		gas:   500_000,
	}
	receipt, err := d.Submit(context.Background(), intent, "secret1lobby")
	require.NoError(t, err)
	require.Equal(t, "AA", receipt.TxHash)
	require.Equal(t, OutcomeAccepted, OutcomeOf(err))

	require.Equal(t, "secret1lobby", h.resourceID)
	require.Equal(t, uint64(500_000), h.gas)
	require.JSONEq(t, `{"buy_in":{"username":"alice"}}`, string(h.msg))
	require.Equal(t, []chain.Coin{{Denom: "uscrt", Amount: "18446744073709551615"}}, h.funds)
}

func TestSubmitWithoutFundsSendsNone(t *testing.T) {
	h := &recordingHandle{}
	d := NewDispatcher(connected(h))
	_, err := d.Submit(context.Background(), testIntent{name: "check", msg: map[string]any{"check": struct{}{}}, funds: big.NewInt(0), gas: 50_000}, "secret1lobby")
	require.NoError(t, err)
	require.Nil(t, h.funds)
}

func TestSubmitRemoteRejectionKeepsMessageVerbatim(t *testing.T) {
	rawLog := "failed to execute message; message index: 0: Not your turn: execute contract failed"
	h := &recordingHandle{receipt: chain.Receipt{TxHash: "BB", Code: 3, RawLog: rawLog}}
	d := NewDispatcher(connected(h))

	receipt, err := d.Submit(context.Background(), testIntent{name: "call", msg: map[string]any{"call": struct{}{}}, gas: 50_000}, "secret1lobby")
	require.ErrorIs(t, err, chain.ErrRemoteRejected)
	require.Equal(t, OutcomeRejected, OutcomeOf(err))
	require.Equal(t, "BB", receipt.TxHash)

	var remote *chain.RemoteError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, rawLog, remote.Message)
	require.True(t, strings.Contains(err.Error(), rawLog))
}

func TestSubmitTransportFailure(t *testing.T) {
	h := &recordingHandle{err: chain.ErrTransient}
	d := NewDispatcher(connected(h))
	_, err := d.Submit(context.Background(), testIntent{name: "fold", msg: map[string]any{}}, "secret1lobby")
	require.ErrorIs(t, err, chain.ErrTransient)
	require.Equal(t, OutcomeDeliveryUnknown, OutcomeOf(err))
}

func TestSubmitSerializationFailureNeverReachesHandle(t *testing.T) {
	h := &recordingHandle{}
	d := NewDispatcher(connected(h))
	_, err := d.Submit(context.Background(), testIntent{name: "bad", msg: make(chan int)}, "secret1lobby")
	require.ErrorIs(t, err, ErrSerialization)
	require.Empty(t, h.resourceID)

	_, err = d.Submit(context.Background(), testIntent{name: "bad", msg: map[string]any{}, funds: big.NewInt(-1)}, "secret1lobby")
	require.ErrorIs(t, err, ErrInvalidFunds)
}

type testInstantiate struct{}

func (testInstantiate) Message() any     { return map[string]any{"big_blind": 2000} }
func (testInstantiate) GasLimit() uint64 { return 400_000 }

func TestInstantiateReturnsContractAddress(t *testing.T) {
	h := &recordingHandle{receipt: chain.Receipt{
		TxHash: "CC",
		Logs: []chain.TxLog{{Events: []chain.Event{{
			Type:       "message",
			Attributes: []chain.Attribute{{Key: "contract_address", Value: "secret1new"}},
		}}}},
	}}
	d := NewDispatcher(connected(h))

	addr, receipt, err := d.Instantiate(context.Background(), testInstantiate{})
	require.NoError(t, err)
	require.Equal(t, "secret1new", addr)
	require.Equal(t, "CC", receipt.TxHash)
	require.Equal(t, uint64(400_000), h.gas)
	require.True(t, strings.HasPrefix(h.label, "chainpoker-"))
}

func TestInstantiateMissingAddress(t *testing.T) {
	d := NewDispatcher(connected(&recordingHandle{}))
	_, _, err := d.Instantiate(context.Background(), testInstantiate{})
	require.ErrorIs(t, err, chain.ErrLogKeyNotFound)
}
