package chain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Contract identifies the uploaded program lobbies are instantiated from.
type Contract struct {
	CodeID   uint64
	CodeHash string
}

// SigningClient is the Handle a connected session holds: gateway reads and
// writes, signed by the session's wallet.
type SigningClient struct {
	gateway  *Gateway
	chainID  string
	contract Contract
	identity string
	signer   Signer
}

func NewSigningClient(gateway *Gateway, chainID string, contract Contract, identity string, signer Signer) *SigningClient {
	return &SigningClient{
		gateway:  gateway,
		chainID:  chainID,
		contract: contract,
		identity: identity,
		signer:   signer,
	}
}

func (c *SigningClient) Identity() string { return c.identity }

func (c *SigningClient) ChainID() string { return c.chainID }

func (c *SigningClient) Query(ctx context.Context, resourceID string, msg any) (json.RawMessage, error) {
	return c.gateway.Query(ctx, resourceID, c.contract.CodeHash, msg)
}

func (c *SigningClient) Execute(ctx context.Context, resourceID string, msg any, funds []Coin, gasLimit uint64) (Receipt, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode execute msg: %w", err)
	}
	return c.signAndBroadcast(ctx, TxMsg{
		Type:      MsgTypeExecute,
		Sender:    c.identity,
		Contract:  resourceID,
		CodeHash:  c.contract.CodeHash,
		Msg:       raw,
		SentFunds: funds,
	}, gasLimit)
}

func (c *SigningClient) Instantiate(ctx context.Context, msg any, label string, gasLimit uint64) (Receipt, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode instantiate msg: %w", err)
	}
	return c.signAndBroadcast(ctx, TxMsg{
		Type:     MsgTypeInstantiate,
		Sender:   c.identity,
		CodeID:   c.contract.CodeID,
		CodeHash: c.contract.CodeHash,
		Label:    label,
		Admin:    c.identity,
		Msg:      raw,
	}, gasLimit)
}

// SignPermit asks the wallet for an owner permit on resourceID. identity must
// be the session identity; permits are never signed for someone else.
func (c *SigningClient) SignPermit(ctx context.Context, identity, resourceID string) (PermitToken, error) {
	if identity != c.identity {
		return PermitToken{}, fmt.Errorf("%w: permit for %s requested on session %s", ErrNotConnected, identity, c.identity)
	}
	return c.signer.SignPermit(ctx, NewPermitParams(c.chainID, resourceID))
}

func (c *SigningClient) signAndBroadcast(ctx context.Context, msg TxMsg, gasLimit uint64) (Receipt, error) {
	signed, err := c.signer.SignTx(ctx, TxDoc{
		ChainID:  c.chainID,
		Msgs:     []TxMsg{msg},
		GasLimit: gasLimit,
	})
	if err != nil {
		return Receipt{}, err
	}
	receipt, err := c.gateway.Broadcast(ctx, signed)
	if err != nil {
		return Receipt{}, err
	}
	log.Debug().
		Str("identity", c.identity).
		Str("msg_type", msg.Type).
		Str("contract", msg.Contract).
		Str("txhash", receipt.TxHash).
		Uint32("code", receipt.Code).
		Msg("tx broadcast")
	return receipt, nil
}

// Reader runs queries that need no session, such as the public lobby view.
type Reader struct {
	gateway  *Gateway
	codeHash string
}

func NewReader(gateway *Gateway, contract Contract) *Reader {
	return &Reader{gateway: gateway, codeHash: contract.CodeHash}
}

func (r *Reader) Query(ctx context.Context, resourceID string, msg any) (json.RawMessage, error) {
	return r.gateway.Query(ctx, resourceID, r.codeHash, msg)
}
