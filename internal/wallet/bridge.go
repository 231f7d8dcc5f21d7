package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"chain-poker/internal/chain"
	"chain-poker/internal/ws"
)

// Bridge is a Provider backed by a wallet daemon reachable over websocket.
// The connection is dialled lazily; a daemon that cannot be reached is
// reported as ErrProviderUnavailable.
type Bridge struct {
	url string

	mu     sync.Mutex
	client *ws.Client
}

func NewBridge(url string) *Bridge {
	return &Bridge{url: url}
}

func (b *Bridge) Enable(ctx context.Context, chainID string) error {
	c, err := b.conn(ctx)
	if err != nil {
		return err
	}
	return c.Call(ctx, ws.MethodEnable, ws.ChainParams{ChainID: chainID}, nil)
}

func (b *Bridge) Identity(ctx context.Context, chainID string) (string, error) {
	c, err := b.conn(ctx)
	if err != nil {
		return "", err
	}
	var out ws.IdentityResult
	if err := c.Call(ctx, ws.MethodGetIdentity, ws.ChainParams{ChainID: chainID}, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

func (b *Bridge) Signer(chainID string) (chain.Signer, error) {
	return &bridgeSigner{bridge: b, chainID: chainID}, nil
}

func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func (b *Bridge) conn(ctx context.Context) (*ws.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil && !b.client.Closed() {
		return b.client, nil
	}
	c, err := ws.Dial(ctx, b.url)
	if err != nil {
		log.Warn().Err(err).Str("url", b.url).Msg("wallet_bridge_dial_failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	b.client = c
	return c, nil
}

type bridgeSigner struct {
	bridge  *Bridge
	chainID string
}

func (s *bridgeSigner) SignPermit(ctx context.Context, params chain.PermitParams) (chain.PermitToken, error) {
	c, err := s.bridge.conn(ctx)
	if err != nil {
		return chain.PermitToken{}, err
	}
	var out chain.PermitToken
	err = c.Call(ctx, ws.MethodSignPermit, map[string]any{"chain_id": s.chainID, "permit": params}, &out)
	return out, err
}

func (s *bridgeSigner) SignTx(ctx context.Context, doc chain.TxDoc) (chain.SignedTx, error) {
	c, err := s.bridge.conn(ctx)
	if err != nil {
		return chain.SignedTx{}, err
	}
	var out chain.SignedTx
	err = c.Call(ctx, ws.MethodSignTx, map[string]any{"chain_id": s.chainID, "doc": doc}, &out)
	return out, err
}
