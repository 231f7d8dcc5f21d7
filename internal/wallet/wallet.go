// Package wallet provides the signing capability a session is built on.
// Providers either hold a key in process (localkey) or forward to a wallet
// daemon over the websocket bridge.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chain-poker/internal/chain"
	"chain-poker/internal/config"
)

var (
	ErrProviderUnavailable = errors.New("provider_unavailable")
	ErrNotEnabled          = errors.New("wallet_not_enabled")
	ErrUnknownChain        = errors.New("unknown_chain")
	ErrInvalidKey          = errors.New("invalid_key")
	ErrBadSignature        = errors.New("bad_signature")
)

// Provider is the external wallet capability. A nil Provider means no wallet
// is present in this environment.
type Provider interface {
	Enable(ctx context.Context, chainID string) error
	Identity(ctx context.Context, chainID string) (string, error)
	Signer(chainID string) (chain.Signer, error)
}

// New builds the provider selected by cfg. "none" yields a nil Provider.
func New(cfg config.ClientConfig) (Provider, error) {
	switch strings.ToLower(cfg.WalletProvider) {
	case "", "none":
		return nil, nil
	case "localkey":
		key, err := NewLocalKey(cfg.WalletKeyHex, cfg.ChainID)
		if err != nil {
			return nil, err
		}
		return key, nil
	case "bridge":
		return NewBridge(cfg.WalletBridgeURL), nil
	default:
		return nil, fmt.Errorf("unknown wallet provider %q", cfg.WalletProvider)
	}
}
