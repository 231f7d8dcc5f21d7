package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"chain-poker/internal/action"
	appclient "chain-poker/internal/app/client"
	"chain-poker/internal/chain"
	"chain-poker/internal/config"
	"chain-poker/internal/kvstore"
	"chain-poker/internal/permit"
	"chain-poker/internal/poller"
	"chain-poker/internal/session"
	"chain-poker/internal/wallet"
)

const pollBackoffMax = 30 * time.Second

type runtime struct {
	cfg      config.ClientConfig
	store    kvstore.Store
	sessions *session.Manager
	svc      *appclient.Service
	closers  []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, store: store, closers: []func(){closeStore}}

	provider, err := wallet.New(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if c, ok := provider.(io.Closer); ok {
		rt.closers = append(rt.closers, func() { _ = c.Close() })
	}

	gateway := chain.NewGateway(cfg.GatewayURL, cfg.RequestTimeout)
	contract := chain.Contract{CodeID: cfg.ContractCodeID, CodeHash: cfg.ContractCodeHash}
	rt.sessions = session.NewManager(provider, cfg.ChainID, store, func(identity string, signer chain.Signer) (chain.Handle, error) {
		return chain.NewSigningClient(gateway, cfg.ChainID, contract, identity, signer), nil
	})

	var opts []poller.Option
	if cfg.PollBackoff {
		opts = append(opts, poller.WithBackoff(pollBackoffMax))
	}
	rt.svc = appclient.NewService(appclient.Deps{
		Sessions:     rt.sessions,
		Permits:      permit.NewCache(store),
		Poller:       poller.New(opts...),
		Dispatcher:   action.NewDispatcher(rt.sessions),
		Guard:        action.NewGuard(),
		Public:       chain.NewReader(gateway, contract),
		ChainID:      cfg.ChainID,
		PollInterval: cfg.PollInterval,
	})
	log.Debug().
		Str("chain_id", cfg.ChainID).
		Str("gateway", cfg.GatewayURL).
		Str("wallet", cfg.WalletProvider).
		Str("store", cfg.Store.Driver).
		Msg("client runtime ready")
	return rt, nil
}

// restore brings back a remembered session for one-shot commands.
func (r *runtime) restore(ctx context.Context) {
	if err := r.sessions.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("session restore failed")
	}
}
