// Command dev-wallet holds one local key and serves it over the wallet
// bridge, standing in for a browser wallet during development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chain-poker/internal/config"
	"chain-poker/internal/logging"
	"chain-poker/internal/wallet"
	"chain-poker/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog("dev-wallet")
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadWallet()
	if err != nil {
		log.Fatal().Err(err).Msg("load wallet config failed")
	}

	key, err := wallet.NewLocalKey(cfg.KeyHex, cfg.ChainID)
	if err != nil {
		log.Fatal().Err(err).Msg("load key failed")
	}
	if cfg.KeyHex == "" {
		log.Warn().Str("key_hex", key.KeyHex()).Msg("generated a new key; set WALLET_KEY_HEX to keep it")
	}

	bridge := ws.NewServer(key)
	r := newRouter(bridge)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		bridge.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("chain_id", cfg.ChainID).
		Str("address", key.Address()).
		Msg("wallet bridge listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newRouter(bridge *ws.Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Get("/wallet", bridge.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return r
}
