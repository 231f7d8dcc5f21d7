package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type ClientConfig struct {
	Network          string `env:"CHAIN_NETWORK" envDefault:"testnet"`
	ChainID          string `env:"CHAIN_ID"`
	GatewayURL       string `env:"GATEWAY_URL"`
	ContractCodeID   uint64 `env:"CONTRACT_CODE_ID"`
	ContractCodeHash string `env:"CONTRACT_CODE_HASH"`

	WalletProvider  string `env:"WALLET_PROVIDER" envDefault:"bridge"`
	WalletBridgeURL string `env:"WALLET_BRIDGE_URL" envDefault:"ws://127.0.0.1:8788/wallet"`
	WalletKeyHex    string `env:"WALLET_KEY_HEX"`

	Store StoreConfig

	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	PollBackoff    bool          `env:"POLL_BACKOFF" envDefault:"false"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:"127.0.0.1:8787"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

type networkPreset struct {
	chainID string
	gateway string
}

var networkPresets = map[string]networkPreset{
	"mainnet":  {chainID: "secret-4", gateway: "https://lcd.mainnet.secretsaturn.net"},
	"testnet":  {chainID: "pulsar-3", gateway: "https://pulsar.lcd.secretnodes.com"},
	"localnet": {chainID: "secretdev-1", gateway: "http://localhost:1317"},
}

// LoadClient parses the client configuration and fills chain id and gateway
// from the selected network preset when they are not set explicitly.
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.Network = strings.ToLower(strings.TrimSpace(cfg.Network))
	preset, ok := networkPresets[cfg.Network]
	if !ok {
		return cfg, fmt.Errorf("unknown CHAIN_NETWORK %q", cfg.Network)
	}
	if cfg.ChainID == "" {
		cfg.ChainID = preset.chainID
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = preset.gateway
	}
	cfg.WalletProvider = strings.ToLower(strings.TrimSpace(cfg.WalletProvider))
	switch cfg.WalletProvider {
	case "none", "bridge", "localkey":
	default:
		return cfg, fmt.Errorf("unknown WALLET_PROVIDER %q", cfg.WalletProvider)
	}
	if err := cfg.Store.validate(); err != nil {
		return cfg, err
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return cfg, nil
}
