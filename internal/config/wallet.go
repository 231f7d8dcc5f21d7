package config

import "github.com/caarlos0/env/v11"

type WalletConfig struct {
	ListenAddr string `env:"WALLET_LISTEN_ADDR" envDefault:"127.0.0.1:8788"`
	KeyHex     string `env:"WALLET_KEY_HEX"`
	ChainID    string `env:"WALLET_CHAIN_ID" envDefault:"pulsar-3"`
}

func LoadWallet() (WalletConfig, error) {
	var cfg WalletConfig
	err := env.Parse(&cfg)
	return cfg, err
}
