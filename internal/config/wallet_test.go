package config

import "testing"

func TestLoadWalletDefaults(t *testing.T) {
	cfg, err := LoadWallet()
	if err != nil {
		t.Fatalf("LoadWallet() error = %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:8788" {
		t.Fatalf("ListenAddr = %q, want 127.0.0.1:8788", cfg.ListenAddr)
	}
	if cfg.ChainID != "pulsar-3" {
		t.Fatalf("ChainID = %q, want pulsar-3", cfg.ChainID)
	}
}

func TestLoadWalletOverrides(t *testing.T) {
	t.Setenv("WALLET_LISTEN_ADDR", ":9999")
	t.Setenv("WALLET_KEY_HEX", "abcd")

	cfg, err := LoadWallet()
	if err != nil {
		t.Fatalf("LoadWallet() error = %v", err)
	}
	if cfg.ListenAddr != ":9999" || cfg.KeyHex != "abcd" {
		t.Fatalf("unexpected wallet config: %+v", cfg)
	}
}
