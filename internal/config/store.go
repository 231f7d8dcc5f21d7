package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// StoreConfig selects the durable key-value backend holding the
// auto-reconnect flag, preferences and cached permits.
type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER" envDefault:"sqlite"`
	Path        string `env:"STORE_PATH" envDefault:"chainpoker.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

func (c *StoreConfig) validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "memory", "sqlite":
		return nil
	case "postgres":
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("POSTGRES_DSN is required for STORE_DRIVER=postgres")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Driver)
	}
}

type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
