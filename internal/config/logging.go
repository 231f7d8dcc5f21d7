package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// LogConfig is shared by every binary. Component tags each line and defaults
// to the binary's own name.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY"`
	Component   string `env:"LOG_COMPONENT"`

	File LogFileConfig `envPrefix:"LOG_FILE_"`
}

// LogFileConfig mirrors output into a file truncated at MaxMB.
type LogFileConfig struct {
	Path  string `env:"PATH"`
	MaxMB int    `env:"MAX_MB" envDefault:"10"`
}

// ZerologLevel is the parsed Level; an unknown level reads as info.
func (c LogConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level)))
	if err != nil || c.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c *LogConfig) validate() error {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.Level)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("LOG_SAMPLE_EVERY must not be negative")
	}
	if c.File.Path != "" && c.File.MaxMB <= 0 {
		return fmt.Errorf("LOG_FILE_MAX_MB must be positive when LOG_FILE_PATH is set")
	}
	return nil
}

// LoadLog reads the log settings of the binary named component.
func LoadLog(component string) (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Component == "" {
		cfg.Component = component
	}
	return cfg, cfg.validate()
}
