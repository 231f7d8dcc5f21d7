package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chain-poker/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	Init(config.LogConfig{Level: "debug", File: config.LogFileConfig{Path: path, MaxMB: 1}, Component: "test"})
	t.Cleanup(func() { _ = Close() })

	log.Info().Str("resource_id", "secret1abc").Msg("poll started")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(b)
	if !strings.Contains(line, `"resource_id":"secret1abc"`) {
		t.Fatalf("log line missing field: %s", line)
	}
	if !strings.Contains(line, `"component":"test"`) {
		t.Fatalf("log line missing component: %s", line)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("GlobalLevel = %v, want debug", zerolog.GlobalLevel())
	}
}

func TestInitIgnoresUnknownLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	t.Cleanup(func() { _ = Close() })

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("GlobalLevel = %v, want info", zerolog.GlobalLevel())
	}
	if Writer() != os.Stdout {
		t.Fatal("Writer() should default to stdout without a log file")
	}
}
