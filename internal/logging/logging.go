package logging

import (
	"io"
	"os"
	"sync"

	"chain-poker/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
	closer   io.Closer
)

// Init configures the global zerolog logger from cfg. When cfg.File.Path is
// set, output is mirrored into a size-limited log file.
func Init(cfg config.LogConfig) {
	level := cfg.ZerologLevel()

	var base io.Writer = os.Stdout
	var fileCloser io.Closer
	if cfg.File.Path != "" {
		fw, err := newSizeLimitedWriter(cfg.File.Path, cfg.File.MaxMB)
		if err == nil {
			base = io.MultiWriter(os.Stdout, fw)
			fileCloser = fw
		}
	}

	output := base
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: base}
	}

	writerMu.Lock()
	if closer != nil {
		_ = closer.Close()
	}
	writer = base
	closer = fileCloser
	writerMu.Unlock()

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw destination configured by Init, for loggers that
// are not zerolog based (the HTTP request logger).
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// Close releases the log file, if any.
func Close() error {
	writerMu.Lock()
	defer writerMu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	writer = os.Stdout
	return err
}
