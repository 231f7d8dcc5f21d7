package kvstore

import (
	"context"
	"fmt"

	"chain-poker/internal/config"
)

// Open builds the backend selected by cfg. The returned close func is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, func(), error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), func() {}, nil
	case "", "sqlite":
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, func() {}, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, func() {}, err
		}
		return s, s.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
