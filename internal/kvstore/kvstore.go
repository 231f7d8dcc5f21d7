// Package kvstore is the durable key-value store behind the auto-reconnect
// flag, user preferences and cached query permits.
package kvstore

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyKey = errors.New("empty_key")

// Store is the minimal durable string map the client needs. Get reports a
// missing key with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

// GetBool reads a "true"/"false" flag; anything else, including a missing
// key, reads as false.
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

func SetBool(ctx context.Context, s Store, key string, v bool) error {
	if v {
		return s.Set(ctx, key, "true")
	}
	return s.Set(ctx, key, "false")
}
