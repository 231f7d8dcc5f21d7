// Package permit caches signed query permits per (identity, resource) in the
// durable key-value store.
package permit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"chain-poker/internal/chain"
	"chain-poker/internal/kvstore"
)

var ErrNotConnected = chain.ErrNotConnected

type Permit struct {
	SubjectIdentity string            `json:"subject_identity"`
	ResourceID      string            `json:"resource_id"`
	Token           chain.PermitToken `json:"token"`
}

// Signer produces a fresh permit. chain.Handle satisfies it.
type Signer interface {
	SignPermit(ctx context.Context, identity, resourceID string) (chain.PermitToken, error)
}

type Cache struct {
	store kvstore.Store
}

func NewCache(store kvstore.Store) *Cache {
	return &Cache{store: store}
}

// Key is the store key of a permit.
func Key(identity, resourceID string) string {
	return identity + ":" + resourceID + ":query_permit"
}

// Get returns the cached permit, signing and persisting a new one on a miss.
// Signer errors are returned as-is.
func (c *Cache) Get(ctx context.Context, identity, resourceID string, signer Signer) (Permit, error) {
	p, _, err := c.get(ctx, identity, resourceID, signer)
	return p, err
}

func (c *Cache) Invalidate(ctx context.Context, identity, resourceID string) error {
	if identity == "" {
		return ErrNotConnected
	}
	metricPermitInvalidations.Add(1)
	return c.store.Delete(ctx, Key(identity, resourceID))
}

// Do runs fn with a permit. When fn reports chain.ErrUnauthorized for a
// cached permit, the entry is dropped and fn runs once more with a freshly
// signed permit. The second result is final.
func (c *Cache) Do(ctx context.Context, identity, resourceID string, signer Signer, fn func(Permit) error) error {
	p, cached, err := c.get(ctx, identity, resourceID, signer)
	if err != nil {
		return err
	}
	err = fn(p)
	if err == nil || !cached || !errors.Is(err, chain.ErrUnauthorized) {
		return err
	}

	log.Info().
		Str("identity", identity).
		Str("resource_id", resourceID).
		Msg("permit rejected, re-signing")
	metricPermitRetries.Add(1)
	if err := c.Invalidate(ctx, identity, resourceID); err != nil {
		return err
	}
	fresh, err := c.sign(ctx, identity, resourceID, signer)
	if err != nil {
		return err
	}
	return fn(fresh)
}

func (c *Cache) get(ctx context.Context, identity, resourceID string, signer Signer) (Permit, bool, error) {
	if identity == "" || signer == nil {
		return Permit{}, false, ErrNotConnected
	}
	raw, ok, err := c.store.Get(ctx, Key(identity, resourceID))
	if err != nil {
		return Permit{}, false, err
	}
	if ok {
		var p Permit
		err := json.Unmarshal([]byte(raw), &p)
		if err == nil {
			metricPermitHits.Add(1)
			return p, true, nil
		}
		log.Warn().Err(err).Str("resource_id", resourceID).Msg("discarding unreadable cached permit")
	}
	metricPermitMisses.Add(1)
	p, err := c.sign(ctx, identity, resourceID, signer)
	return p, false, err
}

func (c *Cache) sign(ctx context.Context, identity, resourceID string, signer Signer) (Permit, error) {
	token, err := signer.SignPermit(ctx, identity, resourceID)
	if err != nil {
		return Permit{}, err
	}
	metricPermitSigns.Add(1)
	p := Permit{SubjectIdentity: identity, ResourceID: resourceID, Token: token}
	raw, err := json.Marshal(p)
	if err != nil {
		return Permit{}, fmt.Errorf("encode permit: %w", err)
	}
	if err := c.store.Set(ctx, Key(identity, resourceID), string(raw)); err != nil {
		return Permit{}, err
	}
	return p, nil
}
