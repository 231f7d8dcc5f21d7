// Package session owns the single wallet session of the client: connecting
// through the wallet provider, persisting the auto-reconnect flag and
// publishing every change to subscribers.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"chain-poker/internal/chain"
	"chain-poker/internal/form"
	"chain-poker/internal/kvstore"
	"chain-poker/internal/wallet"
)

const (
	autoConnectKey = "wallet_auto_connect"
	displayNameKey = "display_name"
)

// Session is a value snapshot; a nil Handle means no session.
type Session struct {
	Identity      string       `json:"identity,omitempty"`
	Handle        chain.Handle `json:"-"`
	AutoReconnect bool         `json:"auto_reconnect"`
}

func (s Session) Connected() bool { return s.Handle != nil }

// HandleFactory builds the signing handle for a freshly enabled wallet.
type HandleFactory func(identity string, signer chain.Signer) (chain.Handle, error)

type Manager struct {
	provider  wallet.Provider
	chainID   string
	store     kvstore.Store
	newHandle HandleFactory

	connectMu   sync.Mutex
	restoreOnce sync.Once

	mu        sync.Mutex
	current   Session
	nextSubID int
	subs      map[int]chan Session
}

func NewManager(provider wallet.Provider, chainID string, store kvstore.Store, newHandle HandleFactory) *Manager {
	return &Manager{
		provider:  provider,
		chainID:   chainID,
		store:     store,
		newHandle: newHandle,
		subs:      map[int]chan Session{},
	}
}

// Connect enables the wallet for the configured chain and stores the new
// session. The session is published only once the auto-reconnect flag is
// persisted; a store failure leaves it absent.
func (m *Manager) Connect(ctx context.Context) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()
	metricConnectTotal.Add(1)

	s, err := m.open(ctx)
	if err != nil {
		metricConnectErrors.Add(1)
		return err
	}
	if err := kvstore.SetBool(ctx, m.store, autoConnectKey, true); err != nil {
		metricConnectErrors.Add(1)
		return fmt.Errorf("persist auto connect: %w", err)
	}
	m.set(s)
	log.Info().Str("identity", s.Identity).Str("chain_id", m.chainID).Msg("wallet connected")
	return nil
}

func (m *Manager) open(ctx context.Context) (Session, error) {
	if m.provider == nil {
		return Session{}, ErrProviderUnavailable
	}
	if err := m.provider.Enable(ctx, m.chainID); err != nil {
		return Session{}, err
	}
	identity, err := m.provider.Identity(ctx, m.chainID)
	if err != nil {
		return Session{}, err
	}
	signer, err := m.provider.Signer(m.chainID)
	if err != nil {
		return Session{}, err
	}
	handle, err := m.newHandle(identity, signer)
	if err != nil {
		return Session{}, err
	}
	return Session{Identity: identity, Handle: handle, AutoReconnect: true}, nil
}

// Disconnect clears the session and the auto-reconnect flag. The session is
// dropped even when persisting the flag fails. Cached permits are left in
// place for a later reconnect of the same identity.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()
	metricDisconnectTotal.Add(1)

	prev := m.Current()
	m.set(Session{})
	if err := kvstore.SetBool(ctx, m.store, autoConnectKey, false); err != nil {
		return fmt.Errorf("persist auto connect: %w", err)
	}
	log.Info().Str("identity", prev.Identity).Msg("wallet disconnected")
	return nil
}

// Current never blocks on the network.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Require returns the current session or ErrNotConnected.
func (m *Manager) Require() (Session, error) {
	s := m.Current()
	if !s.Connected() {
		return Session{}, ErrNotConnected
	}
	return s, nil
}

// Restore reconnects on startup when the persisted flag asks for it. It runs
// at most once per Manager; later calls are no-ops. A failed attempt leaves
// the session absent and is returned for the caller to log.
func (m *Manager) Restore(ctx context.Context) error {
	var err error
	m.restoreOnce.Do(func() {
		var auto bool
		auto, err = kvstore.GetBool(ctx, m.store, autoConnectKey)
		if err != nil || !auto {
			return
		}
		if m.provider == nil {
			log.Info().Msg("auto reconnect skipped: no wallet provider")
			return
		}
		metricRestoreTotal.Add(1)
		err = m.Connect(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("auto reconnect failed")
		}
	})
	return err
}

// Subscribe delivers every session change. Slow readers only see the latest
// value.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan Session, 1)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
}

func (m *Manager) set(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (m *Manager) DisplayName(ctx context.Context) (string, error) {
	v, _, err := m.store.Get(ctx, displayNameKey)
	return v, err
}

// SetDisplayName validates and persists the name shown to other players.
func (m *Manager) SetDisplayName(ctx context.Context, name string) error {
	if err := form.ValidateText(name, form.DisplayNameRules).Err(); err != nil {
		return err
	}
	return m.store.Set(ctx, displayNameKey, name)
}
