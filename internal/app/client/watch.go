package client

import (
	"context"
	"sync"

	"chain-poker/internal/poller"
)

type watch struct {
	sub  *poller.Subscription
	refs int
}

// Watch is one consumer of a polled resource. Initial is the last update of
// an already running poll, nil when this consumer started it.
type Watch struct {
	Updates <-chan poller.Update
	Initial *poller.Update
	Release func()
}

func lobbyKey(lobbyID string) string { return "lobby/" + lobbyID }

func gameKey(lobbyID string) string { return "game/" + lobbyID }

// WatchLobby polls the public lobby view while at least one watch is held.
func (s *Service) WatchLobby(lobbyID string) Watch {
	return s.watch(lobbyKey(lobbyID), func(ctx context.Context) (any, error) {
		return s.LobbyStatus(ctx, lobbyID)
	})
}

// WatchGame polls the game view for whichever session is current at each
// tick, keeping the lobby's bet input bound to the latest bounds.
func (s *Service) WatchGame(lobbyID string) Watch {
	return s.watch(gameKey(lobbyID), func(ctx context.Context) (any, error) {
		gs, err := s.GameStatus(ctx, lobbyID)
		if err != nil {
			return nil, err
		}
		s.refreshBetRules(lobbyID, gs)
		return gs, nil
	})
}

// watching reports how many consumers hold key.
func (s *Service) watching(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w := s.watches[key]; w != nil {
		return w.refs
	}
	return 0
}

func (s *Service) watch(key string, fetch poller.FetchFunc) Watch {
	updates, unsubscribe := s.poller.Subscribe(key)

	s.mu.Lock()
	w := s.watches[key]
	var initial *poller.Update
	if w == nil {
		w = &watch{sub: s.poller.Start(key, s.interval, fetch)}
		s.watches[key] = w
	} else if u, ok := w.sub.Latest(); ok {
		initial = &u
	}
	w.refs++
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			unsubscribe()
			s.mu.Lock()
			defer s.mu.Unlock()
			w.refs--
			if w.refs == 0 {
				w.sub.Stop()
				delete(s.watches, key)
			}
		})
	}
	return Watch{Updates: updates, Initial: initial, Release: release}
}
