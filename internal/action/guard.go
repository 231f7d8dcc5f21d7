package action

import (
	"sync"
	"time"

	"chain-poker/internal/ids"
)

type PendingAction struct {
	ID        string    `json:"id"`
	Control   string    `json:"control"`
	StartedAt time.Time `json:"started_at"`
}

// Guard allows at most one outstanding submission per control key.
type Guard struct {
	mu      sync.Mutex
	pending map[string]PendingAction
}

func NewGuard() *Guard {
	return &Guard{pending: map[string]PendingAction{}}
}

func (g *Guard) Begin(control string) (PendingAction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[control]; busy {
		metricGuardRejected.Add(1)
		return PendingAction{}, ErrActionPending
	}
	p := PendingAction{ID: ids.New(), Control: control, StartedAt: time.Now().UTC()}
	g.pending[control] = p
	return p, nil
}

// End releases p. Releasing a stale PendingAction is a no-op.
func (g *Guard) End(p PendingAction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.pending[p.Control]; ok && cur.ID == p.ID {
		delete(g.pending, p.Control)
	}
}

func (g *Guard) Pending(control string) (PendingAction, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[control]
	return p, ok
}
