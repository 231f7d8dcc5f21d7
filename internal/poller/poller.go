// Package poller keeps remote snapshots fresh: one goroutine and ticker per
// subscription, never more than one fetch in flight, results fanned out to
// every consumer of the resource.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// FetchFunc reads one snapshot. ctx is cancelled when the subscription stops.
type FetchFunc func(ctx context.Context) (any, error)

// Snapshot is immutable once published.
type Snapshot struct {
	ResourceID string    `json:"resource_id"`
	Seq        uint64    `json:"seq"`
	FetchedAt  time.Time `json:"fetched_at"`
	Data       any       `json:"data"`
}

// Update is what consumers receive: the latest good snapshot (nil before the
// first success) and the error of the most recent poll, if it failed.
type Update struct {
	ResourceID string
	Snapshot   *Snapshot
	Err        error
}

// Ticker abstracts time.Ticker so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type Option func(*Poller)

// WithTicker replaces the ticker factory.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(p *Poller) { p.newTicker = newTicker }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithBackoff makes subscriptions skip ticks after failures, growing
// exponentially from the poll interval up to max. Success resets it.
func WithBackoff(max time.Duration) Option {
	return func(p *Poller) { p.backoffMax = max }
}

type Poller struct {
	newTicker  func(time.Duration) Ticker
	now        func() time.Time
	backoffMax time.Duration

	mu        sync.Mutex
	nextSubID int
	consumers map[string]map[int]chan Update
	latest    map[string]Update
	owners    map[string]*Subscription
}

func New(opts ...Option) *Poller {
	p := &Poller{
		newTicker: newRealTicker,
		now:       time.Now,
		consumers: map[string]map[int]chan Update{},
		latest:    map[string]Update{},
		owners:    map[string]*Subscription{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling resourceID every interval. The first fetch happens on
// the first tick.
func (p *Poller) Start(resourceID string, interval time.Duration, fetch FetchFunc) *Subscription {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		poller:     p,
		resourceID: resourceID,
		fetch:      fetch,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	if p.backoffMax > 0 {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = interval
		bo.MaxInterval = p.backoffMax
		bo.Multiplier = 2
		bo.RandomizationFactor = 0
		bo.Reset()
		s.backoff = bo
	}
	ticker := p.newTicker(interval)
	metricSubscriptionsActive.Add(1)
	log.Debug().Str("resource_id", resourceID).Dur("interval", interval).Msg("poll start")
	go s.run(ticker)
	return s
}

// Stop is the same as sub.Stop.
func (p *Poller) Stop(sub *Subscription) {
	if sub != nil {
		sub.Stop()
	}
}

// Subscribe registers a consumer for resourceID. A slow consumer only misses
// intermediate updates; the newest one is always delivered.
func (p *Poller) Subscribe(resourceID string) (<-chan Update, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	ch := make(chan Update, 1)
	if p.consumers[resourceID] == nil {
		p.consumers[resourceID] = map[int]chan Update{}
	}
	p.consumers[resourceID][id] = ch
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		subs := p.consumers[resourceID]
		if _, ok := subs[id]; !ok {
			return
		}
		delete(subs, id)
		close(ch)
		if len(subs) == 0 {
			delete(p.consumers, resourceID)
		}
	}
}

// Latest returns the most recent update published for resourceID by a
// subscription that is still running.
func (p *Poller) Latest(resourceID string) (Update, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.latest[resourceID]
	return u, ok
}

func (p *Poller) publish(from *Subscription, u Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest[u.ResourceID] = u
	p.owners[u.ResourceID] = from
	for _, ch := range p.consumers[u.ResourceID] {
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}

// forget drops the latest update of resourceID if sub published it.
func (p *Poller) forget(sub *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.owners[sub.resourceID] == sub {
		delete(p.latest, sub.resourceID)
		delete(p.owners, sub.resourceID)
	}
}
