package poller

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Stats are per-subscription counters.
type Stats struct {
	Ticks        uint64
	Fetches      uint64
	Skipped      uint64
	BackoffSkips uint64
	Failures     uint64
	Published    uint64
}

type Subscription struct {
	poller     *Poller
	resourceID string
	fetch      FetchFunc
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
	done       chan struct{}

	mu            sync.Mutex
	fetchInFlight bool
	stopped       bool
	seq           uint64
	last          *Snapshot
	lastErr       error
	backoff       *backoff.ExponentialBackOff
	notBefore     time.Time
	stats         Stats
}

func (s *Subscription) ResourceID() string { return s.resourceID }

// Stop cancels the ticker and the in-flight fetch. It is idempotent; a fetch
// result that arrives afterwards is dropped, and the poller forgets what this
// subscription published.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.poller.forget(s)
		s.cancel()
		metricSubscriptionsActive.Add(-1)
		log.Debug().Str("resource_id", s.resourceID).Msg("poll stop")
	})
}

// Done is closed once the poll loop has released its ticker.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Latest is the most recent update of this subscription; false before the
// first poll completes and after Stop.
func (s *Subscription) Latest() (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || (s.last == nil && s.lastErr == nil) {
		return Update{}, false
	}
	return Update{ResourceID: s.resourceID, Snapshot: s.last, Err: s.lastErr}, true
}

// LastError is the error of the most recent poll, nil after a success.
func (s *Subscription) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Subscription) run(ticker Ticker) {
	defer close(s.done)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C():
			s.tick()
		}
	}
}

func (s *Subscription) tick() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stats.Ticks++
	metricPollTicks.Add(1)
	if s.fetchInFlight {
		s.stats.Skipped++
		s.mu.Unlock()
		metricPollSkipped.Add(1)
		return
	}
	if !s.notBefore.IsZero() && s.poller.now().Before(s.notBefore) {
		s.stats.BackoffSkips++
		s.mu.Unlock()
		metricPollBackoffSkips.Add(1)
		return
	}
	s.fetchInFlight = true
	s.stats.Fetches++
	s.mu.Unlock()

	metricPollFetches.Add(1)
	go s.doFetch()
}

func (s *Subscription) doFetch() {
	data, err := s.fetch(s.ctx)

	s.mu.Lock()
	s.fetchInFlight = false
	if s.stopped {
		s.mu.Unlock()
		return
	}
	var u Update
	if err != nil {
		s.lastErr = err
		s.stats.Failures++
		s.scheduleBackoff()
		u = Update{ResourceID: s.resourceID, Snapshot: s.last, Err: err}
	} else {
		s.seq++
		s.last = &Snapshot{ResourceID: s.resourceID, Seq: s.seq, FetchedAt: s.poller.now(), Data: data}
		s.lastErr = nil
		s.resetBackoff()
		u = Update{ResourceID: s.resourceID, Snapshot: s.last}
	}
	s.stats.Published++
	// s.mu is held across publish so Stop cannot land between the stopped
	// check and delivery.
	s.poller.publish(s, u)
	s.mu.Unlock()

	if err != nil {
		metricPollFailures.Add(1)
		log.Warn().Err(err).Str("resource_id", s.resourceID).Msg("poll failed")
	}
}

func (s *Subscription) scheduleBackoff() {
	if s.backoff == nil {
		return
	}
	d := s.backoff.NextBackOff()
	if d == backoff.Stop {
		d = s.backoff.MaxInterval
	}
	s.notBefore = s.poller.now().Add(d)
}

func (s *Subscription) resetBackoff() {
	if s.backoff == nil {
		return
	}
	s.backoff.Reset()
	s.notBefore = time.Time{}
}
