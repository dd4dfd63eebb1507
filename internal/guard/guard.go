// Package guard implements cross-session challenge-reuse detection
// (session.ChallengeGuard), reworked from the teacher's GuardObject
// (go/guard.go): a mutex-guarded map plus a background cleanup goroutine,
// repurposed from token/rate-limit tracking to challenge-replay tracking.
package guard

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// DefaultTTL is how long a (remoteCommitment, challenge) pair is
// remembered before it is eligible for cleanup.
const DefaultTTL = time.Hour

// DefaultCleanupInterval is how often the background goroutine sweeps
// expired entries.
const DefaultCleanupInterval = 5 * time.Minute

type key struct {
	remoteCommitment uint64
	challenge        uint64
}

// Tracker implements session.ChallengeGuard: it remembers every
// (remoteCommitment, challenge) pair it has admitted and rejects repeats.
type Tracker struct {
	clk      clock.Clock
	ttl      time.Duration
	log      *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	seen    map[key]time.Time
	stopped chan struct{}
	once    sync.Once
}

// New returns a Tracker and starts its background cleanup goroutine. Call
// Close to stop it. A nil clk defaults to the real wall clock; a zero ttl
// or interval fall back to DefaultTTL / DefaultCleanupInterval.
func New(clk clock.Clock, ttl, interval time.Duration, log *zap.Logger) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		clk:      clk,
		ttl:      ttl,
		interval: interval,
		log:      log,
		seen:     make(map[key]time.Time),
		stopped:  make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// Admit implements session.ChallengeGuard.
func (t *Tracker) Admit(remoteCommitment, challenge uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{remoteCommitment: remoteCommitment, challenge: challenge}
	if _, exists := t.seen[k]; exists {
		return false
	}
	t.seen[k] = t.clk.Now()
	return true
}

// Len reports how many (remoteCommitment, challenge) pairs are currently
// tracked, for tests and diagnostics.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

func (t *Tracker) cleanupLoop() {
	ticker := t.clk.Ticker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopped:
			return
		case now := <-ticker.C:
			t.mu.Lock()
			for k, seenAt := range t.seen {
				if now.Sub(seenAt) > t.ttl {
					delete(t.seen, k)
				}
			}
			t.mu.Unlock()
			t.log.Debug("guard cleanup swept expired challenges")
		}
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (t *Tracker) Close() {
	t.once.Do(func() { close(t.stopped) })
}
