// Package memory provides an in-process replay guard.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/scribe/replay"
)

// compile-time interface check.
var _ replay.Guard = (*Guard)(nil)

// Guard is an in-memory replay.Guard. Expired keys are pruned on Claim.
type Guard struct {
	mu   sync.Mutex
	seen map[string]time.Time // key -> expiry
	now  func() time.Time
}

// New creates an empty guard.
func New() *Guard {
	return &Guard{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Claim implements replay.Guard.
func (g *Guard) Claim(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = replay.DefaultTTL
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.seen {
		if !now.Before(exp) {
			delete(g.seen, k)
		}
	}

	if _, ok := g.seen[key]; ok {
		return replay.ErrReplayedRequest
	}
	g.seen[key] = now.Add(ttl)
	return nil
}

// Len returns the number of remembered keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// Ping is a no-op for the in-memory guard.
func (g *Guard) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory guard.
func (g *Guard) Close() error { return nil }
