// Package ratelimit throttles outbound calls to the AI service and the
// platform API. Each key gets its own token bucket.
package ratelimit

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// New creates a new rate limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether a call under key may proceed now.
// A perSecond of 0 means unlimited (always returns true).
func (l *Limiter) Allow(key string, perSecond float64) bool {
	if perSecond <= 0 {
		return true
	}
	return l.bucket(key, perSecond).Allow()
}

// Wait blocks until a call under key may proceed or ctx is done.
// A perSecond of 0 means unlimited (returns immediately).
func (l *Limiter) Wait(ctx context.Context, key string, perSecond float64) error {
	if perSecond <= 0 {
		return nil
	}
	return l.bucket(key, perSecond).Wait(ctx)
}

// Reset clears the state for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// bucket returns the limiter for key, creating it full. A changed rate is
// applied to the existing bucket.
func (l *Limiter) bucket(key string, perSecond float64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	burst := int(math.Max(1, math.Ceil(perSecond)))
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Limit(perSecond), burst)
		l.buckets[key] = b
		return b
	}
	if b.Limit() != rate.Limit(perSecond) {
		b.SetLimit(rate.Limit(perSecond))
		b.SetBurst(burst)
	}
	return b
}

// Bound is a Limiter fixed to one key and rate.
type Bound struct {
	limiter   *Limiter
	key       string
	perSecond float64
}

// For binds key and perSecond. A nil Limiter yields a Bound that never waits.
func (l *Limiter) For(key string, perSecond float64) *Bound {
	return &Bound{limiter: l, key: key, perSecond: perSecond}
}

// Wait blocks until the bound key may proceed.
func (b *Bound) Wait(ctx context.Context) error {
	if b == nil || b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx, b.key, b.perSecond)
}
