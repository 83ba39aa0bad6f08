// Package redis provides a replay guard shared across instances through Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/scribe/replay"
)

// compile-time interface check.
var _ replay.Guard = (*Guard)(nil)

const defaultPrefix = "scribe:replay:"

// Guard implements replay.Guard with SET NX and a TTL.
type Guard struct {
	rdb    goredis.UniversalClient
	prefix string
}

// Option configures a Guard.
type Option func(*Guard)

// WithPrefix sets the key namespace. The default is "scribe:replay:".
func WithPrefix(prefix string) Option {
	return func(g *Guard) { g.prefix = prefix }
}

// New creates a guard over an existing client.
func New(rdb goredis.UniversalClient, opts ...Option) *Guard {
	g := &Guard{rdb: rdb, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Claim implements replay.Guard.
func (g *Guard) Claim(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = replay.DefaultTTL
	}
	ok, err := g.rdb.SetNX(ctx, g.prefix+key, time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return fmt.Errorf("scribe/redis: claim replay key: %w", err)
	}
	if !ok {
		return replay.ErrReplayedRequest
	}
	return nil
}

// Ping checks Redis connectivity.
func (g *Guard) Ping(ctx context.Context) error {
	return g.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (g *Guard) Close() error {
	return g.rdb.Close()
}
