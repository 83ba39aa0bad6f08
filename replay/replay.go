// Package replay defines the guard that rejects byte-identical re-sends of a
// signed webhook request.
//
// Keys are derived from the request signature. Platform retries carry a new
// attempt number and therefore a new signature, so they are not rejected.
package replay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrReplayedRequest is returned when a key has been claimed within its TTL.
var ErrReplayedRequest = errors.New("scribe: replayed request")

// DefaultTTL is how long a claimed key is remembered when none is configured.
const DefaultTTL = 10 * time.Minute

// Guard remembers request keys for a bounded time.
type Guard interface {
	// Claim records key for ttl. It returns ErrReplayedRequest when key is
	// already recorded and not yet expired.
	Claim(ctx context.Context, key string, ttl time.Duration) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Key derives a fixed-length guard key from a signature header value.
func Key(sig string) string {
	sum := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(sum[:])
}
