package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when an executor does not finish within its deadline.
var ErrTimeout = errors.New("scribe: processor timed out")

// Timeout returns middleware that bounds each executor call. A zero or
// negative d disables it.
//
// The executor runs in its own goroutine so that one ignoring its context
// cannot hold the dispatch open past the deadline. Its late result is
// discarded.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, c Call, next Handler) (bool, error) {
		if d <= 0 {
			return next(ctx)
		}

		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			ok  bool
			err error
		}
		done := make(chan result, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- result{err: fmt.Errorf("panic in processor %s: %v", c.ProcessorID, r)}
				}
			}()
			ok, err := next(ctx)
			done <- result{ok: ok, err: err}
		}()

		select {
		case r := <-done:
			return r.ok, r.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return false, fmt.Errorf("%w after %s", ErrTimeout, d)
			}
			return false, ctx.Err()
		}
	}
}
