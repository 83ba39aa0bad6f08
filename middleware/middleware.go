// Package middleware provides composable middleware for processor execution.
//
// A [Middleware] wraps an executor call. Middleware are composed with
// [Chain] and applied right-to-left: the first middleware in the slice is
// the outermost wrapper.
//
//	// recover → timeout → tracing → logging → executor
//	chain := middleware.Chain(
//	    middleware.Recover(logger),
//	    middleware.Timeout(2*time.Minute),
//	    middleware.Tracing(tracer),
//	    middleware.Logging(logger),
//	)
package middleware

import (
	"context"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/id"
)

// Call identifies a single executor invocation.
type Call struct {
	ProcessorID string
	Name        string
	RunID       id.ID
	Event       *event.Envelope
}

// Handler is the terminal function that runs an executor.
type Handler func(ctx context.Context) (bool, error)

// Middleware wraps a Handler with cross-cutting logic. It MUST call next to
// continue the chain unless intentionally short-circuiting.
type Middleware func(ctx context.Context, c Call, next Handler) (bool, error)

// Chain composes multiple middleware into a single Middleware.
//
// Example: Chain(recover, timeout, logging) executes as:
//
//	recover → timeout → logging → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, c Call, next Handler) (bool, error) {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			if mw == nil {
				continue
			}
			prev := h
			h = func(ctx context.Context) (bool, error) {
				return mw(ctx, c, prev)
			}
		}
		return h(ctx)
	}
}
