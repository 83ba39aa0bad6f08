package middleware

import (
	"context"
	"time"

	"github.com/xraph/scribe/observability"
)

// Metrics returns middleware that records executor outcomes and latency.
// A nil m makes it a pass-through.
func Metrics(m *observability.Metrics) Middleware {
	return func(ctx context.Context, c Call, next Handler) (bool, error) {
		if m == nil {
			return next(ctx)
		}
		m.ProcessorStarted()
		start := time.Now()
		ok, err := next(ctx)
		m.RecordProcessor(c.ProcessorID, ok && err == nil, time.Since(start))
		return ok, err
	}
}
