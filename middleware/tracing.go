package middleware

import (
	"context"

	"github.com/xraph/scribe/observability"
)

// Tracing returns middleware that wraps each executor call in a span.
// A nil tracer makes it a pass-through.
func Tracing(tracer *observability.Tracer) Middleware {
	return func(ctx context.Context, c Call, next Handler) (bool, error) {
		if tracer == nil {
			return next(ctx)
		}
		var eventID string
		if c.Event != nil {
			eventID = c.Event.ID
		}
		ctx, span := tracer.StartProcessorSpan(ctx, c.ProcessorID, eventID)
		ok, err := next(ctx)
		tracer.EndProcessorSpan(span, ok, err)
		return ok, err
	}
}
