package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/scribe"

// Tracer provides OpenTelemetry tracing for Scribe.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// NewTracerWithProvider creates a tracer from tp. Useful in tests or when
// multiple providers are in use.
func NewTracerWithProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{
		tracer: tp.Tracer(tracerName),
	}
}

// StartDispatchSpan starts a span covering one dispatch.
func (t *Tracer) StartDispatchSpan(ctx context.Context, runID, eventID, eventType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scribe.dispatch",
		trace.WithAttributes(
			attribute.String("scribe.run_id", runID),
			attribute.String("scribe.event_id", eventID),
			attribute.String("scribe.event_type", eventType),
		),
	)
}

// EndDispatchSpan ends a dispatch span with result attributes.
func (t *Tracer) EndDispatchSpan(span trace.Span, matched, executed int) {
	span.SetAttributes(
		attribute.Int("scribe.matched", matched),
		attribute.Int("scribe.processors_executed", executed),
	)
	span.End()
}

// StartProcessorSpan starts a span for one executor run.
func (t *Tracer) StartProcessorSpan(ctx context.Context, processorID, eventID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scribe.processor",
		trace.WithAttributes(
			attribute.String("scribe.processor_id", processorID),
			attribute.String("scribe.event_id", eventID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndProcessorSpan ends a processor span with its outcome.
func (t *Tracer) EndProcessorSpan(span trace.Span, success bool, err error) {
	span.SetAttributes(attribute.Bool("scribe.success", success))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !success:
		span.SetStatus(codes.Error, "processor reported failure")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
