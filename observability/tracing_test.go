package observability_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xraph/scribe/observability"
)

func setupTestTracer() (*tracetest.SpanRecorder, *observability.Tracer) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, observability.NewTracerWithProvider(tp)
}

func TestDispatchSpan(t *testing.T) {
	sr, tr := setupTestTracer()

	_, span := tr.StartDispatchSpan(context.Background(), "run_1", "evt_1", "page.created")
	tr.EndDispatchSpan(span, 2, 1)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "scribe.dispatch" {
		t.Errorf("span name = %q", spans[0].Name())
	}

	attrs := map[string]bool{}
	for _, a := range spans[0].Attributes() {
		attrs[string(a.Key)] = true
	}
	for _, k := range []string{"scribe.run_id", "scribe.event_type", "scribe.matched", "scribe.processors_executed"} {
		if !attrs[k] {
			t.Errorf("missing attribute %q", k)
		}
	}
}

func TestProcessorSpanStatus(t *testing.T) {
	sr, tr := setupTestTracer()

	_, ok := tr.StartProcessorSpan(context.Background(), "summarize", "evt_1")
	tr.EndProcessorSpan(ok, true, nil)

	_, failed := tr.StartProcessorSpan(context.Background(), "classify", "evt_1")
	tr.EndProcessorSpan(failed, false, errors.New("boom"))

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("first span status = %v, want Ok", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("second span status = %v, want Error", spans[1].Status().Code)
	}
}
