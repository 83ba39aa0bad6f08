// Package dispatcher selects the processors that match an event and runs
// them concurrently, isolating failures and aggregating outcomes.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/id"
	"github.com/xraph/scribe/middleware"
	"github.com/xraph/scribe/observability"
	"github.com/xraph/scribe/predicate"
	"github.com/xraph/scribe/processor"
)

// ErrNoRegistry is returned when a Dispatcher is created without a registry.
var ErrNoRegistry = errors.New("scribe: processor registry is required")

// Config holds dispatcher configuration.
type Config struct {
	// ExecutorTimeout bounds each executor call. Zero disables it.
	ExecutorTimeout time.Duration

	// Middleware is applied inside the built-in chain, closest to the executor.
	Middleware []middleware.Middleware

	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// Outcome is the settled result of one executor.
type Outcome struct {
	ProcessorID string        `json:"processorId"`
	Name        string        `json:"name"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"durationNs"`
}

// Result summarizes one dispatch.
type Result struct {
	RunID     id.ID  `json:"runId"`
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`

	// ObjectType is the kind of the entity the event concerns.
	ObjectType string `json:"objectType"`

	// Processed is true iff ProcessorsExecuted > 0.
	Processed bool `json:"processed"`

	// ProcessorsExecuted counts executors that returned true without error.
	// Matched processors that failed are not counted.
	ProcessorsExecuted int `json:"processorsExecuted"`

	// Matched is the size of the matched set.
	Matched int `json:"matched"`

	// Outcomes holds one entry per matched processor in registry order.
	Outcomes []Outcome `json:"outcomes"`
}

// Dispatcher filters a registry per event and fans out to matched executors.
// It holds no per-event state and is safe for concurrent use.
type Dispatcher struct {
	registry *processor.Registry
	config   Config
	logger   *slog.Logger
	chain    middleware.Middleware
}

// New creates a dispatcher over reg.
func New(reg *processor.Registry, cfg Config, logger *slog.Logger) (*Dispatcher, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}

	mws := []middleware.Middleware{
		middleware.Recover(logger),
		middleware.Timeout(cfg.ExecutorTimeout),
		middleware.Tracing(cfg.Tracer),
		middleware.Metrics(cfg.Metrics),
		middleware.Logging(logger),
	}
	mws = append(mws, cfg.Middleware...)

	return &Dispatcher{
		registry: reg,
		config:   cfg,
		logger:   logger,
		chain:    middleware.Chain(mws...),
	}, nil
}

// Registry returns the registry the dispatcher filters.
func (d *Dispatcher) Registry() *processor.Registry { return d.registry }

// DispatchRaw decodes raw and dispatches the envelope.
func (d *Dispatcher) DispatchRaw(ctx context.Context, raw []byte) (Result, error) {
	evt, err := event.Decode(raw)
	if err != nil {
		return Result{}, err
	}
	return d.Dispatch(ctx, evt)
}

// Dispatch runs every processor whose Enabled and When predicates match evt
// and waits for all of them to settle.
//
// The only error is event.ErrInvalidPayload for a nil envelope, returned
// before any predicate is evaluated. Executor errors, panics and timeouts
// are recorded as failed outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *event.Envelope) (Result, error) {
	if evt == nil {
		return Result{}, fmt.Errorf("%w: nil envelope", event.ErrInvalidPayload)
	}

	res := Result{
		RunID:      id.NewRunID(),
		EventID:    evt.ID,
		EventType:  string(evt.Type),
		ObjectType: string(evt.Entity.Kind),
	}

	var span trace.Span
	if d.config.Tracer != nil {
		ctx, span = d.config.Tracer.StartDispatchSpan(ctx, res.RunID.String(), evt.ID, res.EventType)
	}

	matched := d.match(ctx, evt)
	res.Matched = len(matched)
	d.config.Metrics.RecordDispatch(len(matched))

	outcomes := make([]Outcome, len(matched))
	var wg sync.WaitGroup
	for i, p := range matched {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = d.run(ctx, res.RunID, p, evt)
		}()
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.Success {
			res.ProcessorsExecuted++
		}
	}
	res.Processed = res.ProcessorsExecuted > 0
	res.Outcomes = outcomes

	if span != nil {
		d.config.Tracer.EndDispatchSpan(span, res.Matched, res.ProcessorsExecuted)
	}

	d.logger.InfoContext(ctx, "event dispatched",
		"run_id", res.RunID.String(),
		"event_id", res.EventID,
		"event_type", res.EventType,
		"matched", res.Matched,
		"processors_executed", res.ProcessorsExecuted,
	)

	return res, nil
}

// Match returns the processors whose Enabled and When predicates both match
// evt, in registry order. No executor runs.
func (d *Dispatcher) Match(evt *event.Envelope) []processor.Processor {
	if evt == nil {
		return nil
	}
	return d.match(context.Background(), evt)
}

func (d *Dispatcher) match(ctx context.Context, evt *event.Envelope) []processor.Processor {
	var out []processor.Processor
	d.registry.Each(func(p processor.Processor) bool {
		if !d.eval(ctx, p.ID, "enabled", p.Enabled, evt) {
			return true
		}
		if !d.eval(ctx, p.ID, "when", p.When, evt) {
			return true
		}
		out = append(out, p)
		return true
	})
	return out
}

// eval runs one predicate. A panic counts as no match.
func (d *Dispatcher) eval(ctx context.Context, processorID, stage string, f predicate.Func, evt *event.Envelope) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WarnContext(ctx, "predicate panicked, treating as no match",
				"processor_id", processorID,
				"stage", stage,
				"event_id", evt.ID,
				"panic", r,
			)
			matched = false
		}
	}()
	return f(evt)
}

func (d *Dispatcher) run(ctx context.Context, runID id.ID, p processor.Processor, evt *event.Envelope) Outcome {
	call := middleware.Call{
		ProcessorID: p.ID,
		Name:        p.Name,
		RunID:       runID,
		Event:       evt,
	}

	start := time.Now()
	ok, err := d.chain(ctx, call, func(ctx context.Context) (bool, error) {
		return p.Executor(ctx, evt)
	})

	o := Outcome{
		ProcessorID: p.ID,
		Name:        p.Name,
		Success:     ok && err == nil,
		Duration:    time.Since(start),
	}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}
