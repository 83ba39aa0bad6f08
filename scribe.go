package scribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/scribe/dispatcher"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/middleware"
	"github.com/xraph/scribe/observability"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/replay"
	"github.com/xraph/scribe/signature"
)

// Scribe is the root webhook router.
type Scribe struct {
	config     Config
	procs      []processor.Processor
	middleware []middleware.Middleware
	registry   *processor.Registry
	dispatcher *dispatcher.Dispatcher
	verifier   *signature.Verifier
	replay     replay.Guard
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     *slog.Logger
}

// New creates a Scribe with the given options. The registry is built once
// from the processors supplied through WithProcessors and WithModules and
// cannot change afterwards.
func New(opts ...Option) (*Scribe, error) {
	s := &Scribe{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	reg, err := processor.NewRegistry(s.procs...)
	if err != nil {
		return nil, fmt.Errorf("scribe: build registry: %w", err)
	}
	s.registry = reg
	s.procs = nil

	s.dispatcher, err = dispatcher.New(reg, dispatcher.Config{
		ExecutorTimeout: s.config.ExecutorTimeout,
		Middleware:      s.middleware,
		Metrics:         s.metrics,
		Tracer:          s.tracer,
	}, s.logger)
	if err != nil {
		return nil, err
	}

	s.verifier = signature.NewVerifier(s.config.WebhookSecret)
	if !s.verifier.Enabled() {
		s.logger.Warn("webhook signature verification is disabled")
	}
	return s, nil
}

// Receipt describes how an inbound webhook was handled.
type Receipt struct {
	// Verification is true for the subscription handshake request.
	Verification bool

	// Ignored is true when the event type is not recognized.
	Ignored bool

	// EventType is the raw type of an ignored event.
	EventType string

	// Result is set when the event was dispatched.
	Result *dispatcher.Result
}

// Receive runs the full inbound pipeline for a raw webhook body:
//  1. Answer the verification handshake without dispatching.
//  2. Verify the signature header when a secret is configured.
//  3. Reject a signature already seen within the replay window.
//  4. Decode the envelope. Unknown types are ignored, not rejected.
//  5. Dispatch to matching processors.
func (s *Scribe) Receive(ctx context.Context, body []byte, sig string) (Receipt, error) {
	s.metrics.RecordReceived()

	// The handshake is sent before the integration knows its secret, so it
	// cannot be signed.
	if token, ok := event.VerificationToken(body); ok {
		s.logger.WarnContext(ctx, "received webhook verification token; configure it as the webhook secret",
			"verification_token", token,
		)
		return Receipt{Verification: true}, nil
	}

	if err := s.verifier.Check(body, sig); err != nil {
		s.metrics.RecordRejected("signature")
		return Receipt{}, err
	}

	if s.replay != nil && sig != "" {
		if err := s.replay.Claim(ctx, replay.Key(sig), s.replayTTL()); err != nil {
			if errors.Is(err, replay.ErrReplayedRequest) {
				s.metrics.RecordRejected("replay")
			}
			return Receipt{}, err
		}
	}

	evt, err := event.Decode(body)
	if err != nil {
		if errors.Is(err, event.ErrUnknownEventType) {
			s.metrics.RecordIgnored()
			evtType := event.RawType(body)
			s.logger.InfoContext(ctx, "ignoring unknown event type", "type", evtType)
			return Receipt{Ignored: true, EventType: evtType}, nil
		}
		s.metrics.RecordRejected("payload")
		return Receipt{}, err
	}

	res, err := s.dispatcher.Dispatch(ctx, evt)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Result: &res}, nil
}

// Dispatch runs the processors matching evt and waits for all of them.
func (s *Scribe) Dispatch(ctx context.Context, evt *event.Envelope) (dispatcher.Result, error) {
	return s.dispatcher.Dispatch(ctx, evt)
}

// DispatchRaw decodes raw and dispatches the envelope without signature or
// replay checks.
func (s *Scribe) DispatchRaw(ctx context.Context, raw []byte) (dispatcher.Result, error) {
	return s.dispatcher.DispatchRaw(ctx, raw)
}

// Match returns the processors that would run for evt, without running them.
func (s *Scribe) Match(evt *event.Envelope) []processor.Processor {
	return s.dispatcher.Match(evt)
}

// Registry returns the immutable processor registry.
func (s *Scribe) Registry() *processor.Registry { return s.registry }

// Config returns the effective configuration.
func (s *Scribe) Config() Config { return s.config }

// Logger returns the structured logger.
func (s *Scribe) Logger() *slog.Logger { return s.logger }

// Ping checks the replay guard backend, if any.
func (s *Scribe) Ping(ctx context.Context) error {
	if s.replay == nil {
		return nil
	}
	return s.replay.Ping(ctx)
}

// Close releases the replay guard.
func (s *Scribe) Close() error {
	if s.replay == nil {
		return nil
	}
	return s.replay.Close()
}

func (s *Scribe) replayTTL() time.Duration {
	if s.config.ReplayTTL > 0 {
		return s.config.ReplayTTL
	}
	return replay.DefaultTTL
}
