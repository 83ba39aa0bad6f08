package scribe

import (
	"log/slog"
	"time"

	"github.com/xraph/scribe/middleware"
	"github.com/xraph/scribe/observability"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/replay"
)

// Option configures a Scribe instance.
type Option func(*Scribe) error

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(s *Scribe) error {
		s.config = cfg
		return nil
	}
}

// WithLogger sets the structured logger for the Scribe instance.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scribe) error {
		s.logger = logger
		return nil
	}
}

// WithProcessors appends processors to the registry.
func WithProcessors(procs ...processor.Processor) Option {
	return func(s *Scribe) error {
		s.procs = append(s.procs, procs...)
		return nil
	}
}

// WithModules appends the processors of each module to the registry.
func WithModules(modules ...processor.Module) Option {
	return func(s *Scribe) error {
		s.procs = append(s.procs, processor.Collect(modules...)...)
		return nil
	}
}

// WithMiddleware adds executor middleware inside the built-in chain.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Scribe) error {
		s.middleware = append(s.middleware, mws...)
		return nil
	}
}

// WithMetrics enables dispatch metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scribe) error {
		s.metrics = m
		return nil
	}
}

// WithTracer enables dispatch tracing.
func WithTracer(t *observability.Tracer) Option {
	return func(s *Scribe) error {
		s.tracer = t
		return nil
	}
}

// WithReplayGuard rejects webhooks whose signature was already seen.
func WithReplayGuard(g replay.Guard) Option {
	return func(s *Scribe) error {
		s.replay = g
		return nil
	}
}

// WithWebhookSecret sets the signing secret used to verify webhooks.
func WithWebhookSecret(secret string) Option {
	return func(s *Scribe) error {
		s.config.WebhookSecret = secret
		return nil
	}
}

// WithExecutorTimeout bounds each executor call.
func WithExecutorTimeout(d time.Duration) Option {
	return func(s *Scribe) error {
		s.config.ExecutorTimeout = d
		return nil
	}
}
