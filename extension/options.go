package extension

import (
	"log/slog"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/middleware"
	"github.com/xraph/scribe/processor"
	"github.com/xraph/scribe/replay"
)

// ExtOption configures the Scribe Forge extension.
type ExtOption func(*Extension)

// WithProcessors registers processors.
func WithProcessors(procs ...processor.Processor) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, scribe.WithProcessors(procs...))
	}
}

// WithModules registers the processors of each module.
func WithModules(modules ...processor.Module) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, scribe.WithModules(modules...))
	}
}

// WithMiddleware adds executor middleware.
func WithMiddleware(mws ...middleware.Middleware) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, scribe.WithMiddleware(mws...))
	}
}

// WithReplayGuard sets the replay guard directly, overriding Config.Replay.
func WithReplayGuard(g replay.Guard) ExtOption {
	return func(e *Extension) {
		e.guard = g
	}
}

// WithBasePath sets the URL prefix for all scribe routes.
func WithBasePath(path string) ExtOption {
	return func(e *Extension) {
		e.config.BasePath = path
	}
}

// WithConfig sets the extension configuration directly.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithScribeOption appends a raw scribe.Option to the extension.
func WithScribeOption(opt scribe.Option) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, opt)
	}
}

// WithLogger sets the logger passed to scribe.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables automatic route registration.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithRequireConfig makes Register fail when no config key is present.
func WithRequireConfig() ExtOption {
	return func(e *Extension) {
		e.config.RequireConfig = true
	}
}
