// Command scribe runs the webhook router as a standalone HTTP server.
//
//	scribe -config scribe.yaml
//
// The config path may also be given in SCRIBE_CONFIG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gu "github.com/xraph/go-utils/metrics"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/ai"
	"github.com/xraph/scribe/api"
	"github.com/xraph/scribe/config"
	"github.com/xraph/scribe/observability"
	"github.com/xraph/scribe/platform"
	"github.com/xraph/scribe/processors"
	"github.com/xraph/scribe/ratelimit"
	"github.com/xraph/scribe/replay"
	memoryguard "github.com/xraph/scribe/replay/memory"
	redisguard "github.com/xraph/scribe/replay/redis"
	"github.com/xraph/scribe/rule"
)

func main() {
	os.Exit(Run(os.Args[1:], os.Stderr))
}

// Run is the entrypoint for testing.
func Run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("scribe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("SCRIBE_CONFIG"), "path to a .yaml, .yml or .json config file")
	checkOnly := fs.Bool("check", false, "validate the configuration and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.FromFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "scribe: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "scribe: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Log, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, closeFn, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer closeFn()

	if *checkOnly {
		fmt.Fprintln(stderr, "configuration ok")
		return 0
	}

	if err := serve(ctx, cfg.Server, handler, logger); err != nil {
		logger.Error("server failed", "error", err)
		return 1
	}
	return 0
}

// build wires the clients, processors and Scribe from cfg.
func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (http.Handler, func(), error) {
	guard, err := newReplayGuard(ctx, cfg.Webhook.Replay)
	if err != nil {
		return nil, nil, err
	}

	opts := []scribe.Option{
		scribe.WithLogger(logger),
		scribe.WithConfig(scribe.Config{
			ExecutorTimeout: cfg.Server.ExecutorTimeout.Std(),
			WebhookSecret:   cfg.Webhook.Secret,
			ReplayTTL:       cfg.Webhook.Replay.TTL.Std(),
			MaxBodyBytes:    scribe.DefaultConfig().MaxBodyBytes,
		}),
		scribe.WithMetrics(observability.NewMetrics(gu.NewMetricsCollector("scribe"))),
		scribe.WithTracer(observability.NewTracer()),
	}
	if guard != nil {
		opts = append(opts, scribe.WithReplayGuard(guard))
	}

	if len(cfg.Processors) > 0 {
		module, err := newProcessorModule(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, scribe.WithModules(module))
	}

	s, err := scribe.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("scribe configured",
		"processors", s.Registry().Len(),
		"replay", cfg.Webhook.Replay.Backend,
		"base_path", cfg.Server.BasePath,
	)

	closeFn := func() {
		if err := s.Close(); err != nil {
			logger.Warn("close replay guard", "error", err)
		}
	}
	return api.NewHandler(s, cfg.Server.BasePath, logger), closeFn, nil
}

func newProcessorModule(cfg config.Config, logger *slog.Logger) (*processors.Module, error) {
	limiter := ratelimit.New()

	aiOpts := []ai.Option{ai.WithRateLimit(limiter.For("ai", cfg.AI.RatePerSecond))}
	if cfg.AI.BaseURL != "" {
		aiOpts = append(aiOpts, ai.WithBaseURL(cfg.AI.BaseURL))
	}
	if cfg.AI.Model != "" {
		aiOpts = append(aiOpts, ai.WithModel(cfg.AI.Model))
	}
	if cfg.AI.MaxTokens > 0 {
		aiOpts = append(aiOpts, ai.WithMaxTokens(cfg.AI.MaxTokens))
	}
	if cfg.AI.Timeout > 0 {
		aiOpts = append(aiOpts, ai.WithTimeout(cfg.AI.Timeout.Std()))
	}

	platformOpts := []platform.Option{platform.WithRateLimit(limiter.For("platform", cfg.Platform.RatePerSecond))}
	if cfg.Platform.BaseURL != "" {
		platformOpts = append(platformOpts, platform.WithBaseURL(cfg.Platform.BaseURL))
	}
	if cfg.Platform.Timeout > 0 {
		platformOpts = append(platformOpts, platform.WithTimeout(cfg.Platform.Timeout.Std()))
	}

	rules, err := rule.NewEngine(rule.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return processors.NewModule(cfg.Processors, processors.Deps{
		AI:       ai.NewClient(cfg.AI.APIKey, aiOpts...),
		Platform: platform.NewClient(cfg.Platform.Token, platformOpts...),
		Rules:    rules,
		Logger:   logger,
	})
}

func newReplayGuard(ctx context.Context, cfg config.Replay) (replay.Guard, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "memory":
		return memoryguard.New(), nil
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		g := redisguard.New(rdb)
		if err := g.Ping(ctx); err != nil {
			_ = g.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported replay backend %q", cfg.Backend)
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, cfg config.Server, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	timeout := cfg.ShutdownTimeout.Std()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
