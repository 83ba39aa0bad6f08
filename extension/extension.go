// Package extension provides the Forge extension adapter for Scribe.
//
// It implements the forge.Extension interface to integrate Scribe into a
// Forge application. Register builds the Scribe instance with metrics from
// the app's metric factory, resolves a redis client from the DI container
// when the redis replay backend is selected, provides *scribe.Scribe to the
// container and mounts the admin routes.
//
// Configuration can be provided programmatically via ExtOption functions or
// via YAML configuration files under "extensions.scribe" or "scribe" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/api"
	"github.com/xraph/scribe/observability"
	"github.com/xraph/scribe/replay"
	memoryguard "github.com/xraph/scribe/replay/memory"
	redisguard "github.com/xraph/scribe/replay/redis"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "scribe"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Webhook router for document platform events"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Scribe as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config   Config
	scribe   *scribe.Scribe
	forgeAPI *api.ForgeAPI
	handler  *api.Handler
	guard    replay.Guard
	logger   *slog.Logger
	opts     []scribe.Option
}

// New creates a Scribe Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scribe returns the underlying Scribe instance.
// This is nil until Register is called.
func (e *Extension) Scribe() *scribe.Scribe { return e.scribe }

// API returns the Forge admin API.
func (e *Extension) API() *api.ForgeAPI { return e.forgeAPI }

// Register implements [forge.Extension]. It builds Scribe and optionally
// registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.init(fapp); err != nil {
		return err
	}

	// Register Scribe in the DI container so other extensions can use it.
	if err := vessel.Provide(fapp.Container(), func() (*scribe.Scribe, error) {
		return e.scribe, nil
	}); err != nil {
		return fmt.Errorf("scribe: register scribe in container: %w", err)
	}

	return nil
}

// init builds the replay guard and the Scribe instance.
func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	if e.guard == nil {
		guard, err := e.buildReplayGuard(fapp)
		if err != nil {
			return fmt.Errorf("scribe: %w", err)
		}
		e.guard = guard
	}

	opts := make([]scribe.Option, 0, len(e.opts)+5)
	opts = append(opts, e.config.ToScribeOptions()...)
	opts = append(opts,
		scribe.WithLogger(logger),
		scribe.WithMetrics(observability.NewMetrics(fapp.Metrics())),
		scribe.WithTracer(observability.NewTracer()),
	)
	if e.guard != nil {
		opts = append(opts, scribe.WithReplayGuard(e.guard))
	}
	opts = append(opts, e.opts...)

	s, err := scribe.New(opts...)
	if err != nil {
		return fmt.Errorf("scribe: create scribe: %w", err)
	}
	e.scribe = s

	e.handler = api.NewHandler(s, e.config.BasePath, logger)
	e.forgeAPI = api.NewForgeAPI(s, e.config.BasePath, e.Logger())

	if !e.config.DisableRoutes {
		e.forgeAPI.RegisterRoutes(fapp.Router())
	}

	return nil
}

// buildReplayGuard constructs the configured replay backend.
func (e *Extension) buildReplayGuard(fapp forge.App) (replay.Guard, error) {
	switch e.config.Replay {
	case "":
		return nil, nil
	case ReplayMemory:
		return memoryguard.New(), nil
	case ReplayRedis:
		rdb, err := e.resolveRedis(fapp)
		if err != nil {
			return nil, err
		}
		return redisguard.New(rdb), nil
	default:
		return nil, fmt.Errorf("unsupported replay backend %q", e.config.Replay)
	}
}

// resolveRedis resolves a *redis.Client from the DI container.
// If RedisClient is set, it looks up the named client; otherwise it uses the default.
func (e *Extension) resolveRedis(fapp forge.App) (*goredis.Client, error) {
	if e.config.RedisClient != "" {
		rdb, err := vessel.InjectNamed[*goredis.Client](fapp.Container(), e.config.RedisClient)
		if err != nil {
			return nil, fmt.Errorf("redis client %q not found in container: %w", e.config.RedisClient, err)
		}
		return rdb, nil
	}
	rdb, err := vessel.Inject[*goredis.Client](fapp.Container())
	if err != nil {
		return nil, fmt.Errorf("default redis client not found in container: %w", err)
	}
	return rdb, nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.scribe == nil {
		return errors.New("scribe: extension not initialized")
	}
	if err := e.scribe.Ping(ctx); err != nil {
		return fmt.Errorf("scribe: replay guard unavailable: %w", err)
	}
	e.MarkStarted()
	return nil
}

// Stop releases the replay guard.
func (e *Extension) Stop(_ context.Context) error {
	if e.scribe == nil {
		e.MarkStopped()
		return nil
	}
	err := e.scribe.Close()
	e.MarkStopped()
	return err
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.scribe == nil {
		return errors.New("scribe: extension not initialized")
	}
	return e.scribe.Ping(ctx)
}

// Handler returns the net/http handler serving the webhook and admin routes.
// Mount it on the server that receives platform webhooks.
func (e *Extension) Handler() http.Handler {
	if e.handler == nil {
		return http.NotFoundHandler()
	}
	return e.handler
}

// RegisterRoutes registers the admin routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) {
	if e.forgeAPI != nil {
		e.forgeAPI.RegisterRoutes(router)
	}
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("scribe: configuration is required but not found in config files; " +
				"ensure 'extensions.scribe' or 'scribe' key exists in your config")
		}
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("scribe: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("base_path", e.config.BasePath),
		forge.F("replay", e.config.Replay),
		forge.F("signature_verification", e.config.WebhookSecret != ""),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.scribe", "scribe"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("scribe: loaded config from file", forge.F("key", key))
			return cfg, true
		}
		e.Logger().Warn("scribe: failed to bind config", forge.F("key", key))
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.ExecutorTimeout == 0 {
		cfg.ExecutorTimeout = defaults.ExecutorTimeout
	}
	if cfg.ReplayTTL == 0 {
		cfg.ReplayTTL = defaults.ReplayTTL
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if yamlConfig.BasePath == "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.WebhookSecret == "" {
		yamlConfig.WebhookSecret = programmaticConfig.WebhookSecret
	}
	if yamlConfig.Replay == "" {
		yamlConfig.Replay = programmaticConfig.Replay
	}
	if yamlConfig.RedisClient == "" {
		yamlConfig.RedisClient = programmaticConfig.RedisClient
	}
	if yamlConfig.ExecutorTimeout == 0 {
		yamlConfig.ExecutorTimeout = programmaticConfig.ExecutorTimeout
	}
	if yamlConfig.ReplayTTL == 0 {
		yamlConfig.ReplayTTL = programmaticConfig.ReplayTTL
	}
	return e.mergeWithDefaults(yamlConfig)
}
