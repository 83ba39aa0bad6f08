package extension

import (
	"github.com/xraph/scribe"
)

// Replay backends.
const (
	ReplayMemory = "memory"
	ReplayRedis  = "redis"
)

// Config holds configuration for the Scribe Forge extension.
// Fields can be set programmatically via ExtOption functions or loaded from
// YAML configuration files (under "extensions.scribe" or "scribe" keys).
type Config struct {
	// Config embeds the core scribe configuration.
	scribe.Config `json:",inline" yaml:",inline" mapstructure:",squash"`

	// BasePath is the URL prefix for all scribe routes (default: "/notion").
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`

	// DisableRoutes disables automatic route registration with the Forge router.
	DisableRoutes bool `json:"disable_routes" yaml:"disable_routes" mapstructure:"disable_routes"`

	// Replay selects the replay guard backend: "", "memory" or "redis".
	// Empty disables the guard.
	Replay string `json:"replay" yaml:"replay" mapstructure:"replay"`

	// RedisClient is the name of a *redis.Client registered in the DI
	// container. When empty the default (unnamed) client is used.
	RedisClient string `json:"redis_client" yaml:"redis_client" mapstructure:"redis_client"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Config:   scribe.DefaultConfig(),
		BasePath: "/notion",
	}
}

// ToScribeOptions converts the embedded Config into scribe.Option values.
// Zero fields keep the scribe defaults.
func (c Config) ToScribeOptions() []scribe.Option {
	cfg := scribe.DefaultConfig()
	if c.ExecutorTimeout > 0 {
		cfg.ExecutorTimeout = c.ExecutorTimeout
	}
	if c.ReplayTTL > 0 {
		cfg.ReplayTTL = c.ReplayTTL
	}
	if c.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = c.MaxBodyBytes
	}
	cfg.WebhookSecret = c.WebhookSecret

	return []scribe.Option{scribe.WithConfig(cfg)}
}
