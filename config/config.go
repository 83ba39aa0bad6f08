// Package config loads the scribe server configuration from YAML or JSON.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/scribe/processors"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("scribe: invalid configuration")

// Duration is a time.Duration that decodes from strings like "90s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration.
type Config struct {
	Server     Server              `json:"server" yaml:"server"`
	Webhook    Webhook             `json:"webhook" yaml:"webhook"`
	AI         AI                  `json:"ai" yaml:"ai"`
	Platform   Platform            `json:"platform" yaml:"platform"`
	Log        Log                 `json:"log" yaml:"log"`
	Processors []processors.Config `json:"processors" yaml:"processors"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string   `json:"addr" yaml:"addr"`
	BasePath        string   `json:"base_path" yaml:"base_path"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	ExecutorTimeout Duration `json:"executor_timeout" yaml:"executor_timeout"`
}

// Webhook configures inbound verification.
type Webhook struct {
	// Secret is the signing secret. Empty disables verification.
	Secret string `json:"secret" yaml:"secret"`
	Replay Replay `json:"replay" yaml:"replay"`
}

// Replay configures the replay guard.
type Replay struct {
	// Backend is "", "memory" or "redis". Empty disables the guard.
	Backend   string   `json:"backend" yaml:"backend"`
	RedisAddr string   `json:"redis_addr" yaml:"redis_addr"`
	TTL       Duration `json:"ttl" yaml:"ttl"`
}

// AI configures the completion service client.
type AI struct {
	APIKey        string   `json:"api_key" yaml:"api_key"`
	BaseURL       string   `json:"base_url" yaml:"base_url"`
	Model         string   `json:"model" yaml:"model"`
	MaxTokens     int      `json:"max_tokens" yaml:"max_tokens"`
	Timeout       Duration `json:"timeout" yaml:"timeout"`
	RatePerSecond float64  `json:"rate_per_second" yaml:"rate_per_second"`
}

// Platform configures the platform API client.
type Platform struct {
	Token         string   `json:"token" yaml:"token"`
	BaseURL       string   `json:"base_url" yaml:"base_url"`
	Timeout       Duration `json:"timeout" yaml:"timeout"`
	RatePerSecond float64  `json:"rate_per_second" yaml:"rate_per_second"`
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns a configuration with every optional field set.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			BasePath:        "/notion",
			ShutdownTimeout: Duration(15 * time.Second),
			ExecutorTimeout: Duration(2 * time.Minute),
		},
		Webhook: Webhook{
			Replay: Replay{TTL: Duration(10 * time.Minute)},
		},
		AI: AI{
			Timeout:       Duration(60 * time.Second),
			RatePerSecond: 2,
		},
		Platform: Platform{
			Timeout:       Duration(30 * time.Second),
			RatePerSecond: 3,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		errs = append(errs, fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath))
	}

	switch c.Webhook.Replay.Backend {
	case "", "memory":
	case "redis":
		if c.Webhook.Replay.RedisAddr == "" {
			errs = append(errs, errors.New("webhook.replay.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("webhook.replay.backend %q is not supported", c.Webhook.Replay.Backend))
	}

	if len(c.Processors) > 0 {
		if c.AI.APIKey == "" {
			errs = append(errs, errors.New("ai.api_key is required when processors are configured"))
		}
		if c.Platform.Token == "" {
			errs = append(errs, errors.New("platform.token is required when processors are configured"))
		}
	}

	seen := make(map[string]bool, len(c.Processors))
	for _, p := range c.Processors {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("processor %q is declared twice", p.ID))
		}
		seen[p.ID] = true
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not supported", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
