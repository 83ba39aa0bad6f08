package scribe

import "time"

// Config holds the configuration for a Scribe instance.
type Config struct {
	// ExecutorTimeout bounds each processor executor call. Zero disables it.
	ExecutorTimeout time.Duration `json:"executor_timeout" yaml:"executor_timeout" mapstructure:"executor_timeout"`

	// WebhookSecret verifies the signature header of inbound webhooks.
	// Empty disables verification.
	WebhookSecret string `json:"webhook_secret" yaml:"webhook_secret" mapstructure:"webhook_secret"`

	// ReplayTTL is how long a seen signature is remembered by the replay guard.
	ReplayTTL time.Duration `json:"replay_ttl" yaml:"replay_ttl" mapstructure:"replay_ttl"`

	// MaxBodyBytes caps the webhook request body size.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ExecutorTimeout: 2 * time.Minute,
		ReplayTTL:       10 * time.Minute,
		MaxBodyBytes:    1 << 20,
	}
}
