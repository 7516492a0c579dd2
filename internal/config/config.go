package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// FailurePolicy decides how the bridge reports upstream completion failures.
type FailurePolicy string

const (
	// FailureSurface reports upstream failures as HTTP 502 with an error body.
	FailureSurface FailurePolicy = "surface"
	// FailureSoften answers upstream failures with an in-character apology.
	FailureSoften FailurePolicy = "soften"
)

// Config holds all configuration for the Pup bridge.
type Config struct {
	Port            int           `env:"PUP_PORT" envDefault:"8080"`
	Version         string        `env:"PUP_VERSION" envDefault:"0.1.0"`
	LogLevel        string        `env:"PUP_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"PUP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"PUP_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	FailurePolicy   FailurePolicy `env:"PUP_FAILURE_POLICY" envDefault:"surface"`

	Credentials CredentialsConfig
	Upstream    UpstreamConfig
	Telemetry   TelemetryConfig
}

// CredentialsConfig names the environment variables holding completion
// provider secrets. The values themselves are read per request, never here.
type CredentialsConfig struct {
	PrimaryEnv   string `env:"PUP_PRIMARY_KEY_ENV" envDefault:"SYN_API_KEY"`
	SecondaryEnv string `env:"PUP_SECONDARY_KEY_ENV" envDefault:"OPEN_API_KEY"`
}

type UpstreamConfig struct {
	BaseURL   string        `env:"PUP_UPSTREAM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model     string        `env:"PUP_UPSTREAM_MODEL" envDefault:"gpt-4o-mini"`
	Timeout   time.Duration `env:"PUP_UPSTREAM_TIMEOUT" envDefault:"60s"`
	MaxTokens int           `env:"PUP_UPSTREAM_MAX_TOKENS" envDefault:"1024"`
}

type TelemetryConfig struct {
	Enabled      bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	ServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"pup-bridge"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration Load would produce from an empty
// environment.
func Default() *Config {
	cfg := &Config{}
	_ = env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}})
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	c.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upstream.BaseURL), "/")
	c.Credentials.PrimaryEnv = strings.TrimSpace(c.Credentials.PrimaryEnv)
	c.Credentials.SecondaryEnv = strings.TrimSpace(c.Credentials.SecondaryEnv)

	switch FailurePolicy(strings.ToLower(string(c.FailurePolicy))) {
	case FailureSurface, "":
		c.FailurePolicy = FailureSurface
	case FailureSoften:
		c.FailurePolicy = FailureSoften
	default:
		return fmt.Errorf("invalid PUP_FAILURE_POLICY %q (want %q or %q)", c.FailurePolicy, FailureSurface, FailureSoften)
	}

	if c.Port <= 0 {
		return fmt.Errorf("invalid PUP_PORT %d", c.Port)
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 60 * time.Second
	}
	if c.Upstream.MaxTokens <= 0 {
		c.Upstream.MaxTokens = 1024
	}
	return nil
}
