// Package server provides the public entry point for initializing the Pup
// bridge service.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
//
// Tests and embedders can substitute the environment lookup and the
// completion provider:
//
//	srv, err := server.NewWithConfig(ctx, cfg, server.WithEnvLookup(lookup))
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/AlbertoRoca-web/pup-sdk/internal/api"
	"github.com/AlbertoRoca-web/pup-sdk/internal/api/handlers"
	"github.com/AlbertoRoca-web/pup-sdk/internal/completion"
	"github.com/AlbertoRoca-web/pup-sdk/internal/config"
	"github.com/AlbertoRoca-web/pup-sdk/internal/credentials"
	"github.com/AlbertoRoca-web/pup-sdk/internal/metrics"
	"github.com/AlbertoRoca-web/pup-sdk/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Config is the public configuration for the bridge server. Zero values keep
// whatever the environment configured.
type Config struct {
	Port            int
	Version         string
	LogLevel        string
	FailurePolicy   string
	UpstreamBaseURL string
	OTELEnabled     bool
}

// Server holds the initialized bridge.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Port is the port the server should listen on.
	Port int

	// LogLevel is the configured zerolog level name.
	LogLevel string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// Option customizes NewWithConfig.
type Option func(*options)

type options struct {
	lookup    credentials.LookupFunc
	completer completion.Completer
}

// WithEnvLookup replaces os.LookupEnv for provider secrets.
func WithEnvLookup(lookup func(key string) (string, bool)) Option {
	return func(o *options) { o.lookup = lookup }
}

// WithCompleter replaces the OpenAI-compatible completion driver.
func WithCompleter(c completion.Completer) Option {
	return func(o *options) { o.completer = c }
}

// LoadConfig reads the public configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &Config{
		Port:            cfg.Port,
		Version:         cfg.Version,
		LogLevel:        cfg.LogLevel,
		FailurePolicy:   string(cfg.FailurePolicy),
		UpstreamBaseURL: cfg.Upstream.BaseURL,
		OTELEnabled:     cfg.Telemetry.Enabled,
	}, nil
}

// New initializes the bridge from the environment and returns a ready Server.
func New(ctx context.Context, opts ...Option) (*Server, error) {
	pubCfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, pubCfg, opts...)
}

// NewWithConfig initializes the bridge with an explicit configuration.
func NewWithConfig(ctx context.Context, pubCfg *Config, opts ...Option) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(cfg, pubCfg); err != nil {
		return nil, err
	}

	o := options{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	chain := credentials.FromConfig(cfg.Credentials, o.lookup)
	log.Info().Strs("sources", chain.Sources()).Msg("✅ Credential chain initialized")

	completer := o.completer
	if completer == nil {
		completer = completion.NewOpenAIDriver(cfg.Upstream.BaseURL,
			completion.WithModel(cfg.Upstream.Model),
			completion.WithMaxTokens(cfg.Upstream.MaxTokens),
			completion.WithTimeout(cfg.Upstream.Timeout),
		)
		log.Info().
			Str("base_url", cfg.Upstream.BaseURL).
			Str("model", cfg.Upstream.Model).
			Msg("✅ Completion provider configured")
	}

	m := metrics.New()
	h := handlers.New(cfg, chain, completer, m)
	router := api.NewRouter(cfg, h, m)

	if !chain.Configured() {
		log.Warn().Msg("No completion API key in the environment; chat answers in demo mode")
	}

	return &Server{
		Handler:         router,
		Port:            cfg.Port,
		LogLevel:        cfg.LogLevel,
		ShutdownTimeout: cfg.ShutdownTimeout,
		ShutdownFunc:    shutdown,
	}, nil
}

func applyOverrides(cfg *config.Config, pub *Config) error {
	if pub == nil {
		return nil
	}
	if pub.Port > 0 {
		cfg.Port = pub.Port
	}
	if pub.Version != "" {
		cfg.Version = pub.Version
	}
	if pub.LogLevel != "" {
		cfg.LogLevel = pub.LogLevel
	}
	if pub.UpstreamBaseURL != "" {
		cfg.Upstream.BaseURL = pub.UpstreamBaseURL
	}
	if pub.OTELEnabled {
		cfg.Telemetry.Enabled = true
	}
	switch config.FailurePolicy(pub.FailurePolicy) {
	case "":
	case config.FailureSurface, config.FailureSoften:
		cfg.FailurePolicy = config.FailurePolicy(pub.FailurePolicy)
	default:
		return fmt.Errorf("invalid failure policy %q", pub.FailurePolicy)
	}
	return nil
}
