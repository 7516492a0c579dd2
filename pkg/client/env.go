package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

type envConfig struct {
	BaseURL        string        `env:"PUP_BASE_URL" envDefault:"http://localhost:8080"`
	APIKey         string        `env:"PUP_API_KEY"`
	SynKey         string        `env:"SYN_API_KEY"`
	OpenKey        string        `env:"OPEN_API_KEY"`
	ConnectTimeout time.Duration `env:"PUP_CONNECT_TIMEOUT" envDefault:"10s"`
	ReadTimeout    time.Duration `env:"PUP_READ_TIMEOUT" envDefault:"60s"`
	UserAgent      string        `env:"PUP_USER_AGENT"`
	DNSOverrides   string        `env:"PUP_DNS_OVERRIDES"`
}

// ConfigFromEnv builds a Config from PUP_* environment variables.
//
// The API key is the first non-blank of PUP_API_KEY, SYN_API_KEY and
// OPEN_API_KEY. PUP_DNS_OVERRIDES may name a YAML overrides file (see
// LoadDNSOverrides).
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse client env: %w", err)
	}

	cfg := DefaultConfig(ec.BaseURL)
	cfg.ConnectTimeout = ec.ConnectTimeout
	cfg.ReadTimeout = ec.ReadTimeout
	if ua := strings.TrimSpace(ec.UserAgent); ua != "" {
		cfg.UserAgent = ua
	}
	for _, key := range []string{ec.APIKey, ec.SynKey, ec.OpenKey} {
		if k := strings.TrimSpace(key); k != "" {
			cfg.APIKey = k
			break
		}
	}
	if path := strings.TrimSpace(ec.DNSOverrides); path != "" {
		overrides, err := LoadDNSOverrides(path)
		if err != nil {
			return Config{}, err
		}
		cfg.DNSOverrides = overrides
	}
	return cfg, nil
}
