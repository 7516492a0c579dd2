package client

import (
	"crypto/tls"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Version is the SDK version reported in the default User-Agent.
const Version = "0.1.0"

// Defaults applied by DefaultConfig.
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 60 * time.Second
)

// DefaultUserAgent identifies this SDK to the bridge.
var DefaultUserAgent = "pup-sdk-go/" + Version

// Config is the immutable configuration of one Client.
type Config struct {
	// BaseURL of the bridge, e.g. https://pup.example.com. Required.
	BaseURL string
	// APIKey is sent as "Authorization: Bearer <APIKey>" when non-blank.
	APIKey string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string

	// DNSOverrides maps a hostname to literal IP addresses dialed in order
	// instead of resolving the name. Unparseable IPs are ignored.
	DNSOverrides map[string][]string

	// TLSConfig customizes certificate verification (e.g. private roots).
	// The server name always stays the URL host.
	TLSConfig *tls.Config

	// Logger receives debug logs. Defaults to a disabled logger.
	Logger zerolog.Logger
}

// DefaultConfig returns the defaults for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		UserAgent:      DefaultUserAgent,
		Logger:         zerolog.Nop(),
	}
}

// Option adjusts a Config before the client is built.
type Option func(*Config)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithTimeouts sets the connect and read timeouts.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = connect
		c.ReadTimeout = read
	}
}

// WithUserAgent replaces the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) { c.UserAgent = ua }
}

// WithDNSOverrides pins hostnames to literal IPs.
func WithDNSOverrides(overrides map[string][]string) Option {
	return func(c *Config) { c.DNSOverrides = overrides }
}

// WithTLSConfig sets the TLS configuration used for https base URLs.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Config) { c.TLSConfig = cfg }
}

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// normalize validates c and returns a cleaned copy.
func (c Config) normalize() (Config, error) {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return c, invalidConfig("config", "base URL must not be blank")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return c, invalidConfig("config", "base URL %q must be an absolute http(s) URL", c.BaseURL)
	}
	if c.ConnectTimeout <= 0 {
		return c, invalidConfig("config", "connect timeout must be positive, got %s", c.ConnectTimeout)
	}
	if c.ReadTimeout <= 0 {
		return c, invalidConfig("config", "read timeout must be positive, got %s", c.ReadTimeout)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = DefaultUserAgent
	}
	c.DNSOverrides = cleanOverrides(c.DNSOverrides)
	return c, nil
}
