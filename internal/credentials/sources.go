package credentials

import (
	"net/http"
	"os"
	"strings"

	"github.com/AlbertoRoca-web/pup-sdk/internal/config"
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// HeaderSource takes the secret from "Authorization: Bearer <token>".
type HeaderSource struct{}

func (HeaderSource) Name() string        { return "header" }
func (HeaderSource) RequestScoped() bool { return true }

func (HeaderSource) Lookup(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	auth := r.Header.Get("Authorization")
	if len(auth) < len("Bearer ") || !strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	return clean(auth[len("Bearer "):])
}

// EnvSource reads a secret from a named environment variable.
type EnvSource struct {
	Key    string
	lookup LookupFunc
}

// NewEnvSource creates a source for key. A nil lookup means os.LookupEnv.
func NewEnvSource(key string, lookup LookupFunc) *EnvSource {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvSource{Key: key, lookup: lookup}
}

func (s *EnvSource) Name() string        { return "env:" + s.Key }
func (s *EnvSource) RequestScoped() bool { return false }

func (s *EnvSource) Lookup(_ *http.Request) (string, bool) {
	if s.Key == "" {
		return "", false
	}
	v, ok := s.lookup(s.Key)
	if !ok {
		return "", false
	}
	return clean(v)
}

// FromConfig builds the bridge chain: inbound bearer header, then the
// primary and secondary environment secrets named in cfg.
func FromConfig(cfg config.CredentialsConfig, lookup LookupFunc) *Chain {
	sources := []Source{HeaderSource{}}
	if cfg.PrimaryEnv != "" {
		sources = append(sources, NewEnvSource(cfg.PrimaryEnv, lookup))
	}
	if cfg.SecondaryEnv != "" && cfg.SecondaryEnv != cfg.PrimaryEnv {
		sources = append(sources, NewEnvSource(cfg.SecondaryEnv, lookup))
	}
	return NewChain(sources...)
}

// MapLookup adapts a static map to a LookupFunc.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}
