// Package credentials resolves the completion-provider secret used for a
// single chat request.
//
// Sources are consulted in priority order:
//   - HeaderSource: an inbound "Authorization: Bearer <token>" header
//   - EnvSource: the preferred environment secret
//   - EnvSource: the secondary environment secret
//
// Nothing is cached. Environment sources read the environment at call time,
// so secrets injected or rotated between deployments are picked up without a
// restart.
package credentials

import (
	"net/http"
	"strings"
)

// Credential is a resolved provider secret and the source that produced it.
type Credential struct {
	Token  string
	Source string
}

// Source yields a provider secret for a request.
//
// Lookup returns ("", false) when the source has nothing to offer; the chain
// then moves on to the next source.
type Source interface {
	// Name identifies the source in logs (never the secret itself).
	Name() string

	// Lookup returns the secret for r. r may be nil for request-independent
	// lookups such as status reporting.
	Lookup(r *http.Request) (string, bool)

	// RequestScoped reports whether the source depends on the inbound request.
	RequestScoped() bool
}

// Chain walks sources in registration order until one yields a secret.
// A Chain is immutable once built and safe for concurrent use.
type Chain struct {
	sources []Source
}

// NewChain builds a chain from sources in priority order.
func NewChain(sources ...Source) *Chain {
	cp := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			cp = append(cp, s)
		}
	}
	return &Chain{sources: cp}
}

// Resolve returns the first secret any source yields for r.
func (c *Chain) Resolve(r *http.Request) (Credential, bool) {
	for _, s := range c.sources {
		if token, ok := s.Lookup(r); ok {
			return Credential{Token: token, Source: s.Name()}, true
		}
	}
	return Credential{}, false
}

// Configured reports whether a request-independent source currently yields
// a secret. This is the bridge's notion of "not in demo mode".
func (c *Chain) Configured() bool {
	for _, s := range c.sources {
		if s.RequestScoped() {
			continue
		}
		if _, ok := s.Lookup(nil); ok {
			return true
		}
	}
	return false
}

// Sources returns the names of all sources, in priority order.
func (c *Chain) Sources() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

func clean(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}
