package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// cleanOverrides lowercases hostnames and keeps only literal IPs. Hosts left
// without any usable address are dropped.
func cleanOverrides(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for host, ips := range in {
		host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
		if host == "" {
			continue
		}
		for _, raw := range ips {
			ip := net.ParseIP(strings.TrimSpace(raw))
			if ip == nil {
				continue
			}
			out[host] = append(out[host], ip.String())
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// overrideDialer dials pinned addresses for overridden hosts and falls back
// to the regular resolver for everything else. TLS still sees the original
// hostname because net/http derives SNI from the request URL, not from the
// dialed address.
type overrideDialer struct {
	dialer *net.Dialer
	hosts  map[string][]string
	log    zerolog.Logger
}

func newOverrideDialer(timeout time.Duration, hosts map[string][]string, logger zerolog.Logger) *overrideDialer {
	return &overrideDialer{
		dialer: &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second},
		hosts:  hosts,
		log:    logger,
	}
}

func (d *overrideDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return d.dialer.DialContext(ctx, network, addr)
	}
	ips, ok := d.hosts[strings.ToLower(host)]
	if !ok {
		return d.dialer.DialContext(ctx, network, addr)
	}

	var errs []error
	for _, ip := range ips {
		target := net.JoinHostPort(ip, port)
		conn, err := d.dialer.DialContext(ctx, network, target)
		if err == nil {
			d.log.Debug().Str("host", host).Str("addr", target).Msg("Dialed DNS override")
			return conn, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("dial %s via overrides: %w", host, errors.Join(errs...))
}

// newTransport builds the HTTP transport for cfg.
func newTransport(cfg Config) *http.Transport {
	t := &http.Transport{
		DialContext:           newOverrideDialer(cfg.ConnectTimeout, cfg.DNSOverrides, cfg.Logger).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		ExpectContinueTimeout: time.Second,
	}
	if len(cfg.DNSOverrides) == 0 {
		t.Proxy = http.ProxyFromEnvironment
	}
	if cfg.TLSConfig != nil {
		t.TLSClientConfig = cfg.TLSConfig.Clone()
	}
	return t
}
