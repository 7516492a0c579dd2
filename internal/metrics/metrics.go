// Package metrics exposes Prometheus instrumentation for the Pup bridge.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat outcomes recorded by ChatOutcomes.
const (
	OutcomeAnswered    = "answered"
	OutcomeDemo        = "demo"
	OutcomeNoContent   = "no_content"
	OutcomeUpstreamErr = "upstream_error"
	OutcomeUnreachable = "upstream_unreachable"
	OutcomeBadRequest  = "bad_request"
)

// Metrics holds the bridge collectors on a private registry so that several
// bridges (e.g. in tests) never collide on the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ChatOutcomes     *prometheus.CounterVec
	UpstreamDuration prometheus.Histogram
}

// New builds a fresh registry with Go and process collectors attached.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pup",
				Subsystem: "bridge",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pup",
				Subsystem: "bridge",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"route"},
		),
		ChatOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pup",
				Subsystem: "bridge",
				Name:      "chat_outcomes_total",
				Help:      "Chat requests by outcome",
			},
			[]string{"outcome"},
		),
		UpstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pup",
				Subsystem: "bridge",
				Name:      "upstream_duration_seconds",
				Help:      "Completion provider call duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveChat records the outcome of one chat request.
func (m *Metrics) ObserveChat(outcome string) {
	m.ChatOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the duration of one completion call.
func (m *Metrics) ObserveUpstream(d time.Duration) {
	m.UpstreamDuration.Observe(d.Seconds())
}
