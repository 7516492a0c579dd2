package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbertoRoca-web/pup-sdk/internal/metrics"
)

func TestObserveChat(t *testing.T) {
	m := metrics.New()

	m.ObserveChat(metrics.OutcomeDemo)
	m.ObserveChat(metrics.OutcomeDemo)
	m.ObserveChat(metrics.OutcomeAnswered)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatOutcomes.WithLabelValues(metrics.OutcomeDemo)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatOutcomes.WithLabelValues(metrics.OutcomeAnswered)))
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New()

	m.ObserveRequest(http.MethodGet, "/health", "200", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.ObserveChat(metrics.OutcomeDemo)

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ChatOutcomes.WithLabelValues(metrics.OutcomeDemo)))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.ObserveUpstream(250 * time.Millisecond)
	m.ObserveChat(metrics.OutcomeAnswered)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "pup_bridge_upstream_duration_seconds")
	assert.Contains(t, string(body), `pup_bridge_chat_outcomes_total{outcome="answered"} 1`)
}
