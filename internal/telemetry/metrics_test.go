package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("loaded", 10*time.Millisecond)
	m.ObserveFetch("loaded", 20*time.Millisecond)
	m.ObserveFetch("unauthorized", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues("loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("unauthorized")))
}

func TestSessionInvalidated(t *testing.T) {
	m := New()
	m.SessionInvalidated("expired")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.invalidations.WithLabelValues("expired")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveFetch("loaded", time.Second)
		m.SessionInvalidated("expired")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveFetch("failed", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `metrics_dashboard_fetch_total{outcome="failed"} 1`)
}
