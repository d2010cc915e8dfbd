package prometheus

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	ev := domain.TrackedEvent{TestID: "hero-cta-test", VariantID: "control"}
	m.EventIngested(ev)
	m.EventIngested(ev)
	m.Rejected("missing_fields")
	m.SinkFailed("mixpanel", errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingested.WithLabelValues("hero-cta-test", "control")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("missing_fields")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkFailures.WithLabelValues("mixpanel")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.Rejected("invalid_json")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `abtrack_ingest_rejected_total{reason="invalid_json"} 1`)
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.EventIngested(domain.TrackedEvent{})
		m.Rejected("x")
		m.SinkFailed("x", nil)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
