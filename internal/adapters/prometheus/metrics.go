package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const namespace = "abtrack"

// Metrics instruments the ingest server. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	ingested     *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	sinkFailures *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the collectors on reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: g,
		ingested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Events accepted by the track endpoint.",
		}, []string{"test_id", "variant_id"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rejected_total",
			Help:      "Requests rejected by the track endpoint, by reason.",
		}, []string{"reason"}),
		sinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Events a sink failed to deliver or dropped.",
		}, []string{"sink"}),
	}
}

func (m *Metrics) EventIngested(ev domain.TrackedEvent) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(ev.TestID, ev.VariantID).Inc()
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// SinkFailed has the shape of abtest.FailureFunc.
func (m *Metrics) SinkFailed(sink string, err error) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(sink).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
