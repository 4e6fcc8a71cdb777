package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "table_aggregator"

// Metrics records fetch and discovery activity. A nil *Metrics records nothing.
type Metrics struct {
	fetches         *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	fetchesInFlight prometheus.Gauge
	discoveryErrors prometheus.Counter
}

// NewMetrics creates the engine metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Table fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to fetch a single table.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		fetchesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_in_flight",
			Help:      "Table fetches currently running.",
		}),
		discoveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "discovery_errors_total",
			Help:      "Datasets whose tables could not be listed.",
		}),
	}

	reg.MustRegister(m.fetches, m.fetchDuration, m.fetchesInFlight, m.discoveryErrors)

	return m
}

func (m *Metrics) fetchStarted() {
	if m == nil {
		return
	}
	m.fetchesInFlight.Inc()
}

func (m *Metrics) fetchFinished(o Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchesInFlight.Dec()
	m.fetchDuration.Observe(d.Seconds())
	if o.Failed() {
		m.fetches.WithLabelValues("failure").Inc()
		return
	}
	m.fetches.WithLabelValues("success").Inc()
}

func (m *Metrics) discoveryFailed() {
	if m == nil {
		return
	}
	m.discoveryErrors.Inc()
}
