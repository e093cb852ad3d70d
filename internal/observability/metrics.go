package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	MatchesSimulated     prometheus.Counter
	SnapshotsImported    prometheus.Counter
	OptimizationsTotal   *prometheus.CounterVec
	OptimizationDuration *prometheus.HistogramVec
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// NewMetrics registers every collector with reg under namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "troopcalc"
	}
	f := promauto.With(reg)

	return &Metrics{
		MatchesSimulated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "matches_simulated_total",
			Help:      "Total number of matches simulated on request",
		}),
		SnapshotsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "imported_total",
			Help:      "Total number of CSV snapshots parsed",
		}),
		OptimizationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "runs_total",
			Help:      "Total number of optimizer runs by mode and status",
		}, []string{"mode", "status"}),
		OptimizationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "duration_seconds",
			Help:      "Optimizer run duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"mode"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordMatch() {
	if m == nil {
		return
	}
	m.MatchesSimulated.Inc()
}

func (m *Metrics) RecordSnapshot() {
	if m == nil {
		return
	}
	m.SnapshotsImported.Inc()
}

// RecordOptimization counts a run and, when it finished, its duration.
func (m *Metrics) RecordOptimization(mode, status string, seconds float64) {
	if m == nil {
		return
	}
	m.OptimizationsTotal.WithLabelValues(mode, status).Inc()
	if status == "ok" {
		m.OptimizationDuration.WithLabelValues(mode).Observe(seconds)
	}
}

func (m *Metrics) RecordRequest(route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}
