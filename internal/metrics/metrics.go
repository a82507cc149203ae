package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service's collectors on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RiskScoresTotal    *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	DashboardBuilds    prometheus.Counter
	CacheRequestsTotal *prometheus.CounterVec
	LedgerWritesTotal  *prometheus.CounterVec
	NarrationsTotal    *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initHTTPMetrics()
	r.initEngineMetrics()
	return r
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tempo_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

func (r *Registry) initEngineMetrics() {
	r.RiskScoresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_risk_scores_total",
			Help: "Risk scores computed, by resulting level",
		},
		[]string{"level"},
	)

	r.OperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tempo_operation_duration_seconds",
			Help:    "Ledger operation latency in seconds, including store reads",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	r.DashboardBuilds = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tempo_dashboard_builds_total",
			Help: "Dashboards computed from a fresh snapshot",
		},
	)

	r.CacheRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_cache_requests_total",
			Help: "Dashboard cache lookups by result",
		},
		[]string{"result"},
	)

	r.LedgerWritesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_ledger_writes_total",
			Help: "Writes to the graph store by kind and status",
		},
		[]string{"kind", "status"},
	)

	r.NarrationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempo_narrations_total",
			Help: "LLM narrations requested by subject and status",
		},
		[]string{"subject", "status"},
	)
}

func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (r *Registry) RecordRisk(level string) {
	r.RiskScoresTotal.WithLabelValues(level).Inc()
}

func (r *Registry) ObserveOperation(operation string, duration time.Duration) {
	r.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *Registry) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheRequestsTotal.WithLabelValues(result).Inc()
}

func (r *Registry) RecordWrite(kind string, err error) {
	r.LedgerWritesTotal.WithLabelValues(kind, status(err)).Inc()
}

func (r *Registry) RecordNarration(subject string, err error) {
	r.NarrationsTotal.WithLabelValues(subject, status(err)).Inc()
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
