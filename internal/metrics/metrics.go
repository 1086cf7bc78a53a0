package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the admin backend
type MetricsRegistry struct {
	Registry *prometheus.Registry

	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Store Metrics
	StoreOperationsTotal *prometheus.CounterVec
	StoreTxConflicts     *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal     *prometheus.CounterVec
	CacheMissesTotal   *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec

	// Business Metrics
	MutationsTotal     *prometheus.CounterVec
	RateLimitDecisions *prometheus.CounterVec
	AuditWriteFailures prometheus.Counter
	BestEffortFailures *prometheus.CounterVec
}

// NewMetricsRegistry initializes a private registry so tests can build as
// many as they like without colliding on the default one.
func NewMetricsRegistry() *MetricsRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &MetricsRegistry{
		Registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ace_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ace_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		StoreOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_document_store_operations_total",
				Help: "Document store operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),
		StoreTxConflicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_document_store_tx_conflicts_total",
				Help: "Optimistic transaction conflicts by collection",
			},
			[]string{"collection"},
		),

		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_cache_hits_total",
				Help: "Total read cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_cache_misses_total",
				Help: "Total read cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheInvalidations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_cache_invalidations_total",
				Help: "Cache invalidation signals by path prefix",
			},
			[]string{"prefix"},
		),

		MutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_admin_mutations_total",
				Help: "Mutation pipeline outcomes by operation and result kind",
			},
			[]string{"operation", "result"},
		),
		RateLimitDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_rate_limit_decisions_total",
				Help: "Rate limiter decisions (allowed, limited, fail_open, fail_closed)",
			},
			[]string{"decision"},
		),
		AuditWriteFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "ace_audit_write_failures_total",
				Help: "Audit entries that could not be written",
			},
		),
		BestEffortFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_best_effort_failures_total",
				Help: "Secondary steps that failed without aborting the primary operation",
			},
			[]string{"step"},
		),
	}
}

// The helpers below are nil-safe so components can run without metrics.

func (m *MetricsRegistry) CountMutation(operation, result string) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *MetricsRegistry) CountStoreOp(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *MetricsRegistry) CountTxConflict(collection string) {
	if m == nil {
		return
	}
	m.StoreTxConflicts.WithLabelValues(collection).Inc()
}

func (m *MetricsRegistry) CountRateLimit(decision string) {
	if m == nil {
		return
	}
	m.RateLimitDecisions.WithLabelValues(decision).Inc()
}

func (m *MetricsRegistry) CountAuditFailure() {
	if m == nil {
		return
	}
	m.AuditWriteFailures.Inc()
}

func (m *MetricsRegistry) CountBestEffortFailure(step string) {
	if m == nil {
		return
	}
	m.BestEffortFailures.WithLabelValues(step).Inc()
}

func (m *MetricsRegistry) CountCache(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) CountInvalidation(prefix string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(prefix).Inc()
}
