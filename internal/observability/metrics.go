package observability

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	aggregateOps      *prometheus.CounterVec
	aggregateLatency  *prometheus.HistogramVec
	aggregateConflict *prometheus.CounterVec
	aggregateRetry    *prometheus.CounterVec

	feedRequests *prometheus.CounterVec
	feedLatency  *prometheus.HistogramVec
	feedDegraded *prometheus.CounterVec

	classifications *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	catalogVersion  prometheus.Gauge
	breakerState    *prometheus.GaugeVec
	graphProjection *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("METRICS_ENABLED")))
	switch v {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. It returns nil when METRICS_ENABLED is off.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		if !Enabled() {
			if log != nil {
				log.Info("metrics disabled")
			}
			return
		}
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// NewMetrics registers every collector on reg. Tests pass a fresh registry each time.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	latencyBuckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	return &Metrics{
		registry: reg,

		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_api_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnup_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: latencyBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "learnup_api_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),

		aggregateOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_aggregate_operations_total",
			Help: "Aggregate write operations by name and status.",
		}, []string{"operation", "status"}),
		aggregateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnup_aggregate_operation_duration_seconds",
			Help:    "Aggregate write latency including the transaction.",
			Buckets: latencyBuckets,
		}, []string{"operation"}),
		aggregateConflict: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_aggregate_conflicts_total",
			Help: "Aggregate writes that ended in a conflict.",
		}, []string{"operation"}),
		aggregateRetry: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_aggregate_retryable_total",
			Help: "Aggregate writes that ended in a retryable failure.",
		}, []string{"operation"}),

		feedRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_feed_requests_total",
			Help: "Recommendation feed queries by feed and status.",
		}, []string{"feed", "status"}),
		feedLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnup_feed_duration_seconds",
			Help:    "Recommendation feed query latency.",
			Buckets: latencyBuckets,
		}, []string{"feed"}),
		feedDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_dashboard_feed_degraded_total",
			Help: "Dashboard feeds replaced by an empty list after a failure.",
		}, []string{"feed"}),

		classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_classifications_total",
			Help: "Classifier runs by primary outcome (matched or fallback).",
		}, []string{"outcome"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_cache_events_total",
			Help: "Cache hits, misses and reloads by cache name.",
		}, []string{"cache", "event"}),
		catalogVersion: f.NewGauge(prometheus.GaugeOpts{
			Name: "learnup_catalog_version",
			Help: "Version of the in-process topic catalog index.",
		}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "learnup_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),
		graphProjection: f.NewCounterVec(prometheus.CounterOpts{
			Name: "learnup_graph_projection_total",
			Help: "Neo4j label projections by status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	route = strings.TrimSpace(route)
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(name, status).Inc()
	m.aggregateLatency.WithLabelValues(name).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflict.WithLabelValues(name).Inc()
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetry.WithLabelValues(name).Inc()
}

func (m *Metrics) ObserveFeed(feed, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.feedRequests.WithLabelValues(feed, status).Inc()
	m.feedLatency.WithLabelValues(feed).Observe(dur.Seconds())
}

func (m *Metrics) IncFeedDegraded(feed string) {
	if m == nil {
		return
	}
	m.feedDegraded.WithLabelValues(feed).Inc()
}

func (m *Metrics) IncClassification(outcome string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCacheEvent(cache, event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(cache, event).Inc()
}

func (m *Metrics) SetCatalogVersion(v uint64) {
	if m == nil {
		return
	}
	m.catalogVersion.Set(float64(v))
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) IncGraphProjection(status string) {
	if m == nil {
		return
	}
	m.graphProjection.WithLabelValues(status).Inc()
}
