package codelearn

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the transport and the
// query cache. It is safe for concurrent use and all methods are no-ops on a
// nil receiver.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec

	queryHits     *prometheus.CounterVec
	queryMisses   *prometheus.CounterVec
	queryFetches  *prometheus.CounterVec
	queryEntries  prometheus.Gauge
	invalidations *prometheus.CounterVec
	refetches     *prometheus.CounterVec

	mutationsTotal *prometheus.CounterVec

	registry prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registry)

	return &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_requests_total",
				Help: "Total number of HTTP requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codelearn_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "codelearn_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type", "method", "endpoint"},
		),
		queryHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_query_cache_hits_total",
				Help: "Total number of query cache hits",
			},
			[]string{"key"},
		),
		queryMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_query_cache_misses_total",
				Help: "Total number of query cache misses",
			},
			[]string{"key"},
		),
		queryFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_query_fetches_total",
				Help: "Total number of query fetches by outcome",
			},
			[]string{"key", "outcome"},
		),
		queryEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "codelearn_query_cache_entries",
				Help: "Estimated number of entries in the query cache",
			},
		),
		invalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_query_invalidations_total",
				Help: "Total number of invalidated query keys",
			},
			[]string{"key"},
		),
		refetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_query_refetches_total",
				Help: "Total number of background refetches triggered by invalidation",
			},
			[]string{"key"},
		),
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelearn_mutations_total",
				Help: "Total number of mutations by outcome",
			},
			[]string{"outcome"},
		),
		registry: registry,
	}
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}

// RecordQueryHit increments the query cache hit counter.
func (mc *MetricsCollector) RecordQueryHit(key string) {
	if mc == nil {
		return
	}

	mc.queryHits.WithLabelValues(key).Inc()
}

// RecordQueryMiss increments the query cache miss counter.
func (mc *MetricsCollector) RecordQueryMiss(key string) {
	if mc == nil {
		return
	}

	mc.queryMisses.WithLabelValues(key).Inc()
}

// RecordQueryFetch counts a completed fetch; outcome is "success" or "error".
func (mc *MetricsCollector) RecordQueryFetch(key, outcome string) {
	if mc == nil {
		return
	}

	mc.queryFetches.WithLabelValues(key, outcome).Inc()
}

// RecordQueryEntries sets the cache size gauge.
func (mc *MetricsCollector) RecordQueryEntries(n int) {
	if mc == nil {
		return
	}

	mc.queryEntries.Set(float64(n))
}

// RecordInvalidation counts an invalidated key.
func (mc *MetricsCollector) RecordInvalidation(key string) {
	if mc == nil {
		return
	}

	mc.invalidations.WithLabelValues(key).Inc()
}

// RecordRefetch counts a background refetch.
func (mc *MetricsCollector) RecordRefetch(key string) {
	if mc == nil {
		return
	}

	mc.refetches.WithLabelValues(key).Inc()
}

// RecordMutation counts a mutation outcome.
func (mc *MetricsCollector) RecordMutation(outcome string) {
	if mc == nil {
		return
	}

	mc.mutationsTotal.WithLabelValues(outcome).Inc()
}

// Registry exposes the registerer the collector was built on.
func (mc *MetricsCollector) Registry() prometheus.Registerer {
	return mc.registry
}
