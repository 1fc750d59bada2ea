package telemetry

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DescriptorFetchesTotal counts descriptor reads by repository and outcome.
	DescriptorFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_descriptor_fetches_total",
			Help: "Total number of descriptor fetches by repository and status",
		},
		[]string{"repository", "status"}, // status: hit, miss, error
	)

	// DescriptorFetchDuration tracks descriptor fetch latency in seconds.
	DescriptorFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "depcollect_descriptor_fetch_duration_seconds",
			Help:    "Descriptor fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"repository"},
	)

	// CollectNodesTotal counts nodes added to the dependency graph, by outcome.
	CollectNodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_nodes_total",
			Help: "Total number of graph nodes created, by outcome",
		},
		[]string{"outcome"}, // resolved, cycle, excluded
	)

	// CacheHitsTotal counts cache hits by cache tier.
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_cache_hits_total",
			Help: "Total number of cache hits by cache tier",
		},
		[]string{"tier"}, // memory, disk
	)

	// CacheMissesTotal counts cache misses by cache tier.
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_cache_misses_total",
			Help: "Total number of cache misses by cache tier",
		},
		[]string{"tier"},
	)

	// CacheSizeBytes tracks current cache size in bytes by tier.
	CacheSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "depcollect_cache_size_bytes",
			Help: "Current cache size in bytes by tier",
		},
		[]string{"tier"},
	)

	// CircuitBreakerState tracks circuit breaker state by repository host.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "depcollect_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"host"},
	)

	// CircuitBreakerFailures counts circuit breaker failures by host.
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"host"},
	)

	// RateLimitRequestsTotal counts rate-limited requests by repository.
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_rate_limit_requests_total",
			Help: "Total number of rate limited requests",
		},
		[]string{"repository", "allowed"},
	)

	// HTTPRequestsTotal counts outbound repository requests by method, status and host.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depcollect_http_requests_total",
			Help: "Total number of HTTP requests to repositories by method, status and host",
		},
		[]string{"method", "status", "host"},
	)

	// HTTPRequestDuration tracks outbound repository request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "depcollect_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method and host",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "host"},
	)
)

// MetricsHandler returns an HTTP handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts a blocking HTTP server exposing /metrics.
func StartMetricsServer(addr string) error {
	http.Handle("/metrics", MetricsHandler())
	return http.ListenAndServe(addr, nil)
}

// GetCounterValue reads the current value of a counter metric, for tests.
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}
	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}
	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}
	return 0, nil
}
