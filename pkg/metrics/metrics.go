// Package metrics provides the centralized Prometheus registry and the
// /metrics handler for the geocoding cache.
// All metrics are defined in their respective packages (cache, client, server)
// to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the geocoding cache.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the Prometheus exposition handler for Gatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - geocache_cache_hits_total{cache} (Counter): Cache hits per cache
//   - geocache_cache_misses_total{cache} (Counter): Cache misses per cache
//   - geocache_cache_clears_total{cache} (Counter): Scheduled clears per cache
//   - geocache_cache_entries{cache} (Gauge): Current number of entries
//
// Upstream Metrics (pkg/client):
//   - geocache_upstream_requests_total{operation, status} (Counter): Requests by operation and HTTP status
//   - geocache_upstream_request_duration_seconds{operation} (Histogram): Request duration by operation
//   - geocache_upstream_errors_total{kind} (Counter): Classified errors by kind
//   - geocache_upstream_breaker_state (Gauge): Circuit breaker state (0 closed, 1 half-open, 2 open)
//
// HTTP Metrics (pkg/server):
//   - geocache_http_requests_total{method, route, status} (Counter): Requests served
//   - geocache_http_request_duration_seconds{method, route} (Histogram): Request duration
//   - geocache_http_requests_in_flight (Gauge): Requests currently in flight
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum by (cache) (rate(geocache_cache_hits_total[5m])) /
//   (sum by (cache) (rate(geocache_cache_hits_total[5m])) + sum by (cache) (rate(geocache_cache_misses_total[5m])))
//
//   # Upstream Error Rate by Kind
//   rate(geocache_upstream_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(geocache_upstream_request_duration_seconds_bucket[5m]))
//
//   # Unauthorized responses (bad access key)
//   increase(geocache_upstream_errors_total{kind="unauthorized"}[15m]) > 0
