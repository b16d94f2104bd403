// Package metrics exposes the Prometheus registry shared by the docdb client
// packages. Collectors are defined next to the code that records them
// (client, cosmos, session, ratelimit) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all docdb collectors are added to.
var Registry = prometheus.DefaultRegisterer

// Handler serves the metrics of Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Pagination Metrics (pkg/cosmos):
//   - docdb_pages_total{resource} (Counter): Listing pages decoded
//   - docdb_request_charge_total{resource} (Counter): Request units charged for listing pages
//   - docdb_page_items{resource} (Histogram): Items per page
//   - docdb_pagination_errors_total{resource, kind} (Counter): Failed steps by kind
//     (request, transport, status, decode, metadata)
//
// Session Metrics (pkg/session):
//   - docdb_session_lookups_total{result} (Counter): Session token lookups (hit, miss)
//   - docdb_session_errors_total{operation} (Counter): Session store errors
//
// Throttle Metrics (pkg/ratelimit):
//   - docdb_throttled_responses_total (Counter): 429 responses received
//   - docdb_throttle_wait_seconds (Histogram): Time spent waiting for a throttle window
//
// Request Metrics (pkg/client):
//   - docdb_requests_total{method, status, resource} (Counter): Requests by method, HTTP status and resource type
//   - docdb_request_duration_seconds{method} (Histogram): Request duration including retries
//   - docdb_errors_total{class} (Counter): Errors by class (client, server, throttled, network)
//
// Retry Metrics (pkg/client):
//   - docdb_retries_total{error_class} (Counter): Retry attempts by error class
//   - docdb_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - docdb_retry_exhausted_total{error_class} (Counter): Requests that exhausted their attempts
//
// Example Prometheus Queries:
//
//   # Request units per second by resource
//   sum by (resource) (rate(docdb_request_charge_total[5m]))
//
//   # Average page size
//   rate(docdb_page_items_sum[5m]) / rate(docdb_page_items_count[5m])
//
//   # Throttle rate
//   rate(docdb_throttled_responses_total[5m]) / sum(rate(docdb_requests_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(docdb_request_duration_seconds_bucket[5m]))
