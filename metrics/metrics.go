// Package metrics provides Prometheus metrics for the Trello MCP server.
// It tracks tool calls, Trello API latencies, breaker state, and error rates.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "trello_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// TrelloAPILatency measures Trello API call latency by endpoint and method
	TrelloAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "trello_api_latency_seconds",
		Help:      "Trello API call latency by endpoint and method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method"})

	// TrelloAPIRequestsTotal counts Trello API requests
	TrelloAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "trello_api_requests_total",
		Help:      "Total Trello API requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	// TrelloAPIErrors counts Trello API errors by HTTP status code
	TrelloAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "trello_api_errors_total",
		Help:      "Trello API errors by endpoint and HTTP status code",
	}, []string{"endpoint", "status_code"})

	// MissingParameters counts calls rejected before any I/O
	MissingParameters = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "missing_parameters_total",
		Help:      "Calls rejected for a missing required parameter",
	}, []string{"endpoint", "parameter"})

	// NoContentResponses counts responses normalized to a no-content result
	NoContentResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "no_content_responses_total",
		Help:      "Responses with an empty or undecodable body",
	}, []string{"endpoint"})

	// CircuitBreakerState exposes the breaker state (0 closed, 1 open, 2 half-open)
	CircuitBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_state",
		Help:      "Trello API circuit breaker state: 0 closed, 1 open, 2 half-open",
	})

	// RateLimitRejections counts requests rejected due to rate limiting
	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected due to rate limiting",
	})

	// RateLimitWaits counts requests that had to wait for the concurrency semaphore
	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rate_limit_waits_total",
		Help:      "Requests that waited for the concurrency semaphore",
	})

	// AuthFailures counts authentication failures
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by reason",
	}, []string{"reason"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	// WriteOperations counts mutating Trello calls by method and status
	WriteOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "write_operations_total",
		Help:      "Mutating Trello operations by method and status",
	}, []string{"method", "status"})

	// ResponseSize tracks Trello response body sizes
	ResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "response_size_bytes",
		Help:      "Trello response body size distribution in bytes",
		Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000},
	}, []string{"endpoint"})
)

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records one Trello API round trip. statusCode is 0 when the
// request never produced a response.
func RecordAPICall(endpoint, method string, duration float64, statusCode int) {
	success := statusCode >= 200 && statusCode < 300
	TrelloAPIRequestsTotal.WithLabelValues(endpoint, method, statusLabel(success)).Inc()
	TrelloAPILatency.WithLabelValues(endpoint, method).Observe(duration)
	if !success {
		code := "transport"
		if statusCode > 0 {
			code = strconv.Itoa(statusCode)
		}
		TrelloAPIErrors.WithLabelValues(endpoint, code).Inc()
	}
	if method != "GET" {
		WriteOperations.WithLabelValues(method, statusLabel(success)).Inc()
	}
}

// RecordMissingParameter records a call rejected before any I/O
func RecordMissingParameter(endpoint, parameter string) {
	MissingParameters.WithLabelValues(endpoint, parameter).Inc()
}

// RecordResponseSize observes a Trello response body size
func RecordResponseSize(endpoint string, size int) {
	ResponseSize.WithLabelValues(endpoint).Observe(float64(size))
}

// SetCircuitBreakerState updates the breaker state gauge
func SetCircuitBreakerState(state int) {
	CircuitBreakerState.Set(float64(state))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
