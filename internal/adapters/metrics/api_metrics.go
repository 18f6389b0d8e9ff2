package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetricsCollector handles market feed request metrics
type APIMetricsCollector struct {
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiRetries         *prometheus.CounterVec
	apiRateLimitWait   *prometheus.HistogramVec
	breakerState       *prometheus.GaugeVec
}

// breakerStates are the circuit breaker states exported as gauge labels
var breakerStates = []string{"closed", "open", "half_open"}

// NewAPIMetricsCollector creates a new API metrics collector
func NewAPIMetricsCollector() *APIMetricsCollector {
	return &APIMetricsCollector{
		apiRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "requests_total",
				Help:      "Total number of market feed requests by endpoint and status code",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "request_duration_seconds",
				Help:      "Market feed request duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"method", "endpoint"},
		),

		apiRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "retries_total",
				Help:      "Total number of market feed retry attempts",
			},
			[]string{"method", "endpoint", "reason"},
		),

		apiRateLimitWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "rate_limit_wait_seconds",
				Help:      "Time spent waiting for the feed rate limiter",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"method", "endpoint"},
		),

		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "circuit_breaker_state",
				Help:      "1 for the current market feed circuit breaker state, 0 for the others",
			},
			[]string{"state"},
		),
	}
}

// Register registers all API metrics with the Prometheus registry
func (c *APIMetricsCollector) Register() error {
	return register(c.apiRequestsTotal, c.apiRequestDuration, c.apiRetries, c.apiRateLimitWait, c.breakerState)
}

// RecordAPIRequest records a completed request
func (c *APIMetricsCollector) RecordAPIRequest(method, endpoint string, statusCode int, duration float64) {
	c.apiRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	c.apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordAPIRetry records a retry attempt
func (c *APIMetricsCollector) RecordAPIRetry(method, endpoint, reason string) {
	c.apiRetries.WithLabelValues(method, endpoint, reason).Inc()
}

// RecordRateLimitWait records time spent waiting for the rate limiter
func (c *APIMetricsCollector) RecordRateLimitWait(method, endpoint string, duration float64) {
	c.apiRateLimitWait.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordBreakerState marks state as the current circuit breaker state
func (c *APIMetricsCollector) RecordBreakerState(state string) {
	for _, s := range breakerStates {
		value := 0.0
		if s == state {
			value = 1
		}
		c.breakerState.WithLabelValues(s).Set(value)
	}
}
