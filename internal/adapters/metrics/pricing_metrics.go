package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetricsCollector handles price estimation metrics
type PricingMetricsCollector struct {
	estimatesTotal     *prometheus.CounterVec
	undefinedSides     *prometheus.CounterVec
	updateRunsTotal    *prometheus.CounterVec
	updateRunDuration  *prometheus.HistogramVec
	updateItemFailures *prometheus.CounterVec
	cacheLookupsTotal  *prometheus.CounterVec
}

// NewPricingMetricsCollector creates a new pricing metrics collector
func NewPricingMetricsCollector() *PricingMetricsCollector {
	return &PricingMetricsCollector{
		estimatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "estimates_total",
				Help:      "Total number of price stats estimated by region",
			},
			[]string{"region"},
		),

		undefinedSides: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "undefined_sides_total",
				Help:      "Estimates where one side of the book had no orders",
			},
			[]string{"region", "side"},
		),

		updateRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "update_runs_total",
				Help:      "Total number of price update runs by region",
			},
			[]string{"region"},
		),

		updateRunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "update_run_duration_seconds",
				Help:      "Price update run duration distribution",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
			},
			[]string{"region"},
		),

		updateItemFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "update_item_failures_total",
				Help:      "Items whose price could not be updated",
			},
			[]string{"region"},
		),

		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pricing",
				Name:      "cache_lookups_total",
				Help:      "Price cache lookups by layer and result",
			},
			[]string{"layer", "result"},
		),
	}
}

// Register registers all pricing metrics with the Prometheus registry
func (c *PricingMetricsCollector) Register() error {
	return register(
		c.estimatesTotal,
		c.undefinedSides,
		c.updateRunsTotal,
		c.updateRunDuration,
		c.updateItemFailures,
		c.cacheLookupsTotal,
	)
}

func (c *PricingMetricsCollector) RecordEstimate(regionID int64, sellDefined, buyDefined bool) {
	region := strconv.FormatInt(regionID, 10)
	c.estimatesTotal.WithLabelValues(region).Inc()
	if !sellDefined {
		c.undefinedSides.WithLabelValues(region, "sell").Inc()
	}
	if !buyDefined {
		c.undefinedSides.WithLabelValues(region, "buy").Inc()
	}
}

func (c *PricingMetricsCollector) RecordUpdateRun(regionID int64, items, failures int, duration float64) {
	region := strconv.FormatInt(regionID, 10)
	c.updateRunsTotal.WithLabelValues(region).Inc()
	c.updateRunDuration.WithLabelValues(region).Observe(duration)
	if failures > 0 {
		c.updateItemFailures.WithLabelValues(region).Add(float64(failures))
	}
}

func (c *PricingMetricsCollector) RecordCacheLookup(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookupsTotal.WithLabelValues(layer, result).Inc()
}
