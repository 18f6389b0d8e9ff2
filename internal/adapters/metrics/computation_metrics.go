package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ComputationMetricsCollector handles process tree computation metrics
type ComputationMetricsCollector struct {
	processesTotal *prometheus.CounterVec
	treeNodes      *prometheus.HistogramVec
	treeDepth      *prometheus.HistogramVec
	jobSeconds     *prometheus.HistogramVec
}

// NewComputationMetricsCollector creates a new computation metrics collector
func NewComputationMetricsCollector() *ComputationMetricsCollector {
	return &ComputationMetricsCollector{
		processesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "computed_total",
				Help:      "Total number of process trees computed by root activity",
			},
			[]string{"activity"},
		),

		treeNodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "tree_nodes",
				Help:      "Number of nodes per computed process tree",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
			[]string{"activity"},
		),

		treeDepth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "tree_depth",
				Help:      "Depth of computed process trees",
				Buckets:   prometheus.LinearBuckets(1, 1, 8),
			},
			[]string{"activity"},
		),

		jobSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "job_duration_seconds",
				Help:      "Total in-game job time of computed process trees",
				Buckets:   prometheus.ExponentialBuckets(600, 4, 8),
			},
			[]string{"activity"},
		),
	}
}

// Register registers all computation metrics with the Prometheus registry
func (c *ComputationMetricsCollector) Register() error {
	return register(c.processesTotal, c.treeNodes, c.treeDepth, c.jobSeconds)
}

func (c *ComputationMetricsCollector) RecordProcess(activity string, nodes, depth int, duration float64) {
	c.processesTotal.WithLabelValues(activity).Inc()
	c.treeNodes.WithLabelValues(activity).Observe(float64(nodes))
	c.treeDepth.WithLabelValues(activity).Observe(float64(depth))
	c.jobSeconds.WithLabelValues(activity).Observe(duration)
}
