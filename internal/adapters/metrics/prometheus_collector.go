package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "industry"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPricingCollector is set by SetGlobalPricingCollector when metrics are enabled
	globalPricingCollector PricingMetricsRecorder

	// globalComputationCollector is set by SetGlobalComputationCollector when metrics are enabled
	globalComputationCollector ComputationMetricsRecorder
)

// PricingMetricsRecorder records price estimation and cache events
type PricingMetricsRecorder interface {
	RecordEstimate(regionID int64, sellDefined, buyDefined bool)
	RecordUpdateRun(regionID int64, items, failures int, duration float64)
	RecordCacheLookup(layer string, hit bool)
}

// ComputationMetricsRecorder records computed process trees
type ComputationMetricsRecorder interface {
	RecordProcess(activity string, nodes, depth int, duration float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

func register(collectors ...prometheus.Collector) error {
	if Registry == nil {
		return nil // Metrics not enabled
	}
	for _, c := range collectors {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// SetGlobalPricingCollector sets the global pricing metrics collector
func SetGlobalPricingCollector(collector PricingMetricsRecorder) {
	globalPricingCollector = collector
}

// RecordPriceEstimate records one estimated price stat globally
func RecordPriceEstimate(regionID int64, sellDefined, buyDefined bool) {
	if globalPricingCollector != nil {
		globalPricingCollector.RecordEstimate(regionID, sellDefined, buyDefined)
	}
}

// RecordPriceUpdateRun records a completed price update run globally
func RecordPriceUpdateRun(regionID int64, items, failures int, duration float64) {
	if globalPricingCollector != nil {
		globalPricingCollector.RecordUpdateRun(regionID, items, failures, duration)
	}
}

// RecordPriceCacheLookup records a price cache hit or miss globally
func RecordPriceCacheLookup(layer string, hit bool) {
	if globalPricingCollector != nil {
		globalPricingCollector.RecordCacheLookup(layer, hit)
	}
}

// SetGlobalComputationCollector sets the global computation metrics collector
func SetGlobalComputationCollector(collector ComputationMetricsRecorder) {
	globalComputationCollector = collector
}

// RecordProcess records a computed process tree globally
func RecordProcess(activity string, nodes, depth int, duration float64) {
	if globalComputationCollector != nil {
		globalComputationCollector.RecordProcess(activity, nodes, depth, duration)
	}
}
