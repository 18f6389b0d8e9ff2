package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/industry-go/internal/application/common"
)

// PrometheusMiddleware creates a middleware that records request duration and outcome.
// A nil collector disables recording.
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(common.RequestName(request), time.Since(start).Seconds(), err == nil)

		return response, err
	}
}
