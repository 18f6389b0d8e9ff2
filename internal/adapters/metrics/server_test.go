package metrics_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/adapters/metrics"
)

func TestServer_ExposesRegisteredCollectors(t *testing.T) {
	// Arrange
	collectors, err := metrics.Enable()
	require.NoError(t, err)
	t.Cleanup(func() {
		metrics.SetGlobalPricingCollector(nil)
		metrics.SetGlobalComputationCollector(nil)
	})
	collectors.API.RecordAPIRequest("GET", "/markets/{region}/orders/", 200, 0.05)
	metrics.RecordPriceEstimate(10000002, true, false)

	server := metrics.NewServer("127.0.0.1", 0, "/metrics")
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	// Act
	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "industry_feed_requests_total")
	assert.Contains(t, string(body), "industry_pricing_")
}
