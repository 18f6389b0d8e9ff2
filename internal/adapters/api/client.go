package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

const (
	defaultBaseURL     = "https://esi.evetech.net/latest"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = time.Second
	defaultUserAgent   = "industry-go"

	breakerMaxFailures = 5
	breakerTimeout     = time.Minute
)

// RequestRecorder receives per-request metrics. metrics.APIMetricsCollector implements it.
type RequestRecorder interface {
	RecordAPIRequest(method, endpoint string, statusCode int, duration float64)
	RecordAPIRetry(method, endpoint, reason string)
	RecordRateLimitWait(method, endpoint string, duration float64)
	RecordBreakerState(state string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAPIRequest(string, string, int, float64) {}
func (noopRecorder) RecordAPIRetry(string, string, string)         {}
func (noopRecorder) RecordRateLimitWait(string, string, float64)   {}
func (noopRecorder) RecordBreakerState(string)                     {}

// ClientConfig configures a MarketFeedClient. Zero values select defaults.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond int
	Burst             int
	MaxRetries        int
	BackoffBase       time.Duration
	UserAgent         string
}

// MarketFeedClient reads market orders, market history and system cost indices
// from a JSON HTTP feed
type MarketFeedClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	recorder    RequestRecorder
	baseURL     string
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// NewMarketFeedClient creates a client. If clock is nil, uses RealClock.
func NewMarketFeedClient(cfg ClientConfig, clock shared.Clock) *MarketFeedClient {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerSecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	c := &MarketFeedClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:     NewCircuitBreaker(breakerMaxFailures, breakerTimeout, clock),
		recorder:    noopRecorder{},
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		clock:       clock,
	}
	c.breaker.OnStateChange(func(state CircuitState) {
		c.recorder.RecordBreakerState(state.String())
	})
	return c
}

// WithRecorder sets the metrics recorder
func (c *MarketFeedClient) WithRecorder(recorder RequestRecorder) *MarketFeedClient {
	if recorder != nil {
		c.recorder = recorder
		recorder.RecordBreakerState(c.breaker.State().String())
	}
	return c
}

// Breaker exposes the circuit breaker guarding the feed
func (c *MarketFeedClient) Breaker() *CircuitBreaker {
	return c.breaker
}

func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64() // 0.5 to 1.5
	return time.Duration(float64(d) * jitter)
}

// get fetches path into result through the circuit breaker and returns the response headers
func (c *MarketFeedClient) get(ctx context.Context, endpoint, path string, result interface{}) (http.Header, error) {
	var header http.Header
	err := c.breaker.Call(func() error {
		var err error
		header, err = c.request(ctx, endpoint, path, result)
		return err
	})
	return header, err
}

// request makes a GET request with rate limiting and exponential backoff retries
func (c *MarketFeedClient) request(ctx context.Context, endpoint, path string, result interface{}) (http.Header, error) {
	url := c.baseURL + path

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}
		c.recorder.RecordRateLimitWait(http.MethodGet, endpoint, time.Since(waitStart).Seconds())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			lastErr = &retryableError{message: fmt.Errorf("network error: %w", err).Error()}
			if attempt >= c.maxRetries {
				break
			}
			c.recorder.RecordAPIRetry(http.MethodGet, endpoint, "network")
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.recorder.RecordAPIRequest(http.MethodGet, endpoint, resp.StatusCode, time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		// 429 and 5xx are retryable
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			var retryAfter time.Duration
			if value := resp.Header.Get("Retry-After"); value != "" {
				if seconds, err := strconv.Atoi(value); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			}
			lastErr = &retryableError{
				message:    fmt.Sprintf("feed error (%d)", resp.StatusCode),
				retryAfter: retryAfter,
			}
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			delay := addJitter(c.backoffBase * time.Duration(1<<attempt))
			if retryAfter > 0 {
				delay = retryAfter
			}
			c.recorder.RecordAPIRetry(http.MethodGet, endpoint, strconv.Itoa(resp.StatusCode))
			c.clock.Sleep(delay)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", path, shared.ErrNotFound)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("feed error (status %d): %s", resp.StatusCode, string(respBody))
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return resp.Header, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, fmt.Errorf("max retries exceeded")
}

// retryableError represents an error that should trigger a retry
type retryableError struct {
	message    string
	retryAfter time.Duration
}

func (e *retryableError) Error() string {
	return e.message
}
