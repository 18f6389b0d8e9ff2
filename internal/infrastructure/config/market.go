package config

import "time"

// MarketConfig holds market feed client configuration
type MarketConfig struct {
	// Base URL of the market order and history feed
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	Retry RetryConfig `mapstructure:"retry"`

	// Items estimated in parallel during a price update
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=64"`

	// PID file held by a repeating price update so only one runs per host
	LockFile string `mapstructure:"lock_file"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	// Maximum number of retry attempts
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}
