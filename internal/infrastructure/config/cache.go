package config

import "time"

// CacheConfig holds the price cache configuration. An empty RedisAddr disables the shared cache.
type CacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"min=0"`

	// Key prefix for cached entries
	Prefix string `mapstructure:"prefix" validate:"required"`

	// Lifetime of a price estimate counted from its generation time
	TTL time.Duration `mapstructure:"ttl" validate:"required"`

	// Entries kept in the in-process LRU
	LocalSize int `mapstructure:"local_size" validate:"min=1"`
}

// RedisEnabled reports whether a shared cache is configured
func (c CacheConfig) RedisEnabled() bool {
	return c.RedisAddr != ""
}
