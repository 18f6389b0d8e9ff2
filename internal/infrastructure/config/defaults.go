package config

import (
	"os"
	"path/filepath"
	"time"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "industry.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "industry"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "industry"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Static data defaults
	if cfg.StaticData.Driver == "" {
		cfg.StaticData.Driver = "yaml"
	}
	if cfg.StaticData.Driver == "yaml" && cfg.StaticData.Path == "" {
		cfg.StaticData.Path = "catalog.yaml"
	}

	// Industry defaults
	if cfg.Industry.DefaultTaxRate == nil {
		tax := DefaultInstallationTax
		cfg.Industry.DefaultTaxRate = &tax
	}
	if cfg.Industry.MaxPriceDataAge < 300*time.Second {
		cfg.Industry.MaxPriceDataAge = 300 * time.Second
	}
	if cfg.Industry.RecursionDepth == 0 {
		cfg.Industry.RecursionDepth = 8
	}
	if cfg.Industry.RegionID == 0 {
		cfg.Industry.RegionID = 10000002
	}

	// Market defaults
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://esi.evetech.net/latest"
	}
	if cfg.Market.Timeout == 0 {
		cfg.Market.Timeout = 30 * time.Second
	}
	if cfg.Market.RateLimit.Requests == 0 {
		cfg.Market.RateLimit.Requests = 20
	}
	if cfg.Market.RateLimit.Burst == 0 {
		cfg.Market.RateLimit.Burst = 40
	}
	if cfg.Market.Retry.MaxAttempts == 0 {
		cfg.Market.Retry.MaxAttempts = 3
	}
	if cfg.Market.Retry.BackoffBase == 0 {
		cfg.Market.Retry.BackoffBase = 1 * time.Second
	}
	if cfg.Market.Concurrency == 0 {
		cfg.Market.Concurrency = 4
	}
	if cfg.Market.LockFile == "" {
		cfg.Market.LockFile = filepath.Join(os.TempDir(), "industry-price-update.pid")
	}

	// Cache defaults
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "industry:price"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 1 * time.Hour
	}
	if cfg.Cache.LocalSize == 0 {
		cfg.Cache.LocalSize = 4096
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}
