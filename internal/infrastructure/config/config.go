package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	StaticData StaticDataConfig `mapstructure:"static_data"`
	Industry   IndustryConfig   `mapstructure:"industry"`
	Market     MarketConfig     `mapstructure:"market"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/industry")
	}

	v.SetEnvPrefix("IND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL is honored without the IND_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers the keys viper cannot discover from AutomaticEnv alone,
// so that Unmarshal sees environment-only values without a config file.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"database.type", "database.url", "database.path",
		"static_data.driver", "static_data.dsn", "static_data.path",
		"industry.default_tax_rate", "industry.max_price_data_age", "industry.industry_index_max_age",
		"industry.recursion_depth", "industry.region_id",
		"market.base_url", "market.timeout", "market.concurrency", "market.lock_file",
		"cache.redis_addr", "cache.redis_password", "cache.redis_db", "cache.prefix", "cache.ttl", "cache.local_size",
		"metrics.enabled", "metrics.port", "metrics.host", "metrics.path",
		"logging.level", "logging.format", "logging.output", "logging.file_path",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
