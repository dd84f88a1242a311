package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration (optional, enables the Postgres cache backend)
	Database DatabaseConfig

	// External data source configurations
	FMP          FMPConfig
	AlphaVantage AlphaVantageConfig

	// Market data service configuration
	MarketData MarketDataConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// Cache configuration
	Cache CacheConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	APIKey string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
}

// NotFoundPolicy controls how the market data service reacts when a source
// reports that a symbol does not exist.
type NotFoundPolicy string

const (
	// NotFoundContinue tries the remaining sources; a symbol may exist in one
	// provider's universe but not another's.
	NotFoundContinue NotFoundPolicy = "continue"
	// NotFoundStop gives up on the first not-found answer.
	NotFoundStop NotFoundPolicy = "stop"
)

// MarketDataConfig holds market data service configuration
type MarketDataConfig struct {
	RequestTimeoutSeconds int
	NotFoundPolicy        NotFoundPolicy
}

// AnalysisConfig holds analysis configuration
type AnalysisConfig struct {
	ConcurrencyLimit int
}

// CacheConfig holds quote cache configuration
type CacheConfig struct {
	TTLHours int
}

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               int
	TimeoutSeconds     int
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		FMP: FMPConfig{
			APIKey: os.Getenv("FMP_API_KEY"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		},
		MarketData: MarketDataConfig{
			RequestTimeoutSeconds: getEnvInt("SOURCE_REQUEST_TIMEOUT_SECONDS", 10),
			NotFoundPolicy:        NotFoundPolicy(getEnvString("NOT_FOUND_POLICY", string(NotFoundContinue))),
		},
		Analysis: AnalysisConfig{
			ConcurrencyLimit: getEnvInt("ANALYSIS_CONCURRENCY_LIMIT", 4),
		},
		Cache: CacheConfig{
			TTLHours: getEnvInt("CACHE_TTL_HOURS", 24),
		},
		HTTP: HTTPConfig{
			Port:               getEnvInt("HTTP_PORT", 8080),
			TimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 60),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MarketData.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("SOURCE_REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.MarketData.RequestTimeoutSeconds)
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("CACHE_TTL_HOURS must be positive, got %d", c.Cache.TTLHours)
	}
	if c.Analysis.ConcurrencyLimit <= 0 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY_LIMIT must be positive, got %d", c.Analysis.ConcurrencyLimit)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	switch c.MarketData.NotFoundPolicy {
	case NotFoundContinue, NotFoundStop:
	default:
		return fmt.Errorf("NOT_FOUND_POLICY must be %q or %q, got %q",
			NotFoundContinue, NotFoundStop, c.MarketData.NotFoundPolicy)
	}
	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasFMP returns true if Financial Modeling Prep configuration is available
func (c *Config) HasFMP() bool {
	return c.FMP.APIKey != ""
}

// HasAlphaVantage returns true if Alpha Vantage configuration is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		FMP: FMPConfig{
			APIKey: "",
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: "",
		},
		MarketData: MarketDataConfig{
			RequestTimeoutSeconds: 10,
			NotFoundPolicy:        NotFoundContinue,
		},
		Analysis: AnalysisConfig{
			ConcurrencyLimit: 4,
		},
		Cache: CacheConfig{
			TTLHours: 24,
		},
		HTTP: HTTPConfig{
			Port:               8080,
			TimeoutSeconds:     60,
			CORSAllowedOrigins: "*",
		},
	}
}
