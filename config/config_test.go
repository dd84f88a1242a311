package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MarketData.RequestTimeoutSeconds != 10 {
		t.Errorf("RequestTimeoutSeconds = %d, want 10", cfg.MarketData.RequestTimeoutSeconds)
	}
	if cfg.MarketData.NotFoundPolicy != NotFoundContinue {
		t.Errorf("NotFoundPolicy = %v, want continue", cfg.MarketData.NotFoundPolicy)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("TTLHours = %d, want 24", cfg.Cache.TTLHours)
	}
	if cfg.Analysis.ConcurrencyLimit != 4 {
		t.Errorf("ConcurrencyLimit = %d, want 4", cfg.Analysis.ConcurrencyLimit)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.HTTP.Port)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FMP_API_KEY", "fmp-key")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("CACHE_TTL_HOURS", "6")
	t.Setenv("NOT_FOUND_POLICY", "stop")
	t.Setenv("HTTP_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FMP.APIKey != "fmp-key" {
		t.Errorf("FMP.APIKey = %q, want 'fmp-key'", cfg.FMP.APIKey)
	}
	if cfg.AlphaVantage.APIKey != "av-key" {
		t.Errorf("AlphaVantage.APIKey = %q, want 'av-key'", cfg.AlphaVantage.APIKey)
	}
	if cfg.Cache.TTLHours != 6 {
		t.Errorf("TTLHours = %d, want 6", cfg.Cache.TTLHours)
	}
	if cfg.MarketData.NotFoundPolicy != NotFoundStop {
		t.Errorf("NotFoundPolicy = %v, want stop", cfg.MarketData.NotFoundPolicy)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.HTTP.Port)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	t.Setenv("NOT_FOUND_POLICY", "maybe")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid NOT_FOUND_POLICY")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid defaults", func(c *Config) {}, false},
		{"Zero timeout", func(c *Config) { c.MarketData.RequestTimeoutSeconds = 0 }, true},
		{"Zero TTL", func(c *Config) { c.Cache.TTLHours = 0 }, true},
		{"Port too low", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"Port too high", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"Zero HTTP timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, true},
		{"Zero analysis concurrency", func(c *Config) { c.Analysis.ConcurrencyLimit = 0 }, true},
		{"Unknown policy", func(c *Config) { c.MarketData.NotFoundPolicy = "sometimes" }, true},
		{"Stop policy", func(c *Config) { c.MarketData.NotFoundPolicy = NotFoundStop }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasPredicates(t *testing.T) {
	cfg := NewTestConfig()

	if cfg.HasDatabase() || cfg.HasFMP() || cfg.HasAlphaVantage() {
		t.Error("test config should have nothing configured")
	}

	cfg.Database.URL = "postgres://localhost/gateway"
	cfg.FMP.APIKey = "key"
	cfg.AlphaVantage.APIKey = "key"

	if !cfg.HasDatabase() || !cfg.HasFMP() || !cfg.HasAlphaVantage() {
		t.Error("predicates should reflect set values")
	}
}

func TestCacheConfig_TTL(t *testing.T) {
	c := CacheConfig{TTLHours: 24}
	if c.TTL() != 24*time.Hour {
		t.Errorf("TTL() = %v, want 24h", c.TTL())
	}
}
