package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the settings shared across the pipeline and the HTTP host.
type Config struct {
	// Fetching
	FetchTimeout time.Duration
	FetchWorkers int

	// Aggregation
	CacheTTL     time.Duration
	PerSourceCap int
	TopLimit     int

	// Image enrichment
	EnrichTimeout     time.Duration
	EnrichConcurrency int
	EnrichTTL         time.Duration

	// Sources registry
	SourcesConfigPath string

	// App
	Port  string
	Debug bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	cfg := &Config{
		FetchTimeout:      5 * time.Second,
		FetchWorkers:      10,
		CacheTTL:          5 * time.Minute,
		PerSourceCap:      5,
		TopLimit:          60,
		EnrichTimeout:     10 * time.Second,
		EnrichConcurrency: 4,
		EnrichTTL:         time.Hour,
		SourcesConfigPath: os.Getenv("SOURCES_CONFIG"),
		Port:              getEnvOrDefault("PORT", "8080"),
	}

	if v := getEnvIntOrDefault("FETCH_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.FetchTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("FETCH_WORKERS", 0); v > 0 {
		cfg.FetchWorkers = v
	}
	if v := getEnvIntOrDefault("CACHE_TTL_MINUTES", 0); v > 0 {
		cfg.CacheTTL = time.Duration(v) * time.Minute
	}
	if v := getEnvIntOrDefault("PER_SOURCE_CAP", 0); v > 0 {
		cfg.PerSourceCap = v
	}
	if v := getEnvIntOrDefault("TOP_LIMIT", 0); v > 0 {
		cfg.TopLimit = v
	}
	if v := getEnvIntOrDefault("ENRICH_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.EnrichTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("ENRICH_CONCURRENCY", 0); v > 0 {
		cfg.EnrichConcurrency = v
	}
	if v := getEnvIntOrDefault("ENRICH_TTL_MINUTES", 0); v > 0 {
		cfg.EnrichTTL = time.Duration(v) * time.Minute
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
