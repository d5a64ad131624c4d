package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	BackendURL       string // Trading backend base URL
	Port             int
	LogLevel         string
	DevMode          bool
	AggRefreshSpec   string // Cron spec for the background aggregation cycle
	MarketHoursOnly  bool   // Skip background cycles while the market is closed
	DefaultTicker    string
	DefaultPeriod    string
	RequestTimeoutMS int // Per-request timeout for backend calls
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("DASHBOARD_PORT", 8080),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		BackendURL:       getEnv("BACKEND_URL", "http://127.0.0.1:5000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AggRefreshSpec:   getEnv("AGG_REFRESH_SPEC", "@every 5m"),
		MarketHoursOnly:  getEnvAsBool("MARKET_HOURS_ONLY", false),
		DefaultTicker:    getEnv("DEFAULT_TICKER", "NVDA"),
		DefaultPeriod:    getEnv("DEFAULT_PERIOD", "1y"),
		RequestTimeoutMS: getEnvAsInt("REQUEST_TIMEOUT_MS", 10000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_MS must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
