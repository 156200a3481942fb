// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/folio/internal/modules/analytics"
	"github.com/aristath/folio/internal/modules/optimization"
	"github.com/aristath/folio/internal/scheduler"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	LookbackDays     int
	DefaultBenchmark string
	RiskFreeRate     float64
	FrontierPoints   int
	RollingWindow    int
	Solver           string

	CacheTTL             time.Duration
	CacheCleanupSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		Port:                 getEnvAsInt("PORT", 8001),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LookbackDays:         getEnvAsInt("FOLIO_LOOKBACK_DAYS", analytics.DefaultLookbackDays),
		DefaultBenchmark:     strings.ToUpper(getEnv("FOLIO_DEFAULT_BENCHMARK", analytics.DefaultBenchmark)),
		RiskFreeRate:         getEnvAsFloat("FOLIO_RISK_FREE_RATE", 0),
		FrontierPoints:       getEnvAsInt("FOLIO_FRONTIER_POINTS", optimization.DefaultFrontierPoints),
		RollingWindow:        getEnvAsInt("FOLIO_ROLLING_WINDOW", analytics.DefaultRollingWindow),
		Solver:               getEnv("FOLIO_SOLVER", optimization.SolverActiveSet),
		CacheTTL:             getEnvAsDuration("FOLIO_CACHE_TTL", time.Hour),
		CacheCleanupSchedule: getEnv("FOLIO_CACHE_CLEANUP_SCHEDULE", "@every 15m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the pipelines cannot run with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("FOLIO_LOOKBACK_DAYS must be positive, got %d", c.LookbackDays)
	}
	if c.FrontierPoints <= 0 {
		return fmt.Errorf("FOLIO_FRONTIER_POINTS must be positive, got %d", c.FrontierPoints)
	}
	if c.RollingWindow <= 1 {
		return fmt.Errorf("FOLIO_ROLLING_WINDOW must be greater than 1, got %d", c.RollingWindow)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("FOLIO_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if _, err := optimization.NewSolver(c.Solver); err != nil {
		return fmt.Errorf("FOLIO_SOLVER: %w", err)
	}
	if c.CacheCleanupSchedule != "" {
		if err := scheduler.ParseSchedule(c.CacheCleanupSchedule); err != nil {
			return fmt.Errorf("invalid FOLIO_CACHE_CLEANUP_SCHEDULE %q: %w", c.CacheCleanupSchedule, err)
		}
	}
	return nil
}

// AnalyticsSettings returns the analytics pipeline settings
func (c *Config) AnalyticsSettings() analytics.Settings {
	return analytics.Settings{
		LookbackDays:     c.LookbackDays,
		DefaultBenchmark: c.DefaultBenchmark,
		RollingWindow:    c.RollingWindow,
		CacheTTL:         c.CacheTTL,
	}
}

// OptimizationSettings returns the optimization pipeline settings
func (c *Config) OptimizationSettings() optimization.Settings {
	return optimization.Settings{
		LookbackDays:   c.LookbackDays,
		RiskFreeRate:   c.RiskFreeRate,
		FrontierPoints: c.FrontierPoints,
		CacheTTL:       c.CacheTTL,
	}
}

// HistoryDBPath is the price-history database file.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CacheDBPath is the report-cache database file.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
