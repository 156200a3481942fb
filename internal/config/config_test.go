package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("FOLIO_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.DirExists(t, dir)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 730, cfg.LookbackDays)
	assert.Equal(t, "SPY", cfg.DefaultBenchmark)
	assert.Equal(t, 0.0, cfg.RiskFreeRate)
	assert.Equal(t, 25, cfg.FrontierPoints)
	assert.Equal(t, 60, cfg.RollingWindow)
	assert.Equal(t, "active_set", cfg.Solver)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "@every 15m", cfg.CacheCleanupSchedule)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.HistoryDBPath())
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CacheDBPath())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FOLIO_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("FOLIO_DEFAULT_BENCHMARK", "qqq")
	t.Setenv("FOLIO_RISK_FREE_RATE", "0.02")
	t.Setenv("FOLIO_SOLVER", "penalty")
	t.Setenv("FOLIO_CACHE_TTL", "0s")
	t.Setenv("FOLIO_LOOKBACK_DAYS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "QQQ", cfg.DefaultBenchmark)
	assert.Equal(t, 0.02, cfg.RiskFreeRate)
	assert.Equal(t, "penalty", cfg.Solver)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, 730, cfg.LookbackDays)

	assert.Equal(t, 0.02, cfg.OptimizationSettings().RiskFreeRate)
	assert.Equal(t, "QQQ", cfg.AnalyticsSettings().DefaultBenchmark)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                 8001,
			LookbackDays:         730,
			FrontierPoints:       25,
			RollingWindow:        60,
			CacheTTL:             time.Hour,
			CacheCleanupSchedule: "0 */5 * * * *",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "port", mutate: func(c *Config) { c.Port = 0 }},
		{name: "lookback", mutate: func(c *Config) { c.LookbackDays = -1 }},
		{name: "frontier points", mutate: func(c *Config) { c.FrontierPoints = 0 }},
		{name: "rolling window", mutate: func(c *Config) { c.RollingWindow = 1 }},
		{name: "cache ttl", mutate: func(c *Config) { c.CacheTTL = -time.Second }},
		{name: "solver", mutate: func(c *Config) { c.Solver = "simulated_annealing" }},
		{name: "schedule", mutate: func(c *Config) { c.CacheCleanupSchedule = "every now and then" }},
		{name: "five field schedule", mutate: func(c *Config) { c.CacheCleanupSchedule = "*/5 * * * *" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
