package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/cache"
	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/metrics"
	"github.com/aristath/folio/internal/modules/analytics"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/modules/optimization"
)

// InitializeServices builds the store, report cache and pipelines on top of
// the open databases.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.HistoryDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized before services")
	}

	container.HistoryStore = marketdata.NewHistoryStore(container.HistoryDB.Conn(), log)
	container.ReportCache = cache.NewRepository(container.CacheDB.Conn())
	container.Metrics = metrics.New()

	container.AnalyticsService = analytics.NewService(container.HistoryStore, cfg.AnalyticsSettings(), log)
	container.AnalyticsService.SetCache(container.ReportCache)
	container.AnalyticsService.SetMetrics(container.Metrics)

	solver, err := optimization.NewSolver(cfg.Solver)
	if err != nil {
		return fmt.Errorf("failed to create solver: %w", err)
	}
	container.OptimizationService = optimization.NewService(container.HistoryStore, solver, cfg.OptimizationSettings(), log)
	container.OptimizationService.SetCache(container.ReportCache)
	container.OptimizationService.SetMetrics(container.Metrics)

	log.Info().
		Str("solver", cfg.Solver).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Services initialized")

	return nil
}
