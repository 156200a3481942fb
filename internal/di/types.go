// Package di wires databases, services and background jobs into a Container.
package di

import (
	"github.com/aristath/folio/internal/cache"
	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/metrics"
	"github.com/aristath/folio/internal/modules/analytics"
	"github.com/aristath/folio/internal/modules/marketdata"
	"github.com/aristath/folio/internal/modules/optimization"
	"github.com/aristath/folio/internal/scheduler"
)

// Container holds every long-lived dependency of the application.
//
// Databases: history (imported bars and instrument metadata) and cache
// (report cache). Services read prices through HistoryStore and share the
// report cache and metrics.
type Container struct {
	HistoryDB *database.DB
	CacheDB   *database.DB

	HistoryStore *marketdata.HistoryStore
	ReportCache  *cache.Repository
	Metrics      *metrics.Metrics

	AnalyticsService    *analytics.Service
	OptimizationService *optimization.Service

	Scheduler *scheduler.Scheduler
}

// Close closes every open database.
func (c *Container) Close() {
	for _, db := range []*database.DB{c.HistoryDB, c.CacheDB} {
		if db != nil {
			_ = db.Close()
		}
	}
}

// Databases returns the open databases.
func (c *Container) Databases() []*database.DB {
	out := make([]*database.DB, 0, 2)
	for _, db := range []*database.DB{c.HistoryDB, c.CacheDB} {
		if db != nil {
			out = append(out, db)
		}
	}
	return out
}
