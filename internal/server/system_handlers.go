package server

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/aristath/folio/internal/utils"
)

// Version is reported by /health.
var Version = "dev"

// SystemHandlers serves health, status and job endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	databases []*database.DB
	scheduler *scheduler.Scheduler
	jobs      JobLookup
	started   time.Time
}

// NewSystemHandlers creates system handlers. Nil scheduler and jobs are allowed.
func NewSystemHandlers(log zerolog.Logger, databases []*database.DB, sched *scheduler.Scheduler, jobs JobLookup) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		databases: databases,
		scheduler: sched,
		jobs:      jobs,
		started:   time.Now(),
	}
}

// DatabaseHealth is the health of one database.
type DatabaseHealth struct {
	Name    string          `json:"name"`
	Healthy bool            `json:"healthy"`
	Error   string          `json:"error,omitempty"`
	Stats   *database.Stats `json:"stats,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string           `json:"status"`
	Service       string           `json:"service"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Goroutines    int              `json:"goroutines"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	Databases     []DatabaseHealth `json:"databases"`
}

// HandleHealth handles GET /health. Any unhealthy database turns the
// status to "degraded" and the response code to 503.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:        "healthy",
		Service:       "folio",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Databases:     h.checkDatabases(ctx, false),
	}
	resp.CPUPercent, resp.MemoryPercent = h.systemStats()

	status := http.StatusOK
	for _, db := range resp.Databases {
		if !db.Healthy {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	utils.WriteJSON(w, r, status, resp, h.log)
}

// HandleStatus handles GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	jobs := []string{}
	if h.scheduler != nil {
		jobs = h.scheduler.Jobs()
		sort.Strings(jobs)
	}

	utils.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"databases": h.checkDatabases(ctx, true),
		"jobs":      jobs,
	}, h.log)
}

// HandleRunJob handles POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil || h.scheduler == nil {
		utils.WriteError(w, r, http.StatusServiceUnavailable, "scheduler not available", h.log)
		return
	}
	job, ok := h.jobs.ByName(name)
	if !ok {
		utils.WriteError(w, r, http.StatusNotFound, "unknown job "+name, h.log)
		return
	}

	start := time.Now()
	if err := h.scheduler.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		utils.WriteError(w, r, http.StatusInternalServerError, err.Error(), h.log)
		return
	}

	utils.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"job":         name,
		"duration_ms": time.Since(start).Milliseconds(),
	}, h.log)
}

// checkDatabases runs the integrity check of every database, optionally
// collecting file statistics.
func (h *SystemHandlers) checkDatabases(ctx context.Context, withStats bool) []DatabaseHealth {
	out := make([]DatabaseHealth, 0, len(h.databases))
	for _, db := range h.databases {
		entry := DatabaseHealth{Name: db.Name(), Healthy: true}
		if err := db.HealthCheck(ctx); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			entry.Healthy = false
			entry.Error = err.Error()
		}
		if withStats {
			if stats, err := db.GetStats(); err == nil {
				entry.Stats = stats
			}
		}
		out = append(out, entry)
	}
	return out
}

// systemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) systemStats() (float64, float64) {
	// short sample so /health stays fast
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}
