package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/cache"
	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/scheduler"
)

// walCheckpointSchedule runs the WAL checkpoint job hourly.
const walCheckpointSchedule = "0 0 * * * *"

// JobInstances holds the registered jobs for manual triggering.
type JobInstances struct {
	CacheCleanup  scheduler.Job
	WALCheckpoint scheduler.Job
}

// ByName returns the job registered under name.
func (j *JobInstances) ByName(name string) (scheduler.Job, bool) {
	for _, job := range []scheduler.Job{j.CacheCleanup, j.WALCheckpoint} {
		if job != nil && job.Name() == name {
			return job, true
		}
	}
	return nil, false
}

// RegisterJobs creates the scheduler and registers maintenance jobs. An empty
// cleanup schedule leaves the cache cleanup job manual-only.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	container.Scheduler = sched

	jobs := &JobInstances{
		CacheCleanup:  cache.NewCleanupJob(container.ReportCache, log),
		WALCheckpoint: scheduler.NewWALCheckpointJob(log, container.Databases()...),
	}

	if cfg.CacheCleanupSchedule != "" {
		if err := sched.AddJob(cfg.CacheCleanupSchedule, jobs.CacheCleanup); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", jobs.CacheCleanup.Name(), err)
		}
	}
	if err := sched.AddJob(walCheckpointSchedule, jobs.WALCheckpoint); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", jobs.WALCheckpoint.Name(), err)
	}

	return jobs, nil
}
