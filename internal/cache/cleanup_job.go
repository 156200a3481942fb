package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes expired entries from the report cache.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates a new report cache cleanup job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "report_cache_cleanup").Logger(),
	}
}

// Run deletes expired reports.
func (j *CleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := j.repo.DeleteExpired(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired reports")
		return err
	}

	var total int64
	for kind, count := range results {
		j.log.Debug().Str("kind", kind).Int64("deleted", count).Msg("Cleaned up expired reports")
		total += count
	}
	if total > 0 {
		j.log.Info().Int64("total_deleted", total).Msg("Report cache cleanup completed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "report_cache_cleanup"
}
