package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
)

// walFrameThreshold is the WAL size (in frames) above which a TRUNCATE
// checkpoint is forced.
const walFrameThreshold = 1000

// WALCheckpointJob checks WAL growth on each database and truncates large ones.
type WALCheckpointJob struct {
	log       zerolog.Logger
	databases []*database.DB
}

// NewWALCheckpointJob creates a new WALCheckpointJob. Nil databases are ignored.
func NewWALCheckpointJob(log zerolog.Logger, dbs ...*database.DB) *WALCheckpointJob {
	j := &WALCheckpointJob{log: log.With().Str("job", "wal_checkpoint").Logger()}
	for _, db := range dbs {
		if db != nil {
			j.databases = append(j.databases, db)
		}
	}
	return j
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the WAL checkpoint job
func (j *WALCheckpointJob) Run() error {
	checked := 0
	for _, db := range j.databases {
		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to check WAL checkpoint")
			continue
		}

		if frames > walFrameThreshold {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, truncating")
			if err := db.WALCheckpoint("TRUNCATE"); err != nil {
				j.log.Error().Err(err).Str("database", db.Name()).Msg("Forced checkpoint failed")
			}
		} else {
			j.log.Debug().Str("database", db.Name()).Int("wal_frames", frames).Msg("WAL checkpoint status OK")
		}
		checked++
	}

	j.log.Debug().Int("checked", checked).Msg("WAL checkpoint check completed")
	return nil
}
