package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/services"
)

// backupTimeout bounds one upload; a stuck upload must not pile up runs
const backupTimeout = 10 * time.Minute

// BackupJob uploads the portfolio database to S3
type BackupJob struct {
	backup *services.BackupService
	dbPath string
	log    zerolog.Logger
}

// NewBackupJob creates the database backup job
func NewBackupJob(backup *services.BackupService, dbPath string, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backup: backup,
		dbPath: dbPath,
		log:    log.With().Str("job", "backup").Logger(),
	}
}

// Name implements Job
func (j *BackupJob) Name() string { return "database_backup" }

// Run implements Job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	key, err := j.backup.BackupFile(ctx, j.dbPath)
	if err != nil {
		return err
	}

	j.log.Info().Str("key", key).Msg("Database backup complete")
	return nil
}
