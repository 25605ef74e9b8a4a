// Package scheduler drives the engine's background jobs: the nightly
// valuation snapshot and the database backup upload.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work the scheduler can run
type Job interface {
	Run() error
	Name() string
}

// Scheduler wraps a cron runner with logging around every job execution
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler using six-field cron expressions (seconds first)
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins dispatching registered jobs on their schedules
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop halts scheduling and blocks until in-flight jobs finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job under a cron schedule. Expressions include the
// seconds field, e.g. "0 5 18 * * MON-FRI" for 18:05 on weekdays or
// "@every 30s". Job errors are logged, never fatal: one failed snapshot
// must not take the scheduler down.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		start := time.Now()
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Dur("elapsed", time.Since(start)).
				Msg("Job failed")
			return
		}
		s.log.Debug().
			Str("job", job.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("Job completed")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately, bypassing its schedule. Used by the
// manual trigger endpoints.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job on demand")
	return job.Run()
}
