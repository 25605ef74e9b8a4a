package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/portfolio"
)

// SnapshotJob captures one valuation snapshot per portfolio per run. The
// daily schedule plus the per-day snapshot key means a re-run after a
// failure overwrites instead of duplicating.
type SnapshotJob struct {
	portfolios      *portfolio.Repository
	service         *portfolio.Service
	history         marketdata.HistoryProvider // nil when no benchmark data is configured
	benchmarkTicker string
	log             zerolog.Logger
}

// NewSnapshotJob creates the daily snapshot job
func NewSnapshotJob(
	portfolios *portfolio.Repository,
	service *portfolio.Service,
	history marketdata.HistoryProvider,
	benchmarkTicker string,
	log zerolog.Logger,
) *SnapshotJob {
	return &SnapshotJob{
		portfolios:      portfolios,
		service:         service,
		history:         history,
		benchmarkTicker: benchmarkTicker,
		log:             log.With().Str("job", "snapshot").Logger(),
	}
}

// Name implements Job
func (j *SnapshotJob) Name() string { return "daily_snapshot" }

// Run records a snapshot for every portfolio. One portfolio failing does
// not stop the others.
func (j *SnapshotJob) Run() error {
	records, err := j.portfolios.List()
	if err != nil {
		return fmt.Errorf("failed to list portfolios: %w", err)
	}

	benchmarkValue := j.latestBenchmarkClose()

	var failures int
	for _, record := range records {
		snapshot, err := j.service.RecordSnapshot(record.ID, benchmarkValue)
		if err != nil {
			failures++
			j.log.Error().Err(err).Str("portfolio_id", record.ID).Msg("Snapshot failed")
			continue
		}
		j.log.Info().
			Str("portfolio_id", record.ID).
			Str("date", snapshot.Date).
			Float64("total_value", snapshot.TotalValue).
			Msg("Snapshot captured")
	}

	if failures > 0 {
		return fmt.Errorf("snapshot job: %d of %d portfolios failed", failures, len(records))
	}
	return nil
}

// latestBenchmarkClose returns the most recent benchmark close, or 0 when
// benchmark history is unavailable. Snapshots without a benchmark value
// fall back to the statistics provider at analysis time.
func (j *SnapshotJob) latestBenchmarkClose() float64 {
	if j.history == nil {
		return 0
	}
	closes, err := j.history.DailyCloses(j.benchmarkTicker, 1)
	if err != nil || len(closes) == 0 {
		j.log.Warn().Err(err).Str("benchmark", j.benchmarkTicker).
			Msg("Benchmark close unavailable for snapshot")
		return 0
	}
	return closes[len(closes)-1]
}
