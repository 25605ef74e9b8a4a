package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
)

// SnapshotRepository persists daily valuation snapshots. The (portfolio,
// date) primary key enforces one snapshot per day; a re-run of the daily
// job overwrites the same row instead of duplicating it.
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repository", "snapshot").Logger(),
	}
}

// Upsert stores a snapshot, replacing any existing row for the same day
func (r *SnapshotRepository) Upsert(portfolioID string, snapshot domain.Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO snapshots (portfolio_id, date, total_value, cumulative_return, benchmark_value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, date) DO UPDATE SET
			total_value = excluded.total_value,
			cumulative_return = excluded.cumulative_return,
			benchmark_value = excluded.benchmark_value`,
		portfolioID, snapshot.Date, snapshot.TotalValue,
		snapshot.CumulativeReturn, snapshot.BenchmarkValue)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// GetRecent returns up to limit snapshots, most recent first, the order
// the statistics layer expects. limit <= 0 means no limit.
func (r *SnapshotRepository) GetRecent(portfolioID string, limit int) ([]domain.Snapshot, error) {
	query := `
		SELECT date, total_value, cumulative_return, benchmark_value
		FROM snapshots WHERE portfolio_id = ? ORDER BY date DESC`
	args := []interface{}{portfolioID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		var snapshot domain.Snapshot
		if err := rows.Scan(&snapshot.Date, &snapshot.TotalValue,
			&snapshot.CumulativeReturn, &snapshot.BenchmarkValue); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// Earliest returns the oldest snapshot, the baseline for cumulative
// return. ok is false for portfolios with no history yet.
func (r *SnapshotRepository) Earliest(portfolioID string) (domain.Snapshot, bool, error) {
	var snapshot domain.Snapshot
	err := r.db.QueryRow(`
		SELECT date, total_value, cumulative_return, benchmark_value
		FROM snapshots WHERE portfolio_id = ? ORDER BY date ASC LIMIT 1`,
		portfolioID,
	).Scan(&snapshot.Date, &snapshot.TotalValue, &snapshot.CumulativeReturn, &snapshot.BenchmarkValue)
	if err == sql.ErrNoRows {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to get earliest snapshot: %w", err)
	}
	return snapshot, true, nil
}
