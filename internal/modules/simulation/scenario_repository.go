package simulation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
)

// ScenarioRepository persists named what-if scenarios. Change lists are
// stored as opaque JSON; the engine never reads them back itself.
type ScenarioRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *sql.DB, log zerolog.Logger) *ScenarioRepository {
	return &ScenarioRepository{
		db:  db,
		log: log.With().Str("repository", "scenario").Logger(),
	}
}

// Create stores a scenario and returns it with its generated ID
func (r *ScenarioRepository) Create(portfolioID, name, description string, changes []domain.Change) (Scenario, error) {
	payload, err := json.Marshal(changes)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to encode scenario changes: %w", err)
	}

	scenario := Scenario{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Name:        name,
		Description: description,
		Changes:     changes,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = r.db.Exec(`
		INSERT INTO scenarios (id, portfolio_id, name, description, changes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		scenario.ID, scenario.PortfolioID, scenario.Name, scenario.Description,
		string(payload), scenario.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to create scenario: %w", err)
	}

	r.log.Info().Str("id", scenario.ID).Str("name", name).Msg("Scenario saved")
	return scenario, nil
}

// Get returns one scenario by ID
func (r *ScenarioRepository) Get(id string) (Scenario, error) {
	row := r.db.QueryRow(`
		SELECT id, portfolio_id, name, description, changes, created_at
		FROM scenarios WHERE id = ?`, id)

	scenario, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return Scenario{}, fmt.Errorf("scenario %s not found", id)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to get scenario: %w", err)
	}
	return scenario, nil
}

// GetByPortfolio returns a portfolio's scenarios, newest first
func (r *ScenarioRepository) GetByPortfolio(portfolioID string) ([]Scenario, error) {
	rows, err := r.db.Query(`
		SELECT id, portfolio_id, name, description, changes, created_at
		FROM scenarios WHERE portfolio_id = ? ORDER BY created_at DESC`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, rows.Err()
}

// Delete removes a scenario
func (r *ScenarioRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("scenario %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScenario(row rowScanner) (Scenario, error) {
	var scenario Scenario
	var payload, createdAt string

	err := row.Scan(&scenario.ID, &scenario.PortfolioID, &scenario.Name,
		&scenario.Description, &payload, &createdAt)
	if err != nil {
		return Scenario{}, err
	}

	if err := json.Unmarshal([]byte(payload), &scenario.Changes); err != nil {
		return Scenario{}, fmt.Errorf("failed to decode scenario changes: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		scenario.CreatedAt = ts
	}
	return scenario, nil
}
