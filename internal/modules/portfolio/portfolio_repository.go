package portfolio

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned for lookups of portfolios that do not exist
var ErrNotFound = errors.New("portfolio not found")

// Record is a stored portfolio's identity row
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Repository persists portfolio identity rows
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "portfolio").Logger(),
	}
}

// Create stores a new portfolio and returns its generated ID
func (r *Repository) Create(name, currency string) (Record, error) {
	if currency == "" {
		currency = "USD"
	}
	record := Record{ID: uuid.New().String(), Name: name, Currency: currency}

	_, err := r.db.Exec(
		`INSERT INTO portfolios (id, name, currency) VALUES (?, ?, ?)`,
		record.ID, record.Name, record.Currency)
	if err != nil {
		return Record{}, fmt.Errorf("failed to create portfolio: %w", err)
	}

	r.log.Info().Str("id", record.ID).Str("name", name).Msg("Portfolio created")
	return record, nil
}

// Get returns one portfolio's identity row
func (r *Repository) Get(id string) (Record, error) {
	var record Record
	err := r.db.QueryRow(
		`SELECT id, name, currency FROM portfolios WHERE id = ?`, id,
	).Scan(&record.ID, &record.Name, &record.Currency)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return record, nil
}

// List returns all portfolios ordered by name
func (r *Repository) List() ([]Record, error) {
	rows, err := r.db.Query(`SELECT id, name, currency FROM portfolios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.Name, &record.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a portfolio; positions and lots cascade
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
