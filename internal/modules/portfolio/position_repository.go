package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
)

// PositionRepository persists positions. One row per (portfolio, ticker);
// writes go through Upsert so ingestion paths cannot create duplicates.
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repository", "position").Logger(),
	}
}

// GetByPortfolio returns all of a portfolio's positions, closed ones
// included, ordered by ticker.
func (r *PositionRepository) GetByPortfolio(portfolioID string) ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT id, portfolio_id, ticker, quantity, avg_cost_basis, current_price, sector, asset_class, currency
		FROM positions WHERE portfolio_id = ? ORDER BY ticker`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}
	return positions, rows.Err()
}

// GetByTicker returns one position, or (zero, false) when absent
func (r *PositionRepository) GetByTicker(portfolioID, ticker string) (domain.Position, bool, error) {
	row := r.db.QueryRow(`
		SELECT id, portfolio_id, ticker, quantity, avg_cost_basis, current_price, sector, asset_class, currency
		FROM positions WHERE portfolio_id = ? AND ticker = ?`,
		portfolioID, domain.NormalizeTicker(ticker))

	position, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return domain.Position{}, false, nil
	}
	if err != nil {
		return domain.Position{}, false, fmt.Errorf("failed to get position: %w", err)
	}
	return position, true, nil
}

// Upsert inserts or replaces the position row for (portfolio, ticker)
func (r *PositionRepository) Upsert(position domain.Position) error {
	sector := position.Sector
	if sector == "" {
		sector = "Other"
	}
	assetClass := position.AssetClass
	if assetClass == "" {
		assetClass = domain.AssetStock
	}
	currency := position.Currency
	if currency == "" {
		currency = "USD"
	}

	_, err := r.db.Exec(`
		INSERT INTO positions (portfolio_id, ticker, quantity, avg_cost_basis, current_price, sector, asset_class, currency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(portfolio_id, ticker) DO UPDATE SET
			quantity = excluded.quantity,
			avg_cost_basis = excluded.avg_cost_basis,
			current_price = excluded.current_price,
			sector = excluded.sector,
			asset_class = excluded.asset_class,
			currency = excluded.currency,
			updated_at = datetime('now')`,
		position.PortfolioID, domain.NormalizeTicker(position.Ticker), position.Quantity,
		position.AvgCostBasis, position.CurrentPrice, sector, string(assetClass), currency)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}
	return nil
}

// UpdatePrice refreshes the cached market price for one ticker
func (r *PositionRepository) UpdatePrice(portfolioID, ticker string, price float64) error {
	_, err := r.db.Exec(`
		UPDATE positions SET current_price = ?, updated_at = datetime('now')
		WHERE portfolio_id = ? AND ticker = ?`,
		price, portfolioID, domain.NormalizeTicker(ticker))
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}
	return nil
}

// UpdateQuantity sets a position's quantity after a trade settles
func (r *PositionRepository) UpdateQuantity(portfolioID, ticker string, quantity float64) error {
	_, err := r.db.Exec(`
		UPDATE positions SET quantity = ?, updated_at = datetime('now')
		WHERE portfolio_id = ? AND ticker = ?`,
		quantity, portfolioID, domain.NormalizeTicker(ticker))
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (domain.Position, error) {
	var position domain.Position
	var price sql.NullFloat64
	var assetClass string

	err := row.Scan(&position.ID, &position.PortfolioID, &position.Ticker,
		&position.Quantity, &position.AvgCostBasis, &price,
		&position.Sector, &assetClass, &position.Currency)
	if err != nil {
		return domain.Position{}, err
	}

	if price.Valid {
		position.CurrentPrice = &price.Float64
	}
	position.AssetClass = domain.ParseAssetClass(assetClass)
	return position, nil
}
