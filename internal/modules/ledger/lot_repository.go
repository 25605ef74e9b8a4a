package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LotRepository persists tax lots in the portfolio database. Lots are
// append-only: sales update sold_quantity, nothing is ever deleted.
type LotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *sql.DB, log zerolog.Logger) *LotRepository {
	return &LotRepository{
		db:  db,
		log: log.With().Str("repository", "tax_lots").Logger(),
	}
}

// GetByPosition returns all lots for a position ordered by purchase date
// ascending (FIFO order).
func (r *LotRepository) GetByPosition(portfolioID, ticker string) ([]TaxLot, error) {
	rows, err := r.db.Query(`
		SELECT id, portfolio_id, ticker, quantity, cost_basis, purchase_date, sold_quantity, wash_sale
		FROM tax_lots
		WHERE portfolio_id = ? AND ticker = ?
		ORDER BY purchase_date ASC, id ASC`,
		portfolioID, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax lots: %w", err)
	}
	defer rows.Close()

	var lots []TaxLot
	for rows.Next() {
		var lot TaxLot
		var purchaseDate string
		var washSale int
		if err := rows.Scan(&lot.ID, &lot.PortfolioID, &lot.Ticker, &lot.Quantity,
			&lot.CostBasis, &purchaseDate, &lot.SoldQuantity, &washSale); err != nil {
			return nil, fmt.Errorf("failed to scan tax lot: %w", err)
		}
		lot.PurchaseDate, err = time.Parse("2006-01-02", purchaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase date %q: %w", purchaseDate, err)
		}
		lot.WashSale = washSale != 0
		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax lots: %w", err)
	}

	return lots, nil
}

// Create appends a new lot to the ledger
func (r *LotRepository) Create(lot TaxLot) (int64, error) {
	washSale := 0
	if lot.WashSale {
		washSale = 1
	}

	result, err := r.db.Exec(`
		INSERT INTO tax_lots (portfolio_id, ticker, quantity, cost_basis, purchase_date, sold_quantity, wash_sale)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lot.PortfolioID, lot.Ticker, lot.Quantity, lot.CostBasis,
		lot.PurchaseDate.Format("2006-01-02"), lot.SoldQuantity, washSale)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tax lot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get lot id: %w", err)
	}

	r.log.Debug().
		Str("ticker", lot.Ticker).
		Float64("quantity", lot.Quantity).
		Float64("cost_basis", lot.CostBasis).
		Msg("Tax lot created")

	return id, nil
}

// UpdateSoldQuantities persists the sold_quantity of the given lots inside
// one transaction, so a FIFO sale either lands completely or not at all.
func (r *LotRepository) UpdateSoldQuantities(lots []*TaxLot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, lot := range lots {
		if _, err := tx.Exec(
			`UPDATE tax_lots SET sold_quantity = ? WHERE id = ?`,
			lot.SoldQuantity, lot.ID); err != nil {
			return fmt.Errorf("failed to update lot %d: %w", lot.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lot updates: %w", err)
	}

	return nil
}
