// Package ledger maintains per-purchase cost-basis lots for a position and
// computes FIFO-based realized/unrealized gain splits by holding period.
// The ledger is append-only: lots are never physically deleted once
// created, even after they are fully consumed.
package ledger

import "time"

// LongTermHoldingDays is the holding period boundary: lots held longer
// than this classify as long-term for tax purposes.
const LongTermHoldingDays = 365

// TaxLot is one discrete purchase event feeding FIFO accounting.
// Invariant: SoldQuantity <= Quantity at all times.
type TaxLot struct {
	ID           int64     `json:"id"`
	PortfolioID  string    `json:"portfolio_id"`
	Ticker       string    `json:"ticker"`
	Quantity     float64   `json:"quantity"`
	CostBasis    float64   `json:"cost_basis"` // per unit
	PurchaseDate time.Time `json:"purchase_date"`
	SoldQuantity float64   `json:"sold_quantity"`
	WashSale     bool      `json:"wash_sale"`
}

// Remaining returns the unconsumed quantity of the lot
func (l TaxLot) Remaining() float64 {
	return l.Quantity - l.SoldQuantity
}

// LotDetail is the per-lot breakdown produced by AnalyzeLots
type LotDetail struct {
	LotID             int64     `json:"lot_id"`
	PurchaseDate      time.Time `json:"purchase_date"`
	RemainingQuantity float64   `json:"remaining_quantity"`
	CostBasis         float64   `json:"cost_basis"`
	TotalCost         float64   `json:"total_cost"`
	HoldingDays       int       `json:"holding_days"`
	LongTerm          bool      `json:"long_term"`
	UnrealizedGain    float64   `json:"unrealized_gain"`
	UnrealizedGainPct float64   `json:"unrealized_gain_pct"`
	WashSale          bool      `json:"wash_sale"`
}

// LotSummary aggregates remaining quantity and unrealized gain by holding
// period bucket.
type LotSummary struct {
	ShortTermQuantity   float64 `json:"short_term_quantity"`
	LongTermQuantity    float64 `json:"long_term_quantity"`
	ShortTermGain       float64 `json:"short_term_gain"`
	LongTermGain        float64 `json:"long_term_gain"`
	TotalUnrealizedGain float64 `json:"total_unrealized_gain"`
}

// Analysis is the full FIFO tax analysis for one position
type Analysis struct {
	Ticker        string      `json:"ticker"`
	CurrentPrice  *float64    `json:"current_price,omitempty"`
	TotalQuantity float64     `json:"total_quantity"`
	Lots          []LotDetail `json:"lots"`
	Summary       LotSummary  `json:"summary"`
}

// SaleAllocation records how much of a sale one lot absorbed
type SaleAllocation struct {
	LotID        int64   `json:"lot_id"`
	Quantity     float64 `json:"quantity"`
	CostBasis    float64 `json:"cost_basis"`
	LongTerm     bool    `json:"long_term"`
	RealizedGain float64 `json:"realized_gain"`
}
