// Package domain holds the core data records shared across modules.
// These are plain structs: the calculation modules accept fully
// materialized data and never reach into storage themselves.
package domain

import "strings"

// AssetClass categorizes a holding
type AssetClass string

const (
	AssetStock      AssetClass = "STOCK"
	AssetETF        AssetClass = "ETF"
	AssetBond       AssetClass = "BOND"
	AssetCrypto     AssetClass = "CRYPTO"
	AssetREIT       AssetClass = "REIT"
	AssetCash       AssetClass = "CASH"
	AssetMutualFund AssetClass = "MUTUAL_FUND"
	AssetOption     AssetClass = "OPTION"
	AssetOther      AssetClass = "OTHER"
)

// ParseAssetClass normalizes a free-form asset class string, defaulting to
// OTHER for unrecognized values.
func ParseAssetClass(s string) AssetClass {
	normalized := AssetClass(strings.ToUpper(strings.TrimSpace(s)))
	switch normalized {
	case AssetStock, AssetETF, AssetBond, AssetCrypto, AssetREIT,
		AssetCash, AssetMutualFund, AssetOption:
		return normalized
	default:
		return AssetOther
	}
}

// Position represents a holding of one ticker within one portfolio.
// Quantity 0 means the position is closed and excluded from active
// aggregates.
type Position struct {
	ID           int64      `json:"id,omitempty"`
	PortfolioID  string     `json:"portfolio_id,omitempty"`
	Ticker       string     `json:"ticker"`
	Quantity     float64    `json:"quantity"`
	AvgCostBasis float64    `json:"avg_cost_basis"`
	CurrentPrice *float64   `json:"current_price,omitempty"` // nil until priced
	Sector       string     `json:"sector"`
	AssetClass   AssetClass `json:"asset_class"`
	Currency     string     `json:"currency"`
}

// MarketValue derives the position's value: quantity × current price, or
// quantity × cost basis while the position is unpriced. Missing price data
// never null-propagates into aggregate sums.
func (p Position) MarketValue() float64 {
	price := p.AvgCostBasis
	if p.CurrentPrice != nil && *p.CurrentPrice > 0 {
		price = *p.CurrentPrice
	}
	return p.Quantity * price
}

// Active reports whether the position participates in aggregates.
func (p Position) Active() bool {
	return p.Quantity > 0
}

// Snapshot is a point-in-time portfolio valuation, one sample in the
// return/risk time series. Snapshots are deduplicated per date: one per
// day per portfolio.
type Snapshot struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	TotalValue       float64 `json:"total_value"`
	CumulativeReturn float64 `json:"cumulative_return"`
	BenchmarkValue   float64 `json:"benchmark_value,omitempty"`
}

// ChangeAction is the kind of hypothetical trade a what-if change applies
type ChangeAction string

const (
	ChangeAdd    ChangeAction = "add"
	ChangeRemove ChangeAction = "remove"
	ChangeAdjust ChangeAction = "adjust"
)

// Valid reports whether the action is one of add/remove/adjust.
func (a ChangeAction) Valid() bool {
	return a == ChangeAdd || a == ChangeRemove || a == ChangeAdjust
}

// Change is one hypothetical position change fed to the simulation engine
type Change struct {
	Ticker   string       `json:"ticker"`
	Action   ChangeAction `json:"action"`
	Quantity float64      `json:"quantity"`
	Price    *float64     `json:"price,omitempty"`
}

// MetricSet is the computed risk/return profile for one portfolio state.
// Pure function output, never mutated after creation.
type MetricSet struct {
	TotalValue        float64 `json:"total_value"`
	ExpectedReturn    float64 `json:"expected_return"`
	StandardDeviation float64 `json:"standard_deviation"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	Beta              float64 `json:"beta"`
	// Estimated is true when insufficient history forced the documented
	// default values (8% return, 15% volatility) instead of computed ones.
	Estimated bool `json:"estimated,omitempty"`
}

// Portfolio bundles the inputs an engine call operates on
type Portfolio struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Positions []Position `json:"positions"`
	Snapshots []Snapshot `json:"snapshots,omitempty"` // most recent first
}

// NormalizeTicker uppercases and trims a symbol for map keying
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
