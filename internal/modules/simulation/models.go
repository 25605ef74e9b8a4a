// Package simulation applies hypothetical change-sets to a portfolio and
// reports how its risk/return profile would move, without touching real
// holdings.
package simulation

import (
	"errors"
	"time"

	"github.com/foliotracker/engine/internal/domain"
)

// Diversification heuristic applied when the simulated set contains a
// position with no price history of its own. A flat adjustment relative
// to baseline, documented as a placeholder for multi-asset covariance
// re-estimation.
const (
	NewPositionStdDevFactor = 0.95 // -5% standard deviation
	NewPositionReturnFactor = 1.02 // +2% expected return
)

// ErrEmptyChanges is returned when a simulation is requested without any
// changes. Callers are expected to validate before invoking.
var ErrEmptyChanges = errors.New("simulation requires at least one change")

// SimulatedPosition is an ephemeral projection of a position after the
// change-set is applied. Never persisted.
type SimulatedPosition struct {
	Ticker       string            `json:"ticker"`
	Quantity     float64           `json:"quantity"`
	AvgCostBasis float64           `json:"avg_cost_basis"`
	CurrentPrice *float64          `json:"current_price,omitempty"`
	Sector       string            `json:"sector"`
	AssetClass   domain.AssetClass `json:"asset_class"`
	MarketValue  float64           `json:"market_value"`
	WeightPct    float64           `json:"weight_pct"`
	IsNew        bool              `json:"is_new"`
	IsRemoved    bool              `json:"is_removed"`
}

// FieldDelta reports one metric before and after the simulation
type FieldDelta struct {
	Current   float64 `json:"current"`
	Simulated float64 `json:"simulated"`
	Change    float64 `json:"change"`
}

// Delta covers every Metric Set field plus total value
type Delta struct {
	TotalValue        FieldDelta `json:"total_value"`
	ExpectedReturn    FieldDelta `json:"expected_return"`
	StandardDeviation FieldDelta `json:"standard_deviation"`
	SharpeRatio       FieldDelta `json:"sharpe_ratio"`
	MaxDrawdown       FieldDelta `json:"max_drawdown"`
	Beta              FieldDelta `json:"beta"`
}

// Result is the full simulation output
type Result struct {
	Current            domain.MetricSet    `json:"current"`
	Simulated          domain.MetricSet    `json:"simulated"`
	Delta              Delta               `json:"delta"`
	EfficientFrontier  Frontier            `json:"efficient_frontier"`
	SimulatedPositions []SimulatedPosition `json:"simulated_positions"`
}

// Scenario is a named, persisted change list. The engine itself never
// reads scenarios; they exist so users can re-run a saved what-if.
type Scenario struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolio_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Changes     []domain.Change `json:"changes"`
	CreatedAt   time.Time       `json:"created_at"`
}
