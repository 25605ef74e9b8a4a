// Package risk converts a portfolio's valuation history into its
// risk/return profile: annualized return and volatility, Sharpe/Sortino,
// max drawdown, beta, alpha and Value-at-Risk.
package risk

import "github.com/foliotracker/engine/internal/modules/allocation"

// Calculation constants. The defaults stand in for portfolios without
// enough history; outputs built from them carry Estimated=true so
// downstream consumers can tell them apart from computed values.
const (
	RiskFreeRate          = 0.05 // 5% annual
	DefaultExpectedReturn = 0.08 // 8% placeholder for empty history
	DefaultStdDev         = 0.15 // 15% placeholder for empty history
	VaRConfidence         = 0.95
)

// ValueAtRisk reports the 95% empirical VaR both as a fraction and in
// portfolio currency.
type ValueAtRisk struct {
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// Analysis is the full risk report for one portfolio state
type Analysis struct {
	Volatility          float64            `json:"volatility"`
	Beta                float64            `json:"beta"`
	Alpha               float64            `json:"alpha"`
	SharpeRatio         float64            `json:"sharpe_ratio"`
	SortinoRatio        float64            `json:"sortino_ratio"`
	MaxDrawdown         float64            `json:"max_drawdown"`
	ValueAtRisk         ValueAtRisk        `json:"value_at_risk"`
	SectorConcentration []allocation.Group `json:"sector_concentration"`
	Recommendations     []string           `json:"recommendations"`
	Estimated           bool               `json:"estimated,omitempty"`
}

// SharpeRating maps a Sharpe ratio to its display rating
func SharpeRating(sharpe float64) string {
	switch {
	case sharpe >= 2:
		return "Excellent"
	case sharpe >= 1.5:
		return "Very Good"
	case sharpe >= 1:
		return "Good"
	case sharpe >= 0.5:
		return "Acceptable"
	default:
		return "Poor"
	}
}

// BetaInterpretation maps a beta value to its display interpretation
func BetaInterpretation(beta float64) string {
	switch {
	case beta > 1.5:
		return "Very High Volatility"
	case beta > 1.2:
		return "High Volatility"
	case beta >= 0.8:
		return "Market-Like"
	case beta >= 0.5:
		return "Low Volatility"
	default:
		return "Very Low Volatility"
	}
}
