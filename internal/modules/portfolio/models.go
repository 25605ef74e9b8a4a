// Package portfolio ties the calculation modules to stored portfolio
// state: positions, valuation snapshots, tax lots, and the KPI bundle
// the dashboard renders.
package portfolio

// ValuePercent pairs an absolute value with its percentage
type ValuePercent struct {
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// RatedValue pairs a metric with its display rating
type RatedValue struct {
	Value  float64 `json:"value"`
	Rating string  `json:"rating"`
}

// InterpretedValue pairs a metric with its display interpretation
type InterpretedValue struct {
	Value          float64 `json:"value"`
	Interpretation string  `json:"interpretation"`
}

// SingleValue wraps a bare metric for shape consistency with the other
// KPI fields.
type SingleValue struct {
	Value float64 `json:"value"`
}

// KPIBundle is the dashboard's headline numbers for one portfolio
type KPIBundle struct {
	TotalValue    float64          `json:"total_value"`
	UnrealizedPL  ValuePercent     `json:"unrealized_pl"`
	SharpeRatio   RatedValue       `json:"sharpe_ratio"`
	Beta          InterpretedValue `json:"beta"`
	MaxDrawdown   SingleValue      `json:"max_drawdown"`
	CashAvailable ValuePercent     `json:"cash_available"`
	Estimated     bool             `json:"estimated,omitempty"`
}

// TradeRequest is a buy or sell instruction against one position
type TradeRequest struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Date     string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}
