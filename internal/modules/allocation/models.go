// Package allocation aggregates position market values by sector and
// asset class, computes portfolio weights and flags concentration risk.
package allocation

// Concentration thresholds. A sector above the alert threshold produces
// an alert; above the high threshold the alert escalates to severity high.
const (
	SectorAlertThresholdPct = 40.0 // alert above 40% of portfolio
	SectorHighThresholdPct  = 50.0 // high severity above 50%
	SectorTargetPct         = 30.0 // suggested reduction target
)

// Group is one sector or asset-class bucket with its aggregate value and
// portfolio weight.
type Group struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	WeightPct float64 `json:"weight_pct"`
	Positions int     `json:"positions"`
	Color     string  `json:"color"`
}

// Alert flags a concentration limit breach
type Alert struct {
	Type       string  `json:"type"` // "sector"
	Name       string  `json:"name"`
	WeightPct  float64 `json:"weight_pct"`
	Severity   string  `json:"severity"` // "medium" (40-50%), "high" (>50%)
	TargetPct  float64 `json:"target_pct"`
	Suggestion string  `json:"suggestion"`
}

// Breakdown is the full allocation analysis for one position set
type Breakdown struct {
	TotalValue   float64 `json:"total_value"`
	BySector     []Group `json:"by_sector"`
	ByAssetClass []Group `json:"by_asset_class"`
	Alerts       []Alert `json:"alerts"`
}

// sectorPalette maps well-known sector names to stable display colors.
// Unrecognized names fall back to neutralColor. Purely presentational,
// but the mapping must be deterministic for a given name.
var sectorPalette = map[string]string{
	"Technology":             "#3b82f6",
	"Healthcare":             "#10b981",
	"Financial Services":     "#f59e0b",
	"Consumer Cyclical":      "#8b5cf6",
	"Consumer Defensive":     "#14b8a6",
	"Communication Services": "#ec4899",
	"Industrials":            "#6366f1",
	"Energy":                 "#ef4444",
	"Utilities":              "#84cc16",
	"Real Estate":            "#f97316",
	"Basic Materials":        "#06b6d4",
	"Other":                  "#9ca3af",
	// Asset classes share the palette
	"STOCK":       "#3b82f6",
	"ETF":         "#10b981",
	"BOND":        "#f59e0b",
	"CRYPTO":      "#8b5cf6",
	"REIT":        "#f97316",
	"CASH":        "#84cc16",
	"MUTUAL_FUND": "#14b8a6",
	"OPTION":      "#ec4899",
	"OTHER":       "#9ca3af",
}

const neutralColor = "#9ca3af"

// ColorFor returns the palette color for a sector or asset-class name
func ColorFor(name string) string {
	if color, ok := sectorPalette[name]; ok {
		return color
	}
	return neutralColor
}
