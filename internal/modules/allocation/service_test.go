package allocation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotracker/engine/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func TestAnalyze_WeightsSumTo100(t *testing.T) {
	svc := NewService(zerolog.Nop())

	positions := []domain.Position{
		{Ticker: "AAPL", Quantity: 10, AvgCostBasis: 150, CurrentPrice: ptr(200), Sector: "Technology", AssetClass: domain.AssetStock},
		{Ticker: "JNJ", Quantity: 20, AvgCostBasis: 140, CurrentPrice: ptr(160), Sector: "Healthcare", AssetClass: domain.AssetStock},
		{Ticker: "VNQ", Quantity: 30, AvgCostBasis: 80, CurrentPrice: ptr(90), Sector: "Real Estate", AssetClass: domain.AssetREIT},
	}

	breakdown := svc.Analyze(positions)

	var sectorSum, classSum float64
	for _, g := range breakdown.BySector {
		sectorSum += g.WeightPct
	}
	for _, g := range breakdown.ByAssetClass {
		classSum += g.WeightPct
	}
	assert.InDelta(t, 100.0, sectorSum, 1e-9)
	assert.InDelta(t, 100.0, classSum, 1e-9)
}

func TestAnalyze_SortsDescendingAndUsesCostBasisFallback(t *testing.T) {
	svc := NewService(zerolog.Nop())

	positions := []domain.Position{
		// Unpriced position: valued at quantity × cost basis
		{Ticker: "SMALL", Quantity: 10, AvgCostBasis: 10, Sector: "Utilities", AssetClass: domain.AssetStock},
		{Ticker: "BIG", Quantity: 10, AvgCostBasis: 50, CurrentPrice: ptr(100), Sector: "Technology", AssetClass: domain.AssetStock},
	}

	breakdown := svc.Analyze(positions)
	require.Len(t, breakdown.BySector, 2)
	assert.Equal(t, "Technology", breakdown.BySector[0].Name)
	assert.Equal(t, 1000.0, breakdown.BySector[0].Value)
	assert.Equal(t, "Utilities", breakdown.BySector[1].Name)
	assert.Equal(t, 100.0, breakdown.BySector[1].Value)
}

func TestAnalyze_ExcludesClosedPositions(t *testing.T) {
	svc := NewService(zerolog.Nop())

	positions := []domain.Position{
		{Ticker: "OPEN", Quantity: 5, AvgCostBasis: 100, Sector: "Energy", AssetClass: domain.AssetStock},
		{Ticker: "CLOSED", Quantity: 0, AvgCostBasis: 100, Sector: "Technology", AssetClass: domain.AssetStock},
	}

	breakdown := svc.Analyze(positions)
	require.Len(t, breakdown.BySector, 1)
	assert.Equal(t, "Energy", breakdown.BySector[0].Name)
	assert.InDelta(t, 100.0, breakdown.BySector[0].WeightPct, 1e-9)
}

func TestAnalyze_ConcentrationAlerts(t *testing.T) {
	svc := NewService(zerolog.Nop())

	tests := []struct {
		name         string
		techValue    float64
		otherValue   float64
		wantAlerts   int
		wantSeverity string
	}{
		{"below threshold", 39, 61, 0, ""},
		{"medium severity", 45, 55, 1, "medium"},
		{"high severity", 60, 40, 1, "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := []domain.Position{
				{Ticker: "TECH", Quantity: 1, AvgCostBasis: tt.techValue, Sector: "Technology", AssetClass: domain.AssetStock},
				{Ticker: "DEF", Quantity: 1, AvgCostBasis: tt.otherValue, Sector: "Consumer Defensive", AssetClass: domain.AssetStock},
			}

			breakdown := svc.Analyze(positions)
			require.Len(t, breakdown.Alerts, tt.wantAlerts)
			if tt.wantAlerts > 0 {
				alert := breakdown.Alerts[0]
				assert.Equal(t, "Technology", alert.Name)
				assert.Equal(t, tt.wantSeverity, alert.Severity)
				assert.Equal(t, SectorTargetPct, alert.TargetPct)
			}
		})
	}
}

func TestAnalyze_EmptyPortfolio(t *testing.T) {
	svc := NewService(zerolog.Nop())
	breakdown := svc.Analyze(nil)
	assert.Equal(t, 0.0, breakdown.TotalValue)
	assert.Empty(t, breakdown.BySector)
	assert.Empty(t, breakdown.Alerts)
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#3b82f6", ColorFor("Technology"))
	assert.Equal(t, neutralColor, ColorFor("Something Unheard Of"))
	// Deterministic for repeated calls
	assert.Equal(t, ColorFor("Energy"), ColorFor("Energy"))
}
