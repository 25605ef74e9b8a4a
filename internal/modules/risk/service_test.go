package risk

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/modules/allocation"
)

// stubStats returns a fixed beta, standing in for benchmark history
type stubStats struct {
	beta float64
	err  error
}

func (s *stubStats) Beta(_ []float64, _ string, _ int) (float64, error) { return s.beta, s.err }
func (s *stubStats) Correlations(tickers []string, _ int) ([][]float64, error) {
	return nil, nil
}
func (s *stubStats) Synthetic() bool { return true }

func newTestService(beta float64) *Service {
	return NewService(&stubStats{beta: beta}, allocation.NewService(zerolog.Nop()), "SPY", zerolog.Nop())
}

// snaps builds a most-recent-first snapshot series from chronological values
func snaps(chronological ...float64) []domain.Snapshot {
	out := make([]domain.Snapshot, len(chronological))
	for i, v := range chronological {
		out[len(chronological)-1-i] = domain.Snapshot{
			Date:       "2024-01-01",
			TotalValue: v,
		}
	}
	return out
}

func TestPeriodReturns(t *testing.T) {
	// Chronological 100 -> 110 -> 99; supplied most recent first
	returns := PeriodReturns(snaps(100, 110, 99))
	require.Len(t, returns, 2)
	assert.InDelta(t, -0.10, returns[0], 1e-9) // 99 vs 110
	assert.InDelta(t, 0.10, returns[1], 1e-9)  // 110 vs 100
}

func TestPeriodReturns_SkipsNonPositivePrevious(t *testing.T) {
	returns := PeriodReturns(snaps(0, 100, 110))
	require.Len(t, returns, 1)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
}

func TestExpectedReturn_Defaults(t *testing.T) {
	er, estimated := ExpectedReturn(nil)
	assert.Equal(t, DefaultExpectedReturn, er)
	assert.True(t, estimated)

	er, estimated = ExpectedReturn([]float64{0.001})
	assert.InDelta(t, 0.252, er, 1e-9)
	assert.False(t, estimated)
}

func TestStandardDeviation_Defaults(t *testing.T) {
	sd, estimated := StandardDeviation([]float64{0.01})
	assert.Equal(t, DefaultStdDev, sd)
	assert.True(t, estimated)

	sd, estimated = StandardDeviation([]float64{0.01, -0.01, 0.02})
	assert.True(t, sd > 0)
	assert.False(t, estimated)
}

func TestComputeMetrics_ConstantSeriesHasZeroSharpe(t *testing.T) {
	svc := newTestService(1.0)

	// Constant valuations: zero volatility must yield Sharpe 0, not NaN
	metrics := svc.ComputeMetrics(nil, snaps(100, 100, 100, 100))
	assert.Equal(t, 0.0, metrics.StandardDeviation)
	assert.Equal(t, 0.0, metrics.SharpeRatio)
	assert.False(t, math.IsNaN(metrics.SharpeRatio))
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	svc := newTestService(1.0)

	metrics := svc.ComputeMetrics(nil, snaps(100, 120, 80, 110))
	assert.InDelta(t, 1.0/3.0, metrics.MaxDrawdown, 1e-4)

	// Non-decreasing series has no drawdown
	metrics = svc.ComputeMetrics(nil, snaps(100, 105, 110))
	assert.Equal(t, 0.0, metrics.MaxDrawdown)
}

func TestComputeMetrics_EmptyHistoryUsesPlaceholders(t *testing.T) {
	svc := newTestService(1.0)

	metrics := svc.ComputeMetrics(nil, nil)
	assert.Equal(t, DefaultExpectedReturn, metrics.ExpectedReturn)
	assert.Equal(t, DefaultStdDev, metrics.StandardDeviation)
	assert.True(t, metrics.Estimated)
	assert.InDelta(t, (0.08-0.05)/0.15, metrics.SharpeRatio, 1e-9)
}

func TestComputeMetrics_TotalValueSumsActivePositions(t *testing.T) {
	svc := newTestService(1.0)
	price := 200.0

	positions := []domain.Position{
		{Ticker: "AAPL", Quantity: 10, AvgCostBasis: 150, CurrentPrice: &price},
		{Ticker: "NOPRICE", Quantity: 5, AvgCostBasis: 40}, // falls back to cost basis
		{Ticker: "CLOSED", Quantity: 0, AvgCostBasis: 999},
	}

	metrics := svc.ComputeMetrics(positions, nil)
	assert.InDelta(t, 10*200+5*40, metrics.TotalValue, 1e-9)
}

func TestBeta_FromSnapshotBenchmarkValues(t *testing.T) {
	// Snapshots carry same-day benchmark values; provider must not be used
	svc := newTestService(99.0)

	// Portfolio returns exactly track the benchmark -> beta 1
	snapshots := []domain.Snapshot{
		{Date: "2024-01-04", TotalValue: 109.2, BenchmarkValue: 420.0},
		{Date: "2024-01-03", TotalValue: 104.0, BenchmarkValue: 400.0},
		{Date: "2024-01-02", TotalValue: 110.5, BenchmarkValue: 425.0},
		{Date: "2024-01-01", TotalValue: 104.0, BenchmarkValue: 400.0},
	}

	beta := svc.Beta(snapshots)
	assert.InDelta(t, 1.0, beta, 0.01)
}

func TestBeta_ProviderFallbackAndFinalDefault(t *testing.T) {
	svc := newTestService(1.3)
	beta := svc.Beta(snaps(100, 101, 103, 102))
	assert.Equal(t, 1.3, beta)

	failing := NewService(&stubStats{err: assert.AnError}, allocation.NewService(zerolog.Nop()), "SPY", zerolog.Nop())
	beta = failing.Beta(snaps(100, 101, 103, 102))
	assert.Equal(t, 1.0, beta)
}

func TestAnalyze_ValueAtRisk(t *testing.T) {
	svc := newTestService(1.0)
	price := 100.0

	positions := []domain.Position{
		{Ticker: "AAPL", Quantity: 100, AvgCostBasis: 90, CurrentPrice: &price, Sector: "Technology", AssetClass: domain.AssetStock},
	}

	// Chronological values with enough spread for a real VaR
	values := []float64{100, 102, 99, 104, 101, 97, 105, 103, 98, 106,
		104, 100, 107, 105, 101, 108, 106, 102, 109, 107, 110}
	analysis := svc.Analyze(positions, snaps(values...))

	assert.True(t, analysis.ValueAtRisk.Percent < 0)
	assert.InDelta(t, analysis.ValueAtRisk.Percent*10000, analysis.ValueAtRisk.Amount, 0.01)
	assert.False(t, math.IsNaN(analysis.SortinoRatio))
	require.NotEmpty(t, analysis.SectorConcentration)
	assert.Equal(t, "Technology", analysis.SectorConcentration[0].Name)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyze_AllRatiosFinite(t *testing.T) {
	svc := newTestService(1.0)

	for _, series := range [][]float64{
		{},
		{100},
		{100, 100},
		{100, 0, 100},
		{100, 120, 80, 110},
	} {
		analysis := svc.Analyze(nil, snaps(series...))
		for name, v := range map[string]float64{
			"volatility": analysis.Volatility,
			"beta":       analysis.Beta,
			"alpha":      analysis.Alpha,
			"sharpe":     analysis.SharpeRatio,
			"sortino":    analysis.SortinoRatio,
			"drawdown":   analysis.MaxDrawdown,
			"var":        analysis.ValueAtRisk.Percent,
		} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s must be finite for %v", name, series)
		}
	}
}

func TestSharpeRating(t *testing.T) {
	tests := []struct {
		sharpe   float64
		expected string
	}{
		{2.5, "Excellent"},
		{2.0, "Excellent"},
		{1.7, "Very Good"},
		{1.2, "Good"},
		{0.6, "Acceptable"},
		{0.1, "Poor"},
		{-1, "Poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, SharpeRating(tt.sharpe))
	}
}

func TestBetaInterpretation(t *testing.T) {
	tests := []struct {
		beta     float64
		expected string
	}{
		{1.8, "Very High Volatility"},
		{1.3, "High Volatility"},
		{1.0, "Market-Like"},
		{0.8, "Market-Like"},
		{0.6, "Low Volatility"},
		{0.2, "Very Low Volatility"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, BetaInterpretation(tt.beta))
	}
}

func TestAlphaHeuristic(t *testing.T) {
	assert.InDelta(t, 0.08*100-1.0*10, alphaHeuristic(0.08, 1.0), 1e-9)
}
