package marketdata

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHistory serves canned close series keyed by ticker
type stubHistory struct {
	closes map[string][]float64
}

func (s *stubHistory) DailyCloses(ticker string, limit int) ([]float64, error) {
	series := s.closes[ticker]
	if len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series, nil
}

func TestHistoricalStatistics_Beta(t *testing.T) {
	// Portfolio moving at exactly double the benchmark's returns
	benchReturns := []float64{0.02, -0.01, 0.03, -0.02, 0.015}
	bench := []float64{100}
	for _, r := range benchReturns {
		bench = append(bench, bench[len(bench)-1]*(1+r))
	}
	history := &stubHistory{closes: map[string][]float64{"SPY": bench}}
	stats := NewHistoricalStatistics(history, zerolog.Nop())

	portfolioReturns := make([]float64, len(benchReturns))
	for i, r := range benchReturns {
		portfolioReturns[i] = 2 * r
	}
	beta, err := stats.Beta(portfolioReturns, "SPY", 252)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, beta, 1e-6)
	assert.False(t, stats.Synthetic())
}

func TestHistoricalStatistics_BetaNoHistory(t *testing.T) {
	stats := NewHistoricalStatistics(&stubHistory{closes: map[string][]float64{}}, zerolog.Nop())
	_, err := stats.Beta([]float64{0.01, 0.02}, "SPY", 252)
	assert.Error(t, err)
}

func TestHistoricalStatistics_Correlations(t *testing.T) {
	history := &stubHistory{closes: map[string][]float64{
		"AAA": {100, 102, 101, 104, 103, 106},
		"BBB": {50, 51, 50.5, 52, 51.5, 53},
		"CCC": {200, 198, 202, 196, 204, 194},
	}}
	stats := NewHistoricalStatistics(history, zerolog.Nop())

	tickers := []string{"AAA", "BBB", "CCC"}
	matrix, err := stats.Correlations(tickers, 252)
	require.NoError(t, err)
	require.Len(t, matrix, 3)

	for i := range matrix {
		assert.Equal(t, 1.0, matrix[i][i])
		for j := range matrix[i] {
			assert.Equal(t, matrix[i][j], matrix[j][i], "matrix must be symmetric")
			assert.True(t, matrix[i][j] >= -1 && matrix[i][j] <= 1)
		}
	}

	// AAA and BBB move together; CCC moves against both
	assert.True(t, matrix[0][1] > 0.8)
	assert.True(t, matrix[0][2] < 0)
}

func TestSyntheticStatistics_Correlations(t *testing.T) {
	stats := NewSyntheticStatistics(rand.New(rand.NewSource(42)), zerolog.Nop())

	tickers := []string{"AAPL", "AMZN", "MSFT", "AAPL"}
	matrix, err := stats.Correlations(tickers, 0)
	require.NoError(t, err)
	require.Len(t, matrix, 4)

	for i := range matrix {
		assert.Equal(t, 1.0, matrix[i][i])
		for j := range matrix[i] {
			assert.Equal(t, matrix[i][j], matrix[j][i], "matrix must be symmetric")
			assert.True(t, matrix[i][j] >= -1 && matrix[i][j] <= 1)
		}
	}

	// Duplicate tickers correlate perfectly
	assert.Equal(t, 1.0, matrix[0][3])

	// Same leading character base 0.5 with ±0.2 jitter
	assert.InDelta(t, 0.5, matrix[0][1], 0.2+1e-9)
	// Different leading character base 0.2 with ±0.2 jitter
	assert.InDelta(t, 0.2, matrix[0][2], 0.2+1e-9)

	assert.True(t, stats.Synthetic())

	beta, err := stats.Beta(nil, "SPY", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, beta)
}
