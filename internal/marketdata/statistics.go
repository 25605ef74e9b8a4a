package marketdata

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/pkg/formulas"
)

// DefaultLookbackDays is one trading year of history
const DefaultLookbackDays = 252

// HistoricalStatistics estimates betas and correlations from real price
// history. This is the production implementation of StatisticsProvider.
type HistoricalStatistics struct {
	history HistoryProvider
	log     zerolog.Logger
}

// NewHistoricalStatistics creates a history-backed statistics provider
func NewHistoricalStatistics(history HistoryProvider, log zerolog.Logger) *HistoricalStatistics {
	return &HistoricalStatistics{
		history: history,
		log:     log.With().Str("component", "historical_statistics").Logger(),
	}
}

// Synthetic implements StatisticsProvider
func (s *HistoricalStatistics) Synthetic() bool { return false }

// Beta estimates portfolio beta against a benchmark's real return series.
func (s *HistoricalStatistics) Beta(portfolioReturns []float64, benchmarkTicker string, lookbackDays int) (float64, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	closes, err := s.history.DailyCloses(benchmarkTicker, lookbackDays+1)
	if err != nil {
		return 0, fmt.Errorf("failed to load benchmark history for %s: %w", benchmarkTicker, err)
	}
	if len(closes) < 2 {
		return 0, fmt.Errorf("insufficient benchmark history for %s: %d closes", benchmarkTicker, len(closes))
	}

	benchmarkReturns := formulas.CalculateReturns(closes)
	return formulas.Beta(portfolioReturns, benchmarkReturns), nil
}

// Correlations builds a symmetric correlation matrix from real return
// series. Tickers lacking usable history correlate 0 with everything
// (and 1 with themselves).
func (s *HistoricalStatistics) Correlations(tickers []string, lookbackDays int) ([][]float64, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	returns := make(map[string][]float64, len(tickers))
	for _, ticker := range tickers {
		closes, err := s.history.DailyCloses(ticker, lookbackDays+1)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for %s: %w", ticker, err)
		}
		if len(closes) >= 2 {
			returns[ticker] = formulas.CalculateReturns(closes)
		} else {
			s.log.Debug().Str("ticker", ticker).Msg("No usable history for correlation")
		}
	}

	n := len(tickers)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ri, okI := returns[tickers[i]]
			rj, okJ := returns[tickers[j]]
			var corr float64
			if okI && okJ {
				corr = correlationOverlap(ri, rj)
			}
			if tickers[i] == tickers[j] {
				corr = 1.0
			}
			matrix[i][j] = corr
			matrix[j][i] = corr
		}
	}

	return matrix, nil
}

// correlationOverlap aligns two return series on their common tail before
// correlating them.
func correlationOverlap(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	return formulas.Correlation(x[len(x)-n:], y[len(y)-n:])
}

// SyntheticStatistics fabricates statistics for environments with no price
// history. Correlation uses a naive same-leading-character grouping with
// bounded jitter; beta is pinned to 1.0. This is a labeled stub: callers
// must check Synthetic() and never mix its output into production results.
type SyntheticStatistics struct {
	rng *rand.Rand
	log zerolog.Logger
}

// NewSyntheticStatistics creates the synthetic fallback provider. The rand
// source is injected so tests get deterministic matrices.
func NewSyntheticStatistics(rng *rand.Rand, log zerolog.Logger) *SyntheticStatistics {
	return &SyntheticStatistics{
		rng: rng,
		log: log.With().Str("component", "synthetic_statistics").Logger(),
	}
}

// Synthetic implements StatisticsProvider
func (s *SyntheticStatistics) Synthetic() bool { return true }

// Beta returns the market-like placeholder for history-less environments
func (s *SyntheticStatistics) Beta(_ []float64, _ string, _ int) (float64, error) {
	return 1.0, nil
}

// Correlations fabricates a symmetric matrix: base 0.5 for tickers sharing
// a leading character, 0.2 otherwise, jitter in [-0.2, +0.2], clamped to
// [-1, 1], upper triangle mirrored to the lower.
func (s *SyntheticStatistics) Correlations(tickers []string, _ int) ([][]float64, error) {
	n := len(tickers)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if tickers[i] == tickers[j] {
				matrix[i][j] = 1.0
				matrix[j][i] = 1.0
				continue
			}

			base := 0.2
			if len(tickers[i]) > 0 && len(tickers[j]) > 0 && tickers[i][0] == tickers[j][0] {
				base = 0.5
			}
			jitter := (s.rng.Float64() - 0.5) * 0.4
			corr := formulas.Clamp(base+jitter, -1, 1)
			matrix[i][j] = corr
			matrix[j][i] = corr
		}
	}

	return matrix, nil
}
