// Package correlation produces pairwise correlation matrices for ticker
// sets, used by the simulation engine's diversification view.
package correlation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/marketdata"
)

// cacheTTL bounds how long a computed matrix is reused
const cacheTTL = 24 * time.Hour

// Matrix is a symmetric N×N correlation matrix with a unit diagonal
type Matrix struct {
	Tickers []string    `json:"tickers"`
	Values  [][]float64 `json:"values"`
	// Synthetic is true when the matrix was fabricated by the fallback
	// provider instead of estimated from real history.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Service estimates correlation matrices through the configured
// statistics provider, caching results per ticker set.
type Service struct {
	stats marketdata.StatisticsProvider
	cache *marketdata.CalcCache // optional
	log   zerolog.Logger
}

// NewService creates a new correlation service. cache may be nil, in
// which case every call recomputes.
func NewService(stats marketdata.StatisticsProvider, cache *marketdata.CalcCache, log zerolog.Logger) *Service {
	return &Service{
		stats: stats,
		cache: cache,
		log:   log.With().Str("service", "correlation").Logger(),
	}
}

// Estimate returns the correlation matrix for the given tickers in the
// order supplied. Duplicate tickers are legal and correlate 1.0 with each
// other.
func (s *Service) Estimate(tickers []string, lookbackDays int) (Matrix, error) {
	normalized := make([]string, len(tickers))
	for i, t := range tickers {
		normalized[i] = domain.NormalizeTicker(t)
	}

	key := cacheKey(normalized, lookbackDays)
	if s.cache != nil && !s.stats.Synthetic() {
		var cached Matrix
		if s.cache.Get(key, &cached) {
			s.log.Debug().Int("tickers", len(normalized)).Msg("Using cached correlation matrix")
			return cached, nil
		}
	}

	values, err := s.stats.Correlations(normalized, lookbackDays)
	if err != nil {
		return Matrix{}, fmt.Errorf("failed to estimate correlations: %w", err)
	}

	matrix := Matrix{
		Tickers:   normalized,
		Values:    values,
		Synthetic: s.stats.Synthetic(),
	}

	// Synthetic matrices carry random jitter; caching them would make
	// the stub look more stable than it is.
	if s.cache != nil && !matrix.Synthetic {
		if err := s.cache.Put(key, matrix, cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache correlation matrix")
		}
	}

	return matrix, nil
}

// AverageOffDiagonal summarizes how correlated the set is overall,
// feeding the simulation's diversification score. Returns 0 for fewer
// than 2 tickers.
func AverageOffDiagonal(m Matrix) float64 {
	n := len(m.Values)
	if n < 2 {
		return 0
	}

	var sum float64
	var count int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += m.Values[i][j]
			count++
		}
	}
	return sum / float64(count)
}

// cacheKey builds a deterministic key from the sorted ticker set
func cacheKey(tickers []string, lookbackDays int) string {
	sorted := make([]string, len(tickers))
	copy(sorted, tickers)
	sort.Strings(sorted)
	return fmt.Sprintf("correlation:%s:%d", strings.Join(sorted, ","), lookbackDays)
}
