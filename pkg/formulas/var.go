package formulas

import "sort"

// HistoricalVaR calculates empirical Value-at-Risk at the given confidence
// level from a return series. The result is the return at the
// floor(n × (1 - confidence)) index of the ascending-sorted returns, i.e.
// the (1-confidence) percentile. A losing threshold comes back negative.
//
// Returns 0 for an empty series.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * (1 - confidence))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}

	return sorted[idx]
}

// HistoricalCVaR calculates Conditional VaR (expected shortfall): the mean
// of the returns at or below the VaR threshold.
func HistoricalCVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	cutoff := int(float64(len(sorted)) * (1 - confidence))
	if cutoff < 1 {
		cutoff = 1
	}

	return Mean(sorted[:cutoff])
}
