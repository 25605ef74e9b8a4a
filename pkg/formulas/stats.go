// Package formulas provides the financial calculation primitives shared by
// the risk, simulation and correlation modules. All functions are pure and
// operate on plain float64 slices supplied by the caller.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (Bessel-corrected)
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// AnnualizedVolatility calculates annualized volatility from daily returns.
// Formula: sample std dev of daily returns × sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// CalculateReturns converts a price/valuation series into simple period
// returns. Returns[i] = (Price[i+1] - Price[i]) / Price[i]. Pairs whose
// starting value is zero or negative are skipped so a restarted series
// cannot produce infinite returns.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

// Correlation calculates the Pearson correlation coefficient between two series
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Covariance calculates the sample covariance between two series
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// DownsideDeviation calculates the sample standard deviation over the
// subset of returns that fall below zero. Returns 0 when fewer than one
// negative observation exists.
func DownsideDeviation(returns []float64) float64 {
	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) < 2 {
		if len(negatives) == 1 {
			// A single observation has no sample deviation; use its
			// magnitude so the Sortino denominator stays finite.
			return math.Abs(negatives[0])
		}
		return 0
	}
	return stat.StdDev(negatives, nil)
}

// Clamp restricts a value to the inclusive range [min, max]
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// Round rounds a float64 to n decimal places
func Round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
