package formulas

// AnnualizedReturn converts the mean of a daily return series into an
// annualized expected return (simple scaling by trading days).
func AnnualizedReturn(dailyReturns []float64) float64 {
	return Mean(dailyReturns) * TradingDaysPerYear
}

// SharpeRatio calculates the risk-adjusted return of a portfolio:
//
//	Sharpe = (Annualized Return - Risk-free Rate) / Annualized Volatility
//
// Both inputs are annual decimals. Returns 0 when volatility is 0 so a
// constant-value series never produces an infinite ratio.
func SharpeRatio(annualReturn, riskFreeRate, annualVolatility float64) float64 {
	if annualVolatility == 0 {
		return 0
	}
	return (annualReturn - riskFreeRate) / annualVolatility
}

// SortinoRatio calculates the downside-risk-adjusted return: the Sharpe
// numerator divided by the annualized deviation of negative returns only.
// Returns 0 when the series has no downside.
func SortinoRatio(annualReturn, riskFreeRate float64, dailyReturns []float64) float64 {
	downside := AnnualizedDownsideDeviation(dailyReturns)
	if downside == 0 {
		return 0
	}
	return (annualReturn - riskFreeRate) / downside
}

// AnnualizedDownsideDeviation annualizes the deviation of the negative
// subset of a daily return series.
func AnnualizedDownsideDeviation(dailyReturns []float64) float64 {
	return DownsideDeviation(dailyReturns) * sqrtTradingDays
}
