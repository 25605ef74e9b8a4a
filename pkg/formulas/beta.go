package formulas

// Beta calculates portfolio beta against a benchmark return series:
//
//	Beta = Cov(portfolio, benchmark) / Var(benchmark)
//
// Both series must be aligned period-for-period. When the series lengths
// differ, the overlapping tail is used. Returns 1.0 when the benchmark has
// no variance or fewer than 2 overlapping observations exist, so callers
// always receive a finite, market-like default.
func Beta(portfolioReturns, benchmarkReturns []float64) float64 {
	n := len(portfolioReturns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	if n < 2 {
		return 1.0
	}

	p := portfolioReturns[len(portfolioReturns)-n:]
	b := benchmarkReturns[len(benchmarkReturns)-n:]

	benchVariance := Variance(b)
	if benchVariance == 0 {
		return 1.0
	}

	return Covariance(p, b) / benchVariance
}
