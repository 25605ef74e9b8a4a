package risk

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/modules/allocation"
	"github.com/foliotracker/engine/pkg/formulas"
)

// Service derives risk/return statistics from snapshot series. It is pure
// computation over caller-supplied data; the statistics provider is only
// consulted for benchmark history when the snapshots carry none.
type Service struct {
	stats           marketdata.StatisticsProvider
	allocService    *allocation.Service
	benchmarkTicker string
	log             zerolog.Logger
}

// NewService creates a new risk service
func NewService(stats marketdata.StatisticsProvider, allocService *allocation.Service, benchmarkTicker string, log zerolog.Logger) *Service {
	return &Service{
		stats:           stats,
		allocService:    allocService,
		benchmarkTicker: benchmarkTicker,
		log:             log.With().Str("service", "risk").Logger(),
	}
}

// PeriodReturns converts a snapshot series (most recent first, as supplied
// by descending-date queries) into simple period returns. Pairs whose
// earlier value is non-positive are skipped.
func PeriodReturns(snapshots []domain.Snapshot) []float64 {
	returns := make([]float64, 0, len(snapshots))
	for i := 0; i+1 < len(snapshots); i++ {
		previous := snapshots[i+1].TotalValue
		if previous <= 0 {
			continue
		}
		returns = append(returns, (snapshots[i].TotalValue-previous)/previous)
	}
	return returns
}

// benchmarkReturns extracts the same-day benchmark index returns carried
// on the snapshots, most-recent-first input, chronological output.
func benchmarkReturns(snapshots []domain.Snapshot) []float64 {
	values := make([]float64, 0, len(snapshots))
	for i := len(snapshots) - 1; i >= 0; i-- {
		if snapshots[i].BenchmarkValue > 0 {
			values = append(values, snapshots[i].BenchmarkValue)
		}
	}
	return formulas.CalculateReturns(values)
}

// chronologicalValues reverses a most-recent-first snapshot series into
// the chronological value series drawdown and beta need.
func chronologicalValues(snapshots []domain.Snapshot) []float64 {
	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[len(snapshots)-1-i] = snap.TotalValue
	}
	return values
}

// ExpectedReturn annualizes the mean period return. Portfolios without
// history get the documented 8% placeholder.
func ExpectedReturn(returns []float64) (float64, bool) {
	if len(returns) == 0 {
		return DefaultExpectedReturn, true
	}
	return formulas.AnnualizedReturn(returns), false
}

// StandardDeviation annualizes the sample deviation of period returns.
// Fewer than 2 observations get the documented 15% placeholder.
func StandardDeviation(returns []float64) (float64, bool) {
	if len(returns) < 2 {
		return DefaultStdDev, true
	}
	return formulas.AnnualizedVolatility(returns), false
}

// Beta estimates portfolio beta. Preference order: same-day benchmark
// values carried on the snapshots, then the statistics provider's
// benchmark history. Always returns a finite value.
func (s *Service) Beta(snapshots []domain.Snapshot) float64 {
	values := chronologicalValues(snapshots)
	portfolioReturns := formulas.CalculateReturns(values)

	if bench := benchmarkReturns(snapshots); len(bench) >= 2 {
		return formulas.Beta(portfolioReturns, bench)
	}

	beta, err := s.stats.Beta(portfolioReturns, s.benchmarkTicker, marketdata.DefaultLookbackDays)
	if err != nil {
		s.log.Warn().Err(err).Str("benchmark", s.benchmarkTicker).
			Msg("Benchmark history unavailable, using market beta")
		return 1.0
	}
	return beta
}

// ComputeMetrics produces the metric set for one portfolio state:
// positions supply the total value, snapshots supply the statistics.
func (s *Service) ComputeMetrics(positions []domain.Position, snapshots []domain.Snapshot) domain.MetricSet {
	totalValue := 0.0
	for _, pos := range positions {
		if pos.Active() {
			totalValue += pos.MarketValue()
		}
	}

	returns := PeriodReturns(snapshots)
	expectedReturn, erEstimated := ExpectedReturn(returns)
	stdDev, sdEstimated := StandardDeviation(returns)

	return domain.MetricSet{
		TotalValue:        formulas.Round(totalValue, 2),
		ExpectedReturn:    expectedReturn,
		StandardDeviation: stdDev,
		SharpeRatio:       formulas.SharpeRatio(expectedReturn, RiskFreeRate, stdDev),
		MaxDrawdown:       formulas.MaxDrawdown(chronologicalValues(snapshots)),
		Beta:              s.Beta(snapshots),
		Estimated:         erEstimated || sdEstimated,
	}
}

// Analyze produces the full risk report: every ratio of ComputeMetrics
// plus Sortino, VaR, alpha, sector concentration and recommendations.
func (s *Service) Analyze(positions []domain.Position, snapshots []domain.Snapshot) Analysis {
	metrics := s.ComputeMetrics(positions, snapshots)
	returns := PeriodReturns(snapshots)

	varPercent := formulas.HistoricalVaR(returns, VaRConfidence)
	breakdown := s.allocService.Analyze(positions)

	analysis := Analysis{
		Volatility:   metrics.StandardDeviation,
		Beta:         metrics.Beta,
		Alpha:        alphaHeuristic(metrics.ExpectedReturn, metrics.Beta),
		SharpeRatio:  metrics.SharpeRatio,
		SortinoRatio: formulas.SortinoRatio(metrics.ExpectedReturn, RiskFreeRate, returns),
		MaxDrawdown:  metrics.MaxDrawdown,
		ValueAtRisk: ValueAtRisk{
			Percent: varPercent,
			Amount:  formulas.Round(varPercent*metrics.TotalValue, 2),
		},
		SectorConcentration: breakdown.BySector,
		Estimated:           metrics.Estimated,
	}
	analysis.Recommendations = s.recommendations(analysis, breakdown)

	return analysis
}

// alphaHeuristic is a simplified alpha, not a rigorous CAPM alpha:
// expected return in percent minus ten times beta.
func alphaHeuristic(expectedReturn, beta float64) float64 {
	return expectedReturn*100 - beta*10
}

// recommendations derives plain-language guidance from the analysis
func (s *Service) recommendations(analysis Analysis, breakdown allocation.Breakdown) []string {
	var recs []string

	for _, alert := range breakdown.Alerts {
		recs = append(recs, alert.Suggestion)
	}

	if analysis.SharpeRatio < 0.5 && !analysis.Estimated {
		recs = append(recs, fmt.Sprintf(
			"Risk-adjusted return is %s (Sharpe %.2f); review whether the current volatility is compensated",
			SharpeRating(analysis.SharpeRatio), analysis.SharpeRatio))
	}

	if analysis.MaxDrawdown > 0.25 {
		recs = append(recs, fmt.Sprintf(
			"Historical max drawdown of %.1f%% suggests adding defensive positions",
			analysis.MaxDrawdown*100))
	}

	if analysis.Beta > 1.5 {
		recs = append(recs, fmt.Sprintf(
			"Portfolio beta %.2f (%s) means swings well beyond the market; consider lower-beta holdings",
			analysis.Beta, BetaInterpretation(analysis.Beta)))
	}

	if len(recs) == 0 {
		recs = append(recs, "Portfolio risk profile is within normal ranges")
	}

	return recs
}
