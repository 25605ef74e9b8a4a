package simulation

import (
	"math"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/modules/risk"
	"github.com/foliotracker/engine/pkg/formulas"
)

// frontierSamples is the number of points on the sample curve
const frontierSamples = 20

// FrontierPoint is one risk/return sample on the efficient-frontier curve
type FrontierPoint struct {
	Risk        float64 `json:"risk"`
	Return      float64 `json:"return"`
	SharpeRatio float64 `json:"sharpe_ratio"`
}

// Frontier is a visualization aid: a sample curve spanning a risk range
// plus the portfolio's own points on it. Not a mean-variance optimization.
type Frontier struct {
	Points    []FrontierPoint `json:"points"`
	Current   FrontierPoint   `json:"current"`
	Simulated FrontierPoint   `json:"simulated"`
}

// BuildFrontier samples a concave risk/return curve anchored on the
// current portfolio: points span half to double its volatility, with
// return growing as the square root of risk so the curve flattens the
// way a real frontier does.
func BuildFrontier(current, simulated domain.MetricSet) Frontier {
	anchorRisk := current.StandardDeviation
	anchorReturn := current.ExpectedReturn
	if anchorRisk <= 0 {
		anchorRisk = risk.DefaultStdDev
		anchorReturn = risk.DefaultExpectedReturn
	}

	slope := (anchorReturn - risk.RiskFreeRate) / math.Sqrt(anchorRisk)

	minRisk := anchorRisk * 0.5
	maxRisk := anchorRisk * 2.0
	step := (maxRisk - minRisk) / float64(frontierSamples-1)

	points := make([]FrontierPoint, frontierSamples)
	for i := range points {
		r := minRisk + step*float64(i)
		points[i] = frontierPoint(r, risk.RiskFreeRate+slope*math.Sqrt(r))
	}

	return Frontier{
		Points:    points,
		Current:   frontierPoint(current.StandardDeviation, current.ExpectedReturn),
		Simulated: frontierPoint(simulated.StandardDeviation, simulated.ExpectedReturn),
	}
}

func frontierPoint(stdDev, expectedReturn float64) FrontierPoint {
	return FrontierPoint{
		Risk:        formulas.Round(stdDev, 4),
		Return:      formulas.Round(expectedReturn, 4),
		SharpeRatio: formulas.Round(formulas.SharpeRatio(expectedReturn, risk.RiskFreeRate, stdDev), 4),
	}
}
