package simulation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/internal/modules/ledger"
	"github.com/foliotracker/engine/internal/modules/risk"
	"github.com/foliotracker/engine/pkg/formulas"
)

// Engine runs what-if simulations. Stateless per invocation: it takes a
// portfolio state and a change list and returns a fresh result.
type Engine struct {
	riskService *risk.Service
	log         zerolog.Logger
}

// NewEngine creates a simulation engine
func NewEngine(riskService *risk.Service, log zerolog.Logger) *Engine {
	return &Engine{
		riskService: riskService,
		log:         log.With().Str("service", "simulation").Logger(),
	}
}

// Simulate applies the change-set to the portfolio's positions and
// recomputes metrics on the result. An empty change list is legal here
// and yields an identity result; handlers reject it before reaching the
// engine.
func (e *Engine) Simulate(portfolio domain.Portfolio, changes []domain.Change) (Result, error) {
	simulated, err := applyChanges(portfolio.Positions, changes)
	if err != nil {
		return Result{}, err
	}
	totalValue := weigh(simulated)

	current := e.riskService.ComputeMetrics(portfolio.Positions, portfolio.Snapshots)
	projected := e.project(current, simulated, totalValue)

	e.log.Debug().
		Str("portfolio_id", portfolio.ID).
		Int("changes", len(changes)).
		Float64("value_change", projected.TotalValue-current.TotalValue).
		Msg("Simulation computed")

	return Result{
		Current:            current,
		Simulated:          projected,
		Delta:              buildDelta(current, projected),
		EfficientFrontier:  BuildFrontier(current, projected),
		SimulatedPositions: simulated,
	}, nil
}

// applyChanges builds the simulated working set: base positions tagged
// unchanged, then each change applied in order.
func applyChanges(base []domain.Position, changes []domain.Change) ([]SimulatedPosition, error) {
	working := make([]SimulatedPosition, 0, len(base)+len(changes))
	index := make(map[string]int, len(base))

	for _, pos := range base {
		index[pos.Ticker] = len(working)
		working = append(working, SimulatedPosition{
			Ticker:       pos.Ticker,
			Quantity:     pos.Quantity,
			AvgCostBasis: pos.AvgCostBasis,
			CurrentPrice: pos.CurrentPrice,
			Sector:       pos.Sector,
			AssetClass:   pos.AssetClass,
		})
	}

	for _, change := range changes {
		if !change.Action.Valid() {
			return nil, fmt.Errorf("invalid change action %q for %s", change.Action, change.Ticker)
		}

		ticker := domain.NormalizeTicker(change.Ticker)
		i, exists := index[ticker]

		switch change.Action {
		case domain.ChangeAdd:
			if exists {
				pos := &working[i]
				if change.Price != nil {
					pos.AvgCostBasis = ledger.WeightedAverageCost(
						pos.Quantity, pos.AvgCostBasis, change.Quantity, *change.Price)
				}
				pos.Quantity += change.Quantity
				pos.IsRemoved = false
				continue
			}

			// A hypothetical position cannot know its real sector
			// without a market-data lookup.
			costBasis := 0.0
			if change.Price != nil {
				costBasis = *change.Price
			}
			index[ticker] = len(working)
			working = append(working, SimulatedPosition{
				Ticker:       ticker,
				Quantity:     change.Quantity,
				AvgCostBasis: costBasis,
				CurrentPrice: change.Price,
				Sector:       "Unknown",
				AssetClass:   domain.AssetStock,
				IsNew:        true,
			})

		case domain.ChangeRemove:
			if exists {
				working[i].Quantity = 0
				working[i].IsRemoved = true
			}

		case domain.ChangeAdjust:
			if exists {
				working[i].Quantity = change.Quantity
			}
		}
	}

	return working, nil
}

// weigh fills in market values and weights and returns the unrounded
// total. Per-position values are rounded for display only; the total
// accumulates raw values so it matches a baseline computed over the same
// positions to the last bit. Removed entries stay in the set with zero
// weight.
func weigh(positions []SimulatedPosition) float64 {
	total := 0.0
	values := make([]float64, len(positions))
	for i := range positions {
		pos := &positions[i]
		if pos.IsRemoved {
			pos.MarketValue = 0
			continue
		}
		price := pos.AvgCostBasis
		if pos.CurrentPrice != nil && *pos.CurrentPrice > 0 {
			price = *pos.CurrentPrice
		}
		values[i] = pos.Quantity * price
		total += values[i]
		pos.MarketValue = formulas.Round(values[i], 2)
	}

	if total <= 0 {
		return total
	}
	for i := range positions {
		positions[i].WeightPct = formulas.Round(values[i]/total*100, 2)
	}
	return total
}

// project derives the simulated metric set from the baseline. The
// simulated set has no independent price history, so its statistics are
// the baseline's, adjusted by the flat diversification heuristic when a
// brand-new position is present. A placeholder for real covariance
// re-estimation.
func (e *Engine) project(current domain.MetricSet, simulated []SimulatedPosition, totalValue float64) domain.MetricSet {
	hasNew := false
	for _, pos := range simulated {
		if pos.IsNew && !pos.IsRemoved {
			hasNew = true
		}
	}

	projected := current
	projected.TotalValue = formulas.Round(totalValue, 2)
	if hasNew {
		projected.StandardDeviation = current.StandardDeviation * NewPositionStdDevFactor
		projected.ExpectedReturn = current.ExpectedReturn * NewPositionReturnFactor
	}
	projected.SharpeRatio = formulas.SharpeRatio(
		projected.ExpectedReturn, risk.RiskFreeRate, projected.StandardDeviation)

	return projected
}

// buildDelta reports simulated minus current for every metric field
func buildDelta(current, simulated domain.MetricSet) Delta {
	diff := func(c, s float64) FieldDelta {
		return FieldDelta{Current: c, Simulated: s, Change: s - c}
	}
	return Delta{
		TotalValue:        diff(current.TotalValue, simulated.TotalValue),
		ExpectedReturn:    diff(current.ExpectedReturn, simulated.ExpectedReturn),
		StandardDeviation: diff(current.StandardDeviation, simulated.StandardDeviation),
		SharpeRatio:       diff(current.SharpeRatio, simulated.SharpeRatio),
		MaxDrawdown:       diff(current.MaxDrawdown, simulated.MaxDrawdown),
		Beta:              diff(current.Beta, simulated.Beta),
	}
}
