package allocation

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/foliotracker/engine/internal/domain"
	"github.com/foliotracker/engine/pkg/formulas"
)

// Service computes allocation breakdowns from in-memory position sets
type Service struct {
	log zerolog.Logger
}

// NewService creates a new allocation service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "allocation").Logger(),
	}
}

// Analyze groups the active positions (quantity > 0) by sector and asset
// class, computes weights against the total portfolio value and detects
// sector concentration alerts.
func (s *Service) Analyze(positions []domain.Position) Breakdown {
	sectorValues := make(map[string]float64)
	sectorCounts := make(map[string]int)
	classValues := make(map[string]float64)
	classCounts := make(map[string]int)
	totalValue := 0.0

	for _, pos := range positions {
		if !pos.Active() {
			continue
		}

		value := pos.MarketValue()
		totalValue += value

		sector := pos.Sector
		if sector == "" {
			sector = "Other"
		}
		sectorValues[sector] += value
		sectorCounts[sector]++

		class := string(pos.AssetClass)
		if class == "" {
			class = string(domain.AssetOther)
		}
		classValues[class] += value
		classCounts[class]++
	}

	breakdown := Breakdown{
		TotalValue:   formulas.Round(totalValue, 2),
		BySector:     buildGroups(sectorValues, sectorCounts, totalValue),
		ByAssetClass: buildGroups(classValues, classCounts, totalValue),
	}
	breakdown.Alerts = s.detectAlerts(breakdown.BySector)

	return breakdown
}

// buildGroups converts an aggregation map into weight-sorted groups
func buildGroups(values map[string]float64, counts map[string]int, totalValue float64) []Group {
	groups := make([]Group, 0, len(values))
	for name, value := range values {
		weight := 0.0
		if totalValue > 0 {
			weight = value / totalValue * 100
		}
		groups = append(groups, Group{
			Name:      name,
			Value:     formulas.Round(value, 2),
			WeightPct: weight,
			Positions: counts[name],
			Color:     ColorFor(name),
		})
	}

	// Descending by weight; name break ties so output stays stable
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WeightPct != groups[j].WeightPct {
			return groups[i].WeightPct > groups[j].WeightPct
		}
		return groups[i].Name < groups[j].Name
	})

	return groups
}

// detectAlerts flags any sector whose weight exceeds the alert threshold
func (s *Service) detectAlerts(sectors []Group) []Alert {
	var alerts []Alert
	for _, group := range sectors {
		if group.WeightPct <= SectorAlertThresholdPct {
			continue
		}

		severity := "medium"
		if group.WeightPct > SectorHighThresholdPct {
			severity = "high"
		}

		alerts = append(alerts, Alert{
			Type:      "sector",
			Name:      group.Name,
			WeightPct: group.WeightPct,
			Severity:  severity,
			TargetPct: SectorTargetPct,
			Suggestion: fmt.Sprintf(
				"%s is %.1f%% of the portfolio; consider reducing it toward %.0f%%",
				group.Name, group.WeightPct, SectorTargetPct),
		})
	}

	if len(alerts) > 0 {
		s.log.Debug().Int("alerts", len(alerts)).Msg("Concentration alerts detected")
	}

	return alerts
}
