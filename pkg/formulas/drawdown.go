package formulas

// DrawdownMetrics represents drawdown analysis results
type DrawdownMetrics struct {
	MaxDrawdown     float64 `json:"max_drawdown"`     // Maximum drawdown (positive fraction, 0.25 = 25% loss from peak)
	CurrentDrawdown float64 `json:"current_drawdown"` // Current drawdown from peak
	PeakValue       float64 `json:"peak_value"`       // Value at peak
	TroughValue     float64 `json:"trough_value"`     // Lowest value observed after the peak
	CurrentValue    float64 `json:"current_value"`    // Last value in the series
}

// MaxDrawdown calculates the maximum peak-to-trough decline over a value
// series supplied in chronological order.
//
//	Drawdown = (Peak - Value) / Peak
//
// Returns 0 for series shorter than 2 samples.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	maxDrawdown := 0.0
	peak := values[0]

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			drawdown := (peak - v) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return maxDrawdown
}

// CalculateDrawdownMetrics calculates full drawdown detail for a value
// series in chronological order, including the current drawdown from peak.
func CalculateDrawdownMetrics(values []float64) *DrawdownMetrics {
	if len(values) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := values[0]
	trough := values[0]
	currentValue := values[len(values)-1]

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			drawdown := (peak - v) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
				trough = v
			}
		}
	}

	currentDrawdown := 0.0
	if peak > 0 {
		currentDrawdown = (peak - currentValue) / peak
	}

	return &DrawdownMetrics{
		MaxDrawdown:     maxDrawdown,
		CurrentDrawdown: currentDrawdown,
		PeakValue:       peak,
		TroughValue:     trough,
		CurrentValue:    currentValue,
	}
}
