package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

var sqrtTradingDays = math.Sqrt(TradingDaysPerYear)

// RSI calculates the Relative Strength Index over a value series.
//
//	RSI = 100 - (100 / (1 + RS)), RS = Average Gain / Average Loss
//
// Returns nil when the series is shorter than length+1 samples.
func RSI(values []float64, length int) *float64 {
	if len(values) < length+1 {
		return nil
	}

	rsi := talib.Rsi(values, length)
	if len(rsi) == 0 {
		return nil
	}

	last := rsi[len(rsi)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}

// SMA calculates the simple moving average over the trailing window and
// returns the most recent value, or nil when the series is too short.
func SMA(values []float64, length int) *float64 {
	if len(values) < length {
		return nil
	}

	sma := talib.Sma(values, length)
	if len(sma) == 0 {
		return nil
	}

	last := sma[len(sma)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}
