// Package marketdata supplies the engine with historical price series,
// benchmark data and cached quotes. The calculation modules depend only on
// the interfaces here, so tests and history-less environments can swap in
// synthetic implementations.
package marketdata

import "time"

// Quote is a current market price for one ticker
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	FetchedAt time.Time `json:"fetched_at"`
}

// HistoryProvider supplies daily closing series in chronological order.
type HistoryProvider interface {
	// DailyCloses returns up to limit daily closes for a ticker,
	// oldest first.
	DailyCloses(ticker string, limit int) ([]float64, error)
}

// StatisticsProvider estimates statistical relationships between assets
// and benchmarks from historical data. Implementations must return finite
// values for every input.
type StatisticsProvider interface {
	// Beta estimates the sensitivity of a return series to the
	// benchmark's return series over the given lookback.
	Beta(portfolioReturns []float64, benchmarkTicker string, lookbackDays int) (float64, error)
	// Correlations produces an N×N symmetric matrix with a unit
	// diagonal for the given tickers.
	Correlations(tickers []string, lookbackDays int) ([][]float64, error)
	// Synthetic reports whether the provider fabricates statistics
	// instead of estimating them from real history. Synthetic output
	// must never be silently mixed into production results.
	Synthetic() bool
}

// Clock abstracts time for the quote cache so tests can control expiry
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation used in production
type SystemClock struct{}

// Now returns the current wall-clock time
func (SystemClock) Now() time.Time { return time.Now() }
