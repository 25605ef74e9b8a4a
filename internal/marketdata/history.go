package marketdata

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for per-symbol history files
	"github.com/rs/zerolog"
)

// HistoryStore provides access to historical daily prices. Each symbol
// lives in its own SQLite file under historyDir, written by the ingestion
// pipeline outside this engine; the store is the read path.
type HistoryStore struct {
	historyDir string
	log        zerolog.Logger
}

// NewHistoryStore creates a new history store
func NewHistoryStore(historyDir string, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		historyDir: historyDir,
		log:        log.With().Str("component", "history_store").Logger(),
	}
}

// DailyPrice represents one daily OHLC price point
type DailyPrice struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume *int64  `json:"volume,omitempty"`
}

// GetDailyPrices fetches up to limit daily prices for a symbol, oldest
// first. Returns an empty slice when no history file exists yet.
func (h *HistoryStore) GetDailyPrices(symbol string, limit int) ([]DailyPrice, error) {
	dbPath := h.dbPath(symbol)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		h.log.Debug().Str("symbol", symbol).Msg("No history database for symbol")
		return []DailyPrice{}, nil
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open history db for %s: %w", symbol, err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT date, open, high, low, close, volume
		FROM daily_prices
		ORDER BY date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var p DailyPrice
		var volume sql.NullInt64
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		if volume.Valid {
			p.Volume = &volume.Int64
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices for %s: %w", symbol, err)
	}

	// Query is newest-first for the LIMIT; flip to chronological order
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}

	return prices, nil
}

// DailyCloses implements HistoryProvider
func (h *HistoryStore) DailyCloses(ticker string, limit int) ([]float64, error) {
	prices, err := h.GetDailyPrices(ticker, limit)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	return closes, nil
}

// dbPath builds the per-symbol database path; symbols are sanitized so a
// ticker can never escape the history directory.
func (h *HistoryStore) dbPath(symbol string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, symbol)
	return filepath.Join(h.historyDir, safe+".db")
}
