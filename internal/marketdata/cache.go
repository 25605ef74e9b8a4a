package marketdata

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// QuoteCache is a time-boxed in-memory cache for market quotes, keyed by
// ticker. The clock is injected so tests can drive expiry without
// sleeping. Safe for concurrent use.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[string]quoteEntry
	clock   Clock
}

type quoteEntry struct {
	quote     Quote
	expiresAt time.Time
}

// NewQuoteCache creates a quote cache using the given clock
func NewQuoteCache(clock Clock) *QuoteCache {
	return &QuoteCache{
		entries: make(map[string]quoteEntry),
		clock:   clock,
	}
}

// Get returns the cached quote for a ticker, or miss
func (c *QuoteCache) Get(ticker string) (Quote, bool) {
	c.mu.RLock()
	entry, ok := c.entries[ticker]
	c.mu.RUnlock()

	if !ok || c.clock.Now().After(entry.expiresAt) {
		return Quote{}, false
	}
	return entry.quote, true
}

// Put stores a quote with the given TTL
func (c *QuoteCache) Put(ticker string, quote Quote, ttl time.Duration) {
	c.mu.Lock()
	c.entries[ticker] = quoteEntry{
		quote:     quote,
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// CalcCache persists expensive calculation results (correlation matrices,
// covariance blobs) in the calc_cache table, msgpack-encoded.
type CalcCache struct {
	db    *sql.DB
	clock Clock
	log   zerolog.Logger
}

// NewCalcCache creates a calculation cache on the portfolio database
func NewCalcCache(db *sql.DB, clock Clock, log zerolog.Logger) *CalcCache {
	return &CalcCache{
		db:    db,
		clock: clock,
		log:   log.With().Str("component", "calc_cache").Logger(),
	}
}

// Get decodes a cached value into dest, reporting a miss for absent or
// expired keys.
func (c *CalcCache) Get(key string, dest interface{}) bool {
	var payload []byte
	var expiresAt int64
	err := c.db.QueryRow(
		`SELECT payload, expires_at FROM calc_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if err != nil {
		return false
	}

	if c.clock.Now().Unix() > expiresAt {
		return false
	}

	if err := msgpack.Unmarshal(payload, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached payload, treating as miss")
		return false
	}
	return true
}

// Put encodes and stores a value with the given TTL
func (c *CalcCache) Put(key string, value interface{}, ttl time.Duration) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO calc_cache (cache_key, payload, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at`,
		key, payload, c.clock.Now().Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}
