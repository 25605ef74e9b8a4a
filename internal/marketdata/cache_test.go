package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance time manually
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestQuoteCache_HitAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewQuoteCache(clock)

	cache.Put("AAPL", Quote{Ticker: "AAPL", Price: 190.5}, 5*time.Minute)

	quote, ok := cache.Get("AAPL")
	assert.True(t, ok)
	assert.Equal(t, 190.5, quote.Price)

	// Still fresh just before the TTL boundary
	clock.now = clock.now.Add(5 * time.Minute)
	_, ok = cache.Get("AAPL")
	assert.True(t, ok)

	// Expired past the boundary
	clock.now = clock.now.Add(time.Second)
	_, ok = cache.Get("AAPL")
	assert.False(t, ok)
}

func TestQuoteCache_Miss(t *testing.T) {
	cache := NewQuoteCache(&fakeClock{now: time.Now()})
	_, ok := cache.Get("MISSING")
	assert.False(t, ok)
}

func TestQuoteCache_Overwrite(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewQuoteCache(clock)

	cache.Put("MSFT", Quote{Ticker: "MSFT", Price: 400}, time.Minute)
	cache.Put("MSFT", Quote{Ticker: "MSFT", Price: 405}, time.Minute)

	quote, ok := cache.Get("MSFT")
	assert.True(t, ok)
	assert.Equal(t, 405.0, quote.Price)
}
