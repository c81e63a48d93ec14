package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

func sampleSeries(symbol string, price float64) domain.PriceSeries {
	return domain.NewPriceSeries(symbol, []domain.PricePoint{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Price: price},
	})
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)

	_, ok := cache.Get(ctx, "BTC-USD")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "BTC-USD", sampleSeries("BTC-USD", 42000), time.Minute))

	got, ok := cache.Get(ctx, "BTC-USD")
	require.True(t, ok)
	assert.Equal(t, 42000.0, got.First().Price)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "ETH-USD", sampleSeries("ETH-USD", 2200), time.Minute))

	_, ok := cache.Get(ctx, "ETH-USD")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(ctx, "ETH-USD")
	assert.False(t, ok, "entry must expire after its TTL")
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(2)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "a", sampleSeries("a", 1), time.Hour))
	now = now.Add(time.Second)
	require.NoError(t, cache.Set(ctx, "b", sampleSeries("b", 2), time.Hour))
	now = now.Add(time.Second)

	// Touch "a" so "b" becomes the LRU entry.
	_, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	now = now.Add(time.Second)

	require.NoError(t, cache.Set(ctx, "c", sampleSeries("c", 3), time.Hour))

	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok, "LRU entry should have been evicted")
	_, ok = cache.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = cache.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}
