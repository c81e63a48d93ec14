package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/telemetry"
)

type stubSource struct {
	series domain.PriceSeries
	err    error
	calls  int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) DailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

func TestFacade_FetchesOnceThenServesFromMemory(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{series: sampleSeries("BTC-USD", 42000)}
	facade := NewFacade(NewMemoryCache(10), nil, source, time.Hour, telemetry.NewMetrics())

	for i := 0; i < 3; i++ {
		series, err := facade.Series(ctx, "BTC-USD")
		require.NoError(t, err)
		assert.Equal(t, 42000.0, series.First().Price)
	}
	assert.Equal(t, 1, source.calls, "subsequent requests must hit the memory tier")
}

func TestFacade_PropagatesFetchError(t *testing.T) {
	ctx := context.Background()
	source := &stubSource{err: errors.New("all providers down")}
	facade := NewFacade(NewMemoryCache(10), nil, source, time.Hour, telemetry.NewMetrics())

	_, err := facade.Series(ctx, "ETH-USD")
	require.Error(t, err)
	assert.Equal(t, 1, source.calls)
}

type mapCache struct {
	entries map[string]domain.PriceSeries
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]domain.PriceSeries)}
}

func (c *mapCache) Get(_ context.Context, key string) (domain.PriceSeries, bool) {
	s, ok := c.entries[key]
	return s, ok
}

func (c *mapCache) Set(_ context.Context, key string, s domain.PriceSeries, _ time.Duration) error {
	c.sets++
	c.entries[key] = s
	return nil
}

func TestFacade_PromotesRedisHitToMemory(t *testing.T) {
	ctx := context.Background()
	warm := newMapCache()
	warm.entries["BTC-USD"] = sampleSeries("BTC-USD", 41000)
	source := &stubSource{series: sampleSeries("BTC-USD", 42000)}
	facade := NewFacade(NewMemoryCache(10), warm, source, time.Hour, telemetry.NewMetrics())

	series, err := facade.Series(ctx, "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 41000.0, series.First().Price, "warm tier should answer before the provider")
	assert.Equal(t, 0, source.calls)

	// Second request comes from memory, not the warm tier.
	_, err = facade.Series(ctx, "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, 0, source.calls)
}

func TestFacade_EmptyWarmEntryFallsThroughToProvider(t *testing.T) {
	ctx := context.Background()
	warm := newMapCache()
	warm.entries["BTC-USD"] = domain.PriceSeries{Symbol: "BTC-USD"}
	source := &stubSource{series: sampleSeries("BTC-USD", 42000)}
	facade := NewFacade(NewMemoryCache(10), warm, source, time.Hour, telemetry.NewMetrics())

	series, err := facade.Series(ctx, "BTC-USD")
	require.NoError(t, err)
	require.False(t, series.Empty(), "a pointless warm entry must never be served")
	assert.Equal(t, 42000.0, series.First().Price)
	assert.Equal(t, 1, source.calls)
}

func TestFacade_WritesThroughBothTiers(t *testing.T) {
	ctx := context.Background()
	warm := newMapCache()
	source := &stubSource{series: sampleSeries("ETH-USD", 2200)}
	facade := NewFacade(NewMemoryCache(10), warm, source, time.Hour, telemetry.NewMetrics())

	_, err := facade.Series(ctx, "ETH-USD")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, warm.sets)
}
