package data

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/providers"
	"github.com/Olshansk/eth-vs-bitcoin-price/internal/telemetry"
)

// Facade resolves a symbol's daily history through the cache tiers: memory
// first, Redis second (when configured), provider chain last. Daily closes
// only move once a day, so the default TTL is long.
type Facade struct {
	memory  *MemoryCache
	redis   SeriesCache // nil when Redis is not configured
	source  providers.Quotes
	ttl     time.Duration
	metrics *telemetry.Metrics
}

// NewFacade wires the tiers. redis may be nil.
func NewFacade(memory *MemoryCache, redis SeriesCache, source providers.Quotes, ttl time.Duration, metrics *telemetry.Metrics) *Facade {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Facade{
		memory:  memory,
		redis:   redis,
		source:  source,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Series returns the full daily history for symbol, from the fastest tier
// that has it.
func (f *Facade) Series(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	if series, ok := f.memory.Get(ctx, symbol); ok {
		f.metrics.CacheHit("memory")
		return series, nil
	}
	f.metrics.CacheMiss("memory")

	if f.redis != nil {
		// An entry with no points is never a valid hit, whatever the tier
		// decoded. Fall through to the provider.
		if series, ok := f.redis.Get(ctx, symbol); ok && !series.Empty() {
			f.metrics.CacheHit("redis")
			// Promote so the next request skips Redis.
			_ = f.memory.Set(ctx, symbol, series, f.ttl)
			return series, nil
		}
		f.metrics.CacheMiss("redis")
	}

	series, err := f.source.DailyHistory(ctx, symbol)
	if err != nil {
		return domain.PriceSeries{}, err
	}

	if err := f.memory.Set(ctx, symbol, series, f.ttl); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("memory cache set failed")
	}
	if f.redis != nil {
		if err := f.redis.Set(ctx, symbol, series, f.ttl); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("redis cache set failed")
		}
	}
	return series, nil
}

// MemoryStats exposes the hot tier counters for the health endpoint.
func (f *Facade) MemoryStats() CacheStats {
	return f.memory.Stats()
}
