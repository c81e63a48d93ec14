package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

// ErrAllProvidersFailed means every provider in the chain errored or had an
// open breaker for this request.
var ErrAllProvidersFailed = errors.New("all providers failed")

// Chain tries providers in order, each behind its own circuit breaker. A
// provider that keeps failing trips open and the chain skips straight to the
// next one until the breaker half-opens again.
type Chain struct {
	providers []Quotes
	breakers  map[string]*gobreaker.CircuitBreaker

	// OnFetch, when set, observes every real provider attempt. Calls
	// rejected by an open breaker are not attempts and are not reported.
	OnFetch func(provider string, d time.Duration, ok bool)
}

// NewChain wires a breaker per provider. Order is priority order.
func NewChain(quotes ...Quotes) *Chain {
	c := &Chain{
		providers: quotes,
		breakers:  make(map[string]*gobreaker.CircuitBreaker, len(quotes)),
	}
	for _, q := range quotes {
		name := q.Name()
		c.breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("provider", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("provider breaker state change")
			},
		})
	}
	return c
}

func (c *Chain) Name() string { return "chain" }

// DailyHistory fetches from the first healthy provider.
func (c *Chain) DailyHistory(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	var lastErr error
	for _, q := range c.providers {
		breaker := c.breakers[q.Name()]
		start := time.Now()
		result, err := breaker.Execute(func() (interface{}, error) {
			return q.DailyHistory(ctx, symbol)
		})
		if c.OnFetch != nil && !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.OnFetch(q.Name(), time.Since(start), err == nil)
		}
		if err == nil {
			return result.(domain.PriceSeries), nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Str("provider", q.Name()).
			Str("symbol", symbol).
			Msg("provider failed, trying next")
	}
	if lastErr == nil {
		lastErr = ErrNoData
	}
	return domain.PriceSeries{}, fmt.Errorf("%w: %s: %v", ErrAllProvidersFailed, symbol, lastErr)
}

// Status reports breaker state per provider for the health endpoint.
func (c *Chain) Status() map[string]string {
	status := make(map[string]string, len(c.providers))
	for _, q := range c.providers {
		status[q.Name()] = c.breakers[q.Name()].State().String()
	}
	return status
}
