package providers

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a token-bucket rate limit per upstream host. Both
// providers run against free public endpoints, so every request waits for a
// token instead of failing fast.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewHostLimiter creates a limiter handing out rps tokens per second with the
// given burst capacity, independently per host.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *HostLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[host] = lim
	}
	return lim
}

// Wait blocks until a request to host may proceed or ctx is cancelled.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.limiter(host).Wait(ctx)
}

// Allow reports whether a request to host may proceed right now.
func (l *HostLimiter) Allow(host string) bool {
	return l.limiter(host).Allow()
}
