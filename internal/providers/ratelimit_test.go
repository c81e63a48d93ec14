package providers

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_Allow(t *testing.T) {
	limiter := NewHostLimiter(1.0, 2)

	if !limiter.Allow("query1.finance.yahoo.com") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("query1.finance.yahoo.com") {
		t.Error("second request should be allowed within burst")
	}
	if limiter.Allow("query1.finance.yahoo.com") {
		t.Error("third request should be blocked")
	}
}

func TestHostLimiter_IndependentHosts(t *testing.T) {
	limiter := NewHostLimiter(1.0, 1)

	if !limiter.Allow("host1") {
		t.Error("first request to host1 should be allowed")
	}
	if !limiter.Allow("host2") {
		t.Error("host2 must not share host1's bucket")
	}
}

func TestHostLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewHostLimiter(0.1, 1) // one token every 10s

	if err := limiter.Wait(context.Background(), "slow"); err != nil {
		t.Fatalf("first wait should pass immediately: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "slow"); err == nil {
		t.Error("second wait should fail once the context expires")
	}
}
