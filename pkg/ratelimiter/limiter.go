package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces bulk operations to a fixed number per second. A nil
// *RateLimiter never blocks.
type RateLimiter struct {
	limiter *rate.Limiter
	burst   int
	rps     int
}

// New returns nil when rps is not positive, which means unlimited.
func New(rps, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		burst:   burst,
		rps:     rps,
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	return rl.limiter.Wait(ctx)
}

func (rl *RateLimiter) TryAcquire() bool {
	if rl == nil {
		return true
	}
	return rl.limiter.Allow()
}

// Stats reports the approximate tokens left and the configured limits.
func (rl *RateLimiter) Stats() (available, burst, rps int) {
	if rl == nil {
		return 0, 0, 0
	}
	available = int(rl.limiter.Tokens())
	if available < 0 {
		available = 0
	}
	return available, rl.burst, rl.rps
}
