package resilience

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing requests of one client.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows rps requests per second with the given burst.
// A non-positive rps yields nil, which means unlimited.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a request may be sent or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// The next token lies beyond ctx's deadline.
			return fmt.Errorf("rate limiter wait: %w: %w", context.DeadlineExceeded, err)
		}
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Allow reports whether a request may be sent right now without waiting.
func (l *RateLimiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}
