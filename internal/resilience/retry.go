package resilience

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// RetryPolicy retries a call a bounded number of times with exponential backoff.
// The zero value performs no retries.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts after the first one.
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles on every attempt.
	Backoff time.Duration
	// MaxBackoff caps a single delay. Zero disables the cap.
	MaxBackoff time.Duration
	// Jitter spreads each delay by ±Jitter (0.0 - 1.0).
	Jitter float64

	mu   sync.Mutex
	rand *rand.Rand
}

// NewRetryPolicy creates a policy. A nil src seeds from the clock.
func NewRetryPolicy(maxRetries int, backoff, maxBackoff time.Duration, jitter float64, src rand.Source) *RetryPolicy {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	return &RetryPolicy{
		MaxRetries: maxRetries,
		Backoff:    backoff,
		MaxBackoff: maxBackoff,
		Jitter:     jitter,
		rand:       rand.New(src), //nolint:gosec // jitter does not need crypto randomness
	}
}

// Delay returns the wait before the given retry attempt (1-based).
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.Backoff <= 0 {
		return 0
	}

	delay := p.Backoff
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxBackoff > 0 && delay >= p.MaxBackoff {
			delay = p.MaxBackoff
			break
		}
	}
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		delay = p.MaxBackoff
	}

	if p.Jitter > 0 && p.rand != nil {
		p.mu.Lock()
		factor := 1 + p.Jitter*(2*p.rand.Float64()-1)
		p.mu.Unlock()
		delay = time.Duration(float64(delay) * factor)
		if p.MaxBackoff > 0 && delay > p.MaxBackoff {
			delay = p.MaxBackoff
		}
	}
	return delay
}

// Do runs fn until it succeeds, returns a non-retryable error, or the budget is spent.
// onRetry, if set, is called before each wait. Waiting honours ctx; on cancellation
// the returned error wraps both ctx.Err() and the last error from fn.
func (p *RetryPolicy) Do(
	ctx context.Context,
	fn func(ctx context.Context) error,
	retryable func(error) bool,
	onRetry func(attempt int, delay time.Duration, err error),
) error {
	var lastErr error
	maxRetries := 0
	if p != nil {
		maxRetries = p.MaxRetries
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt)
			if onRetry != nil {
				onRetry(attempt, delay, lastErr)
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted: %w: %w", ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
