package resilience

import (
	"context"
)

// Semaphore caps the number of backend calls in flight at once.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore creates a semaphore admitting up to capacity holders.
// Non-positive capacities are raised to 1.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 1
	}
	return &Semaphore{slots: make(chan struct{}, capacity)}
}

// TryAcquire takes a slot if one is free.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s.TryAcquire() {
		return nil
	}
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot. Releasing an idle semaphore is a no-op.
func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

// InFlight returns the number of held slots.
func (s *Semaphore) InFlight() int {
	return len(s.slots)
}

// Capacity returns the maximum number of holders.
func (s *Semaphore) Capacity() int {
	return cap(s.slots)
}
