package main

import (
	"sync/atomic"

	evaldash "github.com/blueberrycongee/evaldash"
)

type closer interface{ Close() error }

type clientSwap[T closer] struct {
	current atomic.Pointer[clientRef[T]]
}

type clientRef[T closer] struct {
	client  T
	refs    atomic.Int64
	closing atomic.Bool
	closed  atomic.Bool
}

func newClientSwap[T closer](client T) *clientSwap[T] {
	swap := &clientSwap[T]{}
	swap.current.Store(&clientRef[T]{client: client})
	return swap
}

func (s *clientSwap[T]) acquire() (T, func()) {
	ref := s.current.Load()
	if ref == nil {
		var zero T
		return zero, func() {}
	}

	ref.refs.Add(1)

	release := func() {
		if ref.refs.Add(-1) == 0 && ref.closing.Load() {
			ref.closeOnce()
		}
	}

	return ref.client, release
}

func (s *clientSwap[T]) swap(next T) {
	prev := s.current.Swap(&clientRef[T]{client: next})
	if prev == nil {
		return
	}
	prev.retire()
}

func (s *clientSwap[T]) closeCurrent() {
	if ref := s.current.Load(); ref != nil {
		ref.retire()
	}
}

func (s *clientSwap[T]) currentClient() T {
	ref := s.current.Load()
	if ref == nil {
		var zero T
		return zero
	}
	return ref.client
}

// retire closes the client now, or when its last user releases it.
func (r *clientRef[T]) retire() {
	r.closing.Store(true)
	if r.refs.Load() == 0 {
		r.closeOnce()
	}
}

func (r *clientRef[T]) closeOnce() {
	if r.closed.CompareAndSwap(false, true) {
		_ = r.client.Close()
	}
}

// clientSwapper holds the client built from the latest configuration.
// Calls in flight keep the client they acquired; it is closed once they release it.
type clientSwapper struct {
	swapper *clientSwap[*evaldash.Client]
}

func newClientSwapper(client *evaldash.Client) *clientSwapper {
	return &clientSwapper{swapper: newClientSwap(client)}
}

// Acquire returns the current client and a release function.
func (s *clientSwapper) Acquire() (*evaldash.Client, func()) {
	return s.swapper.acquire()
}

// Swap atomically replaces the current client with the next one.
func (s *clientSwapper) Swap(next *evaldash.Client) {
	s.swapper.swap(next)
}

// Close marks the current client as closing and closes it when idle.
func (s *clientSwapper) Close() {
	s.swapper.closeCurrent()
}

// Current returns the current client without affecting its lifetime.
func (s *clientSwapper) Current() *evaldash.Client {
	return s.swapper.currentClient()
}
