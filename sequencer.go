package evaldash

import (
	"context"
	"sync"
)

// Sequencer tags the calls of one logical query (for example a dashboard
// panel whose filter can change at any time) so that only the latest result
// is applied. Starting a new ticket cancels the context of the previous one.
type Sequencer struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one call of a Sequencer.
type Ticket struct {
	seq   uint64
	owner *Sequencer
}

// Begin starts a new ticket derived from parent and cancels the previous one.
// The returned cancel func must be called once the call has settled.
func (s *Sequencer) Begin(parent context.Context) (context.Context, Ticket, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	s.cancel = cancel
	t := Ticket{seq: s.seq, owner: s}
	s.mu.Unlock()

	return ctx, t, cancel
}

// Latest returns the sequence number of the most recent ticket.
func (s *Sequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Stop cancels the outstanding ticket, if any.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Seq returns the ticket's sequence number.
func (t Ticket) Seq() uint64 {
	return t.seq
}

// Current reports whether no newer ticket has been started since t.
func (t Ticket) Current() bool {
	if t.owner == nil {
		return false
	}
	return t.owner.Latest() == t.seq
}

// Apply runs fn only if t is still current. No newer ticket can begin while
// fn runs. fn must not call back into the sequencer.
func (t Ticket) Apply(fn func()) bool {
	if t.owner == nil {
		return false
	}
	s := t.owner
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != t.seq {
		return false
	}
	fn()
	return true
}

// Run executes fn under a new ticket and reports whether its result is
// still current. A superseded call returns applied=false and the call's error.
func Run[T any](parent context.Context, s *Sequencer, fn func(ctx context.Context) (T, error)) (result T, applied bool, err error) {
	ctx, ticket, cancel := s.Begin(parent)
	defer cancel()

	result, err = fn(ctx)
	if !ticket.Current() {
		var zero T
		return zero, false, err
	}
	return result, true, err
}
