package evaldash

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueberrycongee/evaldash/pkg/errors"
)

func TestSequencer_BeginCancelsPrevious(t *testing.T) {
	var s Sequencer

	ctx1, t1, cancel1 := s.Begin(context.Background())
	defer cancel1()
	assert.True(t, t1.Current())
	assert.Equal(t, uint64(1), t1.Seq())

	ctx2, t2, cancel2 := s.Begin(context.Background())
	defer cancel2()

	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.False(t, t1.Current())
	assert.True(t, t2.Current())
	assert.Equal(t, uint64(2), s.Latest())

	s.Stop()
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
	assert.True(t, t2.Current(), "Stop does not start a new ticket")
}

func TestSequencer_ZeroTicketIsNeverCurrent(t *testing.T) {
	var ticket Ticket
	assert.False(t, ticket.Current())
}

func TestTicket_ApplyOnlyWhenCurrent(t *testing.T) {
	var s Sequencer

	_, t1, cancel1 := s.Begin(context.Background())
	defer cancel1()

	ran := 0
	assert.True(t, t1.Apply(func() { ran++ }))

	_, t2, cancel2 := s.Begin(context.Background())
	defer cancel2()

	assert.False(t, t1.Apply(func() { ran++ }))
	assert.True(t, t2.Apply(func() { ran++ }))
	assert.Equal(t, 2, ran)

	var zero Ticket
	assert.False(t, zero.Apply(func() { ran++ }))
	assert.Equal(t, 2, ran)
}

func TestTicket_ApplyHoldsOffNewerTickets(t *testing.T) {
	var s Sequencer
	_, t1, cancel1 := s.Begin(context.Background())
	defer cancel1()

	inApply := make(chan struct{})
	finish := make(chan struct{})
	applied := make(chan bool, 1)
	go func() {
		applied <- t1.Apply(func() {
			close(inApply)
			<-finish
		})
	}()
	<-inApply

	begun := make(chan struct{})
	go func() {
		_, _, cancel := s.Begin(context.Background())
		cancel()
		close(begun)
	}()

	select {
	case <-begun:
		t.Fatal("Begin returned while an older result was being applied")
	case <-time.After(20 * time.Millisecond):
	}

	close(finish)
	assert.True(t, <-applied)
	<-begun
	assert.False(t, t1.Current())
}

func TestRun_SupersededResultIsDropped(t *testing.T) {
	slowStarted := make(chan struct{})
	backend := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("is_legal") == "0" {
			close(slowStarted)
			select {
			case <-r.Context().Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"filter":"`+r.URL.RawQuery+`"}}`)
	})
	client := newTestClient(t, backend.URL)

	var s Sequencer
	query := func(q string) func(ctx context.Context) (json.RawMessage, error) {
		return func(ctx context.Context) (json.RawMessage, error) {
			return Get[json.RawMessage](ctx, client, "/api/v1/list-dataset?"+q)
		}
	}

	type outcome struct {
		applied bool
		err     error
	}
	stale := make(chan outcome, 1)
	go func() {
		_, applied, err := Run(context.Background(), &s, query("is_legal=0"))
		stale <- outcome{applied, err}
	}()

	<-slowStarted
	got, applied, err := Run(context.Background(), &s, query("is_legal=1"))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.JSONEq(t, `{"filter":"is_legal=1"}`, string(got))

	old := <-stale
	assert.False(t, old.applied)
	require.Error(t, old.err)
	assert.Equal(t, errors.KindUnknown, errors.KindOf(old.err), "superseded calls are cancelled")
}
