package main

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/internal/config"
	"github.com/blueberrycongee/evaldash/internal/observability"
)

type fakeCloser struct {
	closed atomic.Int32
}

func (f *fakeCloser) Close() error {
	f.closed.Add(1)
	return nil
}

func TestClientSwap_ClosesPreviousWhenReleased(t *testing.T) {
	first, second := &fakeCloser{}, &fakeCloser{}
	swap := newClientSwap[*fakeCloser](first)

	got, release := swap.acquire()
	require.Same(t, first, got)

	swap.swap(second)
	require.Same(t, second, swap.currentClient())
	require.Equal(t, int32(0), first.closed.Load(), "in-use client must stay open")

	release()
	require.Equal(t, int32(1), first.closed.Load())

	release()
	require.Equal(t, int32(1), first.closed.Load(), "close happens once")
}

func TestClientSwap_ClosesIdleImmediately(t *testing.T) {
	first, second := &fakeCloser{}, &fakeCloser{}
	swap := newClientSwap[*fakeCloser](first)

	swap.swap(second)
	require.Equal(t, int32(1), first.closed.Load())

	swap.closeCurrent()
	require.Equal(t, int32(1), second.closed.Load())
}

func newTestClient(t *testing.T) *evaldash.Client {
	t.Helper()
	client, err := evaldash.New(evaldash.WithMetrics(nil), evaldash.WithLogger(nil))
	require.NoError(t, err)
	return client
}

func TestClientReloaderSwapsClientOnSuccess(t *testing.T) {
	logger := observability.Wrap(slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{})), nil)

	initial := newTestClient(t)
	next := newTestClient(t)

	swapper := newClientSwapper(initial)
	t.Cleanup(swapper.Close)

	reloader := newClientReloader(logger, swapper, func(*config.Config) (*evaldash.Client, error) {
		return next, nil
	})

	reloader.Reload(&config.Config{})

	require.Same(t, next, swapper.Current())
}

func TestClientReloaderKeepsClientOnFailure(t *testing.T) {
	logger := observability.Wrap(slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{})), nil)

	initial := newTestClient(t)

	swapper := newClientSwapper(initial)
	t.Cleanup(swapper.Close)

	reloader := newClientReloader(logger, swapper, func(*config.Config) (*evaldash.Client, error) {
		return nil, errTestReload
	})

	reloader.Reload(&config.Config{})

	require.Same(t, initial, swapper.Current())
}

var errTestReload = errors.New("reload failed")
