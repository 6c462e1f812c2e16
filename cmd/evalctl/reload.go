package main

import (
	"sync/atomic"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/internal/config"
	"github.com/blueberrycongee/evaldash/internal/observability"
)

// clientReloader rebuilds the client whenever the configuration file changes.
type clientReloader struct {
	logger     *observability.Logger
	swapper    *clientSwapper
	build      func(*config.Config) (*evaldash.Client, error)
	inProgress atomic.Bool
}

func newClientReloader(logger *observability.Logger, swapper *clientSwapper, build func(*config.Config) (*evaldash.Client, error)) *clientReloader {
	if logger == nil {
		logger = observability.Wrap(nil, nil)
	}
	return &clientReloader{
		logger:  logger,
		swapper: swapper,
		build:   build,
	}
}

func (r *clientReloader) Reload(cfg *config.Config) {
	if !r.inProgress.CompareAndSwap(false, true) {
		r.logger.Warn("client reload already in progress")
		return
	}
	defer r.inProgress.Store(false)

	next, err := r.build(cfg)
	if err != nil {
		r.logger.Error("failed to rebuild evaldash client", "error", err)
		return
	}
	if next == nil {
		r.logger.Error("failed to rebuild evaldash client", "error", "nil client")
		return
	}

	r.swapper.Swap(next)

	r.logger.RedactedInfo("evaldash client reloaded",
		"base_url", next.BaseURL(),
		"timeout", next.Timeout(),
	)
}
