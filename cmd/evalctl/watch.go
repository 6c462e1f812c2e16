package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/internal/config"
	"github.com/blueberrycongee/evaldash/services"
)

func (a *app) watchCommand() *cobra.Command {
	var (
		p        featureParams
		interval time.Duration
		count    int
	)
	cmd := &cobra.Command{
		Use:   "watch <feature>",
		Short: "Poll a feature and print every fresh result",
		Long: fmt.Sprintf(`Poll a feature at a fixed interval and print each result.

A poll that is still running when the next one starts is cancelled and its
result dropped, so the output never goes back in time. With --config, the
client is rebuilt whenever the file changes.

Features: %v`, pollableFeatures),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive, got %s", interval)
			}
			fetch, err := featureFetcher(args[0], p)
			if err != nil {
				return err
			}
			if a.flags.configPath != "" {
				if err := a.watchConfig(cmd.Context()); err != nil {
					a.logger.Warn("config hot-reload disabled", "error", err)
				}
			}
			return a.poll(cmd.Context(), fetch, interval, count)
		},
	}
	legalFlag(cmd, &p.legal)
	cmd.Flags().IntVar(&p.maxEpochs, "max-epochs", services.DefaultMaxEpochs, "epoch-training: number of epochs")
	cmd.Flags().IntSliceVar(&p.batchSizes, "sizes", services.DefaultBatchSizes, "batch-size: sizes to compare")
	cmd.Flags().StringSliceVar(&p.optimizers, "optimizers", services.DefaultOptimizers, "optimizer: optimizers to compare")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "time between polls")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many printed results (0 = until interrupted)")
	return cmd
}

// watchConfig rebuilds the client on every valid change of the config file.
func (a *app) watchConfig(ctx context.Context) error {
	mgr, err := config.NewManager(a.flags.configPath, a.logger.Slog())
	if err != nil {
		return err
	}
	reloader := newClientReloader(a.logger, a.swapper, func(cfg *config.Config) (*evaldash.Client, error) {
		next := *cfg
		a.applyFlags(&next)
		if err := next.Validate(); err != nil {
			return nil, err
		}
		return a.buildClient(&next)
	})
	mgr.OnChange(reloader.Reload)
	return mgr.Watch(ctx)
}

// poll runs fetch every interval until ctx is done or count results were printed.
func (a *app) poll(ctx context.Context, fetch fetchFunc, interval time.Duration, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		seq     evaldash.Sequencer
		wg      sync.WaitGroup
		printed int
	)
	defer func() {
		seq.Stop()
		wg.Wait()
	}()

	tick := func() {
		client, release := a.swapper.Acquire()
		callCtx, ticket, done := seq.Begin(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer release()
			defer done()

			result, err := fetch(callCtx, services.New(client))
			// An older poll never prints after a newer one has started.
			applied := ticket.Apply(func() {
				if ctx.Err() != nil {
					return
				}
				if err != nil {
					a.logger.Warn("poll failed", "error", err)
					fmt.Fprintln(a.errOut, formatError(err))
					return
				}
				if err := a.print(result); err != nil {
					a.logger.Error("print result", "error", err)
					return
				}
				printed++
				if count > 0 && printed >= count {
					cancel()
				}
			})
			if !applied {
				a.logger.Debug("superseded poll result dropped")
			}
		}()
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tick()
		}
	}
}
