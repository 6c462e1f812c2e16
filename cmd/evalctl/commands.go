package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blueberrycongee/evaldash/pkg/types"
	"github.com/blueberrycongee/evaldash/services"
)

// services returns the feature services of the current client.
func (a *app) services() *services.Services {
	return services.New(a.swapper.Current())
}

func legalFlag(cmd *cobra.Command, v *int) {
	cmd.Flags().IntVar(v, "legal", types.Legal, "class filter: 1 legal, 0 illegal")
}

func (a *app) datasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Look up and list dataset rows",
	}

	byLink := &cobra.Command{
		Use:   "by-link <link>",
		Short: "Find the dataset row of a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := a.services().Dataset.GetByLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(row)
		},
	}

	var list types.ListDatasetRequest
	var legal int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list.IsLegal = types.IntPtr(legal)
			page, err := a.services().Dataset.List(cmd.Context(), list)
			if err != nil {
				return err
			}
			return a.print(page)
		},
	}
	legalFlag(listCmd, &legal)
	listCmd.Flags().IntVar(&list.LimitData, "limit", 10, "rows per page")
	listCmd.Flags().IntVar(&list.Page, "page", 1, "page number")

	detail := &cobra.Command{
		Use:   "detail <id>",
		Short: "Show a dataset row by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			row, err := a.services().Dataset.Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(row)
		},
	}

	var search types.SearchDatasetRequest
	var searchLegal int
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the dataset by text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search.SearchQuery = args[0]
			if cmd.Flags().Changed("legal") {
				search.IsLegal = types.IntPtr(searchLegal)
			}
			page, err := a.services().Dataset.Search(cmd.Context(), search)
			if err != nil {
				return err
			}
			return a.print(page)
		},
	}
	legalFlag(searchCmd, &searchLegal)
	searchCmd.Flags().IntVar(&search.LimitData, "limit", 10, "rows per page")
	searchCmd.Flags().IntVar(&search.Page, "page", 1, "page number")

	cmd.AddCommand(byLink, listCmd, detail, searchCmd)
	return cmd
}

func (a *app) confusionMatrixCommand() *cobra.Command {
	var legal int
	cmd := &cobra.Command{
		Use:   "confusion-matrix",
		Short: "Show the confusion matrix of the classifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "confusion-matrix", featureParams{legal: legal})
		},
	}
	legalFlag(cmd, &legal)
	return cmd
}

func (a *app) kFoldCommand() *cobra.Command {
	var legal int
	cmd := &cobra.Command{
		Use:   "k-fold",
		Short: "Show k-fold cross validation for k=3 and k=5",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "k-fold", featureParams{legal: legal})
		},
	}
	legalFlag(cmd, &legal)
	return cmd
}

func (a *app) epochTrainingCommand() *cobra.Command {
	var p featureParams
	cmd := &cobra.Command{
		Use:   "epoch-training",
		Short: "Show the training curve per epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "epoch-training", p)
		},
	}
	legalFlag(cmd, &p.legal)
	cmd.Flags().IntVar(&p.maxEpochs, "max-epochs", services.DefaultMaxEpochs, "number of epochs to train")
	return cmd
}

func (a *app) batchSizeCommand() *cobra.Command {
	var p featureParams
	cmd := &cobra.Command{
		Use:   "batch-size",
		Short: "Compare training with different batch sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "batch-size", p)
		},
	}
	legalFlag(cmd, &p.legal)
	cmd.Flags().IntSliceVar(&p.batchSizes, "sizes", services.DefaultBatchSizes, "batch sizes to compare")
	return cmd
}

func (a *app) optimizerCommand() *cobra.Command {
	var p featureParams
	cmd := &cobra.Command{
		Use:   "optimizer",
		Short: "Compare training with different optimizers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "optimizer", p)
		},
	}
	legalFlag(cmd, &p.legal)
	cmd.Flags().StringSliceVar(&p.optimizers, "optimizers", services.DefaultOptimizers, "optimizers to compare")
	return cmd
}

func (a *app) evaluationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluation",
		Short: "Show the aggregate evaluation report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "evaluation", featureParams{})
		},
	}
}

func (a *app) scrapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a website and classify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.services().Scrape.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}
}

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFeature(cmd.Context(), "health", featureParams{})
		},
	}
}

func (a *app) runFeature(ctx context.Context, name string, p featureParams) error {
	fetch, err := featureFetcher(name, p)
	if err != nil {
		return err
	}
	result, err := fetch(ctx, a.services())
	if err != nil {
		return err
	}
	return a.print(result)
}

// featureParams carries the flags of the pollable features.
type featureParams struct {
	legal      int
	maxEpochs  int
	batchSizes []int
	optimizers []string
}

type fetchFunc func(ctx context.Context, svc *services.Services) (any, error)

// pollableFeatures lists the features accepted by featureFetcher.
var pollableFeatures = []string{
	"confusion-matrix", "k-fold", "epoch-training", "batch-size", "optimizer", "evaluation", "health",
}

func featureFetcher(name string, p featureParams) (fetchFunc, error) {
	switch name {
	case "confusion-matrix":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.ConfusionMatrix.GetMatrix(ctx, p.legal)
		}, nil
	case "k-fold":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.KFold.GetKFold(ctx, p.legal)
		}, nil
	case "epoch-training":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.EpochTraining.GetEpochTraining(ctx, p.legal, p.maxEpochs)
		}, nil
	case "batch-size":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.BatchSize.GetBatchSizeComparison(ctx, p.legal, p.batchSizes)
		}, nil
	case "optimizer":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.Optimizer.GetOptimizerComparison(ctx, p.legal, p.optimizers)
		}, nil
	case "evaluation":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.Evaluation.GetMetrics(ctx)
		}, nil
	case "health":
		return func(ctx context.Context, svc *services.Services) (any, error) {
			return svc.Health.Check(ctx)
		}, nil
	default:
		return nil, fmt.Errorf("unknown feature %q (want one of %v)", name, pollableFeatures)
	}
}
