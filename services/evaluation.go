package services

import (
	"context"

	"github.com/goccy/go-json"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/pkg/types"
)

// Feature defaults.
const DefaultMaxEpochs = 10

var (
	// DefaultBatchSizes is compared when no batch sizes are given.
	DefaultBatchSizes = []int{16, 32, 64, 128}
	// DefaultOptimizers is compared when no optimizers are given.
	DefaultOptimizers = []string{"sgd", "rmsprop", "adam"}
)

// ConfusionMatrix fetches the confusion matrix of the classifier.
type ConfusionMatrix struct {
	client *evaldash.Client
}

// NewConfusionMatrix creates a confusion matrix service.
func NewConfusionMatrix(client *evaldash.Client) *ConfusionMatrix {
	return &ConfusionMatrix{client: client}
}

// GetMatrix returns the matrix for the legal (1) or illegal (0) class.
func (s *ConfusionMatrix) GetMatrix(ctx context.Context, isLegal int) (types.ConfusionMatrix, error) {
	return evaldash.Post[types.ConfusionMatrix](ctx, s.client, PathConfusionMatrix,
		types.ConfusionMatrixRequest{IsLegal: isLegal})
}

// KFold fetches k-fold cross validation results.
type KFold struct {
	client *evaldash.Client
}

// NewKFold creates a k-fold service.
func NewKFold(client *evaldash.Client) *KFold {
	return &KFold{client: client}
}

// GetKFold returns the results for k=3 and k=5.
func (s *KFold) GetKFold(ctx context.Context, isLegal int) (types.KFold, error) {
	return evaldash.Post[types.KFold](ctx, s.client, PathKFold, types.KFoldRequest{IsLegal: isLegal})
}

// EpochTraining fetches training curves.
type EpochTraining struct {
	client *evaldash.Client
}

// NewEpochTraining creates an epoch training service.
func NewEpochTraining(client *evaldash.Client) *EpochTraining {
	return &EpochTraining{client: client}
}

// GetEpochTraining returns the curve up to maxEpochs, or DefaultMaxEpochs when maxEpochs <= 0.
func (s *EpochTraining) GetEpochTraining(ctx context.Context, isLegal, maxEpochs int) (types.EpochTraining, error) {
	if maxEpochs <= 0 {
		maxEpochs = DefaultMaxEpochs
	}
	return evaldash.Post[types.EpochTraining](ctx, s.client, PathEpochTraining,
		types.EpochTrainingRequest{IsLegal: isLegal, MaxEpochs: maxEpochs})
}

// BatchSize compares training with different batch sizes.
type BatchSize struct {
	client *evaldash.Client
}

// NewBatchSize creates a batch size service.
func NewBatchSize(client *evaldash.Client) *BatchSize {
	return &BatchSize{client: client}
}

// GetBatchSizeComparison compares batchSizes, or DefaultBatchSizes when empty.
func (s *BatchSize) GetBatchSizeComparison(ctx context.Context, isLegal int, batchSizes []int) (types.BatchSize, error) {
	if len(batchSizes) == 0 {
		batchSizes = append([]int(nil), DefaultBatchSizes...)
	}
	return evaldash.Post[types.BatchSize](ctx, s.client, PathBatchSize,
		types.BatchSizeRequest{IsLegal: isLegal, BatchSizes: batchSizes})
}

// Optimizer compares training with different optimizers.
type Optimizer struct {
	client *evaldash.Client
}

// NewOptimizer creates an optimizer service.
func NewOptimizer(client *evaldash.Client) *Optimizer {
	return &Optimizer{client: client}
}

// GetOptimizerComparison compares optimizers, or DefaultOptimizers when empty.
func (s *Optimizer) GetOptimizerComparison(ctx context.Context, isLegal int, optimizers []string) (types.Optimizer, error) {
	if len(optimizers) == 0 {
		optimizers = append([]string(nil), DefaultOptimizers...)
	}
	return evaldash.Post[types.Optimizer](ctx, s.client, PathOptimizer,
		types.OptimizerRequest{IsLegal: isLegal, Optimizers: optimizers})
}

// Evaluation fetches the aggregate evaluation report.
type Evaluation struct {
	client *evaldash.Client
}

// NewEvaluation creates an evaluation service.
func NewEvaluation(client *evaldash.Client) *Evaluation {
	return &Evaluation{client: client}
}

// GetMetrics returns the report as raw JSON; its shape is not fixed by the backend.
func (s *Evaluation) GetMetrics(ctx context.Context) (json.RawMessage, error) {
	return evaldash.Get[json.RawMessage](ctx, s.client, PathEvaluation)
}
