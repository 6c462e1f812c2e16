// Package services exposes one typed service per dashboard feature.
//
// Services only build the request for their fixed endpoint and delegate to
// the evaldash facade. They hold no state besides the client and perform no
// validation; the backend owns every business rule.
package services

import (
	evaldash "github.com/blueberrycongee/evaldash"
)

// Endpoint paths of the evaluation backend.
const (
	PathDatasetByLink   = "/api/v1/dataset-by-link"
	PathListDataset     = "/api/v1/list-dataset"
	PathDetailDataset   = "/api/v1/detail-dataset/"
	PathSearchDataset   = "/api/v1/search-dataset"
	PathConfusionMatrix = "/api/v1/confusion-matrix"
	PathKFold           = "/api/v1/k-fold-cross-validation"
	PathEpochTraining   = "/api/v1/epoch-training"
	PathBatchSize       = "/api/v1/batch-size"
	PathOptimizer       = "/api/v1/optimizer"
	PathEvaluation      = "/api/v1/evaluation-metrics"
	PathScrape          = "/api/v1/scrape"
	PathHealth          = "/api/v1/health"
)

// Services bundles every feature service over one client.
type Services struct {
	Dataset         *Dataset
	ConfusionMatrix *ConfusionMatrix
	KFold           *KFold
	EpochTraining   *EpochTraining
	BatchSize       *BatchSize
	Optimizer       *Optimizer
	Evaluation      *Evaluation
	Scrape          *Scrape
	Health          *Health
}

// New returns the feature services backed by client.
func New(client *evaldash.Client) *Services {
	return &Services{
		Dataset:         NewDataset(client),
		ConfusionMatrix: NewConfusionMatrix(client),
		KFold:           NewKFold(client),
		EpochTraining:   NewEpochTraining(client),
		BatchSize:       NewBatchSize(client),
		Optimizer:       NewOptimizer(client),
		Evaluation:      NewEvaluation(client),
		Scrape:          NewScrape(client),
		Health:          NewHealth(client),
	}
}
