package types //nolint:revive // package name is intentional

// ConfusionMatrixRequest selects the legal (1) or illegal (0) class.
type ConfusionMatrixRequest struct {
	IsLegal int `json:"is_legal"`
}

// ConfusionMatrix holds the counts and derived metrics of the classifier,
// each with a human-readable explanation.
type ConfusionMatrix struct {
	IsLegal      int     `json:"is_legal"`
	LegalCount   int     `json:"legal_count"`
	IllegalCount int     `json:"illegal_count"`
	TSCount      int     `json:"ts_count"`
	TPCount      int     `json:"tp_count"`
	TNCount      int     `json:"tn_count"`
	FPCount      int     `json:"fp_count"`
	FNCount      int     `json:"fn_count"`
	Accuracy     float64 `json:"accuracy_count"`
	Precision    float64 `json:"precision_count"`
	Recall       float64 `json:"recall_count"`
	F1Score      float64 `json:"f1_score_count"`

	LegalLabel           string `json:"keterangan_legal"`
	TSExplanation        string `json:"ts_penjelasan"`
	TPExplanation        string `json:"tp_penjelasan"`
	TNExplanation        string `json:"tn_penjelasan"`
	FPExplanation        string `json:"fp_penjelasan"`
	FNExplanation        string `json:"fn_penjelasan"`
	AccuracyExplanation  string `json:"accuracy_penjelasan"`
	PrecisionExplanation string `json:"precision_penjelasan"`
	RecallExplanation    string `json:"recall_penjelasan"`
	F1ScoreExplanation   string `json:"f1_score_penjelasan"`
}

// KFoldRequest selects the class for cross validation.
type KFoldRequest struct {
	IsLegal int `json:"is_legal"`
}

// FoldResult is the outcome of a single fold.
type FoldResult struct {
	Fold      int     `json:"fold"`
	TestSize  int     `json:"test_size"`
	TP        int     `json:"tp"`
	TN        int     `json:"tn"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

// KFoldResults aggregates all folds of one k.
type KFoldResults struct {
	K                int          `json:"k"`
	FoldResults      []FoldResult `json:"fold_results"`
	AverageAccuracy  float64      `json:"average_accuracy"`
	AveragePrecision float64      `json:"average_precision"`
	AverageRecall    float64      `json:"average_recall"`
	AverageF1Score   float64      `json:"average_f1_score"`
	StdAccuracy      float64      `json:"std_accuracy"`
	StdF1Score       float64      `json:"std_f1_score"`
}

// KFoldExplanation explains the averaged metrics.
type KFoldExplanation struct {
	Accuracy  string `json:"accuracy"`
	Precision string `json:"precision"`
	Recall    string `json:"recall"`
	F1Score   string `json:"f1_score"`
}

// FoldConclusion summarises one fold.
type FoldConclusion struct {
	TestSize        int    `json:"test_size"`
	MetricsSummary  string `json:"metrics_summary"`
	ConfusionMatrix string `json:"confusion_matrix"`
	Interpretation  string `json:"interpretasi"`
}

// KFoldConclusions is keyed by fold label for k=3 and k=5.
type KFoldConclusions struct {
	KFold3 map[string]FoldConclusion `json:"k_fold_3"`
	KFold5 map[string]FoldConclusion `json:"k_fold_5"`
}

// KFold is the cross validation payload for k=3 and k=5.
type KFold struct {
	IsLegal      int    `json:"is_legal"`
	LegalLabel   string `json:"keterangan_legal"`
	TotalSamples int    `json:"total_samples"`
	LegalCount   int    `json:"legal_count"`
	IllegalCount int    `json:"illegal_count"`

	KFold3            KFoldResults     `json:"k_fold_3"`
	KFold5            KFoldResults     `json:"k_fold_5"`
	KFold3Explanation KFoldExplanation `json:"k_fold_3_penjelasan"`
	KFold5Explanation KFoldExplanation `json:"k_fold_5_penjelasan"`
	Conclusions       KFoldConclusions `json:"k_fold_kesimpulan"`
}

// EpochTrainingRequest asks for a training curve up to MaxEpochs.
type EpochTrainingRequest struct {
	IsLegal   int `json:"is_legal"`
	MaxEpochs int `json:"max_epochs"`
}

// Epoch is one point of the training curve.
type Epoch struct {
	Epoch         int     `json:"epoch"`
	TrainAccuracy float64 `json:"train_accuracy"`
	TrainLoss     float64 `json:"train_loss"`
}

// EpochSummary compares the first and last epoch.
type EpochSummary struct {
	InitialTrainAccuracy     float64 `json:"initial_train_accuracy"`
	InitialTrainLoss         float64 `json:"initial_train_loss"`
	FinalTrainAccuracy       float64 `json:"final_train_accuracy"`
	FinalTrainLoss           float64 `json:"final_train_loss"`
	ImprovementTrainAccuracy float64 `json:"improvement_train_accuracy"`
	ImprovementTrainLoss     float64 `json:"improvement_train_loss"`
	TotalEpochsRun           int     `json:"total_epochs_run"`
}

// EpochExplanation is the narrative accompanying a training run.
type EpochExplanation struct {
	TrainingMode     string `json:"training_mode"`
	FinalPerformance string `json:"final_performance"`
	Improvement      string `json:"improvement"`
	NoValidation     string `json:"no_validation"`
	Recommendation   string `json:"recommendation"`
}

// EpochTraining is the epoch training payload.
type EpochTraining struct {
	IsLegal             int              `json:"is_legal"`
	LegalLabel          string           `json:"keterangan_legal"`
	MaxEpochs           int              `json:"max_epochs"`
	Patience            *int             `json:"patience"`
	TotalSamples        int              `json:"total_samples"`
	TrainSamples        int              `json:"train_samples"`
	ValidationSamples   int              `json:"validation_samples"`
	ValidationSplit     float64          `json:"validation_split"`
	Epochs              []Epoch          `json:"epochs"`
	BestEpoch           int              `json:"best_epoch"`
	EarlyStoppedAtEpoch *int             `json:"early_stopped_at_epoch"`
	Summary             EpochSummary     `json:"summary"`
	Explanation         EpochExplanation `json:"penjelasan"`
}

// BatchSizeRequest compares the given batch sizes.
type BatchSizeRequest struct {
	IsLegal    int   `json:"is_legal"`
	BatchSizes []int `json:"batch_sizes"`
}

// BatchSizeResult describes training with one batch size.
type BatchSizeResult struct {
	BatchSize          int    `json:"batch_size"`
	IterationsPerEpoch int    `json:"iterations_per_epoch"`
	LastBatchSize      int    `json:"last_batch_size"`
	SpeedCategory      string `json:"speed_category"`
	MemoryEfficiency   string `json:"memory_efficiency"`
	ConvergenceQuality string `json:"convergence_quality"`
}

// BatchSizeComparison picks notable entries out of the results.
type BatchSizeComparison struct {
	SmallestBatch    BatchSizeResult `json:"smallest_batch"`
	RecommendedBatch BatchSizeResult `json:"recommended_batch"`
	LargestBatch     BatchSizeResult `json:"largest_batch"`
}

// BatchSizeExplanation is the narrative accompanying the comparison.
type BatchSizeExplanation struct {
	BatchSizeConcept      string `json:"batch_size_concept"`
	IterationsCalculation string `json:"iterations_calculation"`
	TradeOffs             string `json:"trade_offs"`
	Recommendation        string `json:"recommendation"`
}

// BatchSize is the batch size comparison payload.
type BatchSize struct {
	IsLegal      int                  `json:"is_legal"`
	LegalLabel   string               `json:"keterangan_legal"`
	TotalSamples int                  `json:"total_samples"`
	Results      []BatchSizeResult    `json:"batch_size_results"`
	Comparison   BatchSizeComparison  `json:"comparison"`
	Explanation  BatchSizeExplanation `json:"penjelasan"`
}

// OptimizerRequest compares the named optimizers.
type OptimizerRequest struct {
	IsLegal    int      `json:"is_legal"`
	Optimizers []string `json:"optimizers"`
}

// OptimizerCharacteristics lists pros and cons of an optimizer.
type OptimizerCharacteristics struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// OptimizerResult describes training with one optimizer.
type OptimizerResult struct {
	Optimizer        string                   `json:"optimizer"`
	FullName         string                   `json:"full_name"`
	LearningRate     float64                  `json:"learning_rate"`
	ConvergenceSpeed string                   `json:"convergence_speed"`
	Stability        string                   `json:"stability"`
	EpochsToConverge int                      `json:"epochs_to_converge"`
	FinalAccuracy    float64                  `json:"final_accuracy"`
	Characteristics  OptimizerCharacteristics `json:"characteristics"`
}

// OptimizerComparison picks notable entries out of the results.
type OptimizerComparison struct {
	Recommended        OptimizerResult `json:"recommended"`
	FastestConvergence OptimizerResult `json:"fastest_convergence"`
	HighestAccuracy    OptimizerResult `json:"highest_accuracy"`
	MostStable         OptimizerResult `json:"most_stable"`
}

// OptimizerExplanation is the narrative accompanying the comparison.
type OptimizerExplanation struct {
	OptimizerConcept   string `json:"optimizer_concept"`
	SGDExplanation     string `json:"sgd_explanation"`
	RMSPropExplanation string `json:"rmsprop_explanation"`
	AdamExplanation    string `json:"adam_explanation"`
	Recommendation     string `json:"recommendation"`
}

// Optimizer is the optimizer comparison payload.
type Optimizer struct {
	IsLegal      int                  `json:"is_legal"`
	LegalLabel   string               `json:"keterangan_legal"`
	TotalSamples int                  `json:"total_samples"`
	Results      []OptimizerResult    `json:"optimizer_results"`
	Comparison   OptimizerComparison  `json:"comparison"`
	Explanation  OptimizerExplanation `json:"penjelasan"`
}
