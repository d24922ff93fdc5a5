// Package log defines standard attribute keys for training runs.
//
// Keys follow a hierarchical naming convention ("model.name",
// "training.iteration") so log lines from the trainer, the loader and the
// CLI can be filtered the same way.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "Regression".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a single training run. The CLI stamps a UUID.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "fit", "predict", "render".
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "linear", "dataset", "chart"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey is the number of (x, y) pairs.
	SamplesKey = "data.samples"

	// PathKey is a file read or written by the run.
	PathKey = "data.path"

	// NormalizationKey names the normalization method ("maxabs", "affine").
	NormalizationKey = "preprocessing.normalization"

	// ScaleKey is the shared max-abs scale factor.
	ScaleKey = "preprocessing.scale"
)

// Training Progress and Results
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the mean squared error in normalized space.
	LossKey = "metrics.loss"

	// R2ScoreKey records R² of the fitted line in original units.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records the root mean squared error in original units.
	RMSEKey = "metrics.rmse"

	// MAEKey records the mean absolute error in original units.
	MAEKey = "metrics.mae"

	// IterationKey records the current or final iteration count.
	IterationKey = "training.iteration"

	// PolicyKey names the stopping policy ("epochs", "threshold").
	PolicyKey = "training.policy"

	// SlopeKey and InterceptKey carry the fitted parameters.
	SlopeKey     = "model.slope"
	InterceptKey = "model.intercept"
)

// Hyperparameters
const (
	// LearningRateKey records the gradient descent step size.
	LearningRateKey = "hyperparams.learning_rate"

	// EpochsKey records the fixed epoch count.
	EpochsKey = "hyperparams.epochs"

	// ThresholdKey records the convergence delta threshold.
	ThresholdKey = "hyperparams.threshold"

	// MaxIterationsKey records the iteration safety bound (0 = unbounded).
	MaxIterationsKey = "hyperparams.max_iterations"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationLoad    = "load"
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationRender  = "render"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseReporting     = "reporting"

	ErrorEmptyData    = "EMPTY_DATA"
	ErrorInvalidInput = "INVALID_INPUT"
	ErrorConvergence  = "CONVERGENCE_FAILURE"
	ErrorDegenerate   = "DEGENERATE_RANGE"
	ErrorNumerical    = "NUMERICAL_INSTABILITY"
	ErrorNotFitted    = "NOT_FITTED"
)
