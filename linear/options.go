package linear

import (
	"github.com/YuminosukeSato/linfit/pkg/log"
	"github.com/YuminosukeSato/linfit/preprocessing"
)

// Option configures a Regression.
type Option func(*Regression)

// WithPolicy sets the stopping policy. Default: FixedEpochs{N: DefaultEpochs}.
func WithPolicy(p StoppingPolicy) Option {
	return func(r *Regression) {
		r.policy = p
	}
}

// WithLearningRate overrides the policy's default learning rate.
// Zero keeps the default.
func WithLearningRate(lr float64) Option {
	return func(r *Regression) {
		r.learningRate = lr
	}
}

// WithMaxIterations bounds ConvergenceThreshold runs. Zero removes the bound.
func WithMaxIterations(n int) Option {
	return func(r *Regression) {
		r.maxIterations = n
	}
}

// WithNormalization selects how x and y are scaled before training.
func WithNormalization(m preprocessing.Method) Option {
	return func(r *Regression) {
		r.normalization = m
	}
}

// WithGradientStep sets the finite-difference step h.
func WithGradientStep(h float64) Option {
	return func(r *Regression) {
		r.gradientStep = h
	}
}

// WithLogger sets the logger used during Fit. Default: log.GetLogger().
func WithLogger(l log.Logger) Option {
	return func(r *Regression) {
		r.logger = l
	}
}

// WithEstimatorID tags every log record of this estimator.
func WithEstimatorID(id string) Option {
	return func(r *Regression) {
		r.estimatorID = id
	}
}
