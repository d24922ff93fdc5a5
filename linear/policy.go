package linear

import (
	"fmt"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

// Default learning rates per stopping policy.
const (
	DefaultEpochsLearningRate    = 0.001
	DefaultThresholdLearningRate = 0.01
)

// StoppingPolicy decides when the training loop ends. It is implemented only
// by FixedEpochs and ConvergenceThreshold.
type StoppingPolicy interface {
	// Name is the short policy name used in logs and configuration.
	Name() string

	defaultLearningRate() float64
	validate() error
	isStoppingPolicy()
}

// FixedEpochs runs exactly N gradient steps.
type FixedEpochs struct {
	N int
}

// Name implements StoppingPolicy.
func (FixedEpochs) Name() string { return "epochs" }

func (p FixedEpochs) String() string { return fmt.Sprintf("FixedEpochs(%d)", p.N) }

func (FixedEpochs) defaultLearningRate() float64 { return DefaultEpochsLearningRate }

func (p FixedEpochs) validate() error {
	if p.N < 0 {
		return errors.NewValidationError("epochs", "must be non-negative", p.N)
	}
	return nil
}

func (FixedEpochs) isStoppingPolicy() {}

// ConvergenceThreshold stops as soon as prev-err < DeltaRMS after a step.
// The comparison is signed, so a step that increases the error also stops
// the loop.
type ConvergenceThreshold struct {
	DeltaRMS float64
}

// Name implements StoppingPolicy.
func (ConvergenceThreshold) Name() string { return "threshold" }

func (p ConvergenceThreshold) String() string {
	return fmt.Sprintf("ConvergenceThreshold(%g)", p.DeltaRMS)
}

func (ConvergenceThreshold) defaultLearningRate() float64 { return DefaultThresholdLearningRate }

func (p ConvergenceThreshold) validate() error {
	if !(p.DeltaRMS > 0) || !errors.IsFinite(p.DeltaRMS) {
		return errors.NewValidationError("threshold", "must be a positive finite number", p.DeltaRMS)
	}
	return nil
}

func (ConvergenceThreshold) isStoppingPolicy() {}
