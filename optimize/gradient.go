// Package optimize estimates gradients of two-parameter objectives numerically.
package optimize

import (
	"gonum.org/v1/gonum/diff/fd"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

// DefaultStep is the finite-difference step used when none is configured.
const DefaultStep = 1e-10

// Objective is a scalar loss over a slope a and an intercept b.
type Objective func(a, b float64) float64

// ForwardDifference approximates partial derivatives with one-sided
// differences:
//
//	da = (f(a+h, b) - f(a, b)) / h
//	db = (f(a, b+h) - f(a, b)) / h
//
// The zero value uses DefaultStep.
type ForwardDifference struct {
	// Step is h. Values <= 0 fall back to DefaultStep.
	Step float64
}

// NewForwardDifference returns an estimator with step h after validating it.
func NewForwardDifference(h float64) (ForwardDifference, error) {
	if h <= 0 || !errors.IsFinite(h) {
		return ForwardDifference{}, errors.NewValidationError("step", "must be a positive finite number", h)
	}
	return ForwardDifference{Step: h}, nil
}

// Gradient evaluates f three times and returns (da, db). A NaN produced by f
// propagates into the result.
func (d ForwardDifference) Gradient(f Objective, a, b float64) (da, db float64) {
	return d.GradientAt(f, a, b, f(a, b))
}

// GradientAt is Gradient for callers that already hold fab = f(a, b). It
// evaluates f twice.
func (d ForwardDifference) GradientAt(f Objective, a, b, fab float64) (da, db float64) {
	var g [2]float64
	fd.Gradient(g[:], func(p []float64) float64 {
		return f(p[0], p[1])
	}, []float64{a, b}, &fd.Settings{
		Formula:     fd.Forward,
		Step:        d.step(),
		OriginKnown: true,
		OriginValue: fab,
	})
	return g[0], g[1]
}

func (d ForwardDifference) step() float64 {
	if d.Step <= 0 {
		return DefaultStep
	}
	return d.Step
}

// Gradient is ForwardDifference{}.Gradient.
func Gradient(f Objective, a, b float64) (da, db float64) {
	return ForwardDifference{}.Gradient(f, a, b)
}
