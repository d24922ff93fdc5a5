package linear

import (
	"context"

	"github.com/YuminosukeSato/linfit/metrics"
	"github.com/YuminosukeSato/linfit/optimize"
	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
)

// ProgressInterval is how often (in iterations) the trainer logs progress at
// debug level.
const ProgressInterval = 10_000

// DefaultMaxIterations bounds ConvergenceThreshold runs unless overridden.
const DefaultMaxIterations = 10_000_000

// DivergenceLoss is the normalized loss above which a FixedEpochs run is
// treated as diverged. Normalized targets lie in [-1, 1], so the loss at
// (0, 0) is at most 1.
//
// The check is needed because a diverging run rarely reaches Inf: once |a|
// dwarfs the finite-difference step, a+h == a, the gradient reads 0 and the
// parameters freeze at a huge finite value.
const DivergenceLoss = 1e6

// trainer runs gradient descent over normalized samples it does not own.
type trainer struct {
	x, y          []float64
	learningRate  float64
	maxIterations int
	gradient      optimize.ForwardDifference
	logger        log.Logger
	progressEvery int
}

type trainResult struct {
	a, b       float64
	loss       float64
	iterations int
	converged  bool
}

func (t *trainer) loss(a, b float64) float64 {
	// lengths are checked before the trainer is built
	v, _ := metrics.LineMSE(t.x, t.y, a, b)
	return v
}

func (t *trainer) run(p StoppingPolicy) (trainResult, error) {
	switch p := p.(type) {
	case FixedEpochs:
		return t.runEpochs(p.N)
	case ConvergenceThreshold:
		return t.runThreshold(p.DeltaRMS)
	default:
		return trainResult{}, errors.NewValueError("trainer.run", "unknown stopping policy")
	}
}

// runEpochs applies exactly n updates starting from (0, 0). The loss at the
// current point doubles as the origin of the next gradient.
func (t *trainer) runEpochs(n int) (trainResult, error) {
	const op = "FixedEpochs"
	var a, b float64
	cur := t.loss(a, b)
	for i := 1; i <= n; i++ {
		da, db := t.gradient.GradientAt(t.loss, a, b, cur)
		a -= da * t.learningRate
		b -= db * t.learningRate
		cur = t.loss(a, b)

		if err := checkStep(op, a, b, cur, i); err != nil {
			return trainResult{}, err
		}
		t.progress(i, a, b, cur)
	}
	return trainResult{a: a, b: b, loss: cur, iterations: n, converged: true}, nil
}

// runThreshold steps until prev-err < delta. The check is signed: a step
// that raises the error also ends the run, so divergence cannot continue
// past one step and only the non-finite guard applies.
func (t *trainer) runThreshold(delta float64) (trainResult, error) {
	const op = "ConvergenceThreshold"
	var a, b float64
	prev := t.loss(a, b)
	if err := errors.CheckScalar(op, prev, 0); err != nil {
		return trainResult{}, err
	}

	for i := 1; ; i++ {
		da, db := t.gradient.GradientAt(t.loss, a, b, prev)
		a -= da * t.learningRate
		b -= db * t.learningRate
		cur := t.loss(a, b)

		if !errors.IsFinite(cur) {
			return trainResult{}, errors.NewNumericalInstabilityError(op, []float64{a, b, cur}, i)
		}
		if prev-cur < delta {
			return trainResult{a: a, b: b, loss: cur, iterations: i, converged: true}, nil
		}
		prev = cur

		if t.maxIterations > 0 && i >= t.maxIterations {
			errors.Warn(errors.NewConvergenceWarning(op, i,
				"error delta still above threshold, keeping the last parameters"))
			return trainResult{a: a, b: b, loss: cur, iterations: i}, nil
		}
		t.progress(i, a, b, cur)
	}
}

// checkStep rejects non-finite parameters or loss, and a loss past
// DivergenceLoss.
func checkStep(op string, a, b, loss float64, i int) error {
	if !errors.IsFinite(a) || !errors.IsFinite(b) || !errors.IsFinite(loss) || loss > DivergenceLoss {
		return errors.NewNumericalInstabilityError(op, []float64{a, b, loss}, i)
	}
	return nil
}

func (t *trainer) progress(i int, a, b, loss float64) {
	every := t.progressEvery
	if every <= 0 {
		every = ProgressInterval
	}
	if i%every != 0 || !t.logger.Enabled(context.Background(), log.LevelDebug) {
		return
	}
	t.logger.Debug("Training progress",
		log.IterationKey, i,
		log.SlopeKey, a,
		log.InterceptKey, b,
		log.LossKey, loss,
	)
}
