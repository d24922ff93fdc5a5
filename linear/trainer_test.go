package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
	"github.com/YuminosukeSato/linfit/preprocessing"
)

func newLineTrainer(t *testing.T, lr float64, logger log.Logger) *trainer {
	t.Helper()
	xn, yn, _, err := preprocessing.NormalizeCombinedMaxAbs(lineX, lineY)
	require.NoError(t, err)
	return &trainer{
		x:             xn,
		y:             yn,
		learningRate:  lr,
		maxIterations: DefaultMaxIterations,
		logger:        logger,
		progressEvery: 1,
	}
}

func stepLosses(t *testing.T, logger *log.TestLogger) []float64 {
	t.Helper()
	entries := logger.EntriesWithMessage("Training progress")
	losses := make([]float64, len(entries))
	for i, e := range entries {
		v, ok := e[log.LossKey].(float64)
		require.True(t, ok, "entry %d: %v", i, e)
		losses[i] = v
	}
	return losses
}

func TestTrainer_ThresholdErrorDecreasesUntilStop(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	tr := newLineTrainer(t, DefaultThresholdLearningRate, logger)
	delta := 1e-8

	res, err := tr.run(ConvergenceThreshold{DeltaRMS: delta})
	require.NoError(t, err)
	require.True(t, res.converged)

	// every step before the last is logged; the last is the one that stopped
	losses := stepLosses(t, logger)
	require.Len(t, losses, res.iterations-1)
	require.NotEmpty(t, losses)

	prev := tr.loss(0, 0)
	for i, cur := range losses {
		assert.GreaterOrEqual(t, prev-cur, delta, "step %d", i+1)
		prev = cur
	}
	assert.Less(t, prev-res.loss, delta)
}

func TestTrainer_EpochsErrorDecreases(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	tr := newLineTrainer(t, DefaultEpochsLearningRate, logger)

	res, err := tr.run(FixedEpochs{N: 500})
	require.NoError(t, err)

	losses := stepLosses(t, logger)
	require.Len(t, losses, 500)
	prev := tr.loss(0, 0)
	for i, cur := range losses {
		assert.Less(t, cur, prev, "step %d", i+1)
		prev = cur
	}
	assert.Equal(t, losses[len(losses)-1], res.loss)
}

func TestTrainer_DivergenceStopsEarly(t *testing.T) {
	tr := newLineTrainer(t, 50, log.GetLogger())

	_, err := tr.run(FixedEpochs{N: 10_000})
	var numErr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &numErr), "got %v", err)
	assert.Equal(t, 2, numErr.Iteration)
	assert.Greater(t, numErr.Values[2], DivergenceLoss)
}

func TestTrainer_ProgressDefaultsToInterval(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	tr := newLineTrainer(t, DefaultEpochsLearningRate, logger)
	tr.progressEvery = 0

	_, err := tr.run(FixedEpochs{N: ProgressInterval})
	require.NoError(t, err)
	assert.Len(t, logger.EntriesWithMessage("Training progress"), 1)
}
