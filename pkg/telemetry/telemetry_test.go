package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

func TestRecorder_RecordRun(t *testing.T) {
	r := NewRecorder("run-1")
	r.RecordRun(RunSummary{
		Slope:      -0.0214,
		Intercept:  8499.6,
		Loss:       0.0012,
		R2:         0.73,
		RMSE:       667.7,
		MAE:        540.2,
		Iterations: 10000,
		Samples:    24,
		Converged:  true,
	})

	assert.Equal(t, -0.0214, testutil.ToFloat64(r.Slope))
	assert.Equal(t, 8499.6, testutil.ToFloat64(r.Intercept))
	assert.Equal(t, 0.0012, testutil.ToFloat64(r.Loss))
	assert.Equal(t, 0.73, testutil.ToFloat64(r.R2))
	assert.Equal(t, 667.7, testutil.ToFloat64(r.RMSE))
	assert.Equal(t, 540.2, testutil.ToFloat64(r.MAE))
	assert.Equal(t, 10000.0, testutil.ToFloat64(r.Iterations))
	assert.Equal(t, 24.0, testutil.ToFloat64(r.Samples))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Converged))
	assert.Greater(t, testutil.ToFloat64(r.LastRun), 0.0)

	r.RecordRun(RunSummary{Converged: false})
	assert.Equal(t, 0.0, testutil.ToFloat64(r.Converged))
}

func TestRecorder_Stages(t *testing.T) {
	r := NewRecorder("run-2")

	r.StartStage("load").Stop(nil)
	r.StartStage("fit").Stop(nil)
	r.StartStage("render").Stop(errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Stages.WithLabelValues("load", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Stages.WithLabelValues("fit", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Stages.WithLabelValues("render", ResultError)))
	assert.Equal(t, 3, testutil.CollectAndCount(r.StageDuration))
}

func TestRecorder_RecordFailure(t *testing.T) {
	r := NewRecorder("run-3")
	r.RecordFailure(errors.NewInvalidColumnCountError(3, 3))
	r.RecordFailure(errors.NewInvalidColumnCountError(4, 1))
	r.RecordFailure(errors.New("other"))
	r.RecordFailure(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Failures.WithLabelValues("InvalidColumnCount")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Failures.WithLabelValues("Unknown")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder("abc")
	r.RecordRun(RunSummary{Slope: 2, Intercept: 0.5, Iterations: 7, Samples: 3, Converged: true})

	path := filepath.Join(t.TempDir(), "linfit.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `linfit_model_slope{run_id="abc"} 2`)
	assert.Contains(t, out, `linfit_model_intercept{run_id="abc"} 0.5`)
	assert.Contains(t, out, `linfit_training_iterations{run_id="abc"} 7`)
	assert.Contains(t, out, "# HELP linfit_training_converged")
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	r := NewRecorder("abc")
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "linfit.prom"))
	assert.Error(t, err)
}
