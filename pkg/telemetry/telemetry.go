// Package telemetry records the outcome of a training run as Prometheus
// metrics and writes them in the node-exporter textfile format.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
)

// Stage results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// RunSummary is what a finished run reports.
type RunSummary struct {
	Slope      float64
	Intercept  float64
	Loss       float64
	R2         float64
	RMSE       float64
	MAE        float64
	Iterations int
	Samples    int
	Converged  bool
}

// Recorder owns a private registry so that runs never leak into the global one.
type Recorder struct {
	registry *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	Stages        *prometheus.CounterVec
	Failures      *prometheus.CounterVec

	Slope      prometheus.Gauge
	Intercept  prometheus.Gauge
	Loss       prometheus.Gauge
	R2         prometheus.Gauge
	RMSE       prometheus.Gauge
	MAE        prometheus.Gauge
	Iterations prometheus.Gauge
	Samples    prometheus.Gauge
	Converged  prometheus.Gauge
	LastRun    prometheus.Gauge
}

// NewRecorder creates a Recorder whose metrics all carry run_id=runID.
func NewRecorder(runID string) *Recorder {
	labels := prometheus.Labels{"run_id": runID}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "linfit_" + name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "linfit_stage_duration_seconds",
				Help:        "Duration of each run stage in seconds",
				Buckets:     []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
				ConstLabels: labels,
			},
			[]string{"stage", "result"},
		),
		Stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "linfit_stages_total",
				Help:        "Completed run stages by result",
				ConstLabels: labels,
			},
			[]string{"stage", "result"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "linfit_failures_total",
				Help:        "Run failures by error kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		Slope:      gauge("model_slope", "Fitted slope in original units"),
		Intercept:  gauge("model_intercept", "Fitted intercept in original units"),
		Loss:       gauge("training_loss", "Final mean squared error in normalized space"),
		R2:         gauge("model_r2", "Coefficient of determination in original units"),
		RMSE:       gauge("model_rmse", "Root mean squared error in original units"),
		MAE:        gauge("model_mae", "Mean absolute error in original units"),
		Iterations: gauge("training_iterations", "Gradient steps taken"),
		Samples:    gauge("data_samples", "Samples in the dataset"),
		Converged:  gauge("training_converged", "1 if the stopping policy fired, 0 if the iteration bound was hit"),
		LastRun:    gauge("last_run_timestamp_seconds", "Unix time the run finished"),
	}

	r.registry.MustRegister(
		r.StageDuration, r.Stages, r.Failures,
		r.Slope, r.Intercept, r.Loss, r.R2, r.RMSE, r.MAE,
		r.Iterations, r.Samples, r.Converged, r.LastRun,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// StageTimer measures one stage of a run.
type StageTimer struct {
	recorder *Recorder
	stage    string
	start    time.Time
}

// StartStage begins timing stage.
func (r *Recorder) StartStage(stage string) *StageTimer {
	return &StageTimer{recorder: r, stage: stage, start: time.Now()}
}

// Stop records the stage duration with a result derived from err.
func (st *StageTimer) Stop(err error) time.Duration {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	elapsed := time.Since(st.start)
	st.recorder.StageDuration.WithLabelValues(st.stage, result).Observe(elapsed.Seconds())
	st.recorder.Stages.WithLabelValues(st.stage, result).Inc()

	log.GetLogger().Debug("Stage completed",
		log.PhaseKey, st.stage,
		"result", result,
		log.DurationMsKey, elapsed.Milliseconds(),
	)
	return elapsed
}

// RecordRun sets the model gauges from a finished run.
func (r *Recorder) RecordRun(s RunSummary) {
	r.Slope.Set(s.Slope)
	r.Intercept.Set(s.Intercept)
	r.Loss.Set(s.Loss)
	r.R2.Set(s.R2)
	r.RMSE.Set(s.RMSE)
	r.MAE.Set(s.MAE)
	r.Iterations.Set(float64(s.Iterations))
	r.Samples.Set(float64(s.Samples))
	if s.Converged {
		r.Converged.Set(1)
	} else {
		r.Converged.Set(0)
	}
	r.LastRun.SetToCurrentTime()
}

// RecordFailure counts a failed run under the error's kind.
func (r *Recorder) RecordFailure(err error) {
	if err == nil {
		return
	}
	r.Failures.WithLabelValues(errors.KindOf(err).String()).Inc()
	r.LastRun.SetToCurrentTime()
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "telemetry: write %s", path)
	}
	return nil
}
