package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linfit/chart"
	"github.com/YuminosukeSato/linfit/config"
	"github.com/YuminosukeSato/linfit/dataset"
	"github.com/YuminosukeSato/linfit/linear"
	"github.com/YuminosukeSato/linfit/metrics"
	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
	"github.com/YuminosukeSato/linfit/pkg/telemetry"
)

func newTrainCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [data.csv]",
		Short: "Fit a line to a CSV file and save a chart",
		Example: `  linfit train data.csv
  linfit train data.csv --policy threshold --threshold 1e-12 -o fit.svg
  linfit train --config run.yaml --metrics-file /var/lib/node_exporter/linfit.prom`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(root, cmd.Flags(), args)
			if err != nil {
				return err
			}
			return runTrain(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	def := config.Default()
	fs := cmd.Flags()
	fs.String("data", "", "CSV dataset (alternative to the positional argument)")
	fs.StringP("output", "o", "", "Chart file; the extension selects the format (default <y>_vs_<x>.png)")
	fs.Int("width", def.Width, "Chart width in pixels")
	fs.Int("height", def.Height, "Chart height in pixels")
	fs.String("policy", def.Training.Policy, "Stopping policy (epochs|threshold)")
	fs.Int("epochs", def.Training.Epochs, "Gradient steps for the epochs policy")
	fs.Float64("threshold", def.Training.Threshold, "Error delta that ends the threshold policy")
	fs.Float64("learning-rate", 0, "Learning rate (0 uses 0.001 for epochs, 0.01 for threshold)")
	fs.Int("max-iterations", def.Training.MaxIterations, "Iteration bound for the threshold policy (0 = unbounded)")
	fs.String("normalization", def.Training.Normalization, "Normalization (maxabs|affine)")
	fs.Float64("gradient-step", 0, "Finite-difference step (0 uses 1e-10)")
	fs.String("metrics-file", "", "Write run metrics to this Prometheus textfile")
	return cmd
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(root *rootOptions, fs *pflag.FlagSet, args []string) (*config.Config, error) {
	cfg := config.Default()
	if root.configPath != "" {
		loaded, err := config.Load(root.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyFlags(fs, cfg); err != nil {
		return nil, err
	}
	if len(args) == 1 {
		cfg.Data = args[0]
	}
	if root.logLevel != "" {
		cfg.Log.Level = root.logLevel
	}
	if root.logFormat != "" {
		cfg.Log.Format = root.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies only the flags the user set, so file values survive.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	setString := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	setInt := func(name string, dst *int) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}
	setFloat := func(name string, dst *float64) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetFloat64(name)
		}
	}

	setString("data", &cfg.Data)
	setString("output", &cfg.Output)
	setInt("width", &cfg.Width)
	setInt("height", &cfg.Height)
	setString("metrics-file", &cfg.MetricsFile)
	setString("policy", &cfg.Training.Policy)
	setInt("epochs", &cfg.Training.Epochs)
	setFloat("threshold", &cfg.Training.Threshold)
	setFloat("learning-rate", &cfg.Training.LearningRate)
	setInt("max-iterations", &cfg.Training.MaxIterations)
	setString("normalization", &cfg.Training.Normalization)
	setFloat("gradient-step", &cfg.Training.GradientStep)
	return err
}

func runTrain(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (err error) {
	logger, err := log.Setup(cfg.Log.Level, stderr, useConsole(cfg.Log.Format, stderr))
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	logger = logger.With(log.EstimatorIDKey, runID)
	recorder := telemetry.NewRecorder(runID)
	if cfg.MetricsFile != "" {
		defer func() {
			if err != nil {
				recorder.RecordFailure(err)
			}
			if werr := recorder.WriteTextfile(cfg.MetricsFile); werr != nil && err == nil {
				err = werr
			}
		}()
	}

	// load
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted before loading")
	}
	stage := recorder.StartStage(log.OperationLoad)
	ds, err := dataset.Load(cfg.Data)
	stage.Stop(err)
	if err != nil {
		return err
	}

	// fit
	opts, err := cfg.Training.RegressionOptions()
	if err != nil {
		return err
	}
	opts = append(opts, linear.WithLogger(logger), linear.WithEstimatorID(runID))
	reg := linear.NewRegression(opts...)

	stage = recorder.StartStage(log.OperationFit)
	err = reg.Fit(ds.X, ds.Y)
	stage.Stop(err)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, reg.Equation())

	// render
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted before rendering")
	}
	spec := chart.Spec{
		Path:   cfg.OutputPath(ds.XName, ds.YName),
		Width:  cfg.Width,
		Height: cfg.Height,
		XName:  ds.XName,
		YName:  ds.YName,
	}
	stage = recorder.StartStage(log.OperationRender)
	err = chart.Save(spec, ds.X, ds.Y, reg.Slope(), reg.Intercept())
	stage.Stop(err)
	if err != nil {
		return err
	}
	logger.Info("Chart saved", log.PathKey, spec.Path)

	recorder.RecordRun(summarize(reg, ds))
	return nil
}

// summarize collects the run gauges. R² is left at 0 when y is constant.
func summarize(reg *linear.Regression, ds *dataset.Dataset) telemetry.RunSummary {
	s := telemetry.RunSummary{
		Slope:      reg.Slope(),
		Intercept:  reg.Intercept(),
		Loss:       reg.Loss(),
		Iterations: reg.Iterations(),
		Samples:    ds.Len(),
		Converged:  reg.Converged(),
	}
	if r2, err := reg.Score(ds.X, ds.Y); err == nil {
		s.R2 = r2
	}
	if pred, err := reg.Predict(ds.X); err == nil {
		yVec := mat.NewVecDense(ds.Len(), ds.Y)
		predVec := mat.NewVecDense(len(pred), pred)
		if rmse, err := metrics.RMSE(yVec, predVec); err == nil {
			s.RMSE = rmse
		}
		if mae, err := metrics.MAE(yVec, predVec); err == nil {
			s.MAE = mae
		}
	}
	return s
}

// useConsole picks human-readable output for "console", or for "auto" when
// w is a terminal.
func useConsole(format string, w io.Writer) bool {
	switch format {
	case config.FormatConsole:
		return true
	case config.FormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
