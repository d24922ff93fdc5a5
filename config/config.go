// Package config holds the settings of a training run, loaded from YAML and
// overridden by command-line flags.
package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/linfit/chart"
	"github.com/YuminosukeSato/linfit/linear"
	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
	"github.com/YuminosukeSato/linfit/preprocessing"
)

// Policy names accepted in TrainingConfig.Policy.
const (
	PolicyEpochs    = "epochs"
	PolicyThreshold = "threshold"
)

// Log output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// DefaultThreshold is used when the threshold policy is chosen without a value.
const DefaultThreshold = 1e-9

// Config is the full run configuration.
type Config struct {
	// Data is the CSV file to train on.
	Data string `yaml:"data"`
	// Output is the chart path. Empty means chart.DefaultFileName.
	Output string `yaml:"output"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// MetricsFile, when set, receives run gauges in Prometheus text format.
	MetricsFile string `yaml:"metrics_file"`

	Training TrainingConfig `yaml:"training"`
	Log      LogConfig      `yaml:"log"`
}

// TrainingConfig selects the stopping policy and its hyperparameters.
type TrainingConfig struct {
	Policy    string  `yaml:"policy"`
	Epochs    int     `yaml:"epochs"`
	Threshold float64 `yaml:"threshold"`
	// LearningRate of 0 uses the policy default.
	LearningRate  float64 `yaml:"learning_rate"`
	MaxIterations int     `yaml:"max_iterations"`
	Normalization string  `yaml:"normalization"`
	GradientStep  float64 `yaml:"gradient_step"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Width:  chart.DefaultWidth,
		Height: chart.DefaultHeight,
		Training: TrainingConfig{
			Policy:        PolicyEpochs,
			Epochs:        linear.DefaultEpochs,
			Threshold:     DefaultThreshold,
			MaxIterations: linear.DefaultMaxIterations,
			Normalization: preprocessing.MaxAbs.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatAuto,
		},
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if c.Data == "" {
		return errors.NewValidationError("data", "a dataset path is required", c.Data)
	}
	if c.Width <= 0 {
		return errors.NewValidationError("width", "must be positive", c.Width)
	}
	if c.Height <= 0 {
		return errors.NewValidationError("height", "must be positive", c.Height)
	}
	if c.Output != "" && chart.Format(c.Output) == "" {
		return errors.NewValidationError("output", "needs a file extension (png, svg, pdf, jpg)", c.Output)
	}

	t := c.Training
	switch t.Policy {
	case PolicyEpochs:
		if t.Epochs < 0 {
			return errors.NewValidationError("epochs", "must be non-negative", t.Epochs)
		}
	case PolicyThreshold:
		if !(t.Threshold > 0) || !errors.IsFinite(t.Threshold) {
			return errors.NewValidationError("threshold", "must be a positive finite number", t.Threshold)
		}
	default:
		return errors.NewValidationError("policy", "must be one of epochs, threshold", t.Policy)
	}
	if t.LearningRate < 0 || !errors.IsFinite(t.LearningRate) {
		return errors.NewValidationError("learning_rate", "must be a positive finite number, or 0 for the default", t.LearningRate)
	}
	if t.MaxIterations < 0 {
		return errors.NewValidationError("max_iterations", "must be non-negative (0 disables the bound)", t.MaxIterations)
	}
	if t.GradientStep < 0 || !errors.IsFinite(t.GradientStep) {
		return errors.NewValidationError("gradient_step", "must be a positive finite number, or 0 for the default", t.GradientStep)
	}
	if _, err := preprocessing.ParseMethod(t.Normalization); err != nil {
		return err
	}

	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case FormatAuto, FormatConsole, FormatJSON:
	default:
		return errors.NewValidationError("log.format", "must be one of auto, console, json", c.Log.Format)
	}
	return nil
}

// StoppingPolicy returns the stopping policy described by the training section.
func (t TrainingConfig) StoppingPolicy() (linear.StoppingPolicy, error) {
	switch t.Policy {
	case PolicyEpochs:
		return linear.FixedEpochs{N: t.Epochs}, nil
	case PolicyThreshold:
		return linear.ConvergenceThreshold{DeltaRMS: t.Threshold}, nil
	default:
		return nil, errors.NewValidationError("policy", "must be one of epochs, threshold", t.Policy)
	}
}

// RegressionOptions translates the training section into estimator options.
func (t TrainingConfig) RegressionOptions() ([]linear.Option, error) {
	policy, err := t.StoppingPolicy()
	if err != nil {
		return nil, err
	}
	method, err := preprocessing.ParseMethod(t.Normalization)
	if err != nil {
		return nil, err
	}
	return []linear.Option{
		linear.WithPolicy(policy),
		linear.WithLearningRate(t.LearningRate),
		linear.WithMaxIterations(t.MaxIterations),
		linear.WithNormalization(method),
		linear.WithGradientStep(t.GradientStep),
	}, nil
}

// OutputPath returns Output, or the default chart name for the given axes.
func (c *Config) OutputPath(xName, yName string) string {
	if c.Output != "" {
		return c.Output
	}
	return chart.DefaultFileName(xName, yName)
}
