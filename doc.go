// Package linfit fits a straight line y = a*x + b to two-column numeric data
// by gradient descent on normalized samples.
//
// The gradient is estimated numerically with forward differences, and
// training stops either after a fixed number of epochs or once a step lowers
// the mean squared error by less than a threshold. The fitted parameters are
// reported in the units of the input data.
//
// # Quick Start
//
//	ds, err := dataset.Load("data.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reg := linear.NewRegression(
//	    linear.WithPolicy(linear.ConvergenceThreshold{DeltaRMS: 1e-12}),
//	)
//	if err := reg.Fit(ds.X, ds.Y); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reg.Equation())
//
//	err = chart.Save(chart.Spec{
//	    Path:   chart.DefaultFileName(ds.XName, ds.YName),
//	    Width:  chart.DefaultWidth,
//	    Height: chart.DefaultHeight,
//	    XName:  ds.XName,
//	    YName:  ds.YName,
//	}, ds.X, ds.Y, reg.Slope(), reg.Intercept())
//
// # Packages
//
//   - dataset: CSV loading with line-numbered validation errors
//   - preprocessing: combined max-abs and min-max normalization of x and y
//   - metrics: LineMSE (the training objective) and MSE, RMSE, R² for reporting
//   - optimize: forward-difference gradient estimation
//   - linear: the Regression estimator and its stopping policies
//   - chart: scatter plus fitted line rendered with gonum/plot
//   - config: YAML run configuration
//   - pkg/errors: typed errors (InvalidColumnCount, NonNumericValue,
//     DegenerateRange, EmptyDataset) built on cockroachdb/errors
//   - pkg/log: structured logging on zerolog
//   - pkg/telemetry: run metrics in Prometheus textfile format
//
// The linfit command in cmd/linfit wires these together:
//
//	linfit train data.csv --policy threshold --threshold 1e-12 -o fit.png
//
// # Error Handling
//
// Input problems are reported before any training step runs and can be
// classified with errors.KindOf or matched with errors.Is against the
// sentinels:
//
//	if errors.Is(err, errors.ErrNonNumericValue) {
//	    // a field could not be parsed as a finite number
//	}
package linfit
