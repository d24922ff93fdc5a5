package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataErrorsFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantKind Kind
		sentinel error
	}{
		{
			name:     "invalid column count",
			err:      NewInvalidColumnCountError(3, 3),
			wantMsg:  "linfit: line 3: each record must have exactly two columns, got 3",
			wantKind: KindInvalidColumnCount,
			sentinel: ErrInvalidColumnCount,
		},
		{
			name:     "non numeric value",
			err:      NewNonNumericValueError(2, 1, "abc"),
			wantMsg:  `linfit: line 2, column 2: each field must contain a finite numeric value (got "abc")`,
			wantKind: KindNonNumericValue,
			sentinel: ErrNonNumericValue,
		},
		{
			name:     "degenerate range",
			err:      NewDegenerateRangeError("NormalizeCombinedMaxAbs", 0, 0),
			wantMsg:  "linfit: NormalizeCombinedMaxAbs: degenerate range [0, 0], cannot normalize",
			wantKind: KindDegenerateRange,
			sentinel: ErrDegenerateRange,
		},
		{
			name:     "empty dataset",
			err:      NewEmptyDatasetError("dataset.Read"),
			wantMsg:  "linfit: dataset.Read: dataset has no usable rows",
			wantKind: KindEmptyDataset,
			sentinel: ErrEmptyDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantKind, KindOf(tt.err))
			assert.True(t, Is(tt.err, tt.sentinel))

			wrapped := Wrap(tt.err, "loading data.csv")
			assert.Equal(t, tt.wantKind, KindOf(wrapped), "kind must survive wrapping")

			formatted := fmt.Sprintf("%+v", tt.err)
			assert.Contains(t, formatted, "errors_test.go", "expected a stack trace")
		})
	}
}

func TestKindOf_Unrelated(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(New("something else")))
	assert.Equal(t, KindUnknown, KindOf(NewValueError("op", "bad")))
	assert.Equal(t, "Unknown", KindUnknown.String())
}

func TestDataErrorsAreDistinct(t *testing.T) {
	err := NewEmptyDatasetError("LineMSE")
	assert.False(t, Is(err, ErrDegenerateRange))
	assert.False(t, Is(err, ErrInvalidColumnCount))
	assert.False(t, Is(err, ErrNonNumericValue))
}

func TestNewModelError(t *testing.T) {
	cause := NewEmptyDatasetError("LineMSE")
	err := NewModelError("Regression.Fit", "training aborted", cause)

	assert.True(t, strings.HasPrefix(err.Error(), "linfit: Regression.Fit: training aborted: "))
	assert.Equal(t, KindEmptyDataset, KindOf(err))

	var modelErr *ModelError
	require.True(t, As(err, &modelErr))
	assert.Equal(t, "Regression.Fit", modelErr.Op)

	bare := NewModelError("Regression.Fit", "not fitted", nil)
	assert.Equal(t, "linfit: Regression.Fit: not fitted", bare.Error())
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("LineMSE", 3, 2)
	assert.Equal(t, "linfit: LineMSE: length mismatch. Expected 3, got 2", err.Error())

	var dimErr *DimensionError
	assert.True(t, As(err, &dimErr))
}

func TestValidationErrorMarshalZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := NewValidationError("training.learning_rate", "must be positive", -1.0)
	var vErr *ValidationError
	require.True(t, As(err, &vErr))

	logger.Error().Object("error", vErr).Msg("invalid config")

	out := buf.String()
	assert.Contains(t, out, `"param_name":"training.learning_rate"`)
	assert.Contains(t, out, `"type":"ValidationError"`)
}

func TestConvergenceWarning(t *testing.T) {
	w := NewConvergenceWarning("ConvergenceThreshold", 1000, "")
	assert.Contains(t, w.Error(), "failed to converge after 1000 iterations")

	w = NewConvergenceWarning("ConvergenceThreshold", 10, "iteration bound reached")
	assert.Equal(t, "ConvergenceThreshold failed to converge after 10 iterations: iteration bound reached", w.Error())
}

func TestWarnRouting(t *testing.T) {
	var fromHandler, fromZerolog []error
	SetWarningHandler(func(w error) { fromHandler = append(fromHandler, w) })
	t.Cleanup(func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(w error) {})
	})

	Warn(NewConvergenceWarning("a", 1, ""))
	require.Len(t, fromHandler, 1)

	SetZerologWarnFunc(func(w error) { fromZerolog = append(fromZerolog, w) })
	Warn(NewConvergenceWarning("b", 2, ""))
	assert.Len(t, fromHandler, 1, "zerolog hook takes precedence")
	assert.Len(t, fromZerolog, 1)
}

func TestCheckScalar(t *testing.T) {
	assert.NoError(t, CheckScalar("loss", 0.5, 1))
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := CheckScalar("loss", v, 7)
		var nErr *NumericalInstabilityError
		require.True(t, As(err, &nErr), "value %v", v)
		assert.Equal(t, 7, nErr.Iteration)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("gradient", []float64{1, -2}, 0))

	err := CheckNumericalStability("gradient", []float64{1, math.NaN()}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numerical instability detected in gradient at iteration 3")
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1e308))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}
