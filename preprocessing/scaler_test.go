package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

func TestNormalizeCombinedMaxAbs(t *testing.T) {
	tests := []struct {
		name      string
		x, y      []float64
		wantScale float64
		wantX     []float64
		wantY     []float64
	}{
		{
			name:      "positive line",
			x:         []float64{1, 2, 3},
			y:         []float64{2, 4, 6},
			wantScale: 6,
			wantX:     []float64{1.0 / 6, 2.0 / 6, 3.0 / 6},
			wantY:     []float64{2.0 / 6, 4.0 / 6, 1},
		},
		{
			name:      "negative values dominate",
			x:         []float64{-10, 5},
			y:         []float64{3, -4},
			wantScale: 10,
			wantX:     []float64{-1, 0.5},
			wantY:     []float64{0.3, -0.4},
		},
		{
			name:      "single sample",
			x:         []float64{0},
			y:         []float64{-2},
			wantScale: 2,
			wantX:     []float64{0},
			wantY:     []float64{-1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xn, yn, scale, err := NormalizeCombinedMaxAbs(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScale, scale)
			assert.InDeltaSlice(t, tt.wantX, xn, 1e-12)
			assert.InDeltaSlice(t, tt.wantY, yn, 1e-12)

			for _, v := range append(append([]float64{}, xn...), yn...) {
				assert.LessOrEqual(t, math.Abs(v), 1.0)
			}
		})
	}
}

func TestNormalizeCombinedMaxAbs_DoesNotMutateInput(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{2, 4, 6}
	_, _, _, err := NormalizeCombinedMaxAbs(x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, x)
	assert.Equal(t, []float64{2, 4, 6}, y)
}

func TestNormalizeCombinedMaxAbs_Errors(t *testing.T) {
	_, _, _, err := NormalizeCombinedMaxAbs([]float64{0, 0}, []float64{0, 0})
	assert.True(t, errors.Is(err, errors.ErrDegenerateRange))

	_, _, _, err = NormalizeCombinedMaxAbs(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyDataset))

	_, _, _, err = NormalizeCombinedMaxAbs([]float64{1, 2}, []float64{1})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestDenormalizeIntercept_RoundTrip(t *testing.T) {
	for _, scale := range []float64{1, 6, 240000, 1e-3} {
		for _, b := range []float64{0, 0.5, -0.25, 0.999} {
			got := DenormalizeIntercept(b, scale) / scale
			assert.InDelta(t, b, got, 1e-12, "scale=%v b=%v", scale, b)
		}
	}
}

func TestNormalizeCombinedAffine(t *testing.T) {
	xn, yn, err := NormalizeCombinedAffine([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)

	// combined min 1, max 6
	assert.InDeltaSlice(t, []float64{-1, -0.6, -0.2}, xn, 1e-12)
	assert.InDeltaSlice(t, []float64{-0.6, 0.2, 1}, yn, 1e-12)
}

func TestNormalizeCombinedAffine_Range(t *testing.T) {
	x := []float64{-3.5, 12, 7, 0.25}
	y := []float64{100, -40, 3, 3}
	xn, yn, err := NormalizeCombinedAffine(x, y)
	require.NoError(t, err)

	for _, v := range append(xn, yn...) {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, -1.0, yn[1])
	assert.Equal(t, 1.0, yn[0])
}

func TestNormalizeCombinedAffine_Degenerate(t *testing.T) {
	_, _, err := NormalizeCombinedAffine([]float64{4, 4}, []float64{4, 4})
	require.Error(t, err)
	assert.Equal(t, errors.KindDegenerateRange, errors.KindOf(err))

	// all-equal is degenerate for affine but not for max-abs
	_, _, scale, err := NormalizeCombinedMaxAbs([]float64{4, 4}, []float64{4, 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, scale)
}

func TestCombinedScaler_Denormalize(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{2, 4, 6}

	tests := []struct {
		method       Method
		aNorm, bNorm float64
		wantA, wantB float64
	}{
		// y' = 2x' exactly under max-abs
		{method: MaxAbs, aNorm: 2, bNorm: 0, wantA: 2, wantB: 0},
		// y' = 2x' + 1.4 under affine with min 1, max 6
		{method: MinMaxAffine, aNorm: 2, bNorm: 1.4, wantA: 2, wantB: 0},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			s := NewCombinedScaler(tt.method)
			xn, yn, err := s.FitTransform(x, y)
			require.NoError(t, err)
			require.Len(t, xn, 3)
			require.Len(t, yn, 3)

			for i := range xn {
				assert.InDelta(t, yn[i], tt.aNorm*xn[i]+tt.bNorm, 1e-12)
			}

			a, b, err := s.Denormalize(tt.aNorm, tt.bNorm)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantA, a, 1e-12)
			assert.InDelta(t, tt.wantB, b, 1e-12)
		})
	}
}

func TestCombinedScaler_InverseTransform(t *testing.T) {
	x := []float64{-2, 0, 5}
	y := []float64{1, 9, 3}

	for _, m := range []Method{MaxAbs, MinMaxAffine} {
		t.Run(m.String(), func(t *testing.T) {
			s := NewCombinedScaler(m)
			xn, yn, err := s.FitTransform(x, y)
			require.NoError(t, err)

			xBack, err := s.InverseTransform(xn)
			require.NoError(t, err)
			yBack, err := s.InverseTransform(yn)
			require.NoError(t, err)
			assert.InDeltaSlice(t, x, xBack, 1e-12)
			assert.InDeltaSlice(t, y, yBack, 1e-12)
		})
	}
}

func TestCombinedScaler_NotFitted(t *testing.T) {
	s := NewCombinedScaler(MaxAbs)
	assert.False(t, s.IsFitted())
	assert.Equal(t, "CombinedScaler(method=maxabs)", s.String())

	_, _, err := s.Transform([]float64{1}, []float64{1})
	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))

	_, _, err = s.Denormalize(1, 1)
	assert.True(t, errors.As(err, &nfErr))
}

func TestCombinedScaler_FitFailureKeepsUnfitted(t *testing.T) {
	s := NewCombinedScaler(MinMaxAffine)
	err := s.Fit([]float64{2, 2}, []float64{2, 2})
	require.Error(t, err)
	assert.False(t, s.IsFitted())
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"maxabs", MaxAbs, false},
		{"", MaxAbs, false},
		{"Affine", MinMaxAffine, false},
		{"min-max", MinMaxAffine, false},
		{"zscore", MaxAbs, true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
