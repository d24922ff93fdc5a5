package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linfit/pkg/errors"
)

var (
	sampleX = []float64{240000, 139800, 150500, 22899}
	sampleY = []float64{3650, 3800, 4400, 7990}
)

func testSpec(path string) Spec {
	return Spec{Path: path, Width: 320, Height: 240, XName: "km", YName: "price"}
}

func TestDefaultFileName(t *testing.T) {
	tests := []struct {
		x, y string
		want string
	}{
		{"km", "price", "price_vs_km.png"},
		{"engine size", "fuel used", "fuel_used_vs_engine_size.png"},
		{"x", "y", "y_vs_x.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultFileName(tt.x, tt.y))
	}
	assert.Equal(t, "price vs km", Title("km", "price"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "png", Format("out/chart.PNG"))
	assert.Equal(t, "svg", Format("a.b.svg"))
	assert.Equal(t, "", Format("chart"))
}

func TestRender_PNG(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "png", testSpec(""), sampleX, sampleY, -0.0214, 8499)
	require.NoError(t, err)
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), buf.Bytes()[:8])
}

func TestRender_SVGHasTitleAndLabels(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "svg", testSpec(""), sampleX, sampleY, -0.0214, 8499)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "price vs km")
	assert.Contains(t, out, ">km<")
}

func TestRender_SingleSample(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "png", testSpec(""), []float64{1}, []float64{2}, 2, 0)
	assert.NoError(t, err)
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, "png", testSpec(""), nil, nil, 1, 0)
	assert.True(t, errors.Is(err, errors.ErrEmptyDataset))

	err = Render(&buf, "png", testSpec(""), []float64{1, 2}, []float64{1}, 1, 0)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	spec := testSpec("")
	spec.Width = 0
	err = Render(&buf, "png", spec, sampleX, sampleY, 1, 0)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	err = Render(&buf, "bmp", testSpec(""), sampleX, sampleY, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bmp")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"chart.png", "chart.svg", "chart.pdf", "chart.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(testSpec(path), sampleX, sampleY, -0.0214, 8499))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()

	err := Save(testSpec(filepath.Join(dir, "chart")), sampleX, sampleY, 1, 0)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	err = Save(testSpec(filepath.Join(dir, "missing", "chart.png")), sampleX, sampleY, 1, 0)
	assert.Error(t, err)
}
