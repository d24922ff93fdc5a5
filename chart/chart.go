// Package chart renders the raw samples and the fitted line to an image file.
package chart

import (
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

var (
	pointColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	lineColor  = color.RGBA{R: 30, G: 60, B: 200, A: 255}
)

// Spec describes one chart.
type Spec struct {
	// Path of the output file. Its extension selects the format.
	Path string

	// Width and Height in pixels.
	Width  int
	Height int

	XName string
	YName string
}

// DefaultFileName returns "<yname>_vs_<xname>.png" with spaces replaced by
// underscores.
func DefaultFileName(xName, yName string) string {
	return strings.ReplaceAll(Title(xName, yName), " ", "_") + ".png"
}

// Title returns "<yname> vs <xname>".
func Title(xName, yName string) string {
	return yName + " vs " + xName
}

// Format returns the lower-case extension of path without the dot.
func Format(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Save draws the samples and the line y = a*x + b into spec.Path.
func Save(spec Spec, x, y []float64, a, b float64) (err error) {
	format := Format(spec.Path)
	if format == "" {
		return errors.NewValidationError("output", "needs a file extension (png, svg, pdf, jpg)", spec.Path)
	}

	f, err := os.Create(spec.Path)
	if err != nil {
		return errors.Wrapf(err, "chart: create %s", spec.Path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "chart: close %s", spec.Path)
		}
	}()

	if err := Render(f, format, spec, x, y, a, b); err != nil {
		return err
	}

	log.GetLogger().Debug("Chart written",
		log.OperationKey, log.OperationRender,
		log.PathKey, spec.Path,
		log.SamplesKey, len(x),
	)
	return nil
}

// Render writes the chart in the given format (png, svg, pdf, jpg, ...) to w.
func Render(w io.Writer, format string, spec Spec, x, y []float64, a, b float64) error {
	const op = "chart.Render"
	if len(x) == 0 {
		return errors.NewEmptyDatasetError(op)
	}
	if len(x) != len(y) {
		return errors.NewDimensionError(op, len(x), len(y))
	}
	if spec.Width <= 0 {
		return errors.NewValidationError("width", "must be positive", spec.Width)
	}
	if spec.Height <= 0 {
		return errors.NewValidationError("height", "must be positive", spec.Height)
	}

	p, err := newPlot(spec, x, y, a, b)
	if err != nil {
		return err
	}

	return errors.SafeExecute(op, func() error {
		wt, err := p.WriterTo(pixels(spec.Width), pixels(spec.Height), format)
		if err != nil {
			return errors.Wrapf(err, "chart: format %q", format)
		}
		if _, err := wt.WriteTo(w); err != nil {
			return errors.Wrap(err, "chart: write")
		}
		return nil
	})
}

func newPlot(spec Spec, x, y []float64, a, b float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title(spec.XName, spec.YName)
	p.X.Label.Text = spec.XName
	p.Y.Label.Text = spec.YName
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "chart: samples")
	}
	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  pointColor,
		Radius: vg.Points(3),
		Shape:  draw.CircleGlyph{},
	}

	lo, hi := floats.Min(x), floats.Max(x)
	line, err := plotter.NewLine(plotter.XYs{
		{X: lo, Y: a*lo + b},
		{X: hi, Y: a*hi + b},
	})
	if err != nil {
		return nil, errors.Wrap(err, "chart: fitted line")
	}
	line.LineStyle.Color = lineColor
	line.LineStyle.Width = vg.Points(1.5)

	p.Add(scatter, line)
	p.Legend.Add("samples", scatter)
	p.Legend.Add("fit", line)
	p.Legend.Top = true
	return p, nil
}

// pixels converts a pixel count to a length at the raster DPI.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / vgimg.DefaultDPI
}
