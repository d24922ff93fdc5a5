// Package dataset reads two-column numeric CSV files into x/y sample series.
//
// The first record is a header naming the two axes. Every later record must
// hold exactly two finite decimal numbers. Whitespace around fields is
// ignored and blank lines are skipped.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/linfit/pkg/errors"
	"github.com/YuminosukeSato/linfit/pkg/log"
)

// Dataset holds the samples of a CSV file together with its axis names.
// The slices are not modified after loading.
type Dataset struct {
	X     []float64
	Y     []float64
	XName string
	YName string
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.X)
}

// Load opens path and parses it with Read.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: %s", path)
	}

	log.GetLogger().Debug("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.SamplesKey, ds.Len(),
	)
	return ds, nil
}

// Read parses CSV records from r. Errors carry the 1-based line number of
// the offending record.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewInvalidColumnCountError(1, 0)
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read header")
	}
	line, _ := cr.FieldPos(0)
	if len(header) != 2 {
		return nil, errors.NewInvalidColumnCountError(line, len(header))
	}

	ds := &Dataset{
		XName: strings.TrimSpace(header[0]),
		YName: strings.TrimSpace(header[1]),
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset: read record")
		}
		line, _ := cr.FieldPos(0)
		if len(record) != 2 {
			return nil, errors.NewInvalidColumnCountError(line, len(record))
		}

		x, err := parseField(record[0], line, 0)
		if err != nil {
			return nil, err
		}
		y, err := parseField(record[1], line, 1)
		if err != nil {
			return nil, err
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}

	if ds.Len() == 0 {
		return nil, errors.NewEmptyDatasetError("dataset.Read")
	}
	return ds, nil
}

func parseField(raw string, line, column int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.NewNonNumericValueError(line, column, raw)
	}
	return v, nil
}
