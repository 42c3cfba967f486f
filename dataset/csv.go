package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ezoic/hermes/pkg/errors"
)

// Field declares the role of one column to load.
type Field struct {
	Name string
	Kind Kind
}

// Schema lists the columns to load, in output order. Source columns that are
// not listed are ignored.
type Schema []Field

// NewSchema builds a schema with the numeric columns first.
func NewSchema(numeric, categorical []string) Schema {
	s := make(Schema, 0, len(numeric)+len(categorical))
	for _, n := range numeric {
		s = append(s, Field{Name: n, Kind: Numeric})
	}
	for _, n := range categorical {
		s = append(s, Field{Name: n, Kind: Categorical})
	}
	return s
}

// missingTokens are the cell values read as missing in numeric columns.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"nan":  true,
	"null": true,
	"none": true,
	"n/a":  true,
}

// ParseNumber parses a numeric cell. Missing tokens yield NaN.
func ParseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(cell)] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// FromRecords builds a dataset from a header row and string records.
func FromRecords(header []string, records [][]string, schema Schema) (*Dataset, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	ds := New()
	for _, f := range schema {
		j, ok := index[f.Name]
		if !ok {
			return nil, errors.NewUnknownColumnError(f.Name, "load")
		}
		switch f.Kind {
		case Numeric:
			values := make([]float64, len(records))
			for i, rec := range records {
				if j >= len(rec) {
					return nil, errors.NewDimensionError("dataset.FromRecords", len(header), len(rec), 1)
				}
				v, err := ParseNumber(rec[j])
				if err != nil {
					return nil, errors.Wrapf(err, "column %q row %d", f.Name, i)
				}
				values[i] = v
			}
			if err := ds.AddNumeric(f.Name, values); err != nil {
				return nil, err
			}
		case Categorical:
			values := make([]string, len(records))
			for i, rec := range records {
				if j >= len(rec) {
					return nil, errors.NewDimensionError("dataset.FromRecords", len(header), len(rec), 1)
				}
				values[i] = rec[j]
			}
			if err := ds.AddCategorical(f.Name, values); err != nil {
				return nil, err
			}
		default:
			return nil, errors.NewValidationError("schema", "unknown column kind", f.Kind)
		}
	}
	return ds, nil
}

// ReadCSV loads a dataset from CSV with a header row.
func ReadCSV(r io.Reader, schema Schema) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "missing header", errors.ErrEmptyData)
	}
	return FromRecords(records[0], records[1:], schema)
}

// LoadCSV loads a dataset from a CSV file.
func LoadCSV(path string, schema Schema) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()
	return ReadCSV(file, schema)
}

// WriteCSV writes the dataset with a header row. Missing numeric values are
// written as empty cells.
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Names()); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	row := make([]string, d.Len())
	for i := 0; i < d.Rows(); i++ {
		for j, name := range d.order {
			c := d.cols[name]
			switch {
			case c.Kind == Categorical:
				row[j] = c.Labels[i]
			case math.IsNaN(c.Numbers[i]):
				row[j] = ""
			default:
				row[j] = strconv.FormatFloat(c.Numbers[i], 'g', -1, 64)
			}
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i)
		}
	}
	writer.Flush()
	return writer.Error()
}
