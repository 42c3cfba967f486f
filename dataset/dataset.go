// Package dataset provides the column-oriented, row-aligned table that the
// preparation pipeline consumes and produces.
//
// A Dataset is an ordered set of named columns with a uniform row count.
// Numeric columns hold float64 values and use NaN to mark a missing entry;
// categorical columns hold strings taken verbatim.
//
// Example usage:
//
//	ds := dataset.New()
//	_ = ds.AddNumeric("age", []float64{25, math.NaN(), 35, 45})
//	_ = ds.AddCategorical("color", []string{"red", "blue", "red", "green"})
//	X, err := ds.Matrix()
package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/hermes/pkg/errors"
)

// Kind is the declared role of a column.
type Kind int

const (
	Numeric Kind = iota + 1
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a named sequence of values of one kind. Exactly one of Numbers
// and Labels is populated, according to Kind.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Labels  []string
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Numbers)
	}
	return len(c.Labels)
}

// IsMissing reports whether row i is missing. Only numeric columns have
// missing entries.
func (c *Column) IsMissing(i int) bool {
	return c.Kind == Numeric && math.IsNaN(c.Numbers[i])
}

// Dataset is an ordered mapping from column name to column.
type Dataset struct {
	order []string
	cols  map[string]*Column
	rows  int
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{cols: make(map[string]*Column)}
}

// AddNumeric appends a numeric column. NaN marks a missing value. The slice
// is copied.
func (d *Dataset) AddNumeric(name string, values []float64) error {
	return d.add(&Column{Name: name, Kind: Numeric, Numbers: append([]float64(nil), values...)})
}

// AddCategorical appends a categorical column. The slice is copied.
func (d *Dataset) AddCategorical(name string, values []string) error {
	return d.add(&Column{Name: name, Kind: Categorical, Labels: append([]string(nil), values...)})
}

func (d *Dataset) add(c *Column) error {
	if c.Name == "" {
		return errors.NewValueError("Dataset.Add", "column name must not be empty")
	}
	if _, exists := d.cols[c.Name]; exists {
		return errors.NewValidationError("column", "duplicate column name", c.Name)
	}
	if len(d.order) > 0 && c.Len() != d.rows {
		return errors.NewDimensionError("Dataset.Add", d.rows, c.Len(), 0)
	}
	if len(d.order) == 0 {
		d.rows = c.Len()
	}
	d.order = append(d.order, c.Name)
	d.cols[c.Name] = c
	return nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Len returns the number of columns.
func (d *Dataset) Len() int { return len(d.order) }

// Names returns the column names in insertion order.
func (d *Dataset) Names() []string {
	return append([]string(nil), d.order...)
}

// Column returns the named column. The returned column shares storage with
// the dataset and must not be modified.
func (d *Dataset) Column(name string) (*Column, bool) {
	c, ok := d.cols[name]
	return c, ok
}

// Numeric returns a copy of the named numeric column.
func (d *Dataset) Numeric(name string) ([]float64, error) {
	c, ok := d.cols[name]
	if !ok {
		return nil, errors.NewUnknownColumnError(name, "")
	}
	if c.Kind != Numeric {
		return nil, errors.NewColumnTypeError(name, Numeric.String(), c.Kind.String())
	}
	return append([]float64(nil), c.Numbers...), nil
}

// Categorical returns a copy of the named categorical column.
func (d *Dataset) Categorical(name string) ([]string, error) {
	c, ok := d.cols[name]
	if !ok {
		return nil, errors.NewUnknownColumnError(name, "")
	}
	if c.Kind != Categorical {
		return nil, errors.NewColumnTypeError(name, Categorical.String(), c.Kind.String())
	}
	return append([]string(nil), c.Labels...), nil
}

// Filter returns a new dataset keeping only the rows for which keep[i] is
// true. keep must have one entry per row.
func (d *Dataset) Filter(keep []bool) (*Dataset, error) {
	if len(keep) != d.rows {
		return nil, errors.NewDimensionError("Dataset.Filter", d.rows, len(keep), 0)
	}
	out := New()
	for _, name := range d.order {
		c := d.cols[name]
		var err error
		switch c.Kind {
		case Numeric:
			err = out.AddNumeric(name, FilterRows(c.Numbers, keep))
		default:
			err = out.AddCategorical(name, FilterRows(c.Labels, keep))
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FilterRows returns the elements of values whose index is marked in keep.
// A nil keep returns a copy of values.
func FilterRows[T any](values []T, keep []bool) []T {
	out := make([]T, 0, len(values))
	for i, v := range values {
		if keep == nil || keep[i] {
			out = append(out, v)
		}
	}
	return out
}

// Matrix returns the dataset as a rows × columns matrix in column order. All
// columns must be numeric.
func (d *Dataset) Matrix() (*mat.Dense, error) {
	if d.rows == 0 || len(d.order) == 0 {
		return nil, errors.NewModelError("Dataset.Matrix", "empty dataset", errors.ErrEmptyData)
	}
	m := mat.NewDense(d.rows, len(d.order), nil)
	for j, name := range d.order {
		c := d.cols[name]
		if c.Kind != Numeric {
			return nil, errors.NewColumnTypeError(name, Numeric.String(), c.Kind.String())
		}
		m.SetCol(j, c.Numbers)
	}
	return m, nil
}
