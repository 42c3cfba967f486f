package errors

import "fmt"

// EmptyColumnError is returned when a numeric column has no non-missing
// values to compute statistics from. Method is the missing data strategy the
// statistics were needed for, when known.
type EmptyColumnError struct {
	Column string
	Method string
}

func (e *EmptyColumnError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s: column %q: no non-missing values", prefix, e.Column)
	}
	return fmt.Sprintf("%s: %s: column %q: no non-missing values", prefix, e.Method, e.Column)
}

func (e *EmptyColumnError) Unwrap() error { return ErrEmptyColumn }

// NewEmptyColumnError creates an EmptyColumnError.
func NewEmptyColumnError(column, method string) error {
	return &EmptyColumnError{Column: column, Method: method}
}

// UnknownCategoryError is returned when a value is not part of the fitted
// vocabulary of a categorical column.
type UnknownCategoryError struct {
	Column   string
	Category string
	Method   string
	Row      int
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: column %q: %s: category %q at row %d is not in the fitted vocabulary",
		prefix, e.Column, e.Method, e.Category, e.Row)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

// NewUnknownCategoryError creates an UnknownCategoryError.
func NewUnknownCategoryError(column, category, method string, row int) error {
	return &UnknownCategoryError{Column: column, Category: category, Method: method, Row: row}
}

// UnknownColumnError is returned when a column name cannot be resolved, either
// in a dataset or in the statistics retained by a preparation run.
type UnknownColumnError struct {
	Column string
	Method string
}

func (e *UnknownColumnError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s: unknown column %q", prefix, e.Column)
	}
	return fmt.Sprintf("%s: %s: unknown column %q", prefix, e.Method, e.Column)
}

func (e *UnknownColumnError) Unwrap() error { return ErrUnknownColumn }

// NewUnknownColumnError creates an UnknownColumnError.
func NewUnknownColumnError(column, method string) error {
	return &UnknownColumnError{Column: column, Method: method}
}

// UnsupportedNormalizationError is returned when a normalization method has
// no implementation for the requested direction.
type UnsupportedNormalizationError struct {
	Column string
	Method string
	Reason string
}

func (e *UnsupportedNormalizationError) Error() string {
	msg := fmt.Sprintf("%s: column %q: unsupported normalization %s", prefix, e.Column, e.Method)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnsupportedNormalizationError) Unwrap() error { return ErrUnsupportedNormalization }

// NewUnsupportedNormalizationError creates an UnsupportedNormalizationError.
func NewUnsupportedNormalizationError(column, method, reason string) error {
	return &UnsupportedNormalizationError{Column: column, Method: method, Reason: reason}
}

// UnsupportedEncodingError is returned for an unknown categorical method.
type UnsupportedEncodingError struct {
	Column string
	Method string
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("%s: column %q: unsupported categorical encoding %s", prefix, e.Column, e.Method)
}

func (e *UnsupportedEncodingError) Unwrap() error { return ErrUnsupportedEncoding }

// NewUnsupportedEncodingError creates an UnsupportedEncodingError.
func NewUnsupportedEncodingError(column, method string) error {
	return &UnsupportedEncodingError{Column: column, Method: method}
}

// UnsupportedMissingDataError is returned in strict mode for an unknown
// missing-data strategy.
type UnsupportedMissingDataError struct {
	Column string
	Method string
}

func (e *UnsupportedMissingDataError) Error() string {
	return fmt.Sprintf("%s: column %q: unsupported missing data strategy %s", prefix, e.Column, e.Method)
}

func (e *UnsupportedMissingDataError) Unwrap() error { return ErrUnsupportedMissingData }

// NewUnsupportedMissingDataError creates an UnsupportedMissingDataError.
func NewUnsupportedMissingDataError(column, method string) error {
	return &UnsupportedMissingDataError{Column: column, Method: method}
}

// UnsupportedDatasetTypeError is returned by the dataset-type factory.
type UnsupportedDatasetTypeError struct {
	DatasetType string
}

func (e *UnsupportedDatasetTypeError) Error() string {
	return fmt.Sprintf("%s: dataset type %s is not implemented", prefix, e.DatasetType)
}

func (e *UnsupportedDatasetTypeError) Unwrap() error { return ErrUnsupportedDatasetType }

// NewUnsupportedDatasetTypeError creates an UnsupportedDatasetTypeError.
func NewUnsupportedDatasetTypeError(datasetType string) error {
	return &UnsupportedDatasetTypeError{DatasetType: datasetType}
}

// AttributeAccessError is returned when a record field is addressed by a name
// the record does not define.
type AttributeAccessError struct {
	Record string
	Field  string
}

func (e *AttributeAccessError) Error() string {
	return fmt.Sprintf("%s: %s has no attribute %q", prefix, e.Record, e.Field)
}

func (e *AttributeAccessError) Unwrap() error { return ErrAttributeAccess }

// NewAttributeAccessError creates an AttributeAccessError.
func NewAttributeAccessError(record, field string) error {
	return &AttributeAccessError{Record: record, Field: field}
}

// ColumnTypeError is returned when a column is used with a role that does not
// match its declared kind, e.g. a categorical column listed as numeric.
type ColumnTypeError struct {
	Column   string
	Expected string
	Got      string
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("%s: column %q: expected %s column, got %s", prefix, e.Column, e.Expected, e.Got)
}

func (e *ColumnTypeError) Unwrap() error { return ErrTypeMismatch }

// NewColumnTypeError creates a ColumnTypeError.
func NewColumnTypeError(column, expected, got string) error {
	return &ColumnTypeError{Column: column, Expected: expected, Got: got}
}
