// Package errors provides the error taxonomy used across Hermes.
//
// It is a thin layer over github.com/cockroachdb/errors: sentinel errors and
// wrapping helpers are re-exported so callers only import one package, and
// structured error types carry the operation, column and method that failed.
//
// Every structured error unwraps to a sentinel, so both styles work:
//
//	if errors.Is(err, errors.ErrUnknownColumn) { ... }
//
//	var colErr *errors.UnknownColumnError
//	if errors.As(err, &colErr) {
//		fmt.Println(colErr.Column)
//	}
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors.
var (
	ErrEmptyData                 = errors.New("empty data")
	ErrNotFitted                 = errors.New("not fitted")
	ErrDimensionMismatch         = errors.New("dimension mismatch")
	ErrNotImplemented            = errors.New("not implemented")
	ErrEmptyColumn               = errors.New("column has no non-missing values")
	ErrUnknownCategory           = errors.New("unknown category")
	ErrUnknownColumn             = errors.New("unknown column")
	ErrUnsupportedNormalization  = errors.New("unsupported normalization")
	ErrUnsupportedEncoding       = errors.New("unsupported encoding")
	ErrUnsupportedMissingData    = errors.New("unsupported missing data strategy")
	ErrUnsupportedDatasetType    = errors.New("unsupported dataset type")
	ErrAttributeAccess           = errors.New("no such attribute")
	ErrTypeMismatch              = errors.New("column type mismatch")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrUnsupportedArtifactFormat = errors.New("unsupported artifact format")
)

const prefix = "hermes"

// New returns an error with a stack trace attached.
func New(msg string) error { return errors.New(msg) }

// Newf formats and returns an error with a stack trace attached.
func Newf(format string, args ...interface{}) error { return errors.Newf(format, args...) }

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error { return errors.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Unwrap returns the next error in err's chain.
func Unwrap(err error) error { return errors.Unwrap(err) }

// Recover converts a panic in the calling function into an error assigned to
// *errp. It must be deferred directly:
//
//	func (s *Thing) Do() (err error) {
//		defer errors.Recover(&err, "Thing.Do")
//		...
//	}
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		var cause error
		switch v := r.(type) {
		case error:
			cause = v
		default:
			cause = errors.Newf("%v", v)
		}
		*errp = errors.WithStack(&ModelError{Op: op, Message: "panic recovered", Err: cause})
	}
}

// ModelError is a generic failure inside an operation.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a ModelError wrapping err.
func NewModelError(op, message string, err error) error {
	return &ModelError{Op: op, Message: message, Err: err}
}

// ValueError reports an argument with an unacceptable value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: invalid value: %s", prefix, e.Op, e.Message)
}

func (e *ValueError) Unwrap() error { return ErrInvalidArgument }

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

// NotFittedError reports use of a component before it was fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s: %s called before fitting", prefix, e.ModelName, e.Method)
}

func (e *NotFittedError) Unwrap() error { return ErrNotFitted }

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return &NotFittedError{ModelName: modelName, Method: method}
}

// DimensionError reports mismatched lengths along an axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: dimension mismatch on axis %d: expected %d, got %d",
		prefix, e.Op, e.Axis, e.Expected, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// ValidationError reports a parameter that failed validation.
type ValidationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed for %s (%v): %s", prefix, e.Param, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// NewValidationError creates a ValidationError.
func NewValidationError(param, reason string, value interface{}) error {
	return &ValidationError{Param: param, Reason: reason, Value: value}
}
