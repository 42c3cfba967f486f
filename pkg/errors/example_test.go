package errors_test

import (
	"errors"
	"fmt"

	hermesErrors "github.com/ezoic/hermes/pkg/errors"
)

// Example demonstrates Go 1.13+ error wrapping
func Example() {
	baseErr := hermesErrors.NewEmptyColumnError("age", "MEAN")

	// Wrap with pipeline context
	opErr := fmt.Errorf("Regression.Prepare: %w", baseErr)

	if errors.Is(opErr, hermesErrors.ErrEmptyColumn) {
		fmt.Println("Found empty column in chain")
	}

	fmt.Printf("Unwrapped: %v\n", errors.Unwrap(opErr))

	// Output: Found empty column in chain
	// Unwrapped: hermes: MEAN: column "age": no non-missing values
}

// Example_customErrorTypes demonstrates extracting the offending column
func Example_customErrorTypes() {
	err := fmt.Errorf("encoding failed: %w",
		hermesErrors.NewUnknownCategoryError("color", "purple", "DUMMY", 3))

	var catErr *hermesErrors.UnknownCategoryError
	if errors.As(err, &catErr) {
		fmt.Printf("column=%s category=%s method=%s\n", catErr.Column, catErr.Category, catErr.Method)
	}

	// Output: column=color category=purple method=DUMMY
}

// Example_errorComparison demonstrates error comparison patterns
func Example_errorComparison() {
	notFittedErr := hermesErrors.NewNotFittedError("Regression", "Revert")
	valueErr := hermesErrors.NewValueError("MinMax", "range must be increasing")

	var notFitted *hermesErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("%s is not fitted for %s\n", notFitted.ModelName, notFitted.Method)
	}

	var valErr *hermesErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Regression is not fitted for Revert
	// Value error in MinMax: range must be increasing
}

// Example_errorLogging demonstrates the message format of a wrapped model error
func Example_errorLogging() {
	baseErr := hermesErrors.NewModelError("Normalizer.Apply", "reverse transform",
		hermesErrors.ErrNotImplemented)

	opErr := fmt.Errorf("column income: %w", baseErr)

	fmt.Printf("Error occurred: %v\n", opErr)

	// Output: Error occurred: column income: hermes: Normalizer.Apply: reverse transform: not implemented
}
