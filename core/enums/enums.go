// Package enums defines the method selectors of a preparation run.
//
// Each selector is a small integer type with a canonical upper-case name
// (used in configuration files and persisted metadata) and a human-readable
// description. Values outside the defined set are representable on purpose:
// the imputer and normalizer treat them as pass-through unless the pipeline
// runs in strict mode.
package enums

import (
	"fmt"
	"strings"
)

// DatasetType selects the kind of dataset a preparer handles.
type DatasetType int

const (
	// Regression covers numeric and categorical tabular data used by
	// regression, classification trees, clustering and similar models.
	Regression DatasetType = iota + 1
	// ImageProcessor covers image datasets for computer vision models.
	ImageProcessor
)

// MissingData selects how missing numeric values are handled.
type MissingData int

const (
	MissingMean MissingData = iota + 1
	MissingDelete
	MissingStd
	MissingMin
	MissingMax
	MissingMode
)

// Normalization selects the numeric scaling formula.
type Normalization int

const (
	MinMax Normalization = iota + 1
	Std
	L1
	L2
	RobustScaler
)

// CategoricalData selects how categorical columns are encoded.
type CategoricalData int

const (
	Dummy CategoricalData = iota + 1
	OneHot
)

var datasetTypeNames = map[DatasetType]string{
	Regression:     "REGRESSION",
	ImageProcessor: "IMAGE_PROCESSOR",
}

var missingDataNames = map[MissingData]string{
	MissingMean:   "MEAN",
	MissingDelete: "DELETE",
	MissingStd:    "STD",
	MissingMin:    "MIN",
	MissingMax:    "MAX",
	MissingMode:   "MODE",
}

var missingDataDescriptions = map[MissingData]string{
	MissingMean:   "Missing values filled with MEAN",
	MissingDelete: "Deleted rows with missing values",
	MissingStd:    "Missing values filled with STANDARD DEVIATION",
	MissingMin:    "Missing values filled with MIN value",
	MissingMax:    "Missing values filled with MAX value",
	MissingMode:   "Missing values filled with MODE value",
}

var normalizationNames = map[Normalization]string{
	MinMax:       "MINMAX",
	Std:          "STD",
	L1:           "L1",
	L2:           "L2",
	RobustScaler: "ROBUST_SCALER",
}

var normalizationDescriptions = map[Normalization]string{
	MinMax:       "MinMax normalization",
	Std:          "Standard deviation normalization",
	L1:           "L1 normalization method",
	L2:           "L2 normalization method",
	RobustScaler: "Robust scaler method",
}

var categoricalNames = map[CategoricalData]string{
	Dummy:  "DUMMY",
	OneHot: "ONE_HOT",
}

var categoricalDescriptions = map[CategoricalData]string{
	Dummy:  "Dummy encoder",
	OneHot: "One-Hot encoder",
}

func (d DatasetType) String() string {
	if s, ok := datasetTypeNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DatasetType(%d)", int(d))
}

// Valid reports whether d is a defined dataset type.
func (d DatasetType) Valid() bool {
	_, ok := datasetTypeNames[d]
	return ok
}

func (m MissingData) String() string {
	if s, ok := missingDataNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MissingData(%d)", int(m))
}

// Description returns the human-readable label recorded in model metadata.
func (m MissingData) Description() string {
	if s, ok := missingDataDescriptions[m]; ok {
		return s
	}
	return "Missing values left untouched"
}

// Valid reports whether m is a defined strategy.
func (m MissingData) Valid() bool {
	_, ok := missingDataNames[m]
	return ok
}

func (n Normalization) String() string {
	if s, ok := normalizationNames[n]; ok {
		return s
	}
	return fmt.Sprintf("Normalization(%d)", int(n))
}

// Description returns the human-readable label recorded in model metadata.
func (n Normalization) Description() string {
	if s, ok := normalizationDescriptions[n]; ok {
		return s
	}
	return "No normalization"
}

// Valid reports whether n is a defined method.
func (n Normalization) Valid() bool {
	_, ok := normalizationNames[n]
	return ok
}

// Invertible reports whether the method can be reversed from persisted
// statistics alone. L1 and L2 need the raw column and are not invertible in
// this sense; ROBUST_SCALER has no inverse.
func (n Normalization) Invertible() bool {
	return n == MinMax || n == Std
}

// NeedsRaw reports whether reversing the method requires the original
// unnormalized column.
func (n Normalization) NeedsRaw() bool {
	return n == L1 || n == L2
}

func (c CategoricalData) String() string {
	if s, ok := categoricalNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CategoricalData(%d)", int(c))
}

// Description returns the human-readable label recorded in model metadata.
func (c CategoricalData) Description() string {
	if s, ok := categoricalDescriptions[c]; ok {
		return s
	}
	return "Unknown encoder"
}

// Valid reports whether c is a defined encoding.
func (c CategoricalData) Valid() bool {
	_, ok := categoricalNames[c]
	return ok
}

func lookup[T ~int](names map[T]string, kind, s string) (T, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	want = strings.ReplaceAll(want, "-", "_")
	for v, name := range names {
		if name == want {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

// ParseDatasetType parses a dataset type name such as "REGRESSION".
func ParseDatasetType(s string) (DatasetType, error) {
	return lookup(datasetTypeNames, "dataset type", s)
}

// ParseMissingData parses a strategy name such as "MEAN" or "delete".
func ParseMissingData(s string) (MissingData, error) {
	return lookup(missingDataNames, "missing data strategy", s)
}

// ParseNormalization parses a method name such as "MINMAX" or "robust-scaler".
func ParseNormalization(s string) (Normalization, error) {
	return lookup(normalizationNames, "normalization", s)
}

// ParseCategoricalData parses an encoding name such as "ONE_HOT".
func ParseCategoricalData(s string) (CategoricalData, error) {
	return lookup(categoricalNames, "categorical encoding", s)
}
