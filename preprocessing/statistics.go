// Package preprocessing provides the per-column building blocks of the
// tabular preparation pipeline.
//
// This package implements:
//
//   - NumericStats / CategoricalStats: descriptive state of one column, computed
//     once and immutable afterwards
//   - Impute: fills or marks for deletion the missing values of a numeric column
//   - Normalize / Revert / RevertWithRaw: forward and inverse numeric scaling
//   - Encode: ordinal (dummy) or one-hot encoding against a fitted vocabulary
//
// All functions are pure: they never modify their inputs and return freshly
// allocated slices, so columns can be processed concurrently.
//
// Example usage:
//
//	st, err := preprocessing.NewNumericStats("age", ages)
//	if err != nil {
//		log.Fatal(err)
//	}
//	filled, _, err := preprocessing.Impute(ages, st, enums.MissingMean, false)
//	scaled, err := preprocessing.Normalize(filled, st, enums.Std, false)
package preprocessing

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/hermes/pkg/errors"
)

// NumericStats holds the descriptive statistics of a numeric column computed
// over its non-missing values.
type NumericStats struct {
	Key      string  `json:"key" yaml:"key"`
	Count    int     `json:"count" yaml:"count"` // non-missing values
	Mean     float64 `json:"mean" yaml:"mean"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Std      float64 `json:"std" yaml:"std"` // population standard deviation
	Variance float64 `json:"variance" yaml:"variance"`
	Median   float64 `json:"median" yaml:"median"`
	Mode     float64 `json:"mode" yaml:"mode"`
	Q25      float64 `json:"q25" yaml:"q25"`
	Q75      float64 `json:"q75" yaml:"q75"`
}

// NewNumericStats computes the statistics of values, ignoring NaN entries.
//
// Errors:
//   - EmptyColumnError: if values has no non-missing entry
func NewNumericStats(key string, values []float64) (_ *NumericStats, err error) {
	defer errors.Recover(&err, "NewNumericStats")

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, errors.NewEmptyColumnError(key, "")
	}

	mean, variance := stat.PopMeanVariance(present, nil)
	std := math.Sqrt(variance)

	median, err := stats.Median(present)
	if err != nil {
		return nil, errors.Wrapf(err, "column %q: median", key)
	}

	q25, q75 := median, median
	if len(present) > 1 {
		quartiles, err := stats.Quartile(present)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q: quartiles", key)
		}
		q25, q75 = quartiles.Q1, quartiles.Q3
	}

	s := &NumericStats{
		Key:      key,
		Count:    len(present),
		Mean:     mean,
		Min:      floats.Min(present),
		Max:      floats.Max(present),
		Std:      std,
		Variance: std * std,
		Median:   median,
		Mode:     mode(present),
		Q25:      q25,
		Q75:      q75,
	}
	return s, nil
}

// Clone returns a copy of s.
func (s *NumericStats) Clone() *NumericStats {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// IQR returns the interquartile range Q75 - Q25.
func (s *NumericStats) IQR() float64 {
	return s.Q75 - s.Q25
}

// mode returns the most frequent value; ties break to the smallest value, and
// when no value repeats the minimum is returned.
func mode(values []float64) float64 {
	modes, err := stats.Mode(values)
	if err != nil || len(modes) == 0 {
		return floats.Min(values)
	}
	return floats.Min(modes)
}

// CategoricalStats holds the vocabulary of a categorical column.
type CategoricalStats struct {
	Key string `json:"key" yaml:"key"`
	// Categories lists the distinct values in first-seen order.
	Categories []string `json:"categories" yaml:"categories"`
	// Encoder maps each category to its position in Categories.
	Encoder map[string]int `json:"encoder" yaml:"encoder"`
}

// NewCategoricalStats builds the vocabulary of values. Codes are assigned in
// the order categories are first encountered.
func NewCategoricalStats(key string, values []string) *CategoricalStats {
	s := &CategoricalStats{
		Key:     key,
		Encoder: make(map[string]int),
	}
	for _, v := range values {
		if _, seen := s.Encoder[v]; seen {
			continue
		}
		s.Encoder[v] = len(s.Categories)
		s.Categories = append(s.Categories, v)
	}
	return s
}

// Code returns the integer code of category.
func (s *CategoricalStats) Code(category string) (int, bool) {
	code, ok := s.Encoder[category]
	return code, ok
}

// Clone returns a deep copy of s.
func (s *CategoricalStats) Clone() *CategoricalStats {
	if s == nil {
		return nil
	}
	c := &CategoricalStats{
		Key:        s.Key,
		Categories: append([]string(nil), s.Categories...),
		Encoder:    make(map[string]int, len(s.Encoder)),
	}
	for k, v := range s.Encoder {
		c.Encoder[k] = v
	}
	return c
}

// Len returns the vocabulary size.
func (s *CategoricalStats) Len() int {
	return len(s.Categories)
}
