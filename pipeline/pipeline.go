// Package pipeline orchestrates the preparation of tabular datasets.
//
// A preparer computes per-column statistics, imputes missing numeric values,
// normalizes numeric columns and encodes categorical columns, then assembles
// the result into one model-ready dataset. The statistics of the last
// successful run are retained so numeric columns can be reverted to their
// original scale, in the same process or, through an Artifact, in a later
// one.
//
// Example usage:
//
//	prep, err := pipeline.New(enums.Regression)
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := prep.Prepare(ds, pipeline.DefaultConfig([]string{"age"}, []string{"color"}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	ages, _ := res.Data.Numeric("age")
//	original, err := prep.Revert(ages, "age", enums.Std)
package pipeline

import (
	"sync"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/pkg/errors"
	"github.com/ezoic/hermes/pkg/log"
)

var (
	providerOnce   sync.Once
	globalProvider log.LoggerProvider
)

// New returns the preparer for datasetType. Only tabular (Regression)
// datasets are prepared here; image datasets are handled by package
// imageprep.
//
// Errors:
//   - UnsupportedDatasetTypeError: for ImageProcessor and unknown types
func New(datasetType enums.DatasetType, opts ...Option) (*Regression, error) {
	switch datasetType {
	case enums.Regression:
		return NewRegression(opts...), nil
	default:
		return nil, errors.NewUnsupportedDatasetTypeError(datasetType.String())
	}
}

func defaultLogger(name string) log.Logger {
	providerOnce.Do(func() {
		globalProvider = log.NewZerologProvider(log.ToLogLevel("info"))
	})
	return globalProvider.GetLoggerWithName(name)
}
