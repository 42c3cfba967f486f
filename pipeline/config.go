package pipeline

import (
	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/core/model"
	"github.com/ezoic/hermes/pkg/errors"
	"github.com/ezoic/hermes/pkg/log"
)

// Config describes one preparation run: which columns to process and which
// method to apply to each role.
type Config struct {
	NumericalColumns   []string              `json:"numerical_columns" yaml:"numerical_columns"`
	CategoricalColumns []string              `json:"categorical_columns" yaml:"categorical_columns"`
	CategoricalMethod  enums.CategoricalData `json:"categorical_method" yaml:"categorical_method"`
	Normalization      enums.Normalization   `json:"normalization_method" yaml:"normalization_method"`
	MissingData        enums.MissingData     `json:"missing_data_method" yaml:"missing_data_method"`
}

// DefaultConfig returns a Config using ONE_HOT encoding, STD normalization
// and MEAN imputation.
func DefaultConfig(numerical, categorical []string) Config {
	return Config{
		NumericalColumns:   append([]string(nil), numerical...),
		CategoricalColumns: append([]string(nil), categorical...),
		CategoricalMethod:  enums.OneHot,
		Normalization:      enums.Std,
		MissingData:        enums.MissingMean,
	}
}

// Metadata returns the metadata record describing c.
func (c Config) Metadata() model.Metadata {
	return model.NewMetadata(c.NumericalColumns, c.CategoricalColumns,
		c.CategoricalMethod, c.Normalization, c.MissingData)
}

// ConfigFromMetadata is the inverse of Config.Metadata.
func ConfigFromMetadata(md model.Metadata) Config {
	return Config{
		NumericalColumns:   append([]string(nil), md.NumericalColumns...),
		CategoricalColumns: append([]string(nil), md.CategoricalColumns...),
		CategoricalMethod:  md.CategoricalMethod,
		Normalization:      md.NormalizationMethod,
		MissingData:        md.MissingDataMethod,
	}
}

// Validate checks the column lists and the encoding method. Unknown
// imputation and normalization methods are accepted here; they are handled
// by the preparer according to its strict setting.
func (c Config) Validate() error {
	if len(c.NumericalColumns) == 0 && len(c.CategoricalColumns) == 0 {
		return errors.NewValueError("Config.Validate", "no columns to prepare")
	}

	seen := make(map[string]bool, len(c.NumericalColumns)+len(c.CategoricalColumns))
	for _, names := range [][]string{c.NumericalColumns, c.CategoricalColumns} {
		for _, name := range names {
			if name == "" {
				return errors.NewValidationError("column", "column name must not be empty", name)
			}
			if seen[name] {
				return errors.NewValidationError("column", "column listed more than once", name)
			}
			seen[name] = true
		}
	}

	if len(c.CategoricalColumns) > 0 && !c.CategoricalMethod.Valid() {
		return errors.NewUnsupportedEncodingError(c.CategoricalColumns[0], c.CategoricalMethod.String())
	}
	return nil
}

// Option configures a preparer.
type Option func(*options)

type options struct {
	strict  bool
	workers int
	logger  log.Logger
}

// WithStrict makes unknown imputation and normalization methods fail with an
// error instead of passing the column through unchanged.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithWorkers bounds the number of columns processed concurrently. Values
// below 1 process columns sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
