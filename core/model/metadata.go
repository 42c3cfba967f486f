package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/pkg/errors"
)

// Metadata records the configuration of one preparation run. It is kept for
// audit and to select the inverse formula per column.
type Metadata struct {
	NumericalColumns    []string              `json:"numerical_columns" yaml:"numerical_columns"`
	CategoricalColumns  []string              `json:"categorical_columns" yaml:"categorical_columns"`
	CategoricalMethod   enums.CategoricalData `json:"categorical_method" yaml:"categorical_method"`
	NormalizationMethod enums.Normalization   `json:"normalization_method" yaml:"normalization_method"`
	MissingDataMethod   enums.MissingData     `json:"missing_data_method" yaml:"missing_data_method"`
}

// NewMetadata builds a Metadata record. The column slices are copied.
func NewMetadata(numerical, categorical []string, categoricalMethod enums.CategoricalData,
	normalization enums.Normalization, missing enums.MissingData) Metadata {
	return Metadata{
		NumericalColumns:    append([]string(nil), numerical...),
		CategoricalColumns:  append([]string(nil), categorical...),
		CategoricalMethod:   categoricalMethod,
		NormalizationMethod: normalization,
		MissingDataMethod:   missing,
	}
}

// Fields returns the attribute names accepted by Set, sorted.
func (m *Metadata) Fields() []string {
	names := make([]string, 0, len(metadataSetters))
	for name := range metadataSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var metadataSetters = map[string]func(m *Metadata, value string) error{
	"numerical_columns": func(m *Metadata, value string) error {
		m.NumericalColumns = splitList(value)
		return nil
	},
	"categorical_columns": func(m *Metadata, value string) error {
		m.CategoricalColumns = splitList(value)
		return nil
	},
	"categorical_method": func(m *Metadata, value string) error {
		return m.CategoricalMethod.UnmarshalText([]byte(value))
	},
	"normalization_method": func(m *Metadata, value string) error {
		return m.NormalizationMethod.UnmarshalText([]byte(value))
	},
	"missing_data_method": func(m *Metadata, value string) error {
		return m.MissingDataMethod.UnmarshalText([]byte(value))
	},
}

// Set assigns a field from its textual form, as found in configuration
// overrides like "normalization_method=MINMAX". Column lists are
// comma-separated. Unknown field names return an AttributeAccessError.
func (m *Metadata) Set(field, value string) error {
	setter, ok := metadataSetters[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return errors.NewAttributeAccessError("Metadata", field)
	}
	if err := setter(m, value); err != nil {
		return errors.NewValidationError(field, err.Error(), value)
	}
	return nil
}

// Summary returns the human-readable description of the run.
func (m Metadata) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Numerical columns: %s\n", strings.Join(m.NumericalColumns, ", "))
	fmt.Fprintf(&b, "Categorical columns: %s\n", strings.Join(m.CategoricalColumns, ", "))
	fmt.Fprintf(&b, "Categorical conversion: %s\n", m.CategoricalMethod.Description())
	fmt.Fprintf(&b, "Normalization: %s\n", m.NormalizationMethod.Description())
	fmt.Fprintf(&b, "Missing data: %s\n", m.MissingDataMethod.Description())
	return b.String()
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
