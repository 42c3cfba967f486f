package pipeline

import (
	"sort"

	"github.com/ezoic/hermes/preprocessing"
)

// Statistics is the per-run store of column statistics, keyed by column
// name. The preparer keeps its own copy, built once by Prepare and never
// modified afterwards; callers receive clones.
type Statistics struct {
	Numeric     map[string]*preprocessing.NumericStats     `json:"numeric" yaml:"numeric"`
	Categorical map[string]*preprocessing.CategoricalStats `json:"categorical" yaml:"categorical"`
}

func newStatistics(numeric, categorical int) *Statistics {
	return &Statistics{
		Numeric:     make(map[string]*preprocessing.NumericStats, numeric),
		Categorical: make(map[string]*preprocessing.CategoricalStats, categorical),
	}
}

// Clone returns a deep copy of s.
func (s *Statistics) Clone() *Statistics {
	if s == nil {
		return nil
	}
	out := newStatistics(len(s.Numeric), len(s.Categorical))
	for name, st := range s.Numeric {
		out.Numeric[name] = st.Clone()
	}
	for name, st := range s.Categorical {
		out.Categorical[name] = st.Clone()
	}
	return out
}

// NumericColumn returns the statistics of a numeric column.
func (s *Statistics) NumericColumn(name string) (*preprocessing.NumericStats, bool) {
	if s == nil {
		return nil, false
	}
	st, ok := s.Numeric[name]
	return st, ok
}

// CategoricalColumn returns the vocabulary of a categorical column.
func (s *Statistics) CategoricalColumn(name string) (*preprocessing.CategoricalStats, bool) {
	if s == nil {
		return nil, false
	}
	st, ok := s.Categorical[name]
	return st, ok
}

// Columns returns every column with statistics, sorted.
func (s *Statistics) Columns() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Numeric)+len(s.Categorical))
	for name := range s.Numeric {
		names = append(names, name)
	}
	for name := range s.Categorical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
