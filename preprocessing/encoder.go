package preprocessing

import (
	"fmt"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/pkg/errors"
)

// EncodedColumn is one output column produced by Encode.
type EncodedColumn struct {
	Name   string
	Values []float64
}

// OneHotName returns the output column name of category in column.
func OneHotName(column, category string) string {
	return fmt.Sprintf("%s_%s", column, category)
}

// FeatureNames returns the output column names Encode produces for st.
func FeatureNames(st *CategoricalStats, method enums.CategoricalData) []string {
	switch method {
	case enums.Dummy:
		return []string{st.Key}
	case enums.OneHot:
		names := make([]string, len(st.Categories))
		for i, c := range st.Categories {
			names[i] = OneHotName(st.Key, c)
		}
		return names
	default:
		return nil
	}
}

// Encode converts a categorical column using the vocabulary in st.
//
// DUMMY yields a single column named after st.Key holding the integer code of
// each value. ONE_HOT yields one indicator column per category, in vocabulary
// order, named "{column}_{category}"; each row has exactly one 1.
//
// Errors:
//   - UnknownCategoryError: if a value is not in the vocabulary
//   - UnsupportedEncodingError: for any other method
func Encode(values []string, st *CategoricalStats, method enums.CategoricalData) ([]EncodedColumn, error) {
	switch method {
	case enums.Dummy:
		codes := make([]float64, len(values))
		for i, v := range values {
			code, ok := st.Code(v)
			if !ok {
				return nil, errors.NewUnknownCategoryError(st.Key, v, method.String(), i)
			}
			codes[i] = float64(code)
		}
		return []EncodedColumn{{Name: st.Key, Values: codes}}, nil

	case enums.OneHot:
		// 全て0で初期化し、該当カテゴリの位置だけ1にする
		cols := make([]EncodedColumn, st.Len())
		for j, c := range st.Categories {
			cols[j] = EncodedColumn{Name: OneHotName(st.Key, c), Values: make([]float64, len(values))}
		}
		for i, v := range values {
			code, ok := st.Code(v)
			if !ok {
				return nil, errors.NewUnknownCategoryError(st.Key, v, method.String(), i)
			}
			cols[code].Values[i] = 1.0
		}
		return cols, nil

	default:
		return nil, errors.NewUnsupportedEncodingError(st.Key, method.String())
	}
}
