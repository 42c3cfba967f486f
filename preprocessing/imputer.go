package preprocessing

import (
	"math"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/pkg/errors"
)

// Impute handles the missing (NaN) entries of a numeric column.
//
// For MEAN, STD, MIN, MAX and MODE each missing entry is replaced by the
// corresponding value of st. For DELETE the values are returned unchanged and
// drop marks the rows to remove; the caller is responsible for removing those
// rows from every column of the run. drop is nil for every other strategy.
//
// Unrecognized strategies pass the column through unchanged, or fail with
// UnsupportedMissingDataError when strict is set.
func Impute(values []float64, st *NumericStats, strategy enums.MissingData, strict bool) (out []float64, drop []bool, err error) {
	out = append([]float64(nil), values...)

	var fill float64
	switch strategy {
	case enums.MissingMean:
		fill = st.Mean
	case enums.MissingStd:
		fill = st.Std
	case enums.MissingMin:
		fill = st.Min
	case enums.MissingMax:
		fill = st.Max
	case enums.MissingMode:
		fill = st.Mode
	case enums.MissingDelete:
		drop = make([]bool, len(values))
		for i, v := range values {
			drop[i] = math.IsNaN(v)
		}
		return out, drop, nil
	default:
		if strict {
			return nil, nil, errors.NewUnsupportedMissingDataError(st.Key, strategy.String())
		}
		return out, nil, nil
	}

	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = fill
		}
	}
	return out, nil, nil
}
