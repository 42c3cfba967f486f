package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/pkg/errors"
)

// zeroScale is the threshold under which a scale is treated as zero and
// replaced by 1, so constant columns map to a constant instead of NaN.
const zeroScale = 1e-12

func safeScale(s float64) float64 {
	if math.Abs(s) < zeroScale || math.IsNaN(s) {
		return 1.0
	}
	return s
}

// affine applies (x - shift) / scale, or its inverse x*scale + shift.
func affine(values []float64, shift, scale float64, reverse bool) []float64 {
	scale = safeScale(scale)
	out := make([]float64, len(values))
	for i, x := range values {
		if reverse {
			out[i] = x*scale + shift
		} else {
			out[i] = (x - shift) / scale
		}
	}
	return out
}

func scaleBy(values []float64, factor float64, divide bool) []float64 {
	factor = safeScale(factor)
	out := make([]float64, len(values))
	for i, x := range values {
		if divide {
			out[i] = x / factor
		} else {
			out[i] = x * factor
		}
	}
	return out
}

// norm returns the L1 or L2 norm of the non-missing entries of values.
func norm(values []float64, l float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0
	}
	return floats.Norm(present, l)
}

// Normalize applies the forward transform of method to values.
//
//	MINMAX         (x - min) / (max - min)
//	STD            (x - mean) / std
//	L1             x / sum(|x|)           over values itself
//	L2             x / sqrt(sum(x^2))     over values itself
//	ROBUST_SCALER  (x - median) / (q75 - q25)
//
// A zero scale is replaced by 1. Unrecognized methods pass values through
// unchanged, or fail with UnsupportedNormalizationError when strict is set.
func Normalize(values []float64, st *NumericStats, method enums.Normalization, strict bool) ([]float64, error) {
	switch method {
	case enums.MinMax:
		return affine(values, st.Min, st.Max-st.Min, false), nil
	case enums.Std:
		return affine(values, st.Mean, st.Std, false), nil
	case enums.L1:
		return scaleBy(values, norm(values, 1), true), nil
	case enums.L2:
		return scaleBy(values, norm(values, 2), true), nil
	case enums.RobustScaler:
		return affine(values, st.Median, st.IQR(), false), nil
	default:
		if strict {
			return nil, errors.NewUnsupportedNormalizationError(st.Key, method.String(), "unknown method")
		}
		return append([]float64(nil), values...), nil
	}
}

// Revert applies the inverse of method using only the persisted statistics.
// It supports MINMAX and STD. L1 and L2 need the raw column and must go
// through RevertWithRaw; ROBUST_SCALER has no inverse. Unrecognized methods
// pass through unless strict is set.
func Revert(values []float64, st *NumericStats, method enums.Normalization, strict bool) ([]float64, error) {
	switch method {
	case enums.MinMax:
		return affine(values, st.Min, st.Max-st.Min, true), nil
	case enums.Std:
		return affine(values, st.Mean, st.Std, true), nil
	case enums.L1, enums.L2:
		return nil, errors.NewUnsupportedNormalizationError(st.Key, method.String(),
			"inverse requires the original column, use RevertWithRaw")
	case enums.RobustScaler:
		return nil, errors.NewUnsupportedNormalizationError(st.Key, method.String(), "inverse is not defined")
	default:
		if strict {
			return nil, errors.NewUnsupportedNormalizationError(st.Key, method.String(), "unknown method")
		}
		return append([]float64(nil), values...), nil
	}
}

// RevertWithRaw applies the inverse of L1 or L2 normalization. raw is the
// column the forward transform was computed over, after imputation. NaN
// entries of raw are left out of the norm.
func RevertWithRaw(values, raw []float64, key string, method enums.Normalization) ([]float64, error) {
	switch method {
	case enums.L1:
		return scaleBy(values, norm(raw, 1), false), nil
	case enums.L2:
		return scaleBy(values, norm(raw, 2), false), nil
	default:
		return nil, errors.NewUnsupportedNormalizationError(key, method.String(),
			"only L1 and L2 are reverted from the original column")
	}
}
