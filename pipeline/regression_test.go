package pipeline_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/dataset"
	"github.com/ezoic/hermes/pipeline"
	"github.com/ezoic/hermes/pkg/errors"
	"github.com/ezoic/hermes/pkg/log"
)

var nan = math.NaN()

func newPreparer(t *testing.T, opts ...pipeline.Option) *pipeline.Regression {
	t.Helper()
	opts = append([]pipeline.Option{pipeline.WithLogger(log.Nop())}, opts...)
	prep, err := pipeline.New(enums.Regression, opts...)
	require.NoError(t, err)
	return prep
}

func peopleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := dataset.New()
	require.NoError(t, ds.AddNumeric("age", []float64{25, nan, 35, 45}))
	require.NoError(t, ds.AddCategorical("color", []string{"red", "blue", "red", "green"}))
	return ds
}

func TestNewRejectsUnsupportedDatasetTypes(t *testing.T) {
	for _, dt := range []enums.DatasetType{enums.ImageProcessor, enums.DatasetType(9)} {
		_, err := pipeline.New(dt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnsupportedDatasetType), "dataset type %s", dt)
	}
}

func TestPrepareScenario(t *testing.T) {
	prep := newPreparer(t)
	ds := peopleDataset(t)

	res, err := prep.Prepare(ds, pipeline.DefaultConfig([]string{"age"}, []string{"color"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "color_red", "color_blue", "color_green"}, res.Data.Names())
	assert.Equal(t, 4, res.Data.Rows())
	assert.Empty(t, res.DroppedRows)
	assert.NotEmpty(t, res.RunID)

	age, err := res.Data.Numeric("age")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1.224744871391589, 0, 0, 1.224744871391589}, age, 1e-9)

	for name, expected := range map[string][]float64{
		"color_red":   {1, 0, 1, 0},
		"color_blue":  {0, 1, 0, 0},
		"color_green": {0, 0, 0, 1},
	} {
		got, err := res.Data.Numeric(name)
		require.NoError(t, err)
		assert.Equal(t, expected, got, name)
	}

	st, ok := res.Statistics.NumericColumn("age")
	require.True(t, ok)
	assert.InDelta(t, 35.0, st.Mean, 1e-12)
	assert.InDelta(t, 8.16496580927726, st.Std, 1e-9)

	back, err := prep.Revert(age, "age", enums.Std)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{25, 35, 35, 45}, back, 1e-9)

	// input is untouched
	raw, _ := ds.Numeric("age")
	assert.True(t, math.IsNaN(raw[1]))

	assert.Equal(t, enums.Std, res.Metadata.NormalizationMethod)
	assert.Equal(t, []string{"age"}, res.Metadata.NumericalColumns)
}

func TestPrepareDummyEncoding(t *testing.T) {
	prep := newPreparer(t)
	cfg := pipeline.DefaultConfig([]string{"age"}, []string{"color"})
	cfg.CategoricalMethod = enums.Dummy

	res, err := prep.Prepare(peopleDataset(t), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "color"}, res.Data.Names())
	codes, err := res.Data.Numeric("color")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 2}, codes)
}

func TestPrepareDeleteKeepsRowsAligned(t *testing.T) {
	ds := dataset.New()
	require.NoError(t, ds.AddNumeric("age", []float64{1, nan, 3, 4}))
	require.NoError(t, ds.AddNumeric("income", []float64{10, 20, nan, 40}))
	require.NoError(t, ds.AddCategorical("letter", []string{"a", "b", "c", "d"}))

	cfg := pipeline.DefaultConfig([]string{"age", "income"}, []string{"letter"})
	cfg.MissingData = enums.MissingDelete
	cfg.Normalization = enums.MinMax

	res, err := newPreparer(t).Prepare(ds, cfg)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, res.DroppedRows)
	assert.Equal(t, ds.Rows()-len(res.DroppedRows), res.Data.Rows())

	age, _ := res.Data.Numeric("age")
	assert.InDeltaSlice(t, []float64{0, 1}, age, 1e-12)
	income, _ := res.Data.Numeric("income")
	assert.InDeltaSlice(t, []float64{0, 1}, income, 1e-12)

	// the vocabulary comes from the raw column, so every category keeps its column
	letterA, _ := res.Data.Numeric("letter_a")
	letterB, _ := res.Data.Numeric("letter_b")
	letterD, _ := res.Data.Numeric("letter_d")
	assert.Equal(t, []float64{1, 0}, letterA)
	assert.Equal(t, []float64{0, 0}, letterB)
	assert.Equal(t, []float64{0, 1}, letterD)
}

func TestPrepareIsAllOrNothing(t *testing.T) {
	prep := newPreparer(t)
	first, err := prep.Prepare(peopleDataset(t), pipeline.DefaultConfig([]string{"age"}, nil))
	require.NoError(t, err)

	ds := peopleDataset(t)
	require.NoError(t, ds.AddNumeric("income", []float64{nan, nan, nan, nan}))

	res, err := prep.Prepare(ds, pipeline.DefaultConfig([]string{"age", "income"}, []string{"color"}))
	require.Error(t, err)
	assert.Nil(t, res)

	var emptyErr *errors.EmptyColumnError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "income", emptyErr.Column)

	// the earlier run is still the one in effect
	assert.Equal(t, first.RunID, prep.RunID())
	_, err = prep.Revert([]float64{0}, "income", enums.Std)
	assert.True(t, errors.Is(err, errors.ErrUnknownColumn))

	fresh := newPreparer(t)
	_, err = fresh.Prepare(ds, pipeline.DefaultConfig([]string{"income"}, nil))
	require.Error(t, err)
	assert.False(t, fresh.IsFitted())
	assert.Nil(t, fresh.Statistics())
}

func TestPrepareUnknownNormalization(t *testing.T) {
	cfg := pipeline.DefaultConfig([]string{"age"}, nil)
	cfg.Normalization = enums.Normalization(42)

	res, err := newPreparer(t).Prepare(peopleDataset(t), cfg)
	require.NoError(t, err)
	age, _ := res.Data.Numeric("age")
	assert.Equal(t, []float64{25, 35, 35, 45}, age)

	_, err = newPreparer(t, pipeline.WithStrict(true)).Prepare(peopleDataset(t), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedNormalization))
}

func TestPrepareUnknownMissingData(t *testing.T) {
	cfg := pipeline.DefaultConfig([]string{"age"}, nil)
	cfg.MissingData = enums.MissingData(77)
	cfg.Normalization = enums.MinMax

	res, err := newPreparer(t).Prepare(peopleDataset(t), cfg)
	require.NoError(t, err)
	age, _ := res.Data.Numeric("age")
	assert.True(t, math.IsNaN(age[1]))
	assert.InDelta(t, 0.5, age[2], 1e-12)

	_, err = newPreparer(t, pipeline.WithStrict(true)).Prepare(peopleDataset(t), cfg)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedMissingData))
}

func TestPrepareValidation(t *testing.T) {
	prep := newPreparer(t)
	ds := peopleDataset(t)

	tests := []struct {
		name   string
		cfg    pipeline.Config
		target error
	}{
		{"no columns", pipeline.DefaultConfig(nil, nil), errors.ErrInvalidArgument},
		{"duplicate", pipeline.DefaultConfig([]string{"age"}, []string{"age"}), errors.ErrInvalidArgument},
		{"missing column", pipeline.DefaultConfig([]string{"height"}, nil), errors.ErrUnknownColumn},
		{"wrong role", pipeline.DefaultConfig([]string{"color"}, nil), errors.ErrTypeMismatch},
		{"bad encoding", pipeline.Config{
			CategoricalColumns: []string{"color"},
			CategoricalMethod:  enums.CategoricalData(5),
		}, errors.ErrUnsupportedEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prep.Prepare(ds, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	_, err := prep.Prepare(nil, pipeline.DefaultConfig([]string{"age"}, nil))
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	assert.False(t, prep.IsFitted())
}

func TestRevertErrors(t *testing.T) {
	prep := newPreparer(t)

	_, err := prep.Revert([]float64{1}, "age", enums.Std)
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	res, err := prep.Prepare(peopleDataset(t), pipeline.DefaultConfig([]string{"age"}, []string{"color"}))
	require.NoError(t, err)

	_, err = prep.Revert([]float64{1}, "height", enums.MinMax)
	var colErr *errors.UnknownColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "height", colErr.Column)
	assert.Equal(t, "MINMAX", colErr.Method)

	// categorical columns have no numeric inverse
	_, err = prep.Revert([]float64{1}, "color", enums.Std)
	assert.True(t, errors.Is(err, errors.ErrUnknownColumn))

	age, _ := res.Data.Numeric("age")
	_, err = prep.Revert(age, "age", enums.RobustScaler)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedNormalization))
	_, err = prep.Revert(age, "age", enums.L2)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedNormalization))

	out, err := prep.Revert(age, "age", enums.Normalization(42))
	require.NoError(t, err)
	assert.Equal(t, age, out)
}

func TestRevertWithRaw(t *testing.T) {
	ds := dataset.New()
	require.NoError(t, ds.AddNumeric("x", []float64{3, -4, nan}))

	for _, method := range []enums.Normalization{enums.L1, enums.L2} {
		t.Run(method.String(), func(t *testing.T) {
			prep := newPreparer(t)
			cfg := pipeline.DefaultConfig([]string{"x"}, nil)
			cfg.Normalization = method
			cfg.MissingData = enums.MissingDelete

			res, err := prep.Prepare(ds, cfg)
			require.NoError(t, err)
			x, _ := res.Data.Numeric("x")

			back, err := prep.RevertWithRaw(x, []float64{3, -4}, "x", method)
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{3, -4}, back, 1e-12)

			// the full original column works too, dropped rows stay out of the norm
			back, err = prep.RevertWithRaw(x, []float64{3, -4, nan}, "x", method)
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{3, -4}, back, 1e-12)

			_, err = prep.RevertWithRaw(x, []float64{3, -4}, "y", method)
			assert.True(t, errors.Is(err, errors.ErrUnknownColumn))
		})
	}
}

func TestRevertWithRawFillsMissingValues(t *testing.T) {
	raw := []float64{25, nan, 35, 45}

	for _, method := range []enums.Normalization{enums.L1, enums.L2} {
		t.Run(method.String(), func(t *testing.T) {
			ds := dataset.New()
			require.NoError(t, ds.AddNumeric("age", raw))

			prep := newPreparer(t)
			cfg := pipeline.DefaultConfig([]string{"age"}, nil)
			cfg.Normalization = method

			res, err := prep.Prepare(ds, cfg)
			require.NoError(t, err)
			age, _ := res.Data.Numeric("age")

			back, err := prep.RevertWithRaw(age, raw, "age", method)
			require.NoError(t, err)
			assert.InDeltaSlice(t, []float64{25, 35, 35, 45}, back, 1e-9)
		})
	}
}

func TestPrepareErrorsNameTheMethod(t *testing.T) {
	prep := newPreparer(t)

	ds := dataset.New()
	require.NoError(t, ds.AddNumeric("age", []float64{nan, nan}))
	require.NoError(t, ds.AddCategorical("color", []string{"red", "blue"}))

	_, err := prep.Prepare(ds, pipeline.DefaultConfig([]string{"age"}, nil))
	var emptyErr *errors.EmptyColumnError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, "age", emptyErr.Column)
	assert.Equal(t, "MEAN", emptyErr.Method)
	assert.Contains(t, err.Error(), "MEAN")

	cfg := pipeline.DefaultConfig([]string{"height"}, nil)
	cfg.MissingData = enums.MissingMode
	_, err = prep.Prepare(ds, cfg)
	var colErr *errors.UnknownColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "height", colErr.Column)
	assert.Equal(t, "MODE", colErr.Method)

	_, err = prep.Prepare(ds, pipeline.DefaultConfig(nil, []string{"shade"}))
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "shade", colErr.Column)
	assert.Equal(t, "ONE_HOT", colErr.Method)

	_, err = prep.Prepare(ds, pipeline.DefaultConfig(nil, []string{"age"}))
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
	assert.Contains(t, err.Error(), "ONE_HOT")
}

func TestStatisticsAreCopies(t *testing.T) {
	prep := newPreparer(t)
	cfg := pipeline.DefaultConfig([]string{"age"}, []string{"color"})
	res, err := prep.Prepare(peopleDataset(t), cfg)
	require.NoError(t, err)

	res.Statistics.Numeric["age"].Mean = 1000
	prep.Statistics().Numeric["age"].Std = 0
	a, err := prep.Artifact()
	require.NoError(t, err)
	a.Numeric["age"].Min = -1
	a.Categorical["color"].Categories[0] = "teal"
	delete(a.Numeric, "age")

	age, _ := res.Data.Numeric("age")
	back, err := prep.Revert(age, "age", enums.Std)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{25, 35, 35, 45}, back, 1e-9)

	cols, err := prep.EncodeWith([]string{"red"}, "color")
	require.NoError(t, err)
	assert.Equal(t, "color_red", cols[0].Name)
}

func TestEncodeWith(t *testing.T) {
	prep := newPreparer(t)
	_, err := prep.EncodeWith([]string{"red"}, "color")
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	_, err = prep.Prepare(peopleDataset(t), pipeline.DefaultConfig([]string{"age"}, []string{"color"}))
	require.NoError(t, err)

	cols, err := prep.EncodeWith([]string{"green", "red"}, "color")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "color_green", cols[2].Name)
	assert.Equal(t, []float64{1, 0}, cols[2].Values)

	_, err = prep.EncodeWith([]string{"purple"}, "color")
	var catErr *errors.UnknownCategoryError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "ONE_HOT", catErr.Method)

	_, err = prep.EncodeWith([]string{"red"}, "shade")
	assert.True(t, errors.Is(err, errors.ErrUnknownColumn))
}

func TestPrepareWorkersAreDeterministic(t *testing.T) {
	ds := dataset.New()
	var numeric []string
	for i := 0; i < 12; i++ {
		name := string(rune('a' + i))
		values := make([]float64, 50)
		for j := range values {
			values[j] = float64((i+1)*j%17) - 3
		}
		values[i] = nan
		require.NoError(t, ds.AddNumeric(name, values))
		numeric = append(numeric, name)
	}
	cfg := pipeline.DefaultConfig(numeric, nil)
	cfg.Normalization = enums.RobustScaler
	cfg.MissingData = enums.MissingMode

	seq, err := newPreparer(t, pipeline.WithWorkers(1)).Prepare(ds, cfg)
	require.NoError(t, err)
	par, err := newPreparer(t, pipeline.WithWorkers(8)).Prepare(ds, cfg)
	require.NoError(t, err)

	assert.Equal(t, seq.Data.Names(), par.Data.Names())
	for _, name := range numeric {
		a, _ := seq.Data.Numeric(name)
		b, _ := par.Data.Numeric(name)
		assert.Equal(t, a, b, name)
		assert.Equal(t, seq.Statistics.Numeric[name], par.Statistics.Numeric[name])
	}
}

func TestConcurrentPrepareAndRevert(t *testing.T) {
	prep := newPreparer(t, pipeline.WithWorkers(4))
	cfg := pipeline.DefaultConfig([]string{"age"}, []string{"color"})
	ds := peopleDataset(t)
	res, err := prep.Prepare(ds, cfg)
	require.NoError(t, err)
	age, _ := res.Data.Numeric("age")

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := prep.Prepare(ds, cfg); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			back, err := prep.Revert(age, "age", enums.Std)
			if err != nil {
				errs <- err
				return
			}
			if math.Abs(back[3]-45) > 1e-9 {
				errs <- errors.Newf("unexpected reverted value %f", back[3])
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
