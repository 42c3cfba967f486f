package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/core/model"
	"github.com/ezoic/hermes/core/parallel"
	"github.com/ezoic/hermes/dataset"
	"github.com/ezoic/hermes/pkg/errors"
	"github.com/ezoic/hermes/pkg/log"
	"github.com/ezoic/hermes/preprocessing"
)

// Regression prepares tabular datasets made of numeric and categorical
// columns. It is safe for concurrent use; each Prepare call is independent
// and the statistics of the most recent successful call are the ones used by
// Revert.
type Regression struct {
	state  *model.StateManager
	logger log.Logger

	strict  bool
	workers int

	mu       sync.RWMutex
	stats    *Statistics
	metadata model.Metadata
	runID    string
}

// Result is the output of one preparation run.
type Result struct {
	// Data holds one column per numeric input, then the encoded categorical
	// columns, in configuration order.
	Data       *dataset.Dataset
	Metadata   model.Metadata
	Statistics *Statistics
	// DroppedRows lists the input rows removed by DELETE imputation.
	DroppedRows []int
	RunID       string
}

// NewRegression creates a tabular preparer.
func NewRegression(opts ...Option) *Regression {
	o := options{workers: parallel.DefaultWorkers()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultLogger("Regression")
	}
	return &Regression{
		state:   model.NewStateManager(),
		logger:  o.logger,
		strict:  o.strict,
		workers: o.workers,
	}
}

type numericColumn struct {
	name   string
	stats  *preprocessing.NumericStats
	filled []float64
	drop   []bool
	out    []float64
}

type categoricalColumn struct {
	name   string
	values []string
	stats  *preprocessing.CategoricalStats
	out    []preprocessing.EncodedColumn
}

// Prepare runs statistics, imputation, normalization and encoding over the
// columns named in cfg and assembles the prepared dataset. ds is not
// modified.
//
// Statistics are computed from the raw columns. Under DELETE, a row missing
// in any numeric column is removed from every output column. Nothing is
// retained unless every column succeeds.
func (r *Regression) Prepare(ds *dataset.Dataset, cfg Config) (_ *Result, err error) {
	defer errors.Recover(&err, "Regression.Prepare")

	if ds == nil {
		return nil, errors.NewValueError("Regression.Prepare", "dataset is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(log.OperationKey, log.OperationPrepare, log.RunIDKey, runID)
	logger.Info("Preparation started",
		log.RowsKey, ds.Rows(),
		log.ColumnsKey, len(cfg.NumericalColumns)+len(cfg.CategoricalColumns),
		"normalization_method", cfg.Normalization.String(),
		"missing_data_method", cfg.MissingData.String(),
		"categorical_method", cfg.CategoricalMethod.String(),
	)
	r.warnPassThrough(logger, cfg)

	numeric := make([]numericColumn, len(cfg.NumericalColumns))
	categorical := make([]categoricalColumn, len(cfg.CategoricalColumns))
	for i, name := range cfg.NumericalColumns {
		numeric[i].name = name
	}
	for i, name := range cfg.CategoricalColumns {
		categorical[i].name = name
	}
	total := len(numeric) + len(categorical)

	err = parallel.ForEach(total, r.workers, func(i int) error {
		if i < len(numeric) {
			return r.fitNumeric(ds, &numeric[i], cfg.MissingData, logger)
		}
		return fitCategorical(ds, &categorical[i-len(numeric)], cfg.CategoricalMethod, logger)
	})
	if err != nil {
		logger.Error("Preparation failed", err, log.PhaseKey, log.PhaseStatistics)
		return nil, err
	}

	keep, dropped := unionDrops(ds.Rows(), numeric)
	if len(dropped) > 0 {
		logger.Debug("Rows dropped", log.PhaseKey, log.PhaseImpute, log.DroppedRowsKey, len(dropped))
	}

	err = parallel.ForEach(total, r.workers, func(i int) error {
		if i < len(numeric) {
			c := &numeric[i]
			out, err := preprocessing.Normalize(dataset.FilterRows(c.filled, keep), c.stats, cfg.Normalization, r.strict)
			if err != nil {
				return err
			}
			c.out = out
			return nil
		}
		c := &categorical[i-len(numeric)]
		cols, err := preprocessing.Encode(dataset.FilterRows(c.values, keep), c.stats, cfg.CategoricalMethod)
		if err != nil {
			return err
		}
		c.out = cols
		return nil
	})
	if err != nil {
		logger.Error("Preparation failed", err, log.PhaseKey, failedPhase(err))
		return nil, err
	}

	out, err := assemble(numeric, categorical)
	if err != nil {
		logger.Error("Preparation failed", err, log.PhaseKey, log.PhaseAssemble)
		return nil, err
	}

	stats := newStatistics(len(numeric), len(categorical))
	for _, c := range numeric {
		stats.Numeric[c.name] = c.stats
	}
	for _, c := range categorical {
		stats.Categorical[c.name] = c.stats
	}
	md := cfg.Metadata()

	r.mu.Lock()
	r.stats = stats
	r.metadata = md
	r.runID = runID
	r.mu.Unlock()
	r.state.SetFitted()

	logger.Info("Preparation finished",
		log.RowsKey, out.Rows(),
		log.ColumnsKey, out.Len(),
		log.DroppedRowsKey, len(dropped),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Data:        out,
		Metadata:    md,
		Statistics:  stats.Clone(),
		DroppedRows: dropped,
		RunID:       runID,
	}, nil
}

func (r *Regression) fitNumeric(ds *dataset.Dataset, c *numericColumn, strategy enums.MissingData, logger log.Logger) error {
	raw, err := ds.Numeric(c.name)
	if err != nil {
		return withMethod(err, c.name, strategy.String())
	}
	st, err := preprocessing.NewNumericStats(c.name, raw)
	if err != nil {
		return withMethod(err, c.name, strategy.String())
	}
	filled, drop, err := preprocessing.Impute(raw, st, strategy, r.strict)
	if err != nil {
		return err
	}
	c.stats, c.filled, c.drop = st, filled, drop

	logger.Debug("Numeric column fitted",
		log.ColumnKey, c.name,
		log.MethodKey, strategy.String(),
		"count", st.Count,
		"mean", st.Mean,
		"std", st.Std,
	)
	return nil
}

func fitCategorical(ds *dataset.Dataset, c *categoricalColumn, method enums.CategoricalData, logger log.Logger) error {
	values, err := ds.Categorical(c.name)
	if err != nil {
		return withMethod(err, c.name, method.String())
	}
	c.values = values
	c.stats = preprocessing.NewCategoricalStats(c.name, values)

	logger.Debug("Categorical column fitted", log.ColumnKey, c.name, "categories", c.stats.Len())
	return nil
}

// withMethod attaches the requested method to errors raised while reading a
// column or computing its statistics.
func withMethod(err error, column, method string) error {
	switch {
	case errors.Is(err, errors.ErrEmptyColumn):
		return errors.NewEmptyColumnError(column, method)
	case errors.Is(err, errors.ErrUnknownColumn):
		return errors.NewUnknownColumnError(column, method)
	default:
		return errors.Wrapf(err, "%s", method)
	}
}

// failedPhase names the transform phase an error of the second pass came
// from.
func failedPhase(err error) string {
	if errors.Is(err, errors.ErrUnknownCategory) || errors.Is(err, errors.ErrUnsupportedEncoding) {
		return log.PhaseEncode
	}
	return log.PhaseNormalize
}

// unionDrops merges the DELETE masks of all numeric columns. keep is nil when
// no row is dropped.
func unionDrops(rows int, numeric []numericColumn) (keep []bool, dropped []int) {
	for _, c := range numeric {
		if c.drop == nil {
			continue
		}
		if keep == nil {
			keep = make([]bool, rows)
			for i := range keep {
				keep[i] = true
			}
		}
		for i, d := range c.drop {
			if d {
				keep[i] = false
			}
		}
	}
	for i, k := range keep {
		if !k {
			dropped = append(dropped, i)
		}
	}
	return keep, dropped
}

func assemble(numeric []numericColumn, categorical []categoricalColumn) (*dataset.Dataset, error) {
	out := dataset.New()
	for _, c := range numeric {
		if err := out.AddNumeric(c.name, c.out); err != nil {
			return nil, errors.Wrapf(err, "column %q", c.name)
		}
	}
	for _, c := range categorical {
		for _, enc := range c.out {
			if err := out.AddNumeric(enc.Name, enc.Values); err != nil {
				return nil, errors.Wrapf(err, "column %q", c.name)
			}
		}
	}
	return out, nil
}

func (r *Regression) warnPassThrough(logger log.Logger, cfg Config) {
	if r.strict {
		return
	}
	if len(cfg.NumericalColumns) > 0 && !cfg.MissingData.Valid() {
		logger.Warn("Unknown missing data method, columns passed through",
			log.PhaseKey, log.PhaseImpute, log.MethodKey, cfg.MissingData.String())
	}
	if len(cfg.NumericalColumns) > 0 && !cfg.Normalization.Valid() {
		logger.Warn("Unknown normalization method, columns passed through",
			log.PhaseKey, log.PhaseNormalize, log.MethodKey, cfg.Normalization.String())
	}
}

// Revert maps normalized values of column back to the original scale using
// the statistics retained from the last preparation. MINMAX and STD are
// supported; L1 and L2 need RevertWithRaw.
//
// Errors:
//   - NotFittedError: if no preparation has succeeded
//   - UnknownColumnError: if column was not a numeric column of that run
//   - UnsupportedNormalizationError: for L1, L2 and ROBUST_SCALER
func (r *Regression) Revert(values []float64, column string, method enums.Normalization) ([]float64, error) {
	st, err := r.numericStats(column, method, "Revert")
	if err != nil {
		return nil, err
	}
	out, err := preprocessing.Revert(values, st, method, r.strict)
	if err != nil {
		return nil, err
	}
	if !method.Valid() {
		r.logger.Warn("Unknown normalization method, values passed through",
			log.OperationKey, log.OperationRevert, log.ColumnKey, column, log.MethodKey, method.String())
	}
	return out, nil
}

// RevertWithRaw maps L1 or L2 normalized values of column back to the
// original scale. raw is the original column as given to Prepare; its missing
// entries are filled with the run's missing data strategy before the norm is
// taken, so the norm matches the forward transform. Under DELETE missing
// entries are left out of the norm, as the dropped rows were.
func (r *Regression) RevertWithRaw(values, raw []float64, column string, method enums.Normalization) ([]float64, error) {
	st, err := r.numericStats(column, method, "RevertWithRaw")
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	strategy := r.metadata.MissingDataMethod
	r.mu.RUnlock()

	filled, _, err := preprocessing.Impute(raw, st, strategy, r.strict)
	if err != nil {
		return nil, err
	}
	return preprocessing.RevertWithRaw(values, filled, column, method)
}

// EncodeWith encodes values of a categorical column against the vocabulary
// and method of the last preparation.
func (r *Regression) EncodeWith(values []string, column string) ([]preprocessing.EncodedColumn, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "EncodeWith")
	}
	r.mu.RLock()
	st, ok := r.stats.CategoricalColumn(column)
	method := r.metadata.CategoricalMethod
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewUnknownColumnError(column, method.String())
	}
	return preprocessing.Encode(values, st, method)
}

func (r *Regression) numericStats(column string, method enums.Normalization, op string) (*preprocessing.NumericStats, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", op)
	}
	r.mu.RLock()
	st, ok := r.stats.NumericColumn(column)
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewUnknownColumnError(column, method.String())
	}
	return st, nil
}

// IsFitted reports whether a preparation has succeeded.
func (r *Regression) IsFitted() bool {
	return r.state.IsFitted()
}

// Statistics returns a copy of the statistics of the last preparation, or
// nil.
func (r *Regression) Statistics() *Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats.Clone()
}

// Metadata returns the metadata of the last preparation.
func (r *Regression) Metadata() (model.Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata, r.stats != nil
}

// RunID returns the id of the last preparation.
func (r *Regression) RunID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runID
}
