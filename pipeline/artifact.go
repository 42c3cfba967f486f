package pipeline

import (
	"io"

	"github.com/ezoic/hermes/core/model"
	"github.com/ezoic/hermes/pkg/errors"
	"github.com/ezoic/hermes/pkg/log"
	"github.com/ezoic/hermes/preprocessing"
)

// ArtifactKind identifies persisted Regression artifacts.
const ArtifactKind = "regression"

// Artifact is the persisted state of a preparation run: enough to revert
// numeric columns and encode categorical ones in a later process.
type Artifact struct {
	Metadata    model.Metadata                             `json:"metadata" yaml:"metadata"`
	Numeric     map[string]*preprocessing.NumericStats     `json:"numeric" yaml:"numeric"`
	Categorical map[string]*preprocessing.CategoricalStats `json:"categorical" yaml:"categorical"`
}

// Artifact returns the persisted form of the last preparation.
func (r *Regression) Artifact() (*Artifact, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Artifact")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := r.stats.Clone()
	return &Artifact{
		Metadata:    r.metadata,
		Numeric:     stats.Numeric,
		Categorical: stats.Categorical,
	}, nil
}

func (r *Regression) artifactSpec() model.ArtifactSpec {
	spec := model.NewArtifactSpec(ArtifactKind)
	if id := r.RunID(); id != "" {
		spec.RunID = id
	}
	return spec
}

// WriteArtifact encodes the last preparation to w.
func (r *Regression) WriteArtifact(w io.Writer, format model.Format) error {
	a, err := r.Artifact()
	if err != nil {
		return err
	}
	return model.WriteArtifact(w, format, r.artifactSpec(), a)
}

// SaveArtifact writes the last preparation to path as JSON, or YAML when the
// extension is .yaml or .yml.
func (r *Regression) SaveArtifact(path string) error {
	a, err := r.Artifact()
	if err != nil {
		return err
	}
	spec := r.artifactSpec()
	if err := model.SaveArtifact(path, spec, a); err != nil {
		return err
	}
	r.logger.Info("Artifact saved", log.OperationKey, log.OperationSave, log.RunIDKey, spec.RunID, "path", path)
	return nil
}

// ReadArtifact decodes a Regression artifact from rd.
func ReadArtifact(rd io.Reader, format model.Format) (*Artifact, model.ArtifactSpec, error) {
	var a Artifact
	spec, err := model.ReadArtifact(rd, format, ArtifactKind, &a)
	if err != nil {
		return nil, spec, err
	}
	return &a, spec, nil
}

// LoadArtifact reads a Regression artifact from path.
func LoadArtifact(path string) (*Artifact, model.ArtifactSpec, error) {
	var a Artifact
	spec, err := model.LoadArtifact(path, ArtifactKind, &a)
	if err != nil {
		return nil, spec, err
	}
	return &a, spec, nil
}

// FromArtifact returns a fitted preparer restored from a.
//
// Errors:
//   - ValueError: if a column of the metadata has no statistics
func FromArtifact(a *Artifact, runID string, opts ...Option) (*Regression, error) {
	if a == nil {
		return nil, errors.NewValueError("FromArtifact", "artifact is nil")
	}
	stats := newStatistics(len(a.Numeric), len(a.Categorical))
	for _, name := range a.Metadata.NumericalColumns {
		st, ok := a.Numeric[name]
		if !ok || st == nil {
			return nil, errors.NewValueError("FromArtifact", "missing statistics for numeric column "+name)
		}
		stats.Numeric[name] = st
	}
	for _, name := range a.Metadata.CategoricalColumns {
		st, ok := a.Categorical[name]
		if !ok || st == nil {
			return nil, errors.NewValueError("FromArtifact", "missing vocabulary for categorical column "+name)
		}
		if st.Encoder == nil {
			st.Encoder = make(map[string]int, len(st.Categories))
			for i, c := range st.Categories {
				st.Encoder[c] = i
			}
		}
		stats.Categorical[name] = st
	}

	r := NewRegression(opts...)
	r.stats = stats
	r.metadata = a.Metadata
	r.runID = runID
	r.state.SetFitted()
	r.logger.Info("Artifact restored", log.OperationKey, log.OperationLoad, log.RunIDKey, runID,
		log.ColumnsKey, len(stats.Numeric)+len(stats.Categorical))
	return r, nil
}

// Load restores a fitted preparer from an artifact file.
func Load(path string, opts ...Option) (*Regression, error) {
	a, spec, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return FromArtifact(a, spec.RunID, opts...)
}
