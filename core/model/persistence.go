package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/hermes/pkg/errors"
)

// FormatVersion is the current artifact format version.
const FormatVersion = "1.0"

// Format selects the artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension. Anything that is
// not .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ArtifactSpec identifies a persisted artifact.
type ArtifactSpec struct {
	Kind          string    `json:"kind" yaml:"kind"`                     // payload kind (e.g., "regression")
	FormatVersion string    `json:"format_version" yaml:"format_version"` // envelope format version
	RunID         string    `json:"run_id" yaml:"run_id"`                 // unique id of the preparation run
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// NewArtifactSpec returns a spec for kind with a fresh run id.
func NewArtifactSpec(kind string) ArtifactSpec {
	return ArtifactSpec{
		Kind:          kind,
		FormatVersion: FormatVersion,
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
	}
}

func (s ArtifactSpec) validate(kind string) error {
	if s.FormatVersion == "" {
		return errors.NewValueError("LoadArtifact", "format_version is required")
	}
	if s.FormatVersion != FormatVersion {
		return errors.NewValueError("LoadArtifact",
			fmt.Sprintf("unsupported format version: %s", s.FormatVersion))
	}
	if s.Kind != kind {
		return errors.NewValueError("LoadArtifact",
			fmt.Sprintf("expected %s artifact, got %q", kind, s.Kind))
	}
	return nil
}

type jsonEnvelope struct {
	Spec    ArtifactSpec    `json:"artifact_spec"`
	Payload json.RawMessage `json:"payload"`
}

type yamlEnvelope struct {
	Spec    ArtifactSpec `yaml:"artifact_spec"`
	Payload yaml.Node    `yaml:"payload"`
}

// WriteArtifact encodes payload inside an envelope carrying spec.
//
// Example:
//
//	spec := model.NewArtifactSpec("regression")
//	err := model.WriteArtifact(w, model.FormatYAML, spec, payload)
func WriteArtifact(w io.Writer, format Format, spec ArtifactSpec, payload interface{}) error {
	switch format {
	case FormatJSON:
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "failed to marshal payload")
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonEnvelope{Spec: spec, Payload: raw}); err != nil {
			return errors.Wrap(err, "failed to encode artifact")
		}
		return nil
	case FormatYAML:
		var node yaml.Node
		if err := node.Encode(payload); err != nil {
			return errors.Wrap(err, "failed to marshal payload")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlEnvelope{Spec: spec, Payload: node}); err != nil {
			return errors.Wrap(err, "failed to encode artifact")
		}
		return enc.Close()
	default:
		return errors.Wrapf(errors.ErrUnsupportedArtifactFormat, "format %q", format)
	}
}

// ReadArtifact decodes an envelope of the given kind and stores its payload
// in out.
func ReadArtifact(r io.Reader, format Format, kind string, out interface{}) (ArtifactSpec, error) {
	switch format {
	case FormatJSON:
		var env jsonEnvelope
		if err := json.NewDecoder(r).Decode(&env); err != nil {
			return ArtifactSpec{}, errors.Wrap(err, "failed to decode JSON")
		}
		if err := env.Spec.validate(kind); err != nil {
			return env.Spec, err
		}
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return env.Spec, errors.Wrap(err, "failed to unmarshal payload")
		}
		return env.Spec, nil
	case FormatYAML:
		var env yamlEnvelope
		if err := yaml.NewDecoder(r).Decode(&env); err != nil {
			return ArtifactSpec{}, errors.Wrap(err, "failed to decode YAML")
		}
		if err := env.Spec.validate(kind); err != nil {
			return env.Spec, err
		}
		if err := env.Payload.Decode(out); err != nil {
			return env.Spec, errors.Wrap(err, "failed to unmarshal payload")
		}
		return env.Spec, nil
	default:
		return ArtifactSpec{}, errors.Wrapf(errors.ErrUnsupportedArtifactFormat, "format %q", format)
	}
}

// SaveArtifact writes an artifact to path, choosing the format from the
// file extension.
func SaveArtifact(path string, spec ArtifactSpec, payload interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := WriteArtifact(file, FormatFromPath(path), spec, payload); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// LoadArtifact reads an artifact of the given kind from path.
func LoadArtifact(path, kind string, out interface{}) (ArtifactSpec, error) {
	file, err := os.Open(path)
	if err != nil {
		return ArtifactSpec{}, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	return ReadArtifact(file, FormatFromPath(path), kind, out)
}
