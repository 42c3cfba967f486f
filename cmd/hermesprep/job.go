package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/hermes/dataset"
	"github.com/ezoic/hermes/pipeline"
	"github.com/ezoic/hermes/pkg/errors"
)

// Environment variables read by the CLI, after the .env file is loaded.
const (
	envLogLevel = "HERMES_LOG_LEVEL"
	envStrict   = "HERMES_STRICT"
	envWorkers  = "HERMES_WORKERS"
	envDSN      = "HERMES_DSN"
)

// Job is a preparation job file.
//
//	input:
//	  path: people.csv
//	numerical_columns: [age, income]
//	categorical_columns: [color]
//	normalization_method: STD
//	missing_data_method: MEAN
//	categorical_method: ONE_HOT
//	output:
//	  data: prepared.csv
//	  artifact: run.yaml
type Job struct {
	Input    InputConfig     `yaml:"input"`
	Pipeline pipeline.Config `yaml:",inline"`
	Output   OutputConfig    `yaml:"output"`
	Strict   bool            `yaml:"strict"`
	Workers  int             `yaml:"workers"`
	LogLevel string          `yaml:"log_level"`
}

// InputConfig locates the raw dataset: a CSV or XLSX file, or a SQL query.
type InputConfig struct {
	Path   string `yaml:"path"`
	Sheet  string `yaml:"sheet"`
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Query  string `yaml:"query"`
}

// OutputConfig lists where results are written. Empty entries are skipped.
type OutputConfig struct {
	Data     string `yaml:"data"`
	Artifact string `yaml:"artifact"`
	Plots    string `yaml:"plots"`
}

// LoadJob reads a job file. Methods left out default to ONE_HOT, STD and
// MEAN.
func LoadJob(path string) (*Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read job file")
	}

	job := &Job{Pipeline: pipeline.DefaultConfig(nil, nil), LogLevel: "info"}
	if err := yaml.Unmarshal(raw, job); err != nil {
		return nil, errors.Wrapf(err, "failed to parse job file %s", path)
	}
	if job.Input.Query != "" && job.Input.Driver == "" {
		job.Input.Driver = "postgres"
	}
	return job, nil
}

// ApplyEnv overrides job settings from the environment.
func (j *Job) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(envLogLevel)); v != "" {
		j.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(envStrict)); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewValidationError(envStrict, "must be a boolean", v)
		}
		j.Strict = strict
	}
	if v := strings.TrimSpace(getenv(envWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(envWorkers, "must be an integer", v)
		}
		j.Workers = n
	}
	if v := strings.TrimSpace(getenv(envDSN)); v != "" {
		j.Input.DSN = v
	}
	return nil
}

// ApplyOverrides applies "field=value" assignments to the run metadata, as
// given with -set.
func (j *Job) ApplyOverrides(sets []string) error {
	md := j.Pipeline.Metadata()
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		if !ok {
			return errors.NewValidationError("set", "expected field=value", s)
		}
		if err := md.Set(field, value); err != nil {
			return err
		}
	}
	j.Pipeline = pipeline.ConfigFromMetadata(md)
	return nil
}

// Options returns the preparer options of the job.
func (j *Job) Options() []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithStrict(j.Strict)}
	if j.Workers > 0 {
		opts = append(opts, pipeline.WithWorkers(j.Workers))
	}
	return opts
}

// LoadDataset reads the columns named by the job from its input.
func (j *Job) LoadDataset(ctx context.Context) (*dataset.Dataset, error) {
	schema := dataset.NewSchema(j.Pipeline.NumericalColumns, j.Pipeline.CategoricalColumns)

	switch {
	case j.Input.Query != "":
		if j.Input.DSN == "" {
			return nil, errors.NewValueError("LoadDataset", "a query needs a dsn (or "+envDSN+")")
		}
		db, err := sqlx.ConnectContext(ctx, j.Input.Driver, j.Input.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect to database")
		}
		defer func() { _ = db.Close() }()
		return dataset.LoadSQL(ctx, db, j.Input.Query, schema)

	case j.Input.Path == "":
		return nil, errors.NewValueError("LoadDataset", "input needs a path or a query")

	case strings.EqualFold(filepath.Ext(j.Input.Path), ".xlsx"):
		return dataset.LoadXLSX(j.Input.Path, j.Input.Sheet, schema)

	default:
		return dataset.LoadCSV(j.Input.Path, schema)
	}
}
