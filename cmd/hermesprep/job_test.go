package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/hermes/core/enums"
	"github.com/ezoic/hermes/dataset"
	"github.com/ezoic/hermes/pkg/errors"
)

const peopleCSV = `age,color,income
25,red,1000
NA,blue,2000
35,red,
45,green,4000
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJobDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "job.yaml", `
input:
  path: people.csv
numerical_columns: [age]
categorical_columns: [color]
missing_data_method: DELETE
`)

	job, err := LoadJob(path)
	require.NoError(t, err)

	assert.Equal(t, "people.csv", job.Input.Path)
	assert.Equal(t, []string{"age"}, job.Pipeline.NumericalColumns)
	assert.Equal(t, []string{"color"}, job.Pipeline.CategoricalColumns)
	assert.Equal(t, enums.MissingDelete, job.Pipeline.MissingData)
	assert.Equal(t, enums.Std, job.Pipeline.Normalization)
	assert.Equal(t, enums.OneHot, job.Pipeline.CategoricalMethod)
	assert.Equal(t, "info", job.LogLevel)
}

func TestLoadJobErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadJob(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "normalization_method: CUBIC\n")
	_, err = LoadJob(bad)
	assert.Error(t, err)

	query := writeFile(t, dir, "query.yaml", "input:\n  query: SELECT 1\n")
	job, err := LoadJob(query)
	require.NoError(t, err)
	assert.Equal(t, "postgres", job.Input.Driver)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		envStrict:   "true",
		envWorkers:  "3",
		envDSN:      "postgres://localhost/hermes",
		envLogLevel: "debug",
	}
	job := &Job{}
	require.NoError(t, job.ApplyEnv(func(k string) string { return env[k] }))

	assert.True(t, job.Strict)
	assert.Equal(t, 3, job.Workers)
	assert.Equal(t, "postgres://localhost/hermes", job.Input.DSN)
	assert.Equal(t, "debug", job.LogLevel)

	env[envWorkers] = "many"
	err := job.ApplyEnv(func(k string) string { return env[k] })
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestApplyOverrides(t *testing.T) {
	job := &Job{}
	job.Pipeline.NumericalColumns = []string{"age"}
	job.Pipeline.Normalization = enums.Std

	require.NoError(t, job.ApplyOverrides([]string{
		"normalization_method=minmax",
		"categorical_columns=color, shape",
	}))
	assert.Equal(t, enums.MinMax, job.Pipeline.Normalization)
	assert.Equal(t, []string{"color", "shape"}, job.Pipeline.CategoricalColumns)

	err := job.ApplyOverrides([]string{"scaling=STD"})
	assert.True(t, errors.Is(err, errors.ErrAttributeAccess))

	err = job.ApplyOverrides([]string{"normalization_method"})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestLoadDatasetFromSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "people.db")
	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE people (age REAL, color TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO people VALUES (25, 'red'), (NULL, 'blue'), (35, 'red')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	job := &Job{Input: InputConfig{Driver: "sqlite", DSN: dsn, Query: "SELECT age, color FROM people"}}
	job.Pipeline.NumericalColumns = []string{"age"}
	job.Pipeline.CategoricalColumns = []string{"color"}

	ds, err := job.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())
	colors, err := ds.Categorical("color")
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue", "red"}, colors)

	job.Input.DSN = ""
	_, err = job.LoadDataset(context.Background())
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestPrepareAndRevertCommands(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv", peopleCSV)
	prepared := filepath.Join(dir, "prepared.csv")
	artifact := filepath.Join(dir, "run.yaml")
	jobPath := writeFile(t, dir, "job.yaml", `
input:
  path: `+input+`
numerical_columns: [age]
categorical_columns: [color]
`)

	root := newRootCmd()
	root.SetArgs([]string{
		"prepare", "--job", jobPath,
		"--env-file", filepath.Join(dir, "absent.env"),
		"--log-level", "disabled",
		"--output", prepared,
		"--artifact", artifact,
		"--set", "normalization_method=MINMAX",
	})
	require.NoError(t, root.Execute())

	ds, err := dataset.LoadCSV(prepared, dataset.NewSchema([]string{"age", "color_red", "color_blue", "color_green"}, nil))
	require.NoError(t, err)
	age, _ := ds.Numeric("age")
	assert.InDeltaSlice(t, []float64{0, 0.5, 0.5, 1}, age, 1e-12)

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{
		"revert", "--artifact", artifact, "--input", prepared,
		"--env-file", filepath.Join(dir, "absent.env"), "--log-level", "disabled",
	})
	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"age", "25", "35", "35", "45"}, lines)

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"describe", "--artifact", artifact, "--log-level", "disabled",
		"--env-file", filepath.Join(dir, "absent.env")})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Normalization: MinMax normalization")
	assert.Contains(t, out.String(), "3 categories: red, blue, green")
}

func TestParseImageMethod(t *testing.T) {
	m, err := parseImageMethod("channel-wise")
	require.NoError(t, err)
	assert.Equal(t, "CHANNEL_WISE", m.String())

	_, err = parseImageMethod("sepia")
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestRevertCommandWithRawColumn(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "absent.env")
	input := writeFile(t, dir, "people.csv", peopleCSV)
	prepared := filepath.Join(dir, "prepared.csv")
	artifact := filepath.Join(dir, "run.json")
	jobPath := writeFile(t, dir, "job.yaml", `
input:
  path: `+input+`
numerical_columns: [age]
normalization_method: L1
`)

	root := newRootCmd()
	root.SetArgs([]string{"prepare", "--job", jobPath, "--env-file", envFile, "--log-level", "disabled",
		"--output", prepared, "--artifact", artifact})
	require.NoError(t, root.Execute())

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"revert", "--artifact", artifact, "--input", prepared, "--raw", input,
		"--env-file", envFile, "--log-level", "disabled"})
	require.NoError(t, root.Execute())

	ds, err := dataset.ReadCSV(&out, dataset.NewSchema([]string{"age"}, nil))
	require.NoError(t, err)
	age, _ := ds.Numeric("age")
	assert.InDeltaSlice(t, []float64{25, 35, 35, 45}, age, 1e-9)
}
