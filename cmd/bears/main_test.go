package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/bears/pkg/errors"
	"github.com/ajitpratap0/bears/pkg/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Bears v"+version)
}

func TestAggregate_Flags(t *testing.T) {
	out, err := execute(t, "aggregate",
		"--input", testutil.WriteFile(t, "in.csv", testutil.LettersCSV),
		"--key", "B",
		"--agg", "A:count:count",
		"--agg", "A:sum:sum",
		"--agg", "A:avg:avg",
	)
	require.NoError(t, err)
	assert.Equal(t, "B,count,sum,avg\nx,2,4,2\ny,1,2,2\nz,2,9,4.5\n", out)
}

func TestAggregate_FormatsAndSort(t *testing.T) {
	out, err := execute(t, "aggregate",
		"-i", testutil.WriteFile(t, "in.csv", testutil.LettersCSV), "-k", "B", "-a", "A:max",
		"--sort-by", "A", "--descending", "--no-header", "--format", "json",
	)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"B":"z","A":5}`, lines[0])
}

func TestAggregate_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, "in.csv", testutil.LettersCSV)
	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte(`
input:
  path: `+in+`
group_by:
  keys: [B]
  aggregates:
    - column: A
      kind: sum
output:
  format: csv
  header: true
  precision: -1
`), 0o600))

	out, err := execute(t, "aggregate", "--config", job)
	require.NoError(t, err)
	assert.Equal(t, "B,A\nx,4\ny,2\nz,9\n", out)

	// environment overrides the file
	t.Setenv("BEARS_OUTPUT", filepath.Join(dir, "out.csv"))
	out, err = execute(t, "aggregate", "--config", job)
	require.NoError(t, err)
	assert.Empty(t, out)
	written, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "B,A\nx,4\ny,2\nz,9\n", string(written))
}

func TestAggregate_MetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bears.prom")
	_, err := execute(t, "aggregate", "-i", testutil.WriteFile(t, "in.csv", testutil.LettersCSV), "-k", "B", "-a", "A:sum",
		"--metrics-file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bears_rows_loaded_total 5")
	assert.Contains(t, string(data), `bears_jobs_total{status="succeeded"} 1`)
}

func TestAggregate_MetricsDisabled(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte(`
input:
  path: `+testutil.WriteFile(t, "in.csv", testutil.LettersCSV)+`
group_by:
  keys: [B]
  aggregates:
    - {column: A, kind: sum}
observability:
  enable_metrics: false
`), 0o600))

	path := filepath.Join(dir, "bears.prom")
	out, err := execute(t, "aggregate", "--config", job, "--metrics-file", path)
	require.NoError(t, err)
	assert.Equal(t, "B,A\nx,4\ny,2\nz,9\n", out)
	assert.NoFileExists(t, path)
}

func TestAggregate_Errors(t *testing.T) {
	in := testutil.WriteFile(t, "in.csv", testutil.LettersCSV)

	_, err := execute(t, "aggregate", "-k", "B", "-a", "A:sum")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "input is required: %v", err)

	_, err = execute(t, "aggregate", "-i", in, "-k", "B", "-a", "A")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "bad spec: %v", err)

	_, err = execute(t, "aggregate", "-i", in, "-k", "nope", "-a", "A:sum")
	assert.True(t, errors.IsNotFound(err))

	_, err = execute(t, "aggregate", "-i", in, "-k", "B", "-a", "B:sum")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "sum over text: %v", err)
}

func TestCensus(t *testing.T) {
	golden := testutil.CensusReport(t)

	out, err := execute(t, "census", testutil.CensusTracts())
	require.NoError(t, err)
	assert.Equal(t, golden, out)

	path := filepath.Join(t.TempDir(), "report.csv")
	_, err = execute(t, "census", testutil.CensusTracts(), path)
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, golden, string(written))

	_, err = execute(t, "census")
	assert.Error(t, err)
}
