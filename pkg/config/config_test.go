package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/bears/pkg/aggregate"
	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/compression"
	"github.com/ajitpratap0/bears/pkg/errors"
	"github.com/ajitpratap0/bears/pkg/output"
)

func validConfig() *JobConfig {
	cfg := NewJobConfig("test")
	cfg.Input.Path = "in.csv"
	cfg.GroupBy.Keys = []string{"CBSA09"}
	cfg.GroupBy.Aggregates = []aggregate.Spec{{Column: "POP00", Kind: aggregate.KindSum}}
	return cfg
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJobConfig(t *testing.T) {
	t.Setenv("BEARS_TEST_DIR", "/data")
	path := writeFile(t, `
input:
  path: ${BEARS_TEST_DIR}/census.csv.gz
  column_types:
    GEOID: text
group_by:
  keys: [CBSA09]
  drop_missing_key: true
  aggregates:
    - {column: CBSA_T, kind: last}
    - {column: POP10, kind: avg, as: avg10}
output:
  header: false
`)

	cfg, err := LoadJobConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "job", cfg.Name)
	assert.Equal(t, "/data/census.csv.gz", cfg.Input.Path)
	assert.Equal(t, ",", cfg.Input.Delimiter, "defaults survive")
	assert.False(t, cfg.Output.Header)
	assert.Equal(t, -1, cfg.Output.Precision)
	assert.Equal(t, []aggregate.Spec{
		{Column: "CBSA_T", Kind: aggregate.KindLast},
		{Column: "POP10", Kind: "avg", As: "avg10"},
	}, cfg.GroupBy.Aggregates)

	gb := cfg.ToGroupBy()
	assert.True(t, gb.DropMissingKey)
	assert.Equal(t, []string{"CBSA09"}, gb.Keys)
	assert.Len(t, cfg.LoadOptions(), 2)
	assert.Len(t, cfg.CSVOptions(), 2)
}

func TestLoadOptions_NumericThreshold(t *testing.T) {
	header := []string{"v"}
	rows := [][]string{{"1"}, {"2"}, {"n/a"}, {"x"}}

	tests := []struct {
		threshold float64
		want      columnar.Type
	}{
		{threshold: 0, want: columnar.TypeNumeric},
		{threshold: 0.5, want: columnar.TypeText},
		{threshold: 1, want: columnar.TypeText},
	}
	for _, tt := range tests {
		cfg := validConfig()
		cfg.Input.NumericThreshold = tt.threshold
		require.NoError(t, cfg.Validate())

		table, err := columnar.Load(header, rows, cfg.LoadOptions()...)
		require.NoError(t, err)
		col, err := table.Column("v")
		require.NoError(t, err)
		assert.Equal(t, tt.want, col.Type(), "threshold %v", tt.threshold)
	}

	cfg := validConfig()
	cfg.Input.NumericThreshold = 1
	table, err := columnar.Load(header, [][]string{{"1"}, {"2.5"}}, cfg.LoadOptions()...)
	require.NoError(t, err)
	col, err := table.Column("v")
	require.NoError(t, err)
	assert.Equal(t, columnar.TypeNumeric, col.Type(), "strict threshold accepts an all-numeric column")
}

func TestLoad_Errors(t *testing.T) {
	_, err := LoadJobConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = LoadJobConfig(writeFile(t, "input: [unclosed"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := validConfig()
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadJobConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.GroupBy, loaded.GroupBy)
	assert.Equal(t, cfg.Input.Path, loaded.Input.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*JobConfig)
	}{
		{"missing name", func(c *JobConfig) { c.Name = "" }},
		{"missing input", func(c *JobConfig) { c.Input.Path = "" }},
		{"long delimiter", func(c *JobConfig) { c.Input.Delimiter = ";;" }},
		{"bad input compression", func(c *JobConfig) { c.Input.Compression = "brotli" }},
		{"bad column type", func(c *JobConfig) { c.Input.ColumnTypes["GEOID"] = "date" }},
		{"bad threshold", func(c *JobConfig) { c.Input.NumericThreshold = 1.5 }},
		{"negative threshold", func(c *JobConfig) { c.Input.NumericThreshold = -0.1 }},
		{"no keys", func(c *JobConfig) { c.GroupBy.Keys = nil }},
		{"no aggregates", func(c *JobConfig) { c.GroupBy.Aggregates = nil }},
		{"aggregate without column", func(c *JobConfig) { c.GroupBy.Aggregates[0].Column = "" }},
		{"unknown kind", func(c *JobConfig) { c.GroupBy.Aggregates[0].Kind = "median" }},
		{"bad format", func(c *JobConfig) { c.Output.Format = "xlsx" }},
		{"bad output compression", func(c *JobConfig) { c.Output.Compression = "rar" }},
		{"bad level", func(c *JobConfig) { c.Output.CompressionLevel = 12 }},
		{"bad precision", func(c *JobConfig) { c.Output.Precision = -2 }},
		{"bad sample rate", func(c *JobConfig) { c.Observability.TracingSampleRate = 2 }},
	}

	require.NoError(t, validConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "unexpected error: %v", err)
		})
	}
}

func TestCSVOptions_TabDelimiter(t *testing.T) {
	cfg := validConfig()
	cfg.Input.Delimiter = `\t`
	cfg.Input.Comment = "#"
	cfg.Input.Compression = "zstd"
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.CSVOptions(), 4)
}

func TestOutputSettings(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.Output.ToStdout())
	assert.Equal(t, output.FormatCSV, cfg.OutputFormat())
	assert.Len(t, cfg.OutputOptions(), 2)

	cfg.Output.Path = "report.csv.zst"
	assert.False(t, cfg.Output.ToStdout())
	assert.Equal(t, compression.Zstd, cfg.OutputCompression().Algorithm)

	cfg.Output.Compression = "lz4"
	cfg.Output.CompressionLevel = 9
	comp := cfg.OutputCompression()
	assert.Equal(t, compression.LZ4, comp.Algorithm)
	assert.Equal(t, compression.Best, comp.Level)
}
