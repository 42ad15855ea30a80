package config

import (
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/bears/pkg/aggregate"
	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/compression"
	"github.com/ajitpratap0/bears/pkg/csvio"
	"github.com/ajitpratap0/bears/pkg/errors"
	"github.com/ajitpratap0/bears/pkg/groupby"
	"github.com/ajitpratap0/bears/pkg/output"
)

// JobConfig is the configuration of one load, aggregate and write run
type JobConfig struct {
	// Name identifies the job in logs and metrics
	Name string `yaml:"name" json:"name"`
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version"`

	// Input describes the table to read
	Input InputConfig `yaml:"input" json:"input"`

	// GroupBy describes the aggregation
	GroupBy GroupByConfig `yaml:"group_by" json:"group_by"`

	// Output describes the result to write
	Output OutputConfig `yaml:"output" json:"output"`

	// Observability settings for monitoring and debugging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// InputConfig controls reading and type inference
type InputConfig struct {
	// Path of the CSV input; compression is detected from the extension
	Path string `yaml:"path" json:"path"`
	// Delimiter is a single character, "," by default
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// Comment, if set, is a single character marking lines to skip
	Comment string `yaml:"comment" json:"comment"`
	// TrimLeadingSpace ignores leading white space in fields
	TrimLeadingSpace bool `yaml:"trim_leading_space" json:"trim_leading_space"`
	// Compression overrides detection from the extension
	Compression string `yaml:"compression" json:"compression"`
	// ColumnTypes pins column types ("numeric" or "text") by name
	ColumnTypes map[string]string `yaml:"column_types" json:"column_types"`
	// NumericThreshold is the share of parsable values above which a mixed
	// column is numeric. 1 requires every value to parse; 0 makes a single
	// parsable value enough.
	NumericThreshold float64 `yaml:"numeric_threshold" json:"numeric_threshold"`
}

// GroupByConfig is the serialisable form of groupby.Config
type GroupByConfig struct {
	// Keys are the key column names
	Keys []string `yaml:"keys" json:"keys"`
	// Aggregates are computed in order, one output column each
	Aggregates []aggregate.Spec `yaml:"aggregates" json:"aggregates"`
	// DropMissingKey excludes rows whose key is missing
	DropMissingKey bool `yaml:"drop_missing_key" json:"drop_missing_key"`
	// FailOnEmptyGroup turns missing aggregate results into errors
	FailOnEmptyGroup bool `yaml:"fail_on_empty_group" json:"fail_on_empty_group"`
	// Verify checks that groups partition the rows
	Verify bool `yaml:"verify" json:"verify"`
	// SortBy orders the result by one of its columns
	SortBy string `yaml:"sort_by" json:"sort_by"`
	// Descending reverses SortBy
	Descending bool `yaml:"descending" json:"descending"`
}

// OutputConfig controls writing the result
type OutputConfig struct {
	// Path of the output; "" or "-" writes to stdout
	Path string `yaml:"path" json:"path"`
	// Format is csv, json, table, arrow or parquet
	Format string `yaml:"format" json:"format"`
	// Header writes column names first (csv and table)
	Header bool `yaml:"header" json:"header"`
	// Precision fixes decimal places of numbers; -1 keeps full precision
	Precision int `yaml:"precision" json:"precision"`
	// Compression is none, gzip, zstd, lz4, snappy or s2
	Compression string `yaml:"compression" json:"compression"`
	// CompressionLevel is 1 (fastest) to 9 (best)
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
}

// ObservabilityConfig contains monitoring and observability settings
type ObservabilityConfig struct {
	// LogLevel is debug, info, warn or error
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding is json or console
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
	// EnableMetrics activates metrics collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing exports spans to stderr
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate is the fraction of traces kept
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// NewJobConfig creates a JobConfig with defaults: comma-separated input,
// CSV output with a header at full precision, and info logging
func NewJobConfig(name string) *JobConfig {
	return &JobConfig{
		Name:    name,
		Version: "1.0.0",
		Input: InputConfig{
			Delimiter:        ",",
			ColumnTypes:      make(map[string]string),
			NumericThreshold: 0.5,
		},
		Output: OutputConfig{
			Format:           string(output.FormatCSV),
			Header:           true,
			Precision:        -1,
			Compression:      string(compression.None),
			CompressionLevel: int(compression.Default),
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogEncoding:       "console",
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks required fields and value ranges. Column names are only
// checked against the data when the job runs.
func (c *JobConfig) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrorTypeConfig, "name is required")
	}
	if c.Input.Path == "" {
		return errors.New(errors.ErrorTypeConfig, "input.path is required")
	}
	if _, err := singleRune("input.delimiter", c.Input.Delimiter, ','); err != nil {
		return err
	}
	if _, err := singleRune("input.comment", c.Input.Comment, 0); err != nil {
		return err
	}
	if _, err := compression.Parse(c.Input.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid input.compression")
	}
	for name, typ := range c.Input.ColumnTypes {
		if _, err := parseType(typ); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid input.column_types").
				WithDetail("column", name)
		}
	}
	if c.Input.NumericThreshold < 0 || c.Input.NumericThreshold > 1 {
		return errors.New(errors.ErrorTypeConfig, "input.numeric_threshold must be in [0, 1]")
	}

	if len(c.GroupBy.Keys) == 0 {
		return errors.New(errors.ErrorTypeConfig, "group_by.keys requires at least one column")
	}
	if len(c.GroupBy.Aggregates) == 0 {
		return errors.New(errors.ErrorTypeConfig, "group_by.aggregates requires at least one entry")
	}
	for i, spec := range c.GroupBy.Aggregates {
		if spec.Column == "" {
			return errors.Newf(errors.ErrorTypeConfig, "group_by.aggregates[%d].column is required", i)
		}
		if _, _, err := aggregate.Lookup(spec.Kind); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid group_by.aggregates").
				WithDetail("index", i)
		}
	}

	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid output.format")
	}
	if _, err := compression.Parse(c.Output.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid output.compression")
	}
	if c.Output.CompressionLevel < 0 || c.Output.CompressionLevel > int(compression.Best) {
		return errors.New(errors.ErrorTypeConfig, "output.compression_level must be between 0 and 9")
	}
	if c.Output.Precision < -1 {
		return errors.New(errors.ErrorTypeConfig, "output.precision cannot be below -1")
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "observability.tracing_sample_rate must be in [0, 1]")
	}
	return nil
}

// ToGroupBy converts the group_by section for the pipeline
func (c *JobConfig) ToGroupBy() groupby.Config {
	return groupby.Config{
		Keys:             append([]string(nil), c.GroupBy.Keys...),
		Specs:            append([]aggregate.Spec(nil), c.GroupBy.Aggregates...),
		DropMissingKey:   c.GroupBy.DropMissingKey,
		FailOnEmptyGroup: c.GroupBy.FailOnEmptyGroup,
		Verify:           c.GroupBy.Verify,
	}
}

// CSVOptions converts the input section for csvio. Call Validate first.
func (c *JobConfig) CSVOptions() []csvio.Option {
	delim, _ := singleRune("", c.Input.Delimiter, ',')
	comment, _ := singleRune("", c.Input.Comment, 0)
	opts := []csvio.Option{
		csvio.WithDelimiter(delim),
		csvio.WithTrimLeadingSpace(c.Input.TrimLeadingSpace),
	}
	if comment != 0 {
		opts = append(opts, csvio.WithComment(comment))
	}
	if c.Input.Compression != "" {
		alg, _ := compression.Parse(c.Input.Compression)
		opts = append(opts, csvio.WithCompression(alg))
	}
	return opts
}

// LoadOptions converts type overrides and inference settings for
// columnar.Load. Call Validate first.
func (c *JobConfig) LoadOptions() []columnar.LoadOption {
	opts := []columnar.LoadOption{
		columnar.WithInference(columnar.WithNumericThreshold(c.Input.NumericThreshold)),
	}
	for name, typ := range c.Input.ColumnTypes {
		t, _ := parseType(typ)
		opts = append(opts, columnar.WithColumnType(name, t))
	}
	return opts
}

// OutputFormat returns the parsed output format
func (c *JobConfig) OutputFormat() output.Format {
	f, _ := output.ParseFormat(c.Output.Format)
	return f
}

// OutputOptions converts the output section for the formatters
func (c *JobConfig) OutputOptions() []output.Option {
	return []output.Option{
		output.WithHeader(c.Output.Header),
		output.WithPrecision(c.Output.Precision),
	}
}

// OutputCompression returns the compression of the output. When none is
// configured it is detected from the output path.
func (c *JobConfig) OutputCompression() *compression.Config {
	alg, _ := compression.Parse(c.Output.Compression)
	if alg == compression.None {
		alg = compression.FromPath(c.Output.Path)
	}
	level := compression.Level(c.Output.CompressionLevel)
	if level == 0 {
		level = compression.Default
	}
	return &compression.Config{Algorithm: alg, Level: level}
}

// ToStdout reports whether the result goes to standard output
func (o *OutputConfig) ToStdout() bool {
	return o.Path == "" || o.Path == "-"
}

func singleRune(field, s string, def rune) (rune, error) {
	if s == "" {
		return def, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.Newf(errors.ErrorTypeConfig, "%s must be a single character, got %q", field, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func parseType(s string) (columnar.Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "float":
		return columnar.TypeNumeric, nil
	case "text", "string":
		return columnar.TypeText, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeValidation, "unknown column type %q, valid values are: [numeric, text]", s)
	}
}
