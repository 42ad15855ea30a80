// Package output writes result tables as CSV, JSON Lines, an aligned text
// table, an Arrow IPC file or a Parquet file.
//
// # Basic Usage
//
//	formatter, err := output.New(output.FormatCSV, os.Stdout, output.WithHeader(false))
//	if err != nil {
//	    return err
//	}
//	if err := formatter.Format(table); err != nil {
//	    return err
//	}
//
// WriteFile does the same for a path and optionally compresses the result.
package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// Format names an output format
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatTable   Format = "table"
	FormatArrow   Format = "arrow"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a format name. jsonl is accepted for json.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatJSON, FormatTable, FormatArrow, FormatParquet:
		return f, nil
	case "jsonl":
		return FormatJSON, nil
	case "":
		return FormatCSV, nil
	default:
		return "", errors.Newf(errors.ErrorTypeValidation,
			"unsupported output format: %s, valid values are: [csv, json, table, arrow, parquet]", name)
	}
}

// Formatter writes a table in one specific format
type Formatter interface {
	// Format writes every row of t
	Format(t *columnar.Table) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Options controls text rendering shared by the formatters
type Options struct {
	// Header writes the column names first (csv and table)
	Header bool
	// Precision fixes the decimal places of numbers; -1 uses the shortest
	// representation that round-trips
	Precision int
	// Columns renders named columns with their own function (csv and table)
	Columns map[string]func(columnar.Value) string
}

// Option configures a formatter
type Option func(*Options)

// WithHeader toggles the header row
func WithHeader(header bool) Option {
	return func(o *Options) { o.Header = header }
}

// WithPrecision fixes the number of decimal places for numbers
func WithPrecision(digits int) Option {
	return func(o *Options) { o.Precision = digits }
}

// WithColumnFormat renders every cell of the named column with fn
func WithColumnFormat(name string, fn func(columnar.Value) string) Option {
	return func(o *Options) {
		if o.Columns == nil {
			o.Columns = make(map[string]func(columnar.Value) string)
		}
		o.Columns[name] = fn
	}
}

func newOptions(opts []Option) Options {
	o := Options{Header: true, Precision: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns a formatter for format writing to w
func New(format Format, w io.Writer, opts ...Option) (Formatter, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVFormatter(w, opts...), nil
	case FormatJSON:
		return NewJSONFormatter(w, opts...), nil
	case FormatTable:
		return NewTableFormatter(w, opts...), nil
	case FormatArrow:
		return NewArrowFormatter(w), nil
	case FormatParquet:
		return NewParquetFormatter(w), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeValidation, "unsupported output format: %s", format)
	}
}

// formatValue renders one cell as text; missing cells are empty
func (o Options) formatValue(v columnar.Value) string {
	if f, ok := v.Float(); ok && o.Precision >= 0 {
		return strconv.FormatFloat(f, 'f', o.Precision, 64)
	}
	return v.String()
}

func (o Options) record(t *columnar.Table, row int, record []string) []string {
	record = record[:0]
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		if fn, ok := o.Columns[col.Name()]; ok {
			record = append(record, fn(col.Value(row)))
			continue
		}
		record = append(record, o.formatValue(col.Value(row)))
	}
	return record
}
