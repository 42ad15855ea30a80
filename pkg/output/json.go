package output

import (
	"bufio"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// JSONFormatter writes tables as JSON Lines, one object per row with keys in
// column order. Missing cells are null.
type JSONFormatter struct {
	writer io.Writer
	opts   Options
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer, opts ...Option) *JSONFormatter {
	return &JSONFormatter{writer: w, opts: newOptions(opts)}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes t as JSON Lines
func (j *JSONFormatter) Format(t *columnar.Table) error {
	bw := bufio.NewWriter(j.writer)

	names := t.ColumnNames()
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := gojson.Marshal(name)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode column name")
		}
		keys[i] = k
	}

	for row := 0; row < t.RowCount(); row++ {
		_ = bw.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			_, _ = bw.Write(key)
			_ = bw.WriteByte(':')

			v, err := gojson.Marshal(j.value(t.ColumnAt(i).Value(row)))
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode value").
					WithDetail("row", row).
					WithDetail("column", names[i])
			}
			_, _ = bw.Write(v)
		}
		_, _ = bw.WriteString("}\n")
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write JSON")
	}
	return nil
}

func (j *JSONFormatter) value(v columnar.Value) interface{} {
	if f, ok := v.Float(); ok && j.opts.Precision >= 0 {
		return gojson.Number(j.opts.formatValue(columnar.Number(f)))
	}
	return v.Interface()
}
