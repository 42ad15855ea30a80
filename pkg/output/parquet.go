package output

import (
	"io"

	"github.com/segmentio/parquet-go"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// ParquetFormatter writes tables as a Parquet file. Numeric columns become
// optional doubles, text columns optional strings; missing cells are null.
type ParquetFormatter struct {
	writer io.Writer
}

// NewParquetFormatter creates a new Parquet formatter
func NewParquetFormatter(w io.Writer) *ParquetFormatter {
	return &ParquetFormatter{writer: w}
}

// SetOutput sets the output writer
func (p *ParquetFormatter) SetOutput(w io.Writer) {
	p.writer = w
}

// ParquetSchema maps a table's columns to a Parquet schema. Parquet orders
// the leaf columns of a group by name, not by table position.
func ParquetSchema(t *columnar.Table) *parquet.Schema {
	group := make(parquet.Group, t.NumColumns())
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		if col.IsNumeric() {
			group[col.Name()] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		} else {
			group[col.Name()] = parquet.Optional(parquet.String())
		}
	}
	return parquet.NewSchema("bears", group)
}

// Format writes t as a Parquet file
func (p *ParquetFormatter) Format(t *columnar.Table) error {
	schema := ParquetSchema(t)

	// leaf index of every table column
	leaf := make(map[string]int, t.NumColumns())
	for i, path := range schema.Columns() {
		leaf[path[0]] = i
	}
	cols := make([]*columnar.Column, len(leaf))
	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		cols[leaf[col.Name()]] = col
	}

	rows := make([]parquet.Row, t.RowCount())
	for r := range rows {
		row := make(parquet.Row, len(cols))
		for i, col := range cols {
			switch {
			case col.IsMissing(r):
				row[i] = parquet.NullValue().Level(0, 0, i)
			case col.IsNumeric():
				f, _ := col.Float(r)
				row[i] = parquet.DoubleValue(f).Level(0, 1, i)
			default:
				row[i] = parquet.ByteArrayValue([]byte(col.String(r))).Level(0, 1, i)
			}
		}
		rows[r] = row
	}

	w := parquet.NewWriter(p.writer, schema)
	if _, err := w.WriteRows(rows); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Parquet rows")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Parquet writer")
	}
	return nil
}
