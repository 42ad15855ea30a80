package output

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// ArrowFormatter writes tables as an Arrow IPC file with one record batch.
// Numeric columns become float64, text columns utf8; missing cells are null.
type ArrowFormatter struct {
	writer io.Writer
	pool   memory.Allocator
}

// NewArrowFormatter creates a new Arrow IPC formatter
func NewArrowFormatter(w io.Writer) *ArrowFormatter {
	return &ArrowFormatter{writer: w, pool: memory.NewGoAllocator()}
}

// SetOutput sets the output writer
func (a *ArrowFormatter) SetOutput(w io.Writer) {
	a.writer = w
}

// Schema maps a table's columns to an Arrow schema
func Schema(t *columnar.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.NumColumns())
	for i := range fields {
		col := t.ColumnAt(i)
		var dt arrow.DataType = arrow.BinaryTypes.String
		if col.IsNumeric() {
			dt = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: col.Name(), Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// Format writes t as an Arrow IPC file
func (a *ArrowFormatter) Format(t *columnar.Table) error {
	schema := Schema(t)

	builder := array.NewRecordBuilder(a.pool, schema)
	defer builder.Release()

	for i := 0; i < t.NumColumns(); i++ {
		col := t.ColumnAt(i)
		switch b := builder.Field(i).(type) {
		case *array.Float64Builder:
			for row := 0; row < col.Len(); row++ {
				if f, ok := col.Float(row); ok {
					b.Append(f)
				} else {
					b.AppendNull()
				}
			}
		case *array.StringBuilder:
			for row := 0; row < col.Len(); row++ {
				if col.IsMissing(row) {
					b.AppendNull()
				} else {
					b.Append(col.String(row))
				}
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	fw, err := ipc.NewFileWriter(a.writer, ipc.WithSchema(schema), ipc.WithAllocator(a.pool))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Arrow writer")
	}
	if err := fw.Write(record); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write record batch")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Arrow writer")
	}
	return nil
}
