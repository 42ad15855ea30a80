package output

import (
	"encoding/csv"
	"io"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
	"github.com/ajitpratap0/bears/pkg/pool"
)

// recordPool recycles row buffers across Format calls
var recordPool = pool.New(
	func() *[]string { s := make([]string, 0, 16); return &s },
	func(s *[]string) { *s = (*s)[:0] },
)

// CSVFormatter writes tables as CSV in column order
type CSVFormatter struct {
	writer io.Writer
	opts   Options
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer, opts ...Option) *CSVFormatter {
	return &CSVFormatter{writer: w, opts: newOptions(opts)}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes t as CSV, with a header row unless disabled
func (c *CSVFormatter) Format(t *columnar.Table) error {
	csvWriter := csv.NewWriter(c.writer)

	if c.opts.Header {
		if err := csvWriter.Write(t.ColumnNames()); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write CSV header")
		}
	}

	buf := recordPool.Get()
	defer recordPool.Put(buf)

	for row := 0; row < t.RowCount(); row++ {
		*buf = c.opts.record(t, row, *buf)
		if err := csvWriter.Write(*buf); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write CSV row")
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush CSV writer")
	}
	return nil
}
