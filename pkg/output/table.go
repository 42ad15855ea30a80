package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ajitpratap0/bears/pkg/columnar"
)

// TableFormatter renders tables as aligned text for terminals
type TableFormatter struct {
	writer io.Writer
	opts   Options
}

// NewTableFormatter creates a new text table formatter
func NewTableFormatter(w io.Writer, opts ...Option) *TableFormatter {
	return &TableFormatter{writer: w, opts: newOptions(opts)}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format renders t. Numeric columns are right aligned.
func (f *TableFormatter) Format(t *columnar.Table) error {
	tw := tablewriter.NewWriter(f.writer)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)

	if f.opts.Header {
		tw.SetHeader(t.ColumnNames())
	}

	align := make([]int, t.NumColumns())
	for i := range align {
		align[i] = tablewriter.ALIGN_LEFT
		if t.ColumnAt(i).IsNumeric() {
			align[i] = tablewriter.ALIGN_RIGHT
		}
	}
	tw.SetColumnAlignment(align)

	for row := 0; row < t.RowCount(); row++ {
		tw.Append(f.opts.record(t, row, make([]string, 0, t.NumColumns())))
	}
	tw.Render()
	return nil
}
