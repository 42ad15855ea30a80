package columnar

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/bears/pkg/errors"
)

// Table is an ordered collection of named columns sharing one row count.
// Tables are immutable: Select, Derive and the group-by pipeline all return
// new tables that own deep copies of their columns.
type Table struct {
	columns  []*Column
	index    map[string]int
	rowCount int
}

// LoadOption configures Load
type LoadOption func(*loadOptions)

type loadOptions struct {
	defaults []ColumnOption
	perName  map[string][]ColumnOption
}

// WithColumnType pins the type of one column instead of inferring it
func WithColumnType(name string, t Type) LoadOption {
	return func(o *loadOptions) {
		o.perName[name] = append(o.perName[name], WithType(t))
	}
}

// WithInference applies column options to every column
func WithInference(opts ...ColumnOption) LoadOption {
	return func(o *loadOptions) {
		o.defaults = append(o.defaults, opts...)
	}
}

// Load builds a table from a header and raw rows, inferring each column's
// type. Every row must have exactly as many fields as the header; otherwise
// a schema error is returned naming the 1-based data row.
func Load(header []string, rows [][]string, opts ...LoadOption) (*Table, error) {
	o := loadOptions{perName: make(map[string][]ColumnOption)}
	for _, opt := range opts {
		opt(&o)
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, errors.Newf(errors.ErrorTypeSchema,
				"mismatch found in column count: %d and row values count: %d, row: %d",
				len(header), len(row), i+1).
				WithDetail("row", i+1).
				WithDetail("expected", len(header)).
				WithDetail("actual", len(row))
		}
	}

	columns := make([]*Column, len(header))
	raw := make([]string, len(rows))
	for c, name := range header {
		for r, row := range rows {
			raw[r] = row[c]
		}
		colOpts := append(append([]ColumnOption(nil), o.defaults...), o.perName[name]...)
		columns[c] = NewColumn(name, raw, colOpts...)
	}

	t, err := newTable(columns)
	if err != nil {
		return nil, err
	}
	t.rowCount = len(rows)
	return t, nil
}

// New assembles a table from columns, which must have equal lengths and
// unique names. The table takes copies of the columns.
func New(columns ...*Column) (*Table, error) {
	copies := make([]*Column, len(columns))
	for i, c := range columns {
		copies[i] = c.clone()
	}
	return newTable(copies)
}

func newTable(columns []*Column) (*Table, error) {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c.name]; dup {
			return nil, errors.Newf(errors.ErrorTypeSchema, "duplicate column name %q", c.name).
				WithDetail("column", c.name)
		}
		t.index[c.name] = i
		if i == 0 {
			t.rowCount = c.Len()
			continue
		}
		if c.Len() != t.rowCount {
			return nil, errors.Newf(errors.ErrorTypeSchema,
				"column %q has %d rows, expected %d", c.name, c.Len(), t.rowCount).
				WithDetail("column", c.name)
		}
	}
	return t, nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int { return t.rowCount }

// NumColumns returns the number of columns
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether a column with the given name exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or a not-found error listing the valid
// names
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound,
			"invalid column name: %s, valid values are: [%s]",
			name, strings.Join(t.ColumnNames(), ", ")).
			WithDetail("column", name)
	}
	return t.columns[i], nil
}

// ColumnAt returns the column at position i
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

// Select returns a new table holding copies of the named columns in the
// given order, preserving row order
func (t *Table) Select(names ...string) (*Table, error) {
	columns := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, c.clone())
	}
	out, err := newTable(columns)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		out.rowCount = t.rowCount
	}
	return out, nil
}

// Derive returns a new table with an extra column computed row by row. If a
// column of that name exists it is replaced in place. Values returned by fn
// whose type differs from typ are stored as missing.
func (t *Table) Derive(name string, typ Type, fn func(r Row) Value) (*Table, error) {
	values := make([]Value, t.rowCount)
	for i := range values {
		values[i] = fn(Row{table: t, index: i})
	}
	derived := ColumnFromValues(name, typ, values)

	columns := make([]*Column, 0, len(t.columns)+1)
	replaced := false
	for _, c := range t.columns {
		if c.name == name {
			columns = append(columns, derived)
			replaced = true
			continue
		}
		columns = append(columns, c.clone())
	}
	if !replaced {
		columns = append(columns, derived)
	}
	return newTable(columns)
}

// Map returns a new table with the named column replaced by fn applied to
// each of its cells. Missing cells are passed to fn like any other.
func (t *Table) Map(name string, typ Type, fn func(v Value) Value) (*Table, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return t.Derive(name, typ, func(r Row) Value {
		return fn(c.Value(r.index))
	})
}

// Row returns the cells of row i keyed by column name
func (t *Table) Row(i int) map[string]Value {
	row := make(map[string]Value, len(t.columns))
	for _, c := range t.columns {
		row[c.name] = c.Value(i)
	}
	return row
}

// Equal reports whether both tables have the same columns, in the same
// order, with the same cells
func (t *Table) Equal(o *Table) bool {
	if t.rowCount != o.rowCount || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if !t.columns[i].Equal(o.columns[i]) {
			return false
		}
	}
	return true
}

// Row is a read-only cursor over one row of a table, handed to Derive
type Row struct {
	table *Table
	index int
}

// Index returns the row position
func (r Row) Index() int { return r.index }

// Value returns the named cell; unknown columns read as missing
func (r Row) Value(column string) Value {
	i, ok := r.table.index[column]
	if !ok {
		return Missing()
	}
	return r.table.columns[i].Value(r.index)
}

// Float returns the named cell as a number
func (r Row) Float(column string) (float64, bool) {
	return r.Value(column).Float()
}

// String returns the named cell formatted as text
func (r Row) String(column string) string {
	return r.Value(column).String()
}

// IsMissing reports whether the named cell is missing
func (r Row) IsMissing(column string) bool {
	return r.Value(column).IsMissing()
}

// Take returns a new table holding the given rows in the given order.
// Indices may repeat; an index outside the table is a validation error.
func (t *Table) Take(rows []int) (*Table, error) {
	for _, r := range rows {
		if r < 0 || r >= t.rowCount {
			return nil, errors.Newf(errors.ErrorTypeValidation,
				"row %d out of range for %d rows", r, t.rowCount)
		}
	}
	columns := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]Value, len(rows))
		for j, r := range rows {
			values[j] = c.Value(r)
		}
		columns[i] = ColumnFromValues(c.name, c.typ, values)
	}
	out, err := newTable(columns)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		out.rowCount = len(rows)
	}
	return out, nil
}

// SortBy returns a new table with rows ordered by the named column. The sort
// is stable and missing cells go last in either direction.
func (t *Table) SortBy(name string, descending bool) (*Table, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	rows := make([]int, t.rowCount)
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := c.Value(rows[i]), c.Value(rows[j])
		if a.IsMissing() || b.IsMissing() {
			return !a.IsMissing() && b.IsMissing()
		}
		if descending {
			return Compare(a, b) > 0
		}
		return Compare(a, b) < 0
	})
	return t.Take(rows)
}
