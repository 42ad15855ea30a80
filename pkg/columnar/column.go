package columnar

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// defaultNumericThreshold is the share of non-missing values that must parse
// as numbers for a column to be inferred numeric. Exceeding it strictly is a
// majority; values that then fail to parse become missing.
const defaultNumericThreshold = 0.5

// Column stores one column's values with a single type fixed at construction.
// Missing positions are tracked in a bitmap; the backing slot holds the zero
// value. A Column is never modified after it is built.
type Column struct {
	name    string
	typ     Type
	nums    []float64
	strs    []string
	missing *roaring.Bitmap
	coerced int
}

// ColumnOption configures type inference in NewColumn
type ColumnOption func(*columnOptions)

type columnOptions struct {
	pinned    bool
	typ       Type
	threshold float64
}

// WithType skips inference and forces the column type. Forcing TypeNumeric
// still turns unparsable fields into missing values.
func WithType(t Type) ColumnOption {
	return func(o *columnOptions) {
		o.pinned = true
		o.typ = t
	}
}

// WithNumericThreshold overrides the share of parsable values above which a
// column is inferred numeric. 1 requires every non-missing value to parse.
func WithNumericThreshold(ratio float64) ColumnOption {
	return func(o *columnOptions) {
		o.threshold = ratio
	}
}

// NewColumn builds a column from raw text fields, inferring its type once.
// A field that is blank after trimming is missing. If every non-missing field
// parses as a number, or more than the threshold share of them does, the
// column is numeric and the fields that do not parse are recorded as
// missing; otherwise the column is text.
func NewColumn(name string, raw []string, opts ...ColumnOption) *Column {
	o := columnOptions{threshold: defaultNumericThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	typ := o.typ
	if !o.pinned {
		typ = inferType(raw, o.threshold)
	}

	col := &Column{name: name, typ: typ, missing: roaring.New()}
	switch typ {
	case TypeNumeric:
		col.nums = make([]float64, len(raw))
		for i, field := range raw {
			if isBlank(field) {
				col.missing.Add(uint32(i))
				continue
			}
			f, ok := parseNumber(field)
			if !ok {
				col.missing.Add(uint32(i))
				col.coerced++
				continue
			}
			col.nums[i] = f
		}
	default:
		col.strs = make([]string, len(raw))
		for i, field := range raw {
			if isBlank(field) {
				col.missing.Add(uint32(i))
				continue
			}
			col.strs[i] = field
		}
	}
	return col
}

// inferType samples every field to determine the column type
func inferType(raw []string, threshold float64) Type {
	present, parsed := 0, 0
	for _, field := range raw {
		if isBlank(field) {
			continue
		}
		present++
		if _, ok := parseNumber(field); ok {
			parsed++
		}
	}
	if present == 0 {
		return TypeText
	}
	if parsed == present || float64(parsed)/float64(present) > threshold {
		return TypeNumeric
	}
	return TypeText
}

// NewNumericColumn builds a numeric column from values. Rows listed in
// missing, and NaN entries, are missing.
func NewNumericColumn(name string, values []float64, missing ...int) *Column {
	col := &Column{
		name:    name,
		typ:     TypeNumeric,
		nums:    append([]float64(nil), values...),
		missing: roaring.New(),
	}
	for _, i := range missing {
		col.missing.Add(uint32(i))
		col.nums[i] = 0
	}
	for i, f := range col.nums {
		if f != f {
			col.missing.Add(uint32(i))
			col.nums[i] = 0
		}
	}
	return col
}

// NewTextColumn builds a text column from values. Rows listed in missing are
// missing.
func NewTextColumn(name string, values []string, missing ...int) *Column {
	col := &Column{
		name:    name,
		typ:     TypeText,
		strs:    append([]string(nil), values...),
		missing: roaring.New(),
	}
	for _, i := range missing {
		col.missing.Add(uint32(i))
		col.strs[i] = ""
	}
	return col
}

// ColumnFromValues builds a column of the given type from cells. Cells whose
// type differs from typ are recorded as missing.
func ColumnFromValues(name string, typ Type, values []Value) *Column {
	col := &Column{name: name, typ: typ, missing: roaring.New()}
	if typ == TypeNumeric {
		col.nums = make([]float64, len(values))
	} else {
		col.strs = make([]string, len(values))
	}
	for i, v := range values {
		if v.IsMissing() || v.Type != typ {
			col.missing.Add(uint32(i))
			continue
		}
		if typ == TypeNumeric {
			col.nums[i] = v.Num
		} else {
			col.strs[i] = v.Str
		}
	}
	return col
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Type returns the inferred column type
func (c *Column) Type() Type { return c.typ }

// IsNumeric reports whether the column holds numbers
func (c *Column) IsNumeric() bool { return c.typ == TypeNumeric }

// Len returns the number of rows
func (c *Column) Len() int {
	if c.typ == TypeNumeric {
		return len(c.nums)
	}
	return len(c.strs)
}

// IsMissing reports whether row i holds the missing value
func (c *Column) IsMissing(i int) bool {
	return c.missing.Contains(uint32(i))
}

// MissingCount returns the number of missing rows
func (c *Column) MissingCount() int {
	return int(c.missing.GetCardinality())
}

// Coerced returns how many non-blank fields failed to parse and were
// recorded as missing during inference
func (c *Column) Coerced() int { return c.coerced }

// Value returns the cell at row i
func (c *Column) Value(i int) Value {
	if c.IsMissing(i) {
		return Missing()
	}
	if c.typ == TypeNumeric {
		return Value{Type: TypeNumeric, Num: c.nums[i], Valid: true}
	}
	return Value{Type: TypeText, Str: c.strs[i], Valid: true}
}

// Float returns the number at row i; ok is false for missing rows and text
// columns
func (c *Column) Float(i int) (float64, bool) {
	if c.typ != TypeNumeric || c.IsMissing(i) {
		return 0, false
	}
	return c.nums[i], true
}

// String returns row i formatted as text, empty for missing
func (c *Column) String(i int) string {
	return c.Value(i).String()
}

// Values returns a copy of all cells in row order
func (c *Column) Values() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Rename returns a copy of the column under a new name
func (c *Column) Rename(name string) *Column {
	cp := c.clone()
	cp.name = name
	return cp
}

// Equal reports whether both columns have the same name, type and cells
func (c *Column) Equal(o *Column) bool {
	if c.name != o.name || c.typ != o.typ || c.Len() != o.Len() {
		return false
	}
	if !c.missing.Equals(o.missing) {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if c.Value(i) != o.Value(i) {
			return false
		}
	}
	return true
}

// clone deep copies the column so derived tables never share storage
func (c *Column) clone() *Column {
	return &Column{
		name:    c.name,
		typ:     c.typ,
		nums:    append([]float64(nil), c.nums...),
		strs:    append([]string(nil), c.strs...),
		missing: c.missing.Clone(),
		coerced: c.coerced,
	}
}
