package groupby

import (
	"math"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// Group is the set of rows sharing one key
type Group struct {
	// Key holds one value per key column
	Key  []columnar.Value
	rows *roaring.Bitmap
}

// Rows returns the group's row indices in ascending order, which is the
// order the rows were seen in
func (g *Group) Rows() []int {
	out := make([]int, 0, g.rows.GetCardinality())
	it := g.rows.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Len returns the number of rows in the group
func (g *Group) Len() int { return int(g.rows.GetCardinality()) }

// HasMissingKey reports whether any key component is missing
func (g *Group) HasMissingKey() bool {
	for _, v := range g.Key {
		if v.IsMissing() {
			return true
		}
	}
	return false
}

// Option configures grouping
type Option func(*options)

type options struct {
	dropMissingKey bool
}

// WithDropMissingKey excludes rows whose key is missing instead of
// collecting them in their own group
func WithDropMissingKey(drop bool) Option {
	return func(o *options) {
		o.dropMissingKey = drop
	}
}

// GroupBy partitions t's rows by the value of one key column
func GroupBy(t *columnar.Table, key string, opts ...Option) ([]*Group, error) {
	return GroupByColumns(t, []string{key}, opts...)
}

// GroupByColumns partitions t's rows by the tuple of values in the key
// columns. Groups come back in the order their key first occurs. Rows with a
// missing key component share one group per distinct tuple unless
// WithDropMissingKey is set.
func GroupByColumns(t *columnar.Table, keys []string, opts ...Option) ([]*Group, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if len(keys) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "at least one key column is required")
	}
	cols := make([]*columnar.Column, len(keys))
	for i, name := range keys {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	var groups []*Group
	index := make(map[string]*Group)
	var sb strings.Builder

	for row := 0; row < t.RowCount(); row++ {
		sb.Reset()
		missing := false
		for _, col := range cols {
			v := col.Value(row)
			missing = missing || v.IsMissing()
			writeKey(&sb, v)
		}
		if missing && o.dropMissingKey {
			continue
		}

		k := sb.String()
		g, ok := index[k]
		if !ok {
			g = &Group{Key: make([]columnar.Value, len(cols)), rows: roaring.New()}
			for i, col := range cols {
				g.Key[i] = col.Value(row)
			}
			index[k] = g
			groups = append(groups, g)
		}
		g.rows.Add(uint32(row))
	}

	return groups, nil
}

// writeKey appends an unambiguous encoding of v. Text is length-prefixed so
// no separator inside a value can collide with the next component.
func writeKey(sb *strings.Builder, v columnar.Value) {
	if v.IsMissing() {
		sb.WriteString("m;")
		return
	}
	if f, ok := v.Float(); ok {
		if f == 0 {
			f = 0 // fold -0
		}
		sb.WriteString("n")
		sb.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
		sb.WriteString(";")
		return
	}
	sb.WriteString("t")
	sb.WriteString(strconv.Itoa(len(v.Str)))
	sb.WriteString(":")
	sb.WriteString(v.Str)
}

// Verify checks that groups partition rowCount rows exactly: no row appears
// in two groups and every row appears in one
func Verify(groups []*Group, rowCount int) error {
	seen := roaring.New()
	for _, g := range groups {
		if seen.Intersects(g.rows) {
			return errors.New(errors.ErrorTypeInternal, "groups overlap").
				WithDetail("key", keyString(g.Key))
		}
		seen.Or(g.rows)
	}
	if int(seen.GetCardinality()) != rowCount {
		return errors.Newf(errors.ErrorTypeInternal,
			"groups cover %d of %d rows", seen.GetCardinality(), rowCount)
	}
	if rowCount > 0 && int(seen.Maximum()) != rowCount-1 {
		return errors.Newf(errors.ErrorTypeInternal, "groups reference row %d beyond %d rows",
			seen.Maximum(), rowCount)
	}
	return nil
}

func keyString(key []columnar.Value) string {
	parts := make([]string, len(key))
	for i, v := range key {
		if v.IsMissing() {
			parts[i] = "<missing>"
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
