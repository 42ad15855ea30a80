// Package columnar implements the in-memory tabular data structure that the
// rest of bears is built on: typed columns with explicit missing values, and
// immutable tables assembled from them.
//
// # Columns
//
// A Column holds either numbers (float64) or text. The type is inferred once,
// when the column is built from raw CSV fields:
//
//   - a blank field is missing
//   - if every non-missing field parses as a number, the column is numeric
//   - if more than half of them parse, the column is still numeric and the
//     stragglers are recorded as missing (see Column.Coerced)
//   - otherwise the column is text
//
// Missing positions live in a roaring bitmap next to the values.
//
// # Tables
//
// A Table is an ordered list of uniquely named columns with a common length.
// Tables never change shape after construction; Select and Derive return new
// tables that own copies of their columns.
//
//	table, err := columnar.Load(header, rows)
//	if err != nil {
//		return err // schema error: a row has the wrong field count
//	}
//	pop, err := table.Column("POP10")
//	if err != nil {
//		return err // not-found error
//	}
//	for i := 0; i < pop.Len(); i++ {
//		if v, ok := pop.Float(i); ok {
//			total += v
//		}
//	}
//
// # Values
//
// Value is the cell type shared by columns, group keys and aggregate results.
// It is a comparable struct, so it can be used as a map key, and the missing
// value compares equal to itself.
package columnar
