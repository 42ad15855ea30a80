package aggregate

import (
	"github.com/ajitpratap0/bears/pkg/columnar"
)

// Func reduces the values of one column over a group's rows to a single
// value. Implementations must be pure.
type Func func(col *columnar.Column, rows []int) columnar.Value

// Count returns the number of rows in the group, missing values included
func Count(_ *columnar.Column, rows []int) columnar.Value {
	return columnar.Number(float64(len(rows)))
}

// Sum adds the non-missing values. A group without any sums to 0.
func Sum(col *columnar.Column, rows []int) columnar.Value {
	total := 0.0
	for _, r := range rows {
		if v, ok := col.Float(r); ok {
			total += v
		}
	}
	return columnar.Number(total)
}

// Mean averages the non-missing values; missing when there are none
func Mean(col *columnar.Column, rows []int) columnar.Value {
	total, n := 0.0, 0
	for _, r := range rows {
		if v, ok := col.Float(r); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return columnar.Missing()
	}
	return columnar.Number(total / float64(n))
}

// Min returns the smallest non-missing value; missing when there are none
func Min(col *columnar.Column, rows []int) columnar.Value {
	return extreme(col, rows, func(a, b float64) bool { return a < b })
}

// Max returns the largest non-missing value; missing when there are none
func Max(col *columnar.Column, rows []int) columnar.Value {
	return extreme(col, rows, func(a, b float64) bool { return a > b })
}

func extreme(col *columnar.Column, rows []int, better func(a, b float64) bool) columnar.Value {
	var best float64
	found := false
	for _, r := range rows {
		v, ok := col.Float(r)
		if !ok {
			continue
		}
		if !found || better(v, best) {
			best = v
			found = true
		}
	}
	if !found {
		return columnar.Missing()
	}
	return columnar.Number(best)
}

// First returns the first non-missing value in row order, of either type
func First(col *columnar.Column, rows []int) columnar.Value {
	for _, r := range rows {
		if !col.IsMissing(r) {
			return col.Value(r)
		}
	}
	return columnar.Missing()
}

// Last returns the last non-missing value in row order, of either type
func Last(col *columnar.Column, rows []int) columnar.Value {
	for i := len(rows) - 1; i >= 0; i-- {
		if !col.IsMissing(rows[i]) {
			return col.Value(rows[i])
		}
	}
	return columnar.Missing()
}
