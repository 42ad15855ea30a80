package columnar

import (
	"math"
	"strconv"
	"strings"
)

// Type represents the inferred data type of a column
type Type int

const (
	// TypeText holds raw string values
	TypeText Type = iota
	// TypeNumeric holds 64-bit floating point values
	TypeNumeric
)

// String returns the lower-case name of the type
func (t Type) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a single cell. It is comparable, so it can be used directly as a
// map key; every missing value is the zero Value and therefore equal to
// every other missing value.
type Value struct {
	Type  Type
	Num   float64
	Str   string
	Valid bool
}

// Missing returns the distinguished missing value
func Missing() Value { return Value{} }

// Number returns a numeric value. NaN is not a value and maps to Missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Type: TypeNumeric, Num: f, Valid: true}
}

// Text returns a text value
func Text(s string) Value {
	return Value{Type: TypeText, Str: s, Valid: true}
}

// IsMissing reports whether v is the missing value
func (v Value) IsMissing() bool { return !v.Valid }

// Float returns the numeric payload and whether v is a non-missing number
func (v Value) Float() (float64, bool) {
	if !v.Valid || v.Type != TypeNumeric {
		return 0, false
	}
	return v.Num, true
}

// String formats v for output. Missing values format as the empty string and
// numbers use the shortest representation that round-trips.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	if v.Type == TypeNumeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Interface returns v as a plain Go value: nil, float64 or string
func (v Value) Interface() interface{} {
	if !v.Valid {
		return nil
	}
	if v.Type == TypeNumeric {
		return v.Num
	}
	return v.Str
}

// Compare orders two values: missing before everything, numbers before text,
// numbers by magnitude and text lexically. It returns -1, 0 or 1.
func Compare(a, b Value) int {
	switch {
	case a.IsMissing() && b.IsMissing():
		return 0
	case a.IsMissing():
		return -1
	case b.IsMissing():
		return 1
	case a.Type != b.Type:
		if a.Type == TypeNumeric {
			return -1
		}
		return 1
	case a.Type == TypeNumeric:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.Str, b.Str)
}

// isBlank reports whether a raw field counts as absent
func isBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// parseNumber parses a raw field as a finite float64
func parseNumber(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
