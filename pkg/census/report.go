// Package census builds the population-change report over census tract
// data: per Core Based Statistical Area, its title, tract count, total
// population in 2000 and 2010, and the mean per-tract population change.
//
// Input is a CSV with at least the CBSA09, CBSA_T, POP00 and POP10 columns.
// Tracts without a CBSA code are left out of the report, and rows come out
// ordered by CBSA code.
package census

import (
	"io"
	"strconv"
	"strings"

	"github.com/ajitpratap0/bears/pkg/aggregate"
	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/compression"
	"github.com/ajitpratap0/bears/pkg/csvio"
	"github.com/ajitpratap0/bears/pkg/errors"
	"github.com/ajitpratap0/bears/pkg/groupby"
	"github.com/ajitpratap0/bears/pkg/output"
)

// Input and report column names
const (
	ColCBSA       = "CBSA09"
	ColTitle      = "CBSA_T"
	ColTract      = "GEOID"
	ColPop2000    = "POP00"
	ColPop2010    = "POP10"
	ColChange     = "POP_CHANGE_PERCENT"
	ColTractCount = "TRACTS"
)

// ChangeDigits is the number of decimal places the mean change is rounded to
const ChangeDigits = 2

var required = []string{ColCBSA, ColTitle, ColPop2000, ColPop2010}

// LoadOptions pins the column types of census input. Codes are numeric so
// they sort numerically; GEOID keeps its leading zeros as text.
func LoadOptions() []columnar.LoadOption {
	return []columnar.LoadOption{
		columnar.WithColumnType(ColCBSA, columnar.TypeNumeric),
		columnar.WithColumnType(ColTitle, columnar.TypeText),
		columnar.WithColumnType(ColTract, columnar.TypeText),
		columnar.WithColumnType(ColPop2000, columnar.TypeNumeric),
		columnar.WithColumnType(ColPop2010, columnar.TypeNumeric),
	}
}

// LoadFile reads census tract data from path
func LoadFile(path string, opts ...csvio.Option) (*columnar.Table, error) {
	return csvio.LoadFile(path, opts, LoadOptions()...)
}

// ChangePercent is the population change from p00 to p10 as a percentage
// of p00. A tract with no population in 2000 has a change of 0.
func ChangePercent(p00, p10 float64) float64 {
	if p00 == 0 {
		return 0
	}
	return (p10 - p00) * 100 / p00
}

// WithChange returns t with the POP_CHANGE_PERCENT column added. Tracts
// missing either population are missing a change.
func WithChange(t *columnar.Table) (*columnar.Table, error) {
	for _, name := range required {
		if _, err := t.Column(name); err != nil {
			return nil, err
		}
	}
	return t.Derive(ColChange, columnar.TypeNumeric, func(r columnar.Row) columnar.Value {
		p00, ok00 := r.Float(ColPop2000)
		p10, ok10 := r.Float(ColPop2010)
		if !ok00 || !ok10 {
			return columnar.Missing()
		}
		return columnar.Number(ChangePercent(p00, p10))
	})
}

// Config returns the group-by configuration of the report. The title is the
// last one seen for the CBSA.
func Config() groupby.Config {
	return groupby.Config{
		Keys: []string{ColCBSA},
		Specs: []aggregate.Spec{
			{Column: ColTitle, Kind: aggregate.KindLast},
			{Column: ColCBSA, Kind: aggregate.KindCount, As: ColTractCount},
			{Column: ColPop2000, Kind: aggregate.KindSum},
			{Column: ColPop2010, Kind: aggregate.KindSum},
			{Column: ColChange, Kind: aggregate.KindMean},
		},
		DropMissingKey: true,
	}
}

// Result is a report plus what was left out of it
type Result struct {
	Report *columnar.Table
	// DroppedTracts counts tracts without a CBSA code
	DroppedTracts int
}

// Build computes the report from loaded tract data
func Build(t *columnar.Table) (*Result, error) {
	withChange, err := WithChange(t)
	if err != nil {
		return nil, err
	}

	res, err := groupby.Run(withChange, Config())
	if err != nil {
		return nil, err
	}

	sorted, err := res.Table.SortBy(ColCBSA, false)
	if err != nil {
		return nil, err
	}
	rounded, err := sorted.Map(ColChange, columnar.TypeNumeric, func(v columnar.Value) columnar.Value {
		f, ok := v.Float()
		if !ok {
			return v
		}
		return columnar.Number(Round(f, ChangeDigits))
	})
	if err != nil {
		return nil, err
	}

	return &Result{Report: rounded, DroppedTracts: res.DroppedRows}, nil
}

// Round rounds f to digits decimal places. Halfway cases are decided on the
// exact binary value of f and go to the even digit, so 0.125 becomes 0.12
// and 2.675, stored just below the half, becomes 2.67. Negative zero is
// returned as 0.
func Round(f float64, digits int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', digits, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}

// FormatChange renders a mean change. Whole numbers keep one decimal place
// ("-10.0", "0.0") so the column always reads as a percentage with a
// fraction. Missing changes are empty.
func FormatChange(v columnar.Value) string {
	f, ok := v.Float()
	if !ok {
		return ""
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteOptions are the formatter options of the report: no header and the
// change column rendered by FormatChange
func WriteOptions() []output.Option {
	return []output.Option{
		output.WithHeader(false),
		output.WithColumnFormat(ColChange, FormatChange),
	}
}

// Write writes report as headerless CSV
func Write(w io.Writer, report *columnar.Table) error {
	return output.NewCSVFormatter(w, WriteOptions()...).Format(report)
}

// WriteFile writes report to path as headerless CSV, compressed when path
// ends in a known compression extension
func WriteFile(path string, report *columnar.Table) error {
	comp := &compression.Config{Algorithm: compression.FromPath(path), Level: compression.Default}
	if err := output.WriteFile(path, report, output.FormatCSV, comp, WriteOptions()...); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report")
	}
	return nil
}

// Generate reads tract data from in and writes the report to out. The
// output is compressed when out ends in a known compression extension.
func Generate(in, out string) (*Result, error) {
	t, err := LoadFile(in)
	if err != nil {
		return nil, err
	}
	res, err := Build(t)
	if err != nil {
		return nil, err
	}

	if err := WriteFile(out, res.Report); err != nil {
		return nil, err
	}
	return res, nil
}
