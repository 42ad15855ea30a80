package aggregate

import (
	"strings"

	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// Spec requests one aggregate over one source column
type Spec struct {
	// Column is the source column name
	Column string `yaml:"column" json:"column"`
	// Kind selects the aggregate function
	Kind Kind `yaml:"kind" json:"kind"`
	// As names the output column; defaults to Column
	As string `yaml:"as,omitempty" json:"as,omitempty"`
}

// OutputName returns the name of the result column
func (s Spec) OutputName() string {
	if s.As != "" {
		return s.As
	}
	return s.Column
}

// ParseSpec parses "column:kind" or "column:kind:as"
func ParseSpec(s string) (Spec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Spec{}, errors.Newf(errors.ErrorTypeValidation,
			"invalid aggregate %q, expected column:kind[:as]", s)
	}
	spec := Spec{Column: parts[0], Kind: normalize(Kind(parts[1]))}
	if len(parts) == 3 {
		spec.As = parts[2]
	}
	return spec, nil
}

// Aggregator is a set of specs bound to the columns of one table
type Aggregator struct {
	specs   []Spec
	columns []*columnar.Column
	funcs   []Func
	types   []columnar.Type
}

// Compile resolves specs against t using the global registry. It fails with
// a not-found error for unknown columns and a validation error for unknown
// kinds or numeric aggregates over text columns.
func Compile(t *columnar.Table, specs []Spec) (*Aggregator, error) {
	return globalRegistry.Compile(t, specs)
}

// Compile resolves specs against t using this registry
func (r *Registry) Compile(t *columnar.Table, specs []Spec) (*Aggregator, error) {
	a := &Aggregator{
		specs:   specs,
		columns: make([]*columnar.Column, len(specs)),
		funcs:   make([]Func, len(specs)),
		types:   make([]columnar.Type, len(specs)),
	}
	for i, spec := range specs {
		col, err := t.Column(spec.Column)
		if err != nil {
			return nil, err
		}
		e, err := r.lookup(spec.Kind)
		if err != nil {
			return nil, err
		}
		if e.numeric && !col.IsNumeric() {
			return nil, errors.Newf(errors.ErrorTypeValidation,
				"column data must be of numeric type for %s, but %s is %s",
				spec.Kind, spec.Column, col.Type()).
				WithDetail("column", spec.Column).
				WithDetail("kind", string(spec.Kind))
		}
		a.columns[i] = col
		a.funcs[i] = e.fn
		a.types[i] = columnar.TypeNumeric
		if e.sourceTyped {
			a.types[i] = col.Type()
		}
	}
	return a, nil
}

// Specs returns the bound specs
func (a *Aggregator) Specs() []Spec { return a.specs }

// Apply computes one value per spec over the given rows
func (a *Aggregator) Apply(rows []int) []columnar.Value {
	out := make([]columnar.Value, len(a.funcs))
	for i, fn := range a.funcs {
		out[i] = fn(a.columns[i], rows)
	}
	return out
}

// OutputType returns the column type of spec i's results
func (a *Aggregator) OutputType(i int) columnar.Type { return a.types[i] }

// Apply computes each spec over rows of t in one call
func Apply(t *columnar.Table, rows []int, specs []Spec) ([]columnar.Value, error) {
	a, err := Compile(t, specs)
	if err != nil {
		return nil, err
	}
	return a.Apply(rows), nil
}
