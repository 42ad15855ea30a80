package groupby

import (
	"github.com/ajitpratap0/bears/pkg/aggregate"
	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/errors"
)

// Config describes one group-by aggregation
type Config struct {
	// Keys are the key column names; usually just the CBSA column
	Keys []string
	// Specs are the aggregates, in output column order
	Specs []aggregate.Spec
	// DropMissingKey excludes rows whose key is missing
	DropMissingKey bool
	// FailOnEmptyGroup turns a missing mean/min/max/first result into an
	// empty_group error instead of a missing cell
	FailOnEmptyGroup bool
	// Registry resolves aggregate kinds; nil uses the global registry
	Registry *aggregate.Registry
	// Verify checks that the groups partition every row before aggregating.
	// It has no effect with DropMissingKey.
	Verify bool
}

// Aggregate groups t by cfg.Keys and reduces every group with cfg.Specs. The
// result has the key columns followed by one column per spec, and one row
// per group in first-occurrence order of the keys in t.
func Aggregate(t *columnar.Table, cfg Config) (*columnar.Table, error) {
	res, err := Run(t, cfg)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// Result is the output of Run
type Result struct {
	Table *columnar.Table
	// Groups are the groups the result rows were built from, in row order
	Groups []*Group
	// DroppedRows counts rows excluded for having a missing key
	DroppedRows int
}

// Run is Aggregate with the intermediate groups exposed
func Run(t *columnar.Table, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	var agg *aggregate.Aggregator
	var err error
	if cfg.Registry != nil {
		agg, err = cfg.Registry.Compile(t, cfg.Specs)
	} else {
		agg, err = aggregate.Compile(t, cfg.Specs)
	}
	if err != nil {
		return nil, err
	}

	groups, err := GroupByColumns(t, cfg.Keys, WithDropMissingKey(cfg.DropMissingKey))
	if err != nil {
		return nil, err
	}
	if cfg.Verify && !cfg.DropMissingKey {
		if err := Verify(groups, t.RowCount()); err != nil {
			return nil, err
		}
	}

	keyValues := make([][]columnar.Value, len(cfg.Keys))
	aggValues := make([][]columnar.Value, len(cfg.Specs))
	kept := 0
	for _, g := range groups {
		rows := g.Rows()
		kept += len(rows)
		vals := agg.Apply(rows)
		for i, v := range vals {
			if cfg.FailOnEmptyGroup && v.IsMissing() {
				spec := cfg.Specs[i]
				return nil, errors.Newf(errors.ErrorTypeEmptyGroup,
					"group %s has no values for %s(%s)", keyString(g.Key), spec.Kind, spec.Column).
					WithDetail("key", keyString(g.Key)).
					WithDetail("column", spec.Column)
			}
			aggValues[i] = append(aggValues[i], v)
		}
		for i, v := range g.Key {
			keyValues[i] = append(keyValues[i], v)
		}
	}

	columns := make([]*columnar.Column, 0, len(cfg.Keys)+len(cfg.Specs))
	for i, name := range cfg.Keys {
		src, _ := t.Column(name)
		columns = append(columns, columnar.ColumnFromValues(name, src.Type(), keyValues[i]))
	}
	for i, spec := range cfg.Specs {
		columns = append(columns, columnar.ColumnFromValues(spec.OutputName(), agg.OutputType(i), aggValues[i]))
	}

	out, err := columnar.New(columns...)
	if err != nil {
		return nil, err
	}
	return &Result{
		Table:       out,
		Groups:      groups,
		DroppedRows: t.RowCount() - kept,
	}, nil
}

func validate(cfg Config) error {
	if len(cfg.Keys) == 0 {
		return errors.New(errors.ErrorTypeValidation, "at least one key column is required")
	}
	seen := make(map[string]bool, len(cfg.Keys)+len(cfg.Specs))
	for _, k := range cfg.Keys {
		if seen[k] {
			return errors.Newf(errors.ErrorTypeSchema, "duplicate output column %q", k)
		}
		seen[k] = true
	}
	for _, s := range cfg.Specs {
		name := s.OutputName()
		if seen[name] {
			return errors.Newf(errors.ErrorTypeSchema,
				"duplicate output column %q, set a distinct name with as", name)
		}
		seen[name] = true
	}
	return nil
}
