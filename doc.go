// Package bears groups CSV tables by key columns and aggregates every group,
// without a general-purpose dataframe library.
//
// A CSV file is loaded into a typed, immutable columnar.Table. Columns are
// numeric when most of their values parse as numbers; the rest are text.
// Blank fields, and values that do not parse in a numeric column, are missing.
// The grouping engine partitions the rows by key in first-occurrence order and
// the aggregator reduces each group with count, sum, mean, min, max, first or
// last, emitting a new table with one row per group.
//
// # Quick Start
//
//	import (
//	    "github.com/ajitpratap0/bears/pkg/aggregate"
//	    "github.com/ajitpratap0/bears/pkg/csvio"
//	    "github.com/ajitpratap0/bears/pkg/groupby"
//	)
//
//	table, err := csvio.LoadFile("tracts.csv", nil)
//	if err != nil {
//	    return err
//	}
//	result, err := groupby.Aggregate(table, groupby.Config{
//	    Keys: []string{"CBSA09"},
//	    Specs: []aggregate.Spec{
//	        {Column: "POP00", Kind: aggregate.KindSum},
//	        {Column: "POP10", Kind: aggregate.KindMean, As: "avg10"},
//	    },
//	    DropMissingKey: true,
//	})
//
// # Key Packages
//
//	pkg/columnar     - Typed columns, missing values and the immutable Table
//	pkg/groupby      - Grouping engine and the group-by pipeline
//	pkg/aggregate    - Aggregate functions and their registry
//	pkg/csvio        - CSV input with transparent decompression
//	pkg/output       - CSV, JSON lines, text table and Arrow IPC output
//	pkg/census       - CBSA population change report over census tracts
//	pkg/config       - YAML job configuration
//	pkg/errors       - Structured error handling
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus job metrics
//	pkg/observability - OpenTelemetry tracing of job phases
//
// # Command Line
//
//	bears aggregate --input tracts.csv --key CBSA09 --agg POP00:sum --agg POP10:mean
//	bears aggregate --config job.yaml --format table
//	bears census censustract-00-10.csv report.csv
//
// Flags can also be set with BEARS_ environment variables, for example
// BEARS_LOG_LEVEL=debug, or from a .env file in the working directory.
package bears
