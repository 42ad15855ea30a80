// Package groupby partitions a table's rows by key and reduces each
// partition with the functions from package aggregate.
//
// Grouping scans rows in order and emits groups in the order their key is
// first seen, so results are deterministic for a given input order. Rows
// with a missing key are kept in one dedicated group unless the caller asks
// to drop them.
//
//	result, err := groupby.Aggregate(table, groupby.Config{
//		Keys: []string{"CBSA09"},
//		Specs: []aggregate.Spec{
//			{Column: "GEOID", Kind: aggregate.KindCount, As: "tracts"},
//			{Column: "POP00", Kind: aggregate.KindSum},
//			{Column: "POP10", Kind: aggregate.KindSum},
//		},
//		DropMissingKey: true,
//	})
package groupby
