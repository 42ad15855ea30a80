// Package aggregate provides the reducing functions applied to each group
// by the group-by pipeline: count, sum, mean, min, max,
// first and last.
//
// Functions are looked up by Kind in a Registry, so callers pick them by
// configuration and new ones can be plugged in with Register. Value
// aggregates skip missing cells. Sum of a group without values is 0; mean,
// min, max, first and last return the missing value instead of failing, so
// one sparse group never aborts a whole aggregation.
package aggregate
