// Package alloc provides the core allocation engine for thesis-alloc.
//
// # Reading Guide
//
// Start with these files to understand the allocation kernel:
//   - table.go: the in-memory input table and its CSV codec
//   - schema.go: resolving the merit column, identity columns and faculty list
//   - engine.go: merit sort, round partitioning and per-round assignment
//   - tally.go: per-faculty preference counts
//   - pipeline.go: resolve → allocate + tally, the single entry point used by cmd/
//
// # Determinism
//
// Students are ordered by merit descending, then by input row ascending, so two
// runs over the same table always produce the same assignments in the same
// order. Nothing in this package reads the clock or a random source.
//
// # Logging
//
// No function here touches the global logrus logger. Callers pass a
// logrus.FieldLogger; nil selects a discard logger.
//
// Sub-packages hold pure data:
//   - alloc/trace/: per-student decision records and their summary
package alloc
