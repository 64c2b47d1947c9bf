// Package livetable provides in-memory tables with query-level change
// notification.
//
// # Overview
//
// The package centers around [Table], a generic container holding one flat
// row slice that is replaced wholesale on every mutation. Consumers bind an
// [Observer] to a table with a query function (filter/sort/slice built via
// [Spec]); after each mutation the table fans out a notification and every
// subscribed observer independently recomputes its own query, compares the
// result against the last one it produced and invokes its owner's rerender
// callback only when the projected result actually diverged. A collection
// mutation that is invisible to a given query therefore costs that consumer
// nothing but the recompute.
//
// # Change detection
//
// Whether two rows are "the same" is decided by the table's equality
// [Policy], fixed at creation: whole-row comparison ([Identity]), a single
// named field ([ByField]) or a caller-supplied function ([ByFunc]). The
// policy is resolved once when the table is created and never re-inspected.
//
// # Registry
//
// A [Registry] maps opaque [Handle] tokens to live tables. Handles are
// unique for the life of the process and never reused. Registries are plain
// values so tests can run against isolated instances; [Default] is the
// process-wide one.
//
// # Concurrency
//
// A table is safe for concurrent use: one mutex guards the row slice and the
// subscriber set. Observer callbacks run outside that lock, so a rerender
// callback may query, execute or unsubscribe freely, including unsubscribing
// its own observer mid fan-out.
package livetable
