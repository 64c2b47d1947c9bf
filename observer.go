// Binds one consumer's query to a table and decides when a redraw is due.

package livetable

import "sync"

// Observer binds a query to a table on behalf of one consumer. It remembers
// the last result the query produced; on each table notification it re-runs
// the currently remembered query, compares the fresh result element-wise
// under the table's equality policy and invokes the owner's rerender
// callback only on divergence.
//
// Binding is two-phase: [Bind] has no side effects, the owner calls
// [Observer.Subscribe] on attach and [Observer.Unsubscribe] on detach. Any
// host lifecycle (UI framework mount/unmount, actor start/stop, an explicit
// scope guard) can drive those two calls.
type Observer[T any] struct {
	table    *Table[T]
	rerender func()

	mu      sync.Mutex
	query   Query[T]
	last    []T
	hasLast bool
}

// Bind creates an observer for t. rerender is invoked whenever a passive
// notification finds that the query result changed. The query starts as
// [All] until the first [Observer.Execute] call.
func Bind[T any](t *Table[T], rerender func()) *Observer[T] {
	return &Observer[T]{table: t, rerender: rerender, query: All[T]()}
}

// Execute replaces the remembered query, runs it against the table's current
// state, stores the result for future diffing and returns it.
//
// The remembered query is also the one passive notifications re-run, so a
// consumer can change filter parameters between redraws without
// resubscribing: the next notification uses whatever query was set last.
func (o *Observer[T]) Execute(q Query[T]) []T {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.query = q
	o.last = o.table.Run(q)
	o.hasLast = true
	return o.last
}

// notify is invoked by the table during its notification fan-out. The last
// result is updated unconditionally so the next diff runs against the
// freshest computed value, not a stale on-demand read.
func (o *Observer[T]) notify(eq Equality[T]) {
	o.mu.Lock()
	next := o.table.Run(o.query)
	changed := !o.hasLast || !equalResults(o.last, next, eq)
	o.last = next
	o.hasLast = true
	o.mu.Unlock()
	if changed && o.rerender != nil {
		o.rerender()
	}
}

// Subscribe attaches the observer to its table's notification fan-out.
// Subscribing twice is a no-op.
func (o *Observer[T]) Subscribe() {
	o.table.subscribe(o)
}

// Unsubscribe detaches the observer. Detaching an unsubscribed observer is
// a no-op, and calling Unsubscribe from inside the rerender callback is
// safe.
func (o *Observer[T]) Unsubscribe() {
	o.table.unsubscribe(o)
}

// equalResults compares two result slices element-wise in order, length
// first, short-circuiting on the first mismatch.
func equalResults[T any](prev, next []T, eq Equality[T]) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !eq(prev[i], next[i]) {
			return false
		}
	}
	return true
}
