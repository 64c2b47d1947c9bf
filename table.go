// Owns one table's row slice, applies mutations and fans out notifications.

package livetable

import (
	"slices"
	"sync"
)

// Table holds the current row slice for one in-memory table, the equality
// policy fixed at creation and the set of subscribed observers.
//
// State is replaced wholesale on every mutation, never patched in place.
// The table itself never deduplicates mutations: replacing state with an
// identical slice still notifies every subscriber, because only an
// observer's own diff can tell whether its projected result changed.
type Table[T any] struct {
	mu   sync.Mutex
	rows []T
	eq   Equality[T]
	subs []*Observer[T]
}

// New creates a standalone table with the given equality policy.
//
// Tables are usually created through a [Registry]; New exists so tests and
// embedders can run without process-wide state.
func New[T any](p Policy[T]) (*Table[T], error) {
	eq, err := p.compile()
	if err != nil {
		return nil, err
	}
	return &Table[T]{eq: eq}, nil
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Replace installs rows as the new current state and notifies every
// subscribed observer.
func (t *Table[T]) Replace(rows []T) {
	t.mu.Lock()
	t.rows = rows
	subs := slices.Clone(t.subs)
	t.mu.Unlock()
	for _, o := range subs {
		o.notify(t.eq)
	}
}

// Modify applies fn to the current state and installs its result, then
// notifies every subscribed observer. fn must treat its argument as
// read-only and return the full new state.
func (t *Table[T]) Modify(fn func([]T) []T) {
	t.mu.Lock()
	t.rows = fn(t.rows)
	subs := slices.Clone(t.subs)
	t.mu.Unlock()
	for _, o := range subs {
		o.notify(t.eq)
	}
}

// Run executes q against the current state. q must not mutate its input;
// Run is safe to call concurrently, including during a notification pass.
func (t *Table[T]) Run(q Query[T]) []T {
	t.mu.Lock()
	rows := t.rows
	t.mu.Unlock()
	return q(rows)
}

// subscribe adds o to the notification fan-out. Adding an observer twice is
// a no-op.
func (t *Table[T]) subscribe(o *Observer[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !slices.Contains(t.subs, o) {
		t.subs = append(t.subs, o)
	}
}

// unsubscribe removes o. Removing a non-member is a no-op. The fan-out loop
// iterates a snapshot, so removal during a pass never skips another member.
func (t *Table[T]) unsubscribe(o *Observer[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := slices.Index(t.subs, o); i >= 0 {
		t.subs = slices.Delete(slices.Clone(t.subs), i, i+1)
	}
}
