// Process-wide mapping from opaque handles to live tables.

package livetable

import (
	"sync"

	"github.com/maruel/ksid"
)

// Handle is the opaque identity token referencing a table in a [Registry].
// Handles compare by identity, carry no behavior and are never reused: two
// live tables always hold distinct handles.
type Handle ksid.ID

// String returns the handle's fixed-width sortable encoding.
func (h Handle) String() string {
	return ksid.ID(h).String()
}

// IsZero returns true for the zero handle, which never references a table.
func (h Handle) IsZero() bool {
	return ksid.ID(h).IsZero()
}

// Registry maps handles to live tables. Entries are added by [Create] and
// removed by [Registry.Delete]; [Registry.Clear] drops everything, e.g. for
// test teardown. The zero Registry is not usable; call [NewRegistry].
type Registry struct {
	mu     sync.Mutex
	tables map[Handle]any
}

// NewRegistry returns an empty registry. Registries are independent; tests
// that need isolation construct their own instead of using [Default].
func NewRegistry() *Registry {
	return &Registry{tables: map[Handle]any{}}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry. It starts empty at process
// startup.
func Default() *Registry {
	return defaultRegistry
}

// Create builds a table with the given equality policy, registers it under a
// fresh handle and returns both. On a policy error no table is created and
// nothing is registered.
func Create[T any](r *Registry, p Policy[T]) (Handle, *Table[T], error) {
	t, err := New(p)
	if err != nil {
		var zero Handle
		return zero, nil, err
	}
	h := Handle(ksid.NewID())
	r.mu.Lock()
	r.tables[h] = t
	r.mu.Unlock()
	return h, t, nil
}

// Lookup resolves a handle to its table. Looking up an unknown or disposed
// handle, or one created with a different row type, is a caller bug: Lookup
// returns nil and the design deliberately provides no recoverable error
// path for it.
func Lookup[T any](r *Registry, h Handle) *Table[T] {
	r.mu.Lock()
	v := r.tables[h]
	r.mu.Unlock()
	t, _ := v.(*Table[T])
	return t
}

// Delete disposes the handle's registry entry. The table itself keeps
// working for anyone still holding a direct reference; whether that is
// meaningful is the creator's call. Deleting an unknown handle is a no-op.
func (r *Registry) Delete(h Handle) {
	r.mu.Lock()
	delete(r.tables, h)
	r.mu.Unlock()
}

// Clear drops every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.tables = map[Handle]any{}
	r.mu.Unlock()
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}
