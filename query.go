// Query construction: filter, stable sort and offset/limit slicing.

package livetable

import (
	"fmt"
	"slices"
)

// Query projects the full row slice to a derived, read-only subsequence.
// Queries must be pure: no mutation of the input, no side effects, identical
// results for identical input. The diffing contract depends on it.
type Query[T any] func([]T) []T

// Predicate reports whether a row should be kept.
type Predicate[T any] func(T) bool

// Spec describes a filter/sort/slice query. The zero value selects every
// row.
type Spec[T any] struct {
	// Where keeps matching rows in their original relative order. Nil keeps
	// everything.
	Where Predicate[T]
	// Order sorts ascending by the comparator's sign; the sort is stable so
	// ties preserve pre-sort order. Nil skips sorting.
	Order func(a, b T) int
	// Offset skips that many rows after filtering and sorting. Negative
	// values count as 0; an offset past the end yields an empty result.
	Offset int
	// Limit caps the result length. Zero or negative means everything after
	// Offset.
	Limit int
}

// Build compiles the spec into a query function.
//
// When no clause applies, the input slice is returned as-is. Preserving
// reference equality keeps the upstream "no redraw" optimization available
// to identity-based diffing.
func (s Spec[T]) Build() Query[T] {
	return func(rows []T) []T {
		out := rows
		copied := false
		if s.Where != nil {
			out = make([]T, 0, len(rows))
			for _, r := range rows {
				if s.Where(r) {
					out = append(out, r)
				}
			}
			copied = true
		}
		if s.Order != nil {
			if !copied {
				out = slices.Clone(rows)
			}
			slices.SortStableFunc(out, s.Order)
		}
		offset := max(s.Offset, 0)
		offset = min(offset, len(out))
		end := len(out)
		if s.Limit > 0 && offset+s.Limit < end {
			end = offset + s.Limit
		}
		return out[offset:end]
	}
}

// And combines two optional predicates. Both nil yields nil; exactly one
// yields that one; otherwise the result evaluates p1 first and
// short-circuits, never invoking p2 when p1 rejects.
func And[T any](p1, p2 Predicate[T]) Predicate[T] {
	switch {
	case p1 == nil && p2 == nil:
		return nil
	case p2 == nil:
		return p1
	case p1 == nil:
		return p2
	default:
		return func(v T) bool { return p1(v) && p2(v) }
	}
}

// Many returns a query selecting the rows matching where, ordered and
// sliced. Any argument may be zero.
func Many[T any](where Predicate[T], order func(a, b T) int, offset, limit int) Query[T] {
	return Spec[T]{Where: where, Order: order, Offset: offset, Limit: limit}.Build()
}

// Single returns a query selecting at most one row. The predicate is
// mandatory: there is no implicit "first row" semantics without one.
func Single[T any](where Predicate[T], order func(a, b T) int, offset int) Query[T] {
	if where == nil {
		panic(fmt.Errorf("%w: Single requires a predicate", ErrInvariant))
	}
	return Spec[T]{Where: where, Order: order, Offset: offset, Limit: 1}.Build()
}

// All returns the identity query.
func All[T any]() Query[T] {
	return func(rows []T) []T { return rows }
}
