// Sentinel errors shared across the package.

package livetable

import "errors"

var (
	// ErrInvalidEquality is returned when an equality policy cannot be
	// compiled for the table's record type, e.g. [Identity] over an
	// uncomparable type or [ByField] naming an unknown field. The table is
	// not created.
	ErrInvalidEquality = errors.New("livetable: invalid equality policy")

	// ErrInvariant reports a branch that the package's own contracts make
	// unreachable. It only ever appears inside panics.
	ErrInvariant = errors.New("livetable: internal invariant violated")
)
