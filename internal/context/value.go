// Package context implements the transaction-context dataflow framework:
// for a single field of a single transaction (self or another group
// member), it computes, at every basic block boundary, the lattice value
// describing what is known about that field if control reaches that point.
//
// Grounded on rtcheck's LockSet/PathState machinery (a small abstract
// domain propagated over a CFG via explicit worklists) generalized from
// rtcheck's single fixed lockset domain to a pluggable FieldLattice
// interface, since this analyzer runs the same four-phase algorithm over
// several unrelated domains (addresses, fee bounds, group size/index sets,
// transaction type sets).
package context

// Value is an opaque lattice element. Each FieldLattice implementation
// defines its own concrete Value type (AddressValue, FeeValue,
// bitsetValue, ...); the engine only ever calls back into the lattice to
// combine or compare values; it never inspects one.
type Value interface {
	isContextValue()
}

// FieldLattice is a bounded lattice over Value, with Universal as top
// (nothing known, a well-behaved program could hit this point with the
// field at any value) and Null as bottom (control cannot reach this point
// consistently — a contradiction, e.g. two asserts that can't both hold).
//
// Union models "could be reached via either predecessor" (forward-phase
// join); Intersection models "must satisfy both constraints"
// (path-local narrowing within a single block, and the lift from two
// assert chains ANDed together).
type FieldLattice interface {
	Name() string
	Universal() Value
	Null() Value
	Union(a, b Value) Value
	Intersection(a, b Value) Value
	Equal(a, b Value) bool

	// Negate returns the complement of v, and true, if this lattice can
	// represent "not v" exactly (true for the enumerable-set lattices:
	// group size, group index, transaction type). The address lattice
	// cannot represent the complement of a finite address set, so its
	// Negate returns false for anything but Universal. Fee bound
	// cannot represent "not fee <= N" as a finite upper bound, so its
	// Negate always returns (Universal(), false); callers fall back to
	// Universal when Negate reports false, per spec.md section 4.3's
	// "a connective that cannot be evaluated soundly narrows to
	// Universal rather than guessing".
	Negate(v Value) (Value, bool)
}
