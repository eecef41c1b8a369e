package context

import (
	"fmt"

	"github.com/crytic/tealer-go/internal/teal"
)

// AddressValue is the value of an address-typed field (Sender, RekeyTo,
// CloseRemainderTo, AssetCloseTo). Any means "could be any address, no
// constraint seen yet" (lattice top); an empty, non-Any set means "no
// address satisfies every constraint seen so far", a contradiction
// (lattice bottom); otherwise the set enumerates the specific symbolic
// addresses the field has been asserted to possibly equal.
type AddressValue struct {
	Any   bool
	Addrs map[SymbolicAddress]bool
}

func (AddressValue) isContextValue() {}

// SymbolicAddress identifies one address-valued TEAL literal or global by
// the instruction that produced it, not by its byte content: two "addr
// ..." instructions with the same literal text at different source lines
// are treated as distinct symbolic addresses unless a points-to analysis
// says otherwise, which this analyzer does not attempt (spec.md's scope
// stops at syntactic comparison). Grounded on rtcheck/lockclass.go's
// value-identity keying of lock classes.
type SymbolicAddress struct {
	instr *teal.Instruction
	name  string
}

// String renders the symbolic address the way DESIGN.md's address-identity
// decision specifies: SOME_ADDRESS_<line> for literals, or the global
// name for the one well-known non-literal producer (ZeroAddress).
func (a SymbolicAddress) String() string {
	if a.name != "" {
		return a.name
	}
	return fmt.Sprintf("SOME_ADDRESS_%d", a.instr.Line)
}

// AddressFromLiteral returns the symbolic address identified by the
// instruction that pushed an address/byte literal (byte, addr, pushbytes).
func AddressFromLiteral(in *teal.Instruction) SymbolicAddress {
	return SymbolicAddress{instr: in}
}

// ZeroAddress is the well-known all-zero address TEAL programs compare
// RekeyTo/CloseRemainderTo/AssetCloseTo against to mean "not set".
var ZeroAddress = SymbolicAddress{name: "ZeroAddress"}

// addressLattice implements FieldLattice for AddressValue.
type addressLattice struct{}

// AddressLattice is the shared lattice instance used for every
// address-typed field; the field identity (Sender vs RekeyTo, etc.) lives
// in the Key the engine tracks, not in the lattice itself.
var AddressLattice FieldLattice = addressLattice{}

func (addressLattice) Name() string { return "Address" }

func (addressLattice) Universal() Value { return AddressValue{Any: true} }

func (addressLattice) Null() Value { return AddressValue{Addrs: map[SymbolicAddress]bool{}} }

func (addressLattice) Union(a, b Value) Value {
	av, bv := a.(AddressValue), b.(AddressValue)
	if av.Any || bv.Any {
		return AddressValue{Any: true}
	}
	out := make(map[SymbolicAddress]bool, len(av.Addrs)+len(bv.Addrs))
	for k := range av.Addrs {
		out[k] = true
	}
	for k := range bv.Addrs {
		out[k] = true
	}
	return AddressValue{Addrs: out}
}

func (addressLattice) Intersection(a, b Value) Value {
	av, bv := a.(AddressValue), b.(AddressValue)
	if av.Any {
		return bv
	}
	if bv.Any {
		return av
	}
	out := make(map[SymbolicAddress]bool)
	for k := range av.Addrs {
		if bv.Addrs[k] {
			out[k] = true
		}
	}
	return AddressValue{Addrs: out}
}

func (addressLattice) Equal(a, b Value) bool {
	av, bv := a.(AddressValue), b.(AddressValue)
	if av.Any != bv.Any {
		return false
	}
	if av.Any {
		return true
	}
	if len(av.Addrs) != len(bv.Addrs) {
		return false
	}
	for k := range av.Addrs {
		if !bv.Addrs[k] {
			return false
		}
	}
	return true
}

func (addressLattice) Negate(v Value) (Value, bool) {
	// The complement of a finite address set is "any address not in the
	// set", which is infinite and not representable by this lattice's
	// finite-set encoding; callers fall back to Universal.
	av := v.(AddressValue)
	if av.Any {
		return AddressValue{Addrs: map[SymbolicAddress]bool{}}, true
	}
	return AddressValue{Any: true}, false
}

// IsAssertedSafe reports whether every address this value could be is the
// zero address — the safety condition spec.md's missing-field detectors
// check for RekeyTo/CloseRemainderTo/AssetCloseTo ("the field is
// constrained to the value that leaves the transaction's behavior
// unchanged").
func IsAssertedSafe(v Value) bool {
	av, ok := v.(AddressValue)
	if !ok || av.Any {
		return false
	}
	for a := range av.Addrs {
		if a != ZeroAddress {
			return false
		}
	}
	return true
}
