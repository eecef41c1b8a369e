package context

import (
	"github.com/crytic/tealer-go/internal/stackast"
	"github.com/crytic/tealer-go/internal/teal"
)

type connective int

const (
	connLeaf connective = iota
	connNot
	connAnd
	connOr
)

// Assertion is the boolean expression feeding an assert/bz/bnz
// instruction, reduced to the subset spec.md section 4.3 asks the
// framework to understand: comparisons against a tracked field (leaves),
// and !, &&, || combining them. Any other stack-level computation (a
// comparison against an unrelated field, a hash, a value crossing a block
// boundary) becomes an Unknown leaf, which the connective evaluation rules
// below treat conservatively rather than guessing.
type Assertion struct {
	kind     connective
	value    Value // meaningful only for connLeaf; nil means "unknown"
	operands []*Assertion

	// hasFalseOverride marks a connLeaf whose false branch was supplied
	// directly (LeafPair) rather than derived from value by Negate. Needed
	// for fields like ApplicationID/OnCompletion/TypeEnum whose true/false
	// split narrows a named sub-universe rather than the full lattice
	// complement; see txntype.go's txnTypePairBuild.
	hasFalseOverride bool
	falseOverride    Value
}

// Leaf wraps a concrete lattice value known to hold when this assertion is
// true.
func Leaf(v Value) *Assertion { return &Assertion{kind: connLeaf, value: v} }

// LeafPair wraps an explicit true/false pair, bypassing the lattice's
// Negate for the false branch. Use this when the condition narrows a
// named sub-universe rather than the tracked field's full complement.
func LeafPair(trueVal, falseVal Value) *Assertion {
	return &Assertion{kind: connLeaf, value: trueVal, hasFalseOverride: true, falseOverride: falseVal}
}

// Unknown represents a condition this framework cannot relate to the
// tracked field at all.
func Unknown() *Assertion { return &Assertion{kind: connLeaf} }

func Not(a *Assertion) *Assertion  { return &Assertion{kind: connNot, operands: []*Assertion{a}} }
func And(a, b *Assertion) *Assertion { return &Assertion{kind: connAnd, operands: []*Assertion{a, b}} }
func Or(a, b *Assertion) *Assertion  { return &Assertion{kind: connOr, operands: []*Assertion{a, b}} }

func (a *Assertion) isUnknownLeaf() bool {
	return a.kind == connLeaf && a.value == nil
}

// TrueValue returns the lattice value that must hold given this assertion
// evaluated to true.
func (a *Assertion) TrueValue(l FieldLattice) Value {
	switch a.kind {
	case connLeaf:
		if a.value == nil {
			return l.Universal()
		}
		return a.value
	case connNot:
		return a.operands[0].FalseValue(l)
	case connAnd:
		result := l.Universal()
		for _, o := range a.operands {
			result = l.Intersection(result, o.TrueValue(l))
		}
		return result
	case connOr:
		// An unknown disjunct could make the whole expression true for
		// reasons unrelated to the tracked field, so the field cannot
		// be narrowed at all (spec.md section 4.3's connective-with-
		// unknown-operand rule).
		for _, o := range a.operands {
			if o.isUnknownLeaf() {
				return l.Universal()
			}
		}
		result := l.Null()
		for _, o := range a.operands {
			result = l.Union(result, o.TrueValue(l))
		}
		return result
	}
	return l.Universal()
}

// FalseValue returns the lattice value that must hold given this assertion
// evaluated to false, computed by pushing the negation through the
// connective tree (De Morgan) rather than calling Negate on a combined
// result, so unknown operands are handled the same conservative way on
// both the true and false branches.
func (a *Assertion) FalseValue(l FieldLattice) Value {
	switch a.kind {
	case connLeaf:
		if a.value == nil {
			return l.Universal()
		}
		if a.hasFalseOverride {
			return a.falseOverride
		}
		if neg, ok := l.Negate(a.value); ok {
			return neg
		}
		return l.Universal()
	case connNot:
		return a.operands[0].TrueValue(l)
	case connAnd:
		// not(A && B) == not(A) || not(B)
		for _, o := range a.operands {
			if o.isUnknownLeaf() {
				return l.Universal()
			}
		}
		result := l.Null()
		for _, o := range a.operands {
			result = l.Union(result, o.FalseValue(l))
		}
		return result
	case connOr:
		// not(A || B) == not(A) && not(B)
		result := l.Universal()
		for _, o := range a.operands {
			result = l.Intersection(result, o.FalseValue(l))
		}
		return result
	}
	return l.Universal()
}

// comparisonOps is every TEAL opcode BuildAssertion recognizes as a
// two-operand comparison.
var comparisonOps = map[teal.Opcode]bool{
	teal.OpEq: true, teal.OpNeq: true,
	teal.OpLt: true, teal.OpLe: true, teal.OpGt: true, teal.OpGe: true,
}

func flipComparison(op teal.Opcode) teal.Opcode {
	switch op {
	case teal.OpLt:
		return teal.OpGt
	case teal.OpGt:
		return teal.OpLt
	case teal.OpLe:
		return teal.OpGe
	case teal.OpGe:
		return teal.OpLe
	default:
		return op
	}
}

// LeafBuilder converts a recognized "field <op> literal" comparison into a
// lattice Value, returning false if the literal instruction's immediate
// isn't a form this field's lattice understands (e.g. a byte literal
// compared against a numeric field).
type LeafBuilder func(op teal.Opcode, literal *teal.Instruction) (Value, bool)

// PairBuilder is LeafBuilder's explicit-pair counterpart: it returns both
// the true and false values a comparison narrows the field to, for fields
// whose false branch is not the lattice complement of the true branch
// (see txntype.go's txnTypePairBuild).
type PairBuilder func(target *teal.Instruction, op teal.Opcode, literal *teal.Instruction) (trueVal, falseVal Value, ok bool)

// BareBuilder recognizes a bare (uncompared) push of the tracked field as
// itself a truthy/falsy condition, returning the true/false pair it
// narrows to (see txntype.go's txnTypeBare for "txn ApplicationID" alone).
type BareBuilder func(target *teal.Instruction) (trueVal, falseVal Value, ok bool)

// BuildAssertion walks the stack-value producer chain of a branch/assert
// condition and reduces it to an Assertion tree, using a's IsSelf/Build
// (and, when set, PairBuild/Bare) to recognize comparisons against the
// tracked field.
func BuildAssertion(ast *stackast.BlockStackAST, v stackast.StackValue, a FieldAnalysis) *Assertion {
	kv, ok := v.(stackast.KnownStackValue)
	if !ok {
		return Unknown()
	}
	producer := kv.Producer

	switch producer.Op {
	case teal.OpNot:
		return Not(BuildAssertion(ast, ast.OperandOf(producer, 0), a))
	case teal.OpAnd:
		return And(
			BuildAssertion(ast, ast.OperandOf(producer, 1), a),
			BuildAssertion(ast, ast.OperandOf(producer, 0), a),
		)
	case teal.OpOr:
		return Or(
			BuildAssertion(ast, ast.OperandOf(producer, 1), a),
			BuildAssertion(ast, ast.OperandOf(producer, 0), a),
		)
	}

	if a.Bare != nil && a.IsSelf(ast, producer) {
		if trueVal, falseVal, ok := a.Bare(producer); ok {
			return LeafPair(trueVal, falseVal)
		}
	}

	if !comparisonOps[producer.Op] {
		return Unknown()
	}

	// Algorand stack comparisons pop B (top, pushed last) then A
	// (pushed first) and compute "A op B".
	bVal := ast.OperandOf(producer, 0)
	aVal := ast.OperandOf(producer, 1)

	if aKV, ok := aVal.(stackast.KnownStackValue); ok && a.IsSelf(ast, aKV.Producer) {
		if bKV, ok := bVal.(stackast.KnownStackValue); ok {
			if leaf := buildLeaf(a, aKV.Producer, producer.Op, bKV.Producer); leaf != nil {
				return leaf
			}
		}
	}
	if bKV, ok := bVal.(stackast.KnownStackValue); ok && a.IsSelf(ast, bKV.Producer) {
		if aKV, ok := aVal.(stackast.KnownStackValue); ok {
			if leaf := buildLeaf(a, bKV.Producer, flipComparison(producer.Op), aKV.Producer); leaf != nil {
				return leaf
			}
		}
	}
	return Unknown()
}

// buildLeaf prefers a's PairBuild (explicit true/false pair) over its
// plain Build (lattice-complement false branch), since PairBuild is only
// set for fields where the two differ.
func buildLeaf(a FieldAnalysis, target *teal.Instruction, op teal.Opcode, literal *teal.Instruction) *Assertion {
	if a.PairBuild != nil {
		if trueVal, falseVal, ok := a.PairBuild(target, op, literal); ok {
			return LeafPair(trueVal, falseVal)
		}
	}
	if a.Build != nil {
		if val, ok := a.Build(op, literal); ok {
			return Leaf(val)
		}
	}
	return nil
}
