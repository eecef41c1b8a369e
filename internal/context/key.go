package context

import (
	"github.com/crytic/tealer-go/internal/stackast"
	"github.com/crytic/tealer-go/internal/teal"
)

// FieldAnalysis bundles everything the dataflow engine needs to track one
// field: its lattice, the predicate recognizing "this instruction pushes
// the field's value" (ordinarily a Self-indexed access; AtAbsoluteIndex
// and AtRelativeOffset below build the gtxn-indexed variants internal/
// detect's group-aware driver uses), and the comparison-to-value
// conversion for building Assertion leaves.
//
// Field records which teal.Field this analysis tracks, when it is backed
// by one (the txn-field analyses below); it is FieldOther for the
// global-field analysis GroupSize, which has no gtxn-indexed form since a
// global never varies per group member.
type FieldAnalysis struct {
	Key     string
	Lattice FieldLattice
	Field   teal.Field
	IsSelf  func(ast *stackast.BlockStackAST, in *teal.Instruction) bool
	Build   LeafBuilder

	// PairBuild and Bare are set only for fields whose true/false split
	// cannot be derived from Build's value via the lattice's Negate (the
	// transaction-type/completion family below). BuildAssertion prefers
	// PairBuild over Build, and checks Bare before treating the tracked
	// field's bare push as an unrecognized condition.
	PairBuild PairBuilder
	Bare      BareBuilder

	// FieldMatch, when set, replaces the single-Field comparison
	// AtAbsoluteIndex/AtRelativeOffset/SelfEquivalent otherwise use to
	// recognize a gtxn-indexed access of this field, for analyses (like
	// TxnType) that track more than one underlying teal.Field under one
	// key.
	FieldMatch func(f teal.Field) bool
}

func (a FieldAnalysis) matchesField(f teal.Field) bool {
	if a.FieldMatch != nil {
		return a.FieldMatch(f)
	}
	return f == a.Field
}

// Registry of the field analyses spec.md section 4.4 names: the four
// address fields, fee, group size, group index, and transaction type.
var (
	RekeyToAnalysis        = addressFieldAnalysis("RekeyTo", teal.FieldRekeyTo)
	CloseRemainderAnalysis = addressFieldAnalysis("CloseRemainderTo", teal.FieldCloseRemainderTo)
	AssetCloseToAnalysis   = addressFieldAnalysis("AssetCloseTo", teal.FieldAssetCloseTo)
	SenderAnalysis         = addressFieldAnalysis("Sender", teal.FieldSender)

	FeeAnalysis = FieldAnalysis{
		Key:     "Fee",
		Lattice: FeeLattice,
		Field:   teal.FieldFee,
		IsSelf: func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
			return in.Op == teal.OpTxn && in.Field == teal.FieldFee
		},
		Build: func(op teal.Opcode, literal *teal.Instruction) (Value, bool) {
			n, ok := literalInt(literal)
			if !ok {
				return nil, false
			}
			return FeeCompare(string(op), n), true
		},
	}

	GroupSizeAnalysis = FieldAnalysis{
		Key:     "GroupSize",
		Lattice: GroupSizeLattice,
		IsSelf: func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
			return in.Op == teal.OpGlobal && in.GlobalField == teal.GlobalGroupSize
		},
		Build: func(op teal.Opcode, literal *teal.Instruction) (Value, bool) {
			n, ok := literalInt(literal)
			if !ok {
				return nil, false
			}
			return GroupSizeCompare(string(op), int(n)), true
		},
	}

	GroupIndexAnalysis = FieldAnalysis{
		Key:     "GroupIndex",
		Lattice: GroupIndexLattice,
		Field:   teal.FieldGroupIndex,
		IsSelf: func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
			return in.Op == teal.OpTxn && in.Field == teal.FieldGroupIndex
		},
		Build: func(op teal.Opcode, literal *teal.Instruction) (Value, bool) {
			n, ok := literalInt(literal)
			if !ok {
				return nil, false
			}
			return GroupIndexCompare(string(op), int(n)), true
		},
	}

	// TxnTypeAnalysis tracks spec.md section 4.4's combined transaction-
	// type/completion field: TypeEnum, the legacy "Type" byte-string field,
	// ApplicationID, and OnCompletion all narrow the same TxnType lattice,
	// each over its own sub-universe (typeEnumUniverse or
	// applicationUniverse in txntype.go). PairBuild/Bare replace Build/
	// IsSelf's ordinary Eq/Neq handling because that narrowing is not the
	// lattice complement.
	TxnTypeAnalysis = FieldAnalysis{
		Key:     "TxnType",
		Lattice: TxnTypeLattice,
		Field:   teal.FieldTypeEnum,
		IsSelf: func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
			if in.Op != teal.OpTxn {
				return false
			}
			switch in.Field {
			case teal.FieldTypeEnum, teal.FieldType, teal.FieldApplicationID, teal.FieldOnCompletion:
				return true
			}
			return false
		},
		PairBuild: txnTypePairBuild,
		Bare:      txnTypeBare,
		FieldMatch: func(f teal.Field) bool {
			switch f {
			case teal.FieldTypeEnum, teal.FieldType, teal.FieldApplicationID, teal.FieldOnCompletion:
				return true
			}
			return false
		},
	}
)

func addressFieldAnalysis(key string, field teal.Field) FieldAnalysis {
	return FieldAnalysis{
		Key:     key,
		Lattice: AddressLattice,
		Field:   field,
		IsSelf: func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
			return in.Op == teal.OpTxn && in.Field == field
		},
		Build: func(op teal.Opcode, literal *teal.Instruction) (Value, bool) {
			if op != teal.OpEq && op != teal.OpNeq {
				return nil, false
			}
			if _, ok := literalBytes(literal); !ok {
				return nil, false
			}
			addr := AddressFromLiteral(literal)
			if isZeroLiteral(literal) {
				addr = ZeroAddress
			}
			if op == teal.OpNeq {
				return nil, false
			}
			return AddressValue{Addrs: map[SymbolicAddress]bool{addr: true}}, true
		},
	}
}

func isZeroLiteral(in *teal.Instruction) bool {
	b, ok := literalBytes(in)
	if !ok || len(b) != 32 {
		return false
	}
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// AtAbsoluteIndex rebuilds base to recognize its field accessed via
// "gtxn idx field" / "gtxna idx field ..." / "gtxnas idx field" (literal
// immediate) or via a stack-computed gtxns/gtxnsa/gtxnsas index that
// index.go resolves to the same literal idx. Used by internal/detect's
// group-aware driver (spec.md section 4.7) to check whether a peer
// transaction at a known absolute position constrains the field on
// behalf of the transaction being analyzed.
func AtAbsoluteIndex(base FieldAnalysis, idx int) FieldAnalysis {
	out := base
	out.IsSelf = func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
		switch in.Op {
		case teal.OpGtxn, teal.OpGtxna, teal.OpGtxnas:
			return base.matchesField(in.Field) && in.GroupIndex == idx
		case teal.OpGtxns, teal.OpGtxnsa, teal.OpGtxnsas:
			if !base.matchesField(in.Field) || ast == nil {
				return false
			}
			r := resolveIndexValue(ast, ast.OperandOf(in, gtxnsIndexOperand(in.Op)), 0, false)
			return r.Kind == IndexAbsolute && r.Value == idx
		}
		return false
	}
	return out
}

// AtRelativeOffset rebuilds base to recognize its field accessed via a
// stack-computed gtxns/gtxnsa/gtxnsas index that index.go resolves
// to "this transaction's GroupIndex plus offset" — the relative-peer form
// spec.md section 4.7 calls contract_checks_using_relative_index.
func AtRelativeOffset(base FieldAnalysis, offset int) FieldAnalysis {
	out := base
	out.IsSelf = func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
		switch in.Op {
		case teal.OpGtxns, teal.OpGtxnsa, teal.OpGtxnsas:
			if !base.matchesField(in.Field) || ast == nil {
				return false
			}
			r := resolveIndexValue(ast, ast.OperandOf(in, gtxnsIndexOperand(in.Op)), 0, false)
			return r.Kind == IndexRelative && r.Value == offset
		}
		return false
	}
	return out
}

// gtxnsIndexOperand returns the operand position (pop-order, 0 nearest
// the top) of the group-index argument for the stack-computed gtxns
// family, matching index.go's ResolveIndex operand positions.
func gtxnsIndexOperand(op teal.Opcode) int {
	if op == teal.OpGtxnsas {
		return 1
	}
	return 0
}

// SelfEquivalent rebuilds base so that, in addition to its ordinary Self
// predicate, it also recognizes a gtxn-family access of the same field
// that resolves (via ResolveIndex) to this transaction's own absolute
// position — the roundabout "gtxn (txn GroupIndex) field" self-check form
// spec.md section 4.6's validated_in_block folds into the Self view once
// the transaction's absolute index is known. absoluteIndex is nil when
// the transaction's own position in its group is not known, in which case
// SelfEquivalent behaves exactly like base.
func SelfEquivalent(base FieldAnalysis, absoluteIndex *int) FieldAnalysis {
	out := base
	baseIsSelf := base.IsSelf
	out.IsSelf = func(ast *stackast.BlockStackAST, in *teal.Instruction) bool {
		if baseIsSelf(ast, in) {
			return true
		}
		if absoluteIndex == nil || !base.matchesField(in.Field) {
			return false
		}
		idx := ResolveIndex(ast, in)
		switch idx.Kind {
		case IndexSelf:
			return true
		case IndexAbsolute:
			return idx.Value == *absoluteIndex
		case IndexRelative:
			return idx.Value == 0
		default:
			return false
		}
	}
	return out
}
