package context

import (
	"github.com/crytic/tealer-go/internal/stackast"
	"github.com/crytic/tealer-go/internal/teal"
)

// IndexKind classifies which transaction within the group a txn/gtxn-style
// field access refers to (spec.md section 4.5).
type IndexKind int

const (
	IndexSelf IndexKind = iota
	IndexAbsolute
	IndexRelative
	IndexUnknown
)

// Index identifies one group member relative to the analyzed transaction.
// Value is the absolute position for IndexAbsolute, or the signed offset
// from self for IndexRelative; meaningless for IndexSelf/IndexUnknown.
type Index struct {
	Kind  IndexKind
	Value int
}

func (i Index) String() string {
	switch i.Kind {
	case IndexSelf:
		return "self"
	case IndexAbsolute:
		return "absolute"
	case IndexRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// ResolveIndex determines which group member in is about, pattern-matched
// from the instruction's opcode family the way spec.md section 4.5
// specifies: txn* is always Self; gtxn/gtxna/gtxnas carry a literal
// absolute index immediate; gtxns/gtxnsa/gtxnsas pop the index from the
// stack, so ast (that instruction's containing block's stack AST) is used
// to trace it back to a literal or to "txn GroupIndex [+-] k".
func ResolveIndex(ast *stackast.BlockStackAST, in *teal.Instruction) Index {
	switch in.Op {
	case teal.OpTxn, teal.OpTxna, teal.OpTxnas:
		return Index{Kind: IndexSelf}
	case teal.OpGtxn, teal.OpGtxna, teal.OpGtxnas, teal.OpGitxn, teal.OpGitxna:
		return Index{Kind: IndexAbsolute, Value: in.GroupIndex}
	case teal.OpGtxns, teal.OpGtxnsa:
		return resolveStackIndex(ast, in, 0)
	case teal.OpGtxnsas:
		return resolveStackIndex(ast, in, 1)
	}
	return Index{Kind: IndexUnknown}
}

// resolveStackIndex traces the operand at operandPos (in the comparison's
// pop-order convention: 0 is nearest the top) of in back to either a
// literal absolute index or a "txn GroupIndex" ± constant relative index.
func resolveStackIndex(ast *stackast.BlockStackAST, in *teal.Instruction, operandPos int) Index {
	if ast == nil {
		return Index{Kind: IndexUnknown}
	}
	v := ast.OperandOf(in, operandPos)
	return resolveIndexValue(ast, v, 0, false)
}

func resolveIndexValue(ast *stackast.BlockStackAST, v stackast.StackValue, offset int, negate bool) Index {
	kv, ok := v.(stackast.KnownStackValue)
	if !ok {
		return Index{Kind: IndexUnknown}
	}
	producer := kv.Producer
	switch producer.Op {
	case teal.OpInt, teal.OpPushInt, teal.OpIntC, teal.OpIntC0, teal.OpIntC1, teal.OpIntC2, teal.OpIntC3:
		n, ok := literalInt(producer)
		if !ok {
			return Index{Kind: IndexUnknown}
		}
		return Index{Kind: IndexAbsolute, Value: int(n)}
	case teal.OpTxn:
		if producer.Field == teal.FieldGroupIndex {
			off := offset
			if negate {
				off = -off
			}
			if off == 0 {
				// Bare "txn GroupIndex" with no +/- offset: spec.md
				// section 4.5 resolves this to Self, not Relative(0).
				return Index{Kind: IndexSelf}
			}
			return Index{Kind: IndexRelative, Value: off}
		}
	case teal.OpAdd, teal.OpSub:
		lhs := ast.OperandOf(producer, 1)
		rhs := ast.OperandOf(producer, 0)
		if rkv, ok := rhs.(stackast.KnownStackValue); ok {
			if n, ok := literalInt(rkv.Producer); ok {
				delta := int(n)
				if producer.Op == teal.OpSub {
					delta = -delta
				}
				return resolveIndexValue(ast, lhs, offset+delta, negate)
			}
		}
		// Add is commutative; "int c; txn GroupIndex; +" pushes the
		// constant first, so it shows up as lhs instead of rhs (spec.md
		// section 4.5's "Add(int c, txn GroupIndex)" pattern). Sub isn't
		// commutative, so this fallback only applies to Add.
		if producer.Op == teal.OpAdd {
			if lkv, ok := lhs.(stackast.KnownStackValue); ok {
				if n, ok := literalInt(lkv.Producer); ok {
					return resolveIndexValue(ast, rhs, offset+int(n), negate)
				}
			}
		}
	}
	return Index{Kind: IndexUnknown}
}

func literalInt(in *teal.Instruction) (uint64, bool) {
	switch in.Op {
	case teal.OpInt, teal.OpPushInt:
		return in.IntImmediate, true
	}
	return 0, false
}

func literalBytes(in *teal.Instruction) ([]byte, bool) {
	switch in.Op {
	case teal.OpByte, teal.OpPushBytes, teal.OpAddr:
		return in.BytesImmediate, true
	}
	return nil, false
}
