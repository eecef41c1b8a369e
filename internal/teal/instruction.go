package teal

// Instruction is the single tagged variant for every parsed TEAL
// statement. Rather than a class per opcode family, the opcode tag (Op)
// selects which of the immediate fields below are meaningful; dispatch for
// pop/push arity and opcode classification goes through the Opcode methods
// and arityTable in opcode.go. This mirrors the flattened, field-per-kind
// style obj/internal/asm's Inst/Control pairing uses for machine
// instructions, adapted from an interface-per-instruction-class design to a
// single struct since TEAL has no analog of "GoSyntax rendering" requiring
// a dynamic method set per opcode.
type Instruction struct {
	Op   Opcode
	Line int

	// Pop and Push are the resolved stack arity for this specific
	// instruction (post-immediate-resolution: e.g. intcblock's Pop/Push
	// are always 0/0, but dup2's are fixed at parse time too).
	Pop, Push int

	// Label is set when this instruction is a label definition
	// ("mylabel:"), a zero-width marker rather than a real opcode.
	Label string

	// Target is the label name operand of a branch/callsub instruction.
	Target string

	// IntImmediate is the operand of "int N" / "pushint N".
	IntImmediate uint64
	// IntImmediates is the constant pool loaded by "intcblock".
	IntImmediates []uint64

	// BytesImmediate is the operand of "byte ..." / "pushbytes ..." /
	// "addr ...", always normalized to raw bytes regardless
	// of source literal form (base64/b64/base32/b32/0x/quoted/address).
	BytesImmediate []byte
	// BytesImmediates is the constant pool loaded by "bytecblock".
	BytesImmediates [][]byte

	// FieldName/Field describe the field selector operand of
	// txn/txna/gtxn/gtxna/gtxns/gtxnsa/itxn/itxna/gitxn/gitxna.
	FieldName string
	Field     Field

	// GlobalFieldName/GlobalField describe "global X"'s operand.
	GlobalFieldName string
	GlobalField     GlobalField

	// GroupIndex is the literal transaction-group index immediate of
	// "gtxn N ..." / "gtxna N ..." / "gtxnas N ..." / "gitxn N ...", -1
	// when not applicable or when the index is popped from the stack
	// instead (gtxns/gtxnsa/gtxnsas).
	GroupIndex int

	// ArrayIndex is the literal array-index immediate of the "*a"
	// opcode variants (txna, gtxna, itxna, gitxna), -1 when popped from
	// the stack instead (txnas/gtxnas/gtxnsas).
	ArrayIndex int

	// BlockIndex is set by internal/cfg once this instruction has been
	// assigned to a basic block, and is -1 until then. It is an index
	// rather than a pointer back into cfg.BasicBlock to avoid an import
	// cycle between internal/teal and internal/cfg (spec.md section 9's
	// "arena indices instead of back-pointers" guidance).
	BlockIndex int

	// IndexInBlock is this instruction's position within its block's
	// instruction slice, set alongside BlockIndex.
	IndexInBlock int
}

// newInstruction returns an Instruction with indices defaulted to "not yet
// assigned to a block" and no-group/array-index defaulted to -1.
func newInstruction(op Opcode, line int) *Instruction {
	return &Instruction{
		Op:           op,
		Line:         line,
		BlockIndex:   -1,
		IndexInBlock: -1,
		GroupIndex:   -1,
		ArrayIndex:   -1,
	}
}

// IsLabel reports whether this Instruction is a zero-width label marker
// rather than a real opcode.
func (in *Instruction) IsLabel() bool {
	return in.Label != ""
}
