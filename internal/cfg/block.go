// Package cfg builds the global control-flow graph of a TEAL contract:
// basic blocks linked by fallthrough and branch edges, partitioned into
// subroutines at callsub/retsub boundaries.
//
// Grounded on obj/internal/asm's BasicBlock/Edge model (start-PC discovery,
// successor/predecessor edge lists with reverse-index back-pointers),
// adapted from a PC-addressed instruction sequence to a label-addressed
// TEAL instruction sequence.
package cfg

import "github.com/crytic/tealer-go/internal/teal"

// Edge is a control-flow edge to or from a BasicBlock, carrying the index
// of the corresponding edge in the opposite block's edge list so the graph
// can be walked in either direction without a search.
type Edge struct {
	Block  *BasicBlock
	RIndex int
}

// BasicBlock is a maximal straight-line run of instructions with no
// incoming edges except at its start and no outgoing edges except at its
// end (spec.md section 3's "Basic block").
type BasicBlock struct {
	ID           int
	Instructions []*teal.Instruction

	Succs []Edge
	Preds []Edge

	// Subroutine is the subroutine this block belongs to; every block
	// belongs to exactly one, including the implicit __main__ pseudo-
	// subroutine for top-level code never reached via callsub.
	Subroutine *Subroutine

	// IsCallsub is true when this block ends in "callsub label": it has
	// exactly one control successor (the callee's entry block) and its
	// logical "return point" is recorded separately in ReturnTo, since
	// retsub transfers control there rather than to a Succs edge.
	IsCallsub bool
	// ReturnTo is the block executed after the called subroutine
	// retsub's back to this callsub, nil if this is not a callsub
	// block or the callsub is the last instruction with no fallthrough.
	ReturnTo *BasicBlock

	// IsRetsub is true when this block ends in "retsub": control
	// returns to whichever block contains the callsub that is currently
	// active on the runtime call stack, which is not known statically
	// and is instead resolved per path by internal/detect.
	IsRetsub bool

	// IsLeaf is true when this block ends in "return" or "err" (or
	// falls off the end of the program), a genuine exit with no
	// successors.
	IsLeaf bool

	// stackCache holds the internal/stackast per-block memoized result.
	// Declared as interface{} here (rather than a stackast type) to
	// avoid a cfg -> stackast import; stackast owns the concrete type
	// and does its own cast.
	stackCache interface{}
}

// StackCache returns the memoized internal/stackast result for this block,
// or nil if it has not been computed yet.
func (b *BasicBlock) StackCache() interface{} { return b.stackCache }

// SetStackCache stores the internal/stackast result for this block. Set
// once; internal/stackast never invalidates it, since a block's
// instructions never change after the CFG is built (spec.md section 3's
// Lifecycle: "populated lazily per block on first query and never
// invalidated").
func (b *BasicBlock) SetStackCache(v interface{}) { b.stackCache = v }

// Last returns the block's final instruction, or nil if the block is
// empty (only possible for a synthetic entry block with no code before
// its first real instruction).
func (b *BasicBlock) Last() *teal.Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[len(b.Instructions)-1]
}

func addEdge(from, to *BasicBlock) {
	fi := len(from.Succs)
	ti := len(to.Preds)
	from.Succs = append(from.Succs, Edge{Block: to, RIndex: ti})
	to.Preds = append(to.Preds, Edge{Block: from, RIndex: fi})
}
