// Package stackast reconstructs, for each basic block independently, which
// instruction produced each value an instruction consumes from the stack.
// The result is a pure function of the block's own instructions — it never
// looks at predecessors — matching spec.md section 4.2's per-block
// abstract stack-effect reconstruction.
//
// Grounded on rtcheck/val.go's DynValue: a small tagged interface with one
// struct per variant (DynConst/DynNil/DynGlobal/...) rather than a class
// hierarchy, adapted here to two variants instead of rtcheck's half dozen
// since a block-local stack slot is either traced to a producing
// instruction or it isn't.
package stackast

import "github.com/crytic/tealer-go/internal/teal"

// StackValue is either a KnownStackValue (traced to a producing
// instruction within the same block) or an UnknownStackValue (a value
// that was already on the stack when the block started, about which this
// package says nothing).
type StackValue interface {
	isStackValue()
}

// KnownStackValue is a stack slot whose producer is a specific
// instruction earlier in the same block. OutIndex distinguishes which of
// a multi-push instruction's results this is (e.g. dup2 pushes two
// values; OutIndex 0 is the deeper one).
type KnownStackValue struct {
	Producer *teal.Instruction
	OutIndex int
}

func (KnownStackValue) isStackValue() {}

// UnknownStackValue is a stack slot that existed before this block began
// executing. Depth counts how many such values have been consumed so far
// in this block, with 0 being the value that was on top of the stack at
// block entry.
type UnknownStackValue struct {
	Depth int
}

func (UnknownStackValue) isStackValue() {}
