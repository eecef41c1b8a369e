package stackast

import (
	"github.com/crytic/tealer-go/internal/cfg"
	"github.com/crytic/tealer-go/internal/teal"
)

// InstructionEffect records one instruction's consumed operands (in pop
// order, operand 0 nearest the top of stack at the time it executed) and
// produced results.
type InstructionEffect struct {
	Instruction *teal.Instruction
	Operands    []StackValue
	Results     []StackValue
}

// BlockStackAST is the reconstructed per-instruction stack effect for one
// basic block, plus the abstract stack state left behind at the block's
// end (index 0 is the bottom of what remains, the last element is top).
type BlockStackAST struct {
	Block      *cfg.BasicBlock
	Effects    []InstructionEffect
	FinalStack []StackValue
}

// Build returns the memoized BlockStackAST for b, computing and caching it
// on first call. Safe to call repeatedly: the cache is populated once and
// never invalidated (spec.md section 3's Lifecycle note that a block's
// instructions never change after the CFG is built).
func Build(b *cfg.BasicBlock) *BlockStackAST {
	if cached := b.StackCache(); cached != nil {
		return cached.(*BlockStackAST)
	}
	ast := compute(b)
	b.SetStackCache(ast)
	return ast
}

func compute(b *cfg.BasicBlock) *BlockStackAST {
	ast := &BlockStackAST{Block: b}
	var stack []StackValue
	nextUnknownDepth := 0

	pop := func() StackValue {
		if len(stack) == 0 {
			v := UnknownStackValue{Depth: nextUnknownDepth}
			nextUnknownDepth++
			return v
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, in := range b.Instructions {
		eff := InstructionEffect{Instruction: in}
		if in.Pop > 0 {
			eff.Operands = make([]StackValue, in.Pop)
			for i := 0; i < in.Pop; i++ {
				eff.Operands[i] = pop()
			}
		}
		if in.Push > 0 {
			eff.Results = make([]StackValue, in.Push)
			for i := 0; i < in.Push; i++ {
				eff.Results[i] = KnownStackValue{Producer: in, OutIndex: i}
			}
			for _, r := range eff.Results {
				stack = append(stack, r)
			}
		}
		ast.Effects = append(ast.Effects, eff)
	}
	ast.FinalStack = append([]StackValue(nil), stack...)
	return ast
}

// EffectFor returns the InstructionEffect for in, which must belong to the
// block whose BlockStackAST ast was built from. Returns the zero value and
// false if in is not found, which should only happen if the caller passes
// an instruction from a different block.
func (ast *BlockStackAST) EffectFor(in *teal.Instruction) (InstructionEffect, bool) {
	if in.BlockIndex != ast.Block.ID {
		return InstructionEffect{}, false
	}
	if in.IndexInBlock < 0 || in.IndexInBlock >= len(ast.Effects) {
		return InstructionEffect{}, false
	}
	return ast.Effects[in.IndexInBlock], true
}

// OperandOf is a convenience for the common case of looking up the single
// value an instruction at index opIndex consumed (e.g. the left-hand
// operand of a comparison), returning nil if unavailable.
func (ast *BlockStackAST) OperandOf(in *teal.Instruction, opIndex int) StackValue {
	eff, ok := ast.EffectFor(in)
	if !ok || opIndex < 0 || opIndex >= len(eff.Operands) {
		return nil
	}
	return eff.Operands[opIndex]
}
