package context

import (
	"github.com/crytic/tealer-go/internal/cfg"
	"github.com/crytic/tealer-go/internal/graph"
	"github.com/crytic/tealer-go/internal/stackast"
	"github.com/crytic/tealer-go/internal/teal"
)

// Table is the result of running a FieldAnalysis over one subroutine: for
// every block, the value guaranteed on entry (In), the value guaranteed on
// each outgoing edge (EdgeOut, keyed by successor block ID, accounting for
// bz/bnz asymmetric narrowing), and the value guaranteed from that block
// to every possible continuation (Guaranteed, phase C's backward result).
type Table struct {
	Analysis   FieldAnalysis
	Subroutine *cfg.Subroutine
	In         map[int]Value
	EdgeOut    map[int]map[int]Value
	Guaranteed map[int]Value
}

// InOf returns the value guaranteed to hold if control reaches the start of
// block b.
func (t *Table) InOf(b *cfg.BasicBlock) Value { return t.In[b.ID] }

// OutOn returns the value guaranteed to hold when control passes from
// block b to successor s along that specific edge.
func (t *Table) OutOn(b, s *cfg.BasicBlock) Value {
	if m, ok := t.EdgeOut[b.ID]; ok {
		if v, ok := m[s.ID]; ok {
			return v
		}
	}
	return t.Analysis.Lattice.Universal()
}

// GuaranteedFrom returns the value guaranteed to hold for every possible
// continuation starting at block b (phase C).
func (t *Table) GuaranteedFrom(b *cfg.BasicBlock) Value { return t.Guaranteed[b.ID] }

// blockGraph adapts one subroutine's blocks to graph.BiGraph. A callsub
// block's real Succs edge leads into the callee, a different subroutine
// not present in this graph at all; for this subroutine's own dataflow it
// instead behaves as a single edge straight to ReturnTo (the call is
// treated as a black box that passes the tracked field through
// unchanged — this per-subroutine table does not attempt interprocedural
// flow through a callee, matching spec.md section 4.3's scope). Since
// that call/return edge is not recorded in BasicBlock.Succs/Preds at all
// (see internal/cfg/block.go's ReturnTo doc), In() also adds it back as a
// synthetic predecessor.
type blockGraph struct {
	blocks []*cfg.BasicBlock
	index  map[int]int
}

func (g blockGraph) NumNodes() int { return len(g.blocks) }

func (g blockGraph) Out(i int) []int {
	b := g.blocks[i]
	if b.IsCallsub {
		if b.ReturnTo == nil {
			return nil
		}
		if idx, ok := g.index[b.ReturnTo.ID]; ok {
			return []int{idx}
		}
		return nil
	}
	var out []int
	for _, e := range b.Succs {
		if idx, ok := g.index[e.Block.ID]; ok {
			out = append(out, idx)
		}
	}
	return out
}

func (g blockGraph) In(i int) []int {
	b := g.blocks[i]
	var in []int
	for _, e := range b.Preds {
		if idx, ok := g.index[e.Block.ID]; ok {
			in = append(in, idx)
		}
	}
	for j, other := range g.blocks {
		if other.IsCallsub && other.ReturnTo == b {
			in = append(in, j)
		}
	}
	return in
}

// localConstraint folds every "assert"-guarded condition within b (assert
// does not end a block, so it can appear anywhere in the instruction
// sequence) into a single narrowed lattice value: the value guaranteed to
// hold for any execution that falls through the entire block without
// aborting. A block containing "err" never falls through, so its value is
// Null.
func localConstraint(ast *stackast.BlockStackAST, b *cfg.BasicBlock, a FieldAnalysis) Value {
	lattice := a.Lattice
	result := lattice.Universal()
	for _, in := range b.Instructions {
		if in.Op == teal.OpErr {
			return lattice.Null()
		}
		if in.Op != teal.OpAssert {
			continue
		}
		operand := ast.OperandOf(in, 0)
		assertion := BuildAssertion(ast, operand, a)
		result = lattice.Intersection(result, assertion.TrueValue(lattice))
	}
	return result
}

// branchAssertion returns the Assertion feeding b's terminating bz/bnz, or
// nil if b doesn't end in a conditional branch.
func branchAssertion(ast *stackast.BlockStackAST, b *cfg.BasicBlock, a FieldAnalysis) *Assertion {
	last := b.Last()
	if last == nil || (last.Op != teal.OpBZ && last.Op != teal.OpBNZ) {
		return nil
	}
	return BuildAssertion(ast, ast.OperandOf(last, 0), a)
}

// Analyze runs the four-phase framework over sub for FieldAnalysis a.
//
// Phase A builds each block's local value from its asserts (Null for a
// block containing err) and the Assertion of its terminating bz/bnz (if
// any); phase A-path derives the edge-specific true/false values for
// conditional branches. Phase B is a forward worklist propagating
// In/EdgeOut to a fixed point. Phase C is a backward worklist computing,
// for every block, the union over its successors of what each
// continuation guarantees. Phase D (the gtxn/absolute/relative index
// lift) is not part of this per-subroutine table: internal/detect's
// group-aware driver re-runs the detector with the AtAbsoluteIndex/
// AtRelativeOffset/SelfEquivalent field predicates from key.go instead.
func Analyze(sub *cfg.Subroutine, a FieldAnalysis) *Table {
	blocks := sub.Blocks
	index := make(map[int]int, len(blocks))
	for i, b := range blocks {
		index[b.ID] = i
	}
	g := blockGraph{blocks: blocks, index: index}
	bg := graph.MakeBiGraph(g)

	lattice := a.Lattice
	t := &Table{
		Analysis:   a,
		Subroutine: sub,
		In:         make(map[int]Value, len(blocks)),
		EdgeOut:    make(map[int]map[int]Value, len(blocks)),
		Guaranteed: make(map[int]Value, len(blocks)),
	}
	for _, b := range blocks {
		t.In[b.ID] = lattice.Null()
	}
	if sub.Entry != nil {
		t.In[sub.Entry.ID] = lattice.Universal()
	}

	local := make(map[int]Value, len(blocks))
	branches := make(map[int]*Assertion, len(blocks))
	for _, b := range blocks {
		ast := stackast.Build(b)
		local[b.ID] = localConstraint(ast, b, a)
		branches[b.ID] = branchAssertion(ast, b, a)
	}

	// linkEdges always appends the branch-target edge before the
	// fallthrough edge for bz/bnz (see internal/cfg/builder.go), so
	// Succs[0] is the target and Succs[1], when present, is fallthrough.
	effectiveIn := make(map[int]Value, len(blocks))
	computeOut := func(bi int) {
		b := blocks[bi]
		ein := lattice.Intersection(t.In[b.ID], local[b.ID])
		effectiveIn[b.ID] = ein
		if b.IsCallsub {
			edgeVals := make(map[int]Value, 1)
			if b.ReturnTo != nil {
				edgeVals[b.ReturnTo.ID] = ein
			}
			t.EdgeOut[b.ID] = edgeVals
			return
		}
		assertion := branches[b.ID]
		edgeVals := make(map[int]Value, len(b.Succs))
		for si, e := range b.Succs {
			v := ein
			if assertion != nil && len(b.Succs) > 1 {
				targetIsTrue := b.Last().Op == teal.OpBNZ
				isTargetEdge := si == 0
				takeTrue := isTargetEdge == targetIsTrue
				if takeTrue {
					v = lattice.Intersection(ein, assertion.TrueValue(lattice))
				} else {
					v = lattice.Intersection(ein, assertion.FalseValue(lattice))
				}
			}
			edgeVals[e.Block.ID] = v
		}
		t.EdgeOut[b.ID] = edgeVals
	}
	for i := range blocks {
		computeOut(i)
	}

	graph.Worklist(bg, false, func(ni int) bool {
		b := blocks[ni]
		newIn := lattice.Null()
		if b == sub.Entry {
			newIn = lattice.Universal()
		}
		for _, pi := range bg.In(ni) {
			pred := blocks[pi]
			newIn = lattice.Union(newIn, t.EdgeOut[pred.ID][b.ID])
		}
		if lattice.Equal(newIn, t.In[b.ID]) {
			return false
		}
		t.In[b.ID] = newIn
		computeOut(ni)
		return true
	})

	// A block with no successors in this subroutine's graph never gets
	// visited by the backward worklist below, so its own in-block
	// narrowing (asserts right before a return/err/retsub) has to be
	// seeded here rather than folded in via an EdgeOut entry it doesn't
	// have.
	for i, b := range blocks {
		if len(bg.Out(i)) == 0 {
			t.Guaranteed[b.ID] = effectiveIn[b.ID]
		} else {
			t.Guaranteed[b.ID] = lattice.Universal()
		}
	}
	graph.Worklist(bg, true, func(ni int) bool {
		b := blocks[ni]
		succs := bg.Out(ni)
		if len(succs) == 0 {
			return false
		}
		newG := lattice.Null()
		for _, si := range succs {
			succID := blocks[si].ID
			onEdge := lattice.Intersection(t.EdgeOut[b.ID][succID], t.Guaranteed[succID])
			newG = lattice.Union(newG, onEdge)
		}
		if lattice.Equal(newG, t.Guaranteed[b.ID]) {
			return false
		}
		t.Guaranteed[b.ID] = newG
		return true
	})

	return t
}
