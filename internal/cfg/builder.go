package cfg

import (
	"fmt"

	"github.com/crytic/tealer-go/internal/teal"
)

// Contract is a fully built CFG: every instruction assigned to a block,
// every block assigned to a subroutine, every intra-procedural and
// call/return edge linked.
type Contract struct {
	File    string
	Version int

	Blocks []*BasicBlock

	// Subroutines is keyed by name; MainSubroutineName is always present.
	Subroutines map[string]*Subroutine
	// SubroutineOrder lists subroutine names in declaration order
	// (__main__ first) for deterministic iteration.
	SubroutineOrder []string
}

// Main returns the implicit top-level pseudo-subroutine.
func (c *Contract) Main() *Subroutine { return c.Subroutines[MainSubroutineName] }

// Build partitions a flat instruction sequence (as produced by
// internal/teal.Parse) into basic blocks, links control-flow edges, and
// groups blocks into subroutines.
//
// This is a four-pass algorithm, grounded on obj/internal/asm.BasicBlocks's
// start-PC-discovery-then-partition structure (pass 1/2 here), extended
// with retsub-aware label scoping and subroutine partitioning (passes 3/4)
// that obj/internal/asm has no analog for since Go assembly has no
// equivalent of callsub/retsub's dynamic return target.
//
//  1. Sequential pass: strip label markers into a name->index table over
//     the real (non-label) instructions, and detect undefined branch
//     targets.
//  2. Block-start discovery: the entry instruction, branch targets, and
//     the instruction after every terminator or conditional branch each
//     start a new block.
//  3. Partition instructions into blocks in order, and link fallthrough,
//     branch, and call edges between them.
//  4. Subroutine partitioning: flood-fill from __main__'s entry and from
//     every callsub target, stopping at subroutine boundaries (callsub's
//     real successor belongs to the callee; its ReturnTo block belongs to
//     the caller).
func Build(file string, version int, instrs []*teal.Instruction) (*Contract, error) {
	labelIndex, order, err := indexLabels(file, instrs)
	if err != nil {
		return nil, err
	}
	if err := validateTargets(file, order, labelIndex); err != nil {
		return nil, err
	}

	starts := discoverBlockStarts(order, labelIndex)
	blocks, instrToBlock := partition(order, starts)

	if err := linkEdges(file, blocks, instrToBlock, labelIndex, order); err != nil {
		return nil, err
	}

	c := &Contract{
		File:        file,
		Version:     version,
		Blocks:      blocks,
		Subroutines: make(map[string]*Subroutine),
	}
	classifyLeaves(blocks)
	if err := partitionSubroutines(c, blocks, labelIndex, order); err != nil {
		return nil, err
	}
	return c, nil
}

// indexLabels returns the real (non-label-marker) instructions in order
// and a map from label name to the index (within that slice) of the
// instruction immediately following the label.
func indexLabels(file string, instrs []*teal.Instruction) (map[string]int, []*teal.Instruction, error) {
	labelIndex := make(map[string]int)
	var order []*teal.Instruction
	pendingLabels := []string{}
	for _, in := range instrs {
		if in.IsLabel() {
			pendingLabels = append(pendingLabels, in.Label)
			continue
		}
		idx := len(order)
		for _, l := range pendingLabels {
			labelIndex[l] = idx
		}
		pendingLabels = pendingLabels[:0]
		order = append(order, in)
	}
	if len(pendingLabels) > 0 {
		// Trailing labels with no following instruction: point them
		// at the sentinel index -1; any branch to them is reported as
		// undefined since there is nothing to execute.
		for _, l := range pendingLabels {
			labelIndex[l] = -1
		}
	}
	return labelIndex, order, nil
}

func validateTargets(file string, order []*teal.Instruction, labelIndex map[string]int) error {
	for _, in := range order {
		if !in.Op.IsBranch() {
			continue
		}
		idx, ok := labelIndex[in.Target]
		if !ok || idx < 0 {
			return &Error{Kind: ErrUndefinedLabel, File: file, Line: in.Line, Message: fmt.Sprintf("branch to undefined label %q", in.Target)}
		}
	}
	return nil
}

func discoverBlockStarts(order []*teal.Instruction, labelIndex map[string]int) map[int]bool {
	starts := map[int]bool{0: true}
	for i, in := range order {
		if in.Op.IsBranch() {
			starts[labelIndex[in.Target]] = true
			if i+1 < len(order) {
				starts[i+1] = true
			}
		} else if in.Op.IsTerminator() {
			if i+1 < len(order) {
				starts[i+1] = true
			}
		}
	}
	return starts
}

func partition(order []*teal.Instruction, starts map[int]bool) ([]*BasicBlock, map[*teal.Instruction]*BasicBlock) {
	var startIdx []int
	for i := range order {
		if starts[i] {
			startIdx = append(startIdx, i)
		}
	}
	blocks := make([]*BasicBlock, 0, len(startIdx))
	instrToBlock := make(map[*teal.Instruction]*BasicBlock, len(order))
	for bi, s := range startIdx {
		e := len(order)
		if bi+1 < len(startIdx) {
			e = startIdx[bi+1]
		}
		b := &BasicBlock{ID: bi, Instructions: order[s:e]}
		for j, in := range b.Instructions {
			in.BlockIndex = bi
			in.IndexInBlock = j
			instrToBlock[in] = b
		}
		blocks = append(blocks, b)
	}
	return blocks, instrToBlock
}

func linkEdges(file string, blocks []*BasicBlock, instrToBlock map[*teal.Instruction]*BasicBlock, labelIndex map[string]int, order []*teal.Instruction) error {
	blockOf := func(idx int) *BasicBlock {
		if idx < 0 || idx >= len(order) {
			return nil
		}
		return instrToBlock[order[idx]]
	}
	for bi, b := range blocks {
		last := b.Last()
		if last == nil {
			continue
		}
		nextIdx := last.IndexInBlock
		_ = nextIdx
		fallthroughBlock := func() *BasicBlock {
			if bi+1 < len(blocks) {
				return blocks[bi+1]
			}
			return nil
		}

		switch {
		case last.Op == teal.OpCallSub:
			target := blockOf(labelIndex[last.Target])
			if target == nil {
				return &Error{Kind: ErrUndefinedLabel, File: file, Line: last.Line, Message: fmt.Sprintf("callsub to undefined label %q", last.Target)}
			}
			addEdge(b, target)
			b.IsCallsub = true
			b.ReturnTo = fallthroughBlock()
		case last.Op == teal.OpRetSub:
			b.IsRetsub = true
		case last.Op == teal.OpB:
			target := blockOf(labelIndex[last.Target])
			addEdge(b, target)
		case last.Op == teal.OpBZ || last.Op == teal.OpBNZ:
			target := blockOf(labelIndex[last.Target])
			addEdge(b, target)
			if ft := fallthroughBlock(); ft != nil {
				addEdge(b, ft)
			}
		case last.Op.IsTerminator():
			// err / return: no successors.
		default:
			if ft := fallthroughBlock(); ft != nil {
				addEdge(b, ft)
			}
		}
	}
	return nil
}

func classifyLeaves(blocks []*BasicBlock) {
	for _, b := range blocks {
		last := b.Last()
		if last == nil {
			b.IsLeaf = len(b.Succs) == 0
			continue
		}
		if last.Op == teal.OpReturn || last.Op == teal.OpErr {
			b.IsLeaf = true
		} else if len(b.Succs) == 0 && !b.IsRetsub {
			// Fell off the end of the program with no explicit
			// return: still a leaf for driver purposes.
			b.IsLeaf = true
		}
	}
}
