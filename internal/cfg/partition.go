package cfg

import "github.com/crytic/tealer-go/internal/teal"

// partitionSubroutines groups already-linked blocks into subroutines: the
// __main__ pseudo-subroutine owns the entry block, and every callsub
// target label roots its own subroutine. Flood-fill from each root
// follows ordinary edges but, at a callsub block, follows ReturnTo (the
// caller-side continuation) instead of Succs (which leads into the
// callee, a different subroutine) — the one place this departs from a
// generic reachability walk.
func partitionSubroutines(c *Contract, blocks []*BasicBlock, labelIndex map[string]int, order []*teal.Instruction) error {
	byIndex := make([]*BasicBlock, len(blocks))
	copy(byIndex, blocks)

	type root struct {
		name  string
		entry *BasicBlock
	}
	var roots []root
	seenRoot := map[*BasicBlock]bool{}

	main := &Subroutine{Name: MainSubroutineName, IsMain: true, Entry: blocks[0]}
	c.Subroutines[MainSubroutineName] = main
	c.SubroutineOrder = append(c.SubroutineOrder, MainSubroutineName)
	roots = append(roots, root{MainSubroutineName, blocks[0]})
	seenRoot[blocks[0]] = true

	for _, b := range blocks {
		last := b.Last()
		if last == nil || last.Op != teal.OpCallSub {
			continue
		}
		target := byIndex[order[labelIndex[last.Target]].BlockIndex]
		if seenRoot[target] {
			continue
		}
		seenRoot[target] = true
		sub := &Subroutine{Name: last.Target, Entry: target}
		c.Subroutines[last.Target] = sub
		c.SubroutineOrder = append(c.SubroutineOrder, last.Target)
		roots = append(roots, root{last.Target, target})
	}

	visited := make(map[*BasicBlock]bool, len(blocks))
	for _, r := range roots {
		sub := c.Subroutines[r.name]
		floodFill(sub, r.entry, visited)
	}
	// Dead code unreachable from __main__ or any subroutine entry: TEAL
	// permits unreferenced instructions after an unconditional jump or
	// err; attribute them to __main__ so every block still belongs to
	// some subroutine.
	for _, b := range blocks {
		if !visited[b] {
			visited[b] = true
			b.Subroutine = main
			main.Blocks = append(main.Blocks, b)
		}
	}

	for _, sub := range c.Subroutines {
		for _, b := range sub.Blocks {
			if b.IsRetsub {
				if sub.IsMain {
					return &Error{Kind: ErrMismatchedRetsub, File: c.File, Line: b.Last().Line, Message: "retsub with no callsub in scope"}
				}
				sub.RetsubBlocks = append(sub.RetsubBlocks, b)
			}
			if b.IsLeaf {
				sub.ExitBlocks = append(sub.ExitBlocks, b)
			}
		}
	}
	for _, b := range blocks {
		if !b.IsCallsub || len(b.Succs) == 0 {
			continue
		}
		callee := b.Succs[0].Block.Subroutine
		callee.CallSites = append(callee.CallSites, b)
	}
	return nil
}

func floodFill(sub *Subroutine, entry *BasicBlock, visited map[*BasicBlock]bool) {
	queue := []*BasicBlock{entry}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if visited[b] {
			continue
		}
		visited[b] = true
		b.Subroutine = sub
		sub.Blocks = append(sub.Blocks, b)

		if b.IsCallsub {
			if b.ReturnTo != nil && !visited[b.ReturnTo] {
				queue = append(queue, b.ReturnTo)
			}
			continue
		}
		for _, e := range b.Succs {
			if !visited[e.Block] {
				queue = append(queue, e.Block)
			}
		}
	}
}
