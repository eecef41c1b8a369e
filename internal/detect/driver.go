package detect

import (
	"github.com/crytic/tealer-go/internal/cfg"
	"github.com/crytic/tealer-go/internal/context"
)

// frame is one entry in the DFS's explicit call stack (spec.md section
// 4.6): callsubBlock is nil for the outermost frame (the function's own
// entry, which has no caller within this analysis), executed tracks the
// blocks of subroutine that have run so far within this specific frame
// instance, for loop detection distinct from recursion detection.
type frame struct {
	callsubBlock *cfg.BasicBlock
	subroutine   *cfg.Subroutine
	executed     map[int]bool
}

func cloneStack(stack []*frame) []*frame {
	out := make([]*frame, len(stack))
	for i, f := range stack {
		executed := make(map[int]bool, len(f.executed))
		for k := range f.executed {
			executed[k] = true
		}
		out[i] = &frame{callsubBlock: f.callsubBlock, subroutine: f.subroutine, executed: executed}
	}
	return out
}

func clonePath(path []*cfg.BasicBlock) []*cfg.BasicBlock {
	out := make([]*cfg.BasicBlock, len(path))
	copy(out, path)
	return out
}

// DetectMissing enumerates vulnerable paths from entry's start block per
// spec.md section 4.6: a DFS that prunes at any block where d's field is
// guaranteed safe for every continuation, and records a path as
// vulnerable at every leaf it reaches without that guarantee. absoluteIndex
// is the transaction's own position in its group, if known (folded into
// the Self view via context.SelfEquivalent so a roundabout "gtxn (self)
// field" check is recognized the same as a plain "txn field" check).
// filter, if non-nil, can reject an otherwise-vulnerable path.
func DetectMissing(entry *cfg.Subroutine, d *Detector, absoluteIndex *int, filter PathFilter) Result {
	return detectMissing(entry, d, absoluteIndex, filter, nil)
}

// DetectMissingTraced is DetectMissing with a DebugTree recording the DFS
// (push on block entry, leaf on prune/report, pop on return), for
// cmd/tealer's --trace-detector flag (SPEC_FULL.md section 4.10).
func DetectMissingTraced(entry *cfg.Subroutine, d *Detector, absoluteIndex *int, filter PathFilter, trace *DebugTree) Result {
	return detectMissing(entry, d, absoluteIndex, filter, trace)
}

func detectMissing(entry *cfg.Subroutine, d *Detector, absoluteIndex *int, filter PathFilter, trace *DebugTree) Result {
	analysis := context.SelfEquivalent(d.Analysis, absoluteIndex)
	tables := make(map[string]*context.Table)
	tableFor := func(sub *cfg.Subroutine) *context.Table {
		if t, ok := tables[sub.Name]; ok {
			return t
		}
		t := context.Analyze(sub, analysis)
		tables[sub.Name] = t
		return t
	}

	var extraTableFor func(sub *cfg.Subroutine) *context.Table
	if d.Extra != nil {
		extraAnalysis := context.SelfEquivalent(*d.Extra, absoluteIndex)
		extraTables := make(map[string]*context.Table)
		extraTableFor = func(sub *cfg.Subroutine) *context.Table {
			if t, ok := extraTables[sub.Name]; ok {
				return t
			}
			t := context.Analyze(sub, extraAnalysis)
			extraTables[sub.Name] = t
			return t
		}
	}

	result := Result{Detector: d}
	record := func(path []*cfg.BasicBlock) {
		if trace != nil {
			trace.Leaf("vulnerable")
		}
		p := Path{Blocks: clonePath(path), Vulnerable: true}
		if filter != nil && !filter(p) {
			return
		}
		result.Paths = append(result.Paths, p)
	}

	var walk func(b *cfg.BasicBlock, stack []*frame, path []*cfg.BasicBlock)
	walk = func(b *cfg.BasicBlock, stack []*frame, path []*cfg.BasicBlock) {
		top := stack[len(stack)-1]
		if top.executed[b.ID] {
			// Back-edge within this frame: a loop, already covered by
			// the portion of the path that reached b the first time.
			if trace != nil {
				trace.Pushf("B%d", b.ID)
				trace.Leaf("loop")
				trace.Pop()
			}
			return
		}
		top.executed[b.ID] = true
		path = append(path, b)

		if trace != nil {
			trace.Pushf("B%d", b.ID)
			defer trace.Pop()
		}

		table := tableFor(top.subroutine)
		safe := false
		if d.Extra != nil {
			extraTable := extraTableFor(top.subroutine)
			safe = d.PairSafe(table.GuaranteedFrom(b), extraTable.GuaranteedFrom(b))
		} else {
			safe = d.Safe(table.GuaranteedFrom(b))
		}
		if safe {
			if trace != nil {
				trace.Leaf("safe")
			}
			return
		}

		switch {
		case b.IsRetsub:
			if len(stack) == 1 || top.callsubBlock == nil {
				record(path)
				return
			}
			ret := top.callsubBlock.ReturnTo
			if ret == nil {
				record(path)
				return
			}
			walk(ret, stack[:len(stack)-1], path)

		case b.IsCallsub && len(b.Succs) > 0:
			callee := b.Succs[0].Block
			for _, f := range stack {
				if f.subroutine == callee.Subroutine {
					// Recursion: stop exploring this branch (spec.md
					// section 4.6 step 4). Not a reportable leaf — just
					// a bound on how far this path is explored.
					if trace != nil {
						trace.Leaf("recursion")
					}
					return
				}
			}
			newFrame := &frame{callsubBlock: b, subroutine: callee.Subroutine, executed: map[int]bool{}}
			walk(callee, append(stack, newFrame), path)

		case len(b.Succs) == 0:
			record(path)

		default:
			for i, e := range b.Succs {
				branchStack, branchPath := stack, path
				if i+1 < len(b.Succs) {
					branchStack = cloneStack(stack)
					branchPath = clonePath(path)
				}
				walk(e.Block, branchStack, branchPath)
			}
		}
	}

	initial := &frame{subroutine: entry, executed: map[int]bool{}}
	walk(entry.Entry, []*frame{initial}, nil)
	return result
}
