package detect

import "github.com/crytic/tealer-go/internal/cfg"

// Path is one block sequence the single-function driver walked from a
// function's entry to a leaf.
type Path struct {
	Blocks     []*cfg.BasicBlock
	Vulnerable bool
}

// PathFilter, if non-nil, accepts or rejects an otherwise-vulnerable path
// before it is recorded — for example, a group-aware caller that only
// wants paths reaching a specific state-changing opcode.
type PathFilter func(Path) bool

// Result is everything DetectMissing found for one function.
type Result struct {
	Detector *Detector
	Paths    []Path
}

// VulnerablePaths returns only the paths flagged vulnerable.
func (r Result) VulnerablePaths() []Path {
	var out []Path
	for _, p := range r.Paths {
		if p.Vulnerable {
			out = append(out, p)
		}
	}
	return out
}
