package report

import (
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/crytic/tealer-go/internal/cfg"
	"github.com/crytic/tealer-go/internal/detect"
	"github.com/crytic/tealer-go/internal/graph"
)

// PathSummary is one reported path's JSON shape: the arrow-chain short
// form plus every block's rendered instruction lines, per spec.md section
// 6's `{short: "B0 -> B3 -> ...", blocks: [["n: instr", ...], ...]}`.
type PathSummary struct {
	Short  string     `json:"short"`
	Blocks [][]string `json:"blocks"`
}

// ExecutionPaths is the single-function detector output shape.
type ExecutionPaths struct {
	Check       string        `json:"check"`
	Description string        `json:"description"`
	Help        string        `json:"help"`
	Paths       []PathSummary `json:"paths"`

	blocks []*cfg.BasicBlock // union of blocks touched by any reported path, for DOT rendering
}

// BuildExecutionPaths assembles the JSON/DOT-ready report from one
// detector's result over one function. result is expected to already be
// filtered to vulnerable paths (detect.Result.Paths from DetectMissing are
// all vulnerable by construction), so every block it touches is drawn
// highlighted in the DOT rendering.
func BuildExecutionPaths(result detect.Result) ExecutionPaths {
	d := result.Detector
	out := ExecutionPaths{
		Check:       d.Name,
		Description: d.Description,
		Help:        d.Help,
	}
	seen := make(map[int]bool)
	for _, p := range result.VulnerablePaths() {
		summary := PathSummary{Short: ShortPath(p.Blocks)}
		for _, b := range p.Blocks {
			summary.Blocks = append(summary.Blocks, BlockLines(b))
			if !seen[b.ID] {
				seen[b.ID] = true
				out.blocks = append(out.blocks, b)
			}
		}
		out.Paths = append(out.Paths, summary)
	}
	return out
}

// WriteJSON encodes the report with json-iterator's standard-library-
// compatible config (SPEC_FULL.md section 1.1's output-serialization
// choice).
func (e ExecutionPaths) WriteJSON(w io.Writer) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(e)
}

// pathGraph adapts the union of a report's touched blocks to graph.Graph
// for DOT rendering, following real Succs edges (callsub/retsub nuance
// doesn't matter for a human-facing rendering of which blocks a reported
// path passed through).
type pathGraph struct {
	blocks []*cfg.BasicBlock
	index  map[int]int
}

func (g pathGraph) NumNodes() int { return len(g.blocks) }

func (g pathGraph) Out(i int) []int {
	var out []int
	for _, e := range g.blocks[i].Succs {
		if idx, ok := g.index[e.Block.ID]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// WriteDot renders every block touched by a reported path as a DOT graph,
// with vulnerable-path blocks highlighted (spec.md section 6: "each path
// emittable as a DOT file with vulnerable blocks highlighted"). Since
// ExecutionPaths only ever holds vulnerable paths, every block it tracks
// is highlighted.
func (e ExecutionPaths) WriteDot(w io.Writer, name string) error {
	g := pathGraph{blocks: e.blocks, index: make(map[int]int, len(e.blocks))}
	for i, b := range e.blocks {
		g.index[b.ID] = i
	}
	d := graph.Dot{
		Name: name,
		Label: func(i int) string {
			return BlockShort(g.blocks[i]) + "\\n" + strings.Join(BlockLines(g.blocks[i]), "\\n")
		},
		Highlight: func(i int) bool { return true },
	}
	return d.Fprint(g, w)
}
