package graph

import (
	"fmt"
	"io"
	"strconv"
)

// Dot renders a Graph as Graphviz DOT source.
type Dot struct {
	Name string
	// Label returns the label for node i; defaults to its index.
	Label func(i int) string
	// EdgeLabel returns the label for the edge i->j, or "" for none.
	EdgeLabel func(i, j int) string
	// Highlight reports whether node i should be drawn emphasized
	// (internal/report uses this to mark vulnerable blocks along a
	// reported execution path).
	Highlight func(i int) bool
}

func (d Dot) label(i int) string {
	if d.Label == nil {
		return strconv.Itoa(i)
	}
	return d.Label(i)
}

// Fprint writes g's DOT form to w.
func (d Dot) Fprint(g Graph, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "digraph %s {\n", dotString(d.Name)); err != nil {
		return err
	}
	for i := 0; i < g.NumNodes(); i++ {
		attrs := fmt.Sprintf("label=%s", dotString(d.label(i)))
		if d.Highlight != nil && d.Highlight(i) {
			attrs += `, style=filled, fillcolor="#f4b4b4"`
		}
		if _, err := fmt.Fprintf(w, "  n%d [%s];\n", i, attrs); err != nil {
			return err
		}
		for _, j := range g.Out(i) {
			edgeAttrs := ""
			if d.EdgeLabel != nil {
				if lbl := d.EdgeLabel(i, j); lbl != "" {
					edgeAttrs = fmt.Sprintf(" [label=%s]", dotString(lbl))
				}
			}
			if _, err := fmt.Fprintf(w, "  n%d -> n%d%s;\n", i, j, edgeAttrs); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func dotString(s string) string {
	return strconv.Quote(s)
}
