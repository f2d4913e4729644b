package memory

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/vkgraph/pkg/graph"
)

// ToDOT converts the stored graph to Graphviz DOT. Persons are ellipses,
// groups are boxes, Subscribe edges are dashed.
func (s *Store) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, k := range s.IdentityKeys() {
		id, _ := s.Identity(k)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse];\n", k.String(), label(id.Name, id.Handle, k.String()))
	}
	for _, k := range s.GroupKeys() {
		g, _ := s.Group(k)
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box, fillcolor=lightgrey];\n", k.String(), label(g.Name, g.Handle, k.String()))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges() {
		style := "solid"
		if e.Relation == graph.Subscribe {
			style = "dashed"
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=%s];\n", e.From.String(), e.To.String(), style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(name, handle, fallback string) string {
	switch {
	case name != "" && handle != "":
		return name + "\n@" + handle
	case name != "":
		return name
	default:
		return fallback
	}
}
