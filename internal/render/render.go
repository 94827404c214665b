// Package render produces the Graphviz call-graph visualization of a
// scheduler run. It is a best-effort side channel: the zero receiver is a
// valid no-op, so callers record nodes and edges unconditionally.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Style maps a node's fate during the run to its visual treatment.
type Style int

const (
	StyleDiscovered Style = iota
	StyleProcessed
	StyleWhitelisted
	StyleBlacklisted
	StyleIgnored
	StyleParseFailed
	StyleMissing
)

type edge struct {
	from, to string
}

// CallGraph accumulates the nodes and edges seen during a run. A nil
// CallGraph accepts and discards everything.
type CallGraph struct {
	styles map[string]Style
	order  []string
	edges  []edge
}

// New returns an empty call graph recorder.
func New() *CallGraph {
	return &CallGraph{styles: make(map[string]Style)}
}

// Node records a node with the given style. Recording the same name again
// updates its style; a node's final fate wins over its discovery state.
func (g *CallGraph) Node(name string, style Style) {
	if g == nil {
		return
	}
	if _, seen := g.styles[name]; !seen {
		g.order = append(g.order, name)
	}
	g.styles[name] = style
}

// Edge records a caller-to-callee edge. Both endpoints must also be
// recorded via Node at some point before rendering.
func (g *CallGraph) Edge(from, to string) {
	if g == nil {
		return
	}
	g.edges = append(g.edges, edge{from: from, to: to})
}

// WriteDOT renders the recorded graph in Graphviz DOT format. Node names
// are upper-cased for display, matching Fortran convention.
func (g *CallGraph) WriteDOT(w io.Writer) error {
	if g == nil {
		return nil
	}
	dg := graph.New(graph.StringHash, graph.Directed())
	for _, name := range g.order {
		err := dg.AddVertex(strings.ToUpper(name), attributes(g.styles[name])...)
		if err != nil {
			return fmt.Errorf("adding node %q: %w", name, err)
		}
	}
	for _, e := range g.edges {
		err := dg.AddEdge(strings.ToUpper(e.from), strings.ToUpper(e.to))
		if err != nil && err != graph.ErrEdgeAlreadyExists {
			return fmt.Errorf("adding edge %q -> %q: %w", e.from, e.to, err)
		}
	}
	return draw.DOT(dg, w)
}

func attributes(s Style) []func(*graph.VertexProperties) {
	attrs := []func(*graph.VertexProperties){
		graph.VertexAttribute("style", "filled"),
	}
	color := func(c string) {
		attrs = append(attrs, graph.VertexAttribute("color", c))
	}
	switch s {
	case StyleProcessed:
		color("limegreen")
	case StyleWhitelisted:
		color("limegreen")
		attrs = append(attrs,
			graph.VertexAttribute("shape", "diamond"),
			graph.VertexAttribute("style", "filled,rounded"),
		)
	case StyleBlacklisted:
		color("orangered")
	case StyleIgnored:
		color("lightblue")
		attrs = append(attrs, graph.VertexAttribute("shape", "box"))
	case StyleParseFailed:
		color("red")
	case StyleMissing:
		color("lightsalmon")
	default:
		color("lightblue")
	}
	return attrs
}
