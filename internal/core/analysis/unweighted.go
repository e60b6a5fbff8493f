package analysis

import (
	"gonum.org/v1/gonum/graph/simple"

	"ppiviz/internal/domain"
)

// unweighted copies the topology into a plain undirected graph so that
// weight-aware gonum routines treat every edge as 1
func unweighted(g *domain.InteractionGraph) *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	for _, v := range g.Nodes() {
		id, _ := g.ID(v)
		u.AddNode(simple.Node(id))
	}
	for _, e := range g.Edges() {
		a, _ := g.ID(e.A)
		b, _ := g.ID(e.B)
		u.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	}
	return u
}
