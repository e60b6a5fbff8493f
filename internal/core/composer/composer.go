// Package composer merges per-gene interaction graphs into one graph and
// tags each node with its role.
package composer

import (
	"ppiviz/internal/domain"
)

// Compose unions interaction graphs. Nil graphs are skipped. With no graph
// left it returns nil, with one it returns that graph unchanged. Nodes are
// merged by name and an edge present in several graphs keeps the weight of
// the first graph that carries it.
func Compose(graphs ...*domain.InteractionGraph) *domain.InteractionGraph {
	present := make([]*domain.InteractionGraph, 0, len(graphs))
	for _, g := range graphs {
		if g != nil {
			present = append(present, g)
		}
	}

	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}

	merged := domain.NewInteractionGraph()
	for _, g := range present {
		for _, n := range g.Nodes() {
			merged.AddNode(n)
		}
		for _, e := range g.Edges() {
			merged.AddEdgeIfAbsent(e.A, e.B, e.Score)
		}
	}
	return merged
}

// TagRoles marks every node of the merged graph as queried or neighbor
func TagRoles(g *domain.InteractionGraph, queried []domain.Identifier) {
	if g == nil {
		return
	}
	for _, n := range g.Nodes() {
		if domain.MatchesQuery(n, queried) {
			g.SetRole(n, domain.RoleQueried)
		} else {
			g.SetRole(n, domain.RoleNeighbor)
		}
	}
}
