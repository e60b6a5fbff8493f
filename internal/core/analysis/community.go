package analysis

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"

	"ppiviz/internal/domain"
)

// louvain runs gonum's modularity optimisation with edge weights honoured
func louvain(g *domain.InteractionGraph, opts Options) (*domain.Annotation, error) {
	labels := make(map[string]int, g.NodeCount())
	if g.EdgeCount() == 0 {
		for i, v := range g.Nodes() {
			labels[v] = i
		}
		return domain.NewLabelAnnotation(domain.MethodCommunityLouvain, labels), nil
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	reduced := community.Modularize(g.Gonum(), opts.Resolution, src)

	membership := make([]int, g.NodeCount())
	for c, members := range reduced.Communities() {
		for _, n := range members {
			membership[n.ID()] = c
		}
	}
	for i, l := range relabel(membership) {
		labels[g.Name(int64(i))] = l
	}
	return domain.NewLabelAnnotation(domain.MethodCommunityLouvain, labels), nil
}

// relabel renumbers a membership vector so that labels appear in node
// enumeration order: the first node gets 0, the next unseen group 1, and so on
func relabel(membership []int) []int {
	seen := make(map[int]int)
	out := make([]int, len(membership))
	for i, c := range membership {
		l, ok := seen[c]
		if !ok {
			l = len(seen)
			seen[c] = l
		}
		out[i] = l
	}
	return out
}

// Modularity computes the weighted modularity Q of a partition annotation
func Modularity(g *domain.InteractionGraph, ann *domain.Annotation, resolution float64) float64 {
	if ann == nil || ann.Labels == nil || g.EdgeCount() == 0 {
		return 0
	}
	groups := make(map[int][]graph.Node)
	for _, v := range g.Nodes() {
		id, _ := g.ID(v)
		c := ann.Labels[v]
		groups[c] = append(groups[c], g.Gonum().Node(id))
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	communities := make([][]graph.Node, 0, len(keys))
	for _, k := range keys {
		communities = append(communities, groups[k])
	}
	return community.Q(g.Gonum(), communities, resolution)
}
