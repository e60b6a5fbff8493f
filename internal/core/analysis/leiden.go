package analysis

import (
	"sort"

	"ppiviz/internal/domain"
)

const (
	maxLeidenLevels = 32
	maxLocalSweeps  = 100
)

// wgraph is a compact weighted graph used across Leiden aggregation levels.
// self holds the weight of self loops created by aggregation.
type wgraph struct {
	adj    []map[int]float64
	self   []float64
	degree []float64
	total  float64 // m: sum of edge weights, self loops included
}

func newWGraph(n int) *wgraph {
	w := &wgraph{
		adj:    make([]map[int]float64, n),
		self:   make([]float64, n),
		degree: make([]float64, n),
	}
	for i := range w.adj {
		w.adj[i] = make(map[int]float64)
	}
	return w
}

func (w *wgraph) addEdge(u, v int, weight float64) {
	if u == v {
		w.self[u] += weight
		w.degree[u] += 2 * weight
		w.total += weight
		return
	}
	w.adj[u][v] += weight
	w.adj[v][u] += weight
	w.degree[u] += weight
	w.degree[v] += weight
	w.total += weight
}

func (w *wgraph) len() int { return len(w.adj) }

// leiden finds communities by alternating local moves, refinement and
// aggregation until a level makes no change. Aggregation works on the refined
// partition, so every community it returns is connected.
func leiden(g *domain.InteractionGraph, opts Options) (*domain.Annotation, error) {
	n := g.NodeCount()
	labels := make(map[string]int, n)
	if n == 0 {
		return domain.NewLabelAnnotation(domain.MethodCommunityLeiden, labels), nil
	}

	base := newWGraph(n)
	for _, e := range g.Edges() {
		u, _ := g.ID(e.A)
		v, _ := g.ID(e.B)
		base.addEdge(int(u), int(v), e.Score)
	}

	// nodeOf maps original nodes to nodes of the current level
	nodeOf := make([]int, n)
	for i := range nodeOf {
		nodeOf[i] = i
	}

	current := base
	partition := singletons(current.len())
	for level := 0; level < maxLeidenLevels && current.total > 0; level++ {
		moved := localMoves(current, partition, opts.Resolution)
		refined := refine(current, partition, opts.Resolution)

		if !moved && countGroups(refined) == current.len() {
			break
		}

		agg, coarse := aggregate(current, refined, partition)
		for i := range nodeOf {
			nodeOf[i] = refined[nodeOf[i]]
		}
		if agg.len() == current.len() {
			partition = coarse
			break
		}
		current = agg
		partition = coarse
	}

	membership := make([]int, n)
	for i := range membership {
		membership[i] = partition[nodeOf[i]]
	}
	for i, l := range relabel(membership) {
		labels[g.Name(int64(i))] = l
	}
	return domain.NewLabelAnnotation(domain.MethodCommunityLeiden, labels), nil
}

func singletons(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// localMoves greedily moves nodes to the neighbouring community with the
// largest modularity gain. It reports whether any node moved.
func localMoves(w *wgraph, partition []int, resolution float64) bool {
	m := w.total
	if m == 0 {
		return false
	}
	commDegree := make(map[int]float64)
	for i, c := range partition {
		commDegree[c] += w.degree[i]
	}

	movedAny := false
	for sweep := 0; sweep < maxLocalSweeps; sweep++ {
		moved := false
		for i := 0; i < w.len(); i++ {
			current := partition[i]
			ki := w.degree[i]

			// Weight from i to each neighbouring community
			links := make(map[int]float64)
			for j, wt := range w.adj[i] {
				links[partition[j]] += wt
			}

			commDegree[current] -= ki
			best := current
			bestGain := links[current] - resolution*ki*commDegree[current]/(2*m)
			candidates := make([]int, 0, len(links))
			for c := range links {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)
			for _, c := range candidates {
				gain := links[c] - resolution*ki*commDegree[c]/(2*m)
				if gain > bestGain+1e-12 {
					best = c
					bestGain = gain
				}
			}
			commDegree[best] += ki

			if best != current {
				partition[i] = best
				moved = true
				movedAny = true
			}
		}
		if !moved {
			break
		}
	}
	return movedAny
}

// refine builds the refined partition used for aggregation. Every community
// starts as singletons. A node that is well connected to the rest of its
// community joins the well-connected subset, among those it links to, with
// the largest non-negative modularity gain. Subsets only grow along edges, so
// each one is connected.
//
// The merge takes the best subset rather than sampling by gain, so the result
// depends only on node order. Returned ids are dense.
func refine(w *wgraph, partition []int, resolution float64) []int {
	n := w.len()
	refined := singletons(n)
	if w.total == 0 {
		return refined
	}
	m2 := 2 * w.total

	commDegree := make(map[int]float64)
	for i, c := range partition {
		commDegree[c] += w.degree[i]
	}

	// Per subset, keyed by its founding node: member count, summed degree,
	// and edge weight to the rest of its community
	size := make([]int, n)
	subDegree := make([]float64, n)
	external := make([]float64, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		subDegree[i] = w.degree[i]
		for j, wt := range w.adj[i] {
			if partition[j] == partition[i] {
				external[i] += wt
			}
		}
	}
	wellConnected := func(c, comm int) bool {
		return external[c] >= resolution*subDegree[c]*(commDegree[comm]-subDegree[c])/m2
	}

	for v := 0; v < n; v++ {
		if refined[v] != v || size[v] != 1 {
			continue
		}
		comm := partition[v]
		if !wellConnected(v, comm) {
			continue
		}

		links := make(map[int]float64)
		for j, wt := range w.adj[v] {
			if partition[j] == comm {
				links[refined[j]] += wt
			}
		}
		candidates := make([]int, 0, len(links))
		for c := range links {
			candidates = append(candidates, c)
		}
		sort.Ints(candidates)

		best, bestGain := -1, 0.0
		for _, c := range candidates {
			if !wellConnected(c, comm) {
				continue
			}
			gain := links[c] - resolution*w.degree[v]*subDegree[c]/m2
			if gain < 0 {
				continue
			}
			if best < 0 || gain > bestGain+1e-12 {
				best, bestGain = c, gain
			}
		}
		if best < 0 {
			continue
		}

		external[best] += external[v] - 2*links[best]
		subDegree[best] += w.degree[v]
		size[best] += size[v]
		size[v] = 0
		refined[v] = best
	}
	return relabel(refined)
}

// aggregate collapses refined communities into single nodes. The returned
// partition places each aggregate node in the community of its members.
func aggregate(w *wgraph, refined, partition []int) (*wgraph, []int) {
	k := countGroups(refined)
	agg := newWGraph(k)
	for u := 0; u < w.len(); u++ {
		if w.self[u] > 0 {
			agg.addEdge(refined[u], refined[u], w.self[u])
		}
		for v, wt := range w.adj[u] {
			if u < v {
				agg.addEdge(refined[u], refined[v], wt)
			}
		}
	}

	coarse := make([]int, k)
	dense := make(map[int]int)
	for u := 0; u < w.len(); u++ {
		c, ok := dense[partition[u]]
		if !ok {
			c = len(dense)
			dense[partition[u]] = c
		}
		coarse[refined[u]] = c
	}
	return agg, coarse
}

func countGroups(p []int) int {
	seen := make(map[int]struct{}, len(p))
	for _, c := range p {
		seen[c] = struct{}{}
	}
	return len(seen)
}
