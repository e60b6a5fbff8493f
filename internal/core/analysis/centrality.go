package analysis

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/mat"

	"ppiviz/internal/domain"
)

// degreeCentrality is deg(v)/(n-1). A single node scores 1.
func degreeCentrality(g *domain.InteractionGraph, _ Options) (*domain.Annotation, error) {
	n := g.NodeCount()
	scores := make(map[string]float64, n)
	if n <= 1 {
		for _, v := range g.Nodes() {
			scores[v] = 1
		}
		return domain.NewScoreAnnotation(domain.MethodDegreeCentrality, scores), nil
	}
	s := 1 / float64(n-1)
	for _, v := range g.Nodes() {
		scores[v] = float64(g.Degree(v)) * s
	}
	return domain.NewScoreAnnotation(domain.MethodDegreeCentrality, scores), nil
}

// betweennessCentrality is unweighted Brandes betweenness normalized by
// 1/((n-1)(n-2)). gonum counts each unordered pair from both ends, which is
// what that normalization expects for undirected graphs.
func betweennessCentrality(g *domain.InteractionGraph, _ Options) (*domain.Annotation, error) {
	n := g.NodeCount()
	raw := network.Betweenness(unweighted(g))
	scale := 0.0
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}
	scores := make(map[string]float64, n)
	for _, v := range g.Nodes() {
		id, _ := g.ID(v)
		scores[v] = raw[id] * scale
	}
	return domain.NewScoreAnnotation(domain.MethodBetweennessCentrality, scores), nil
}

// closenessCentrality uses the Wasserman-Faust scaling so that nodes in
// small components do not dominate:
//
//	C(u) = (r-1)/sum(d(u,v)) * (r-1)/(n-1)
//
// where r is the size of u's component.
func closenessCentrality(g *domain.InteractionGraph, _ Options) (*domain.Annotation, error) {
	n := g.NodeCount()
	scores := make(map[string]float64, n)
	for _, v := range g.Nodes() {
		dist := bfsDistances(g, v)
		total := 0
		for _, d := range dist {
			total += d
		}
		r := len(dist)
		if total > 0 && n > 1 {
			c := float64(r-1) / float64(total)
			c *= float64(r-1) / float64(n-1)
			scores[v] = c
		} else {
			scores[v] = 0
		}
	}
	return domain.NewScoreAnnotation(domain.MethodClosenessCentrality, scores), nil
}

// bfsDistances returns hop counts from source to every reachable node,
// including the source itself at distance 0
func bfsDistances(g *domain.InteractionGraph, source string) map[int64]int {
	id, ok := g.ID(source)
	if !ok {
		return nil
	}
	gg := g.Gonum()
	dist := make(map[int64]int)
	var bf traverse.BreadthFirst
	bf.Walk(gg, gg.Node(id), func(n graph.Node, d int) bool {
		dist[n.ID()] = d
		return false
	})
	return dist
}

// eigenvectorCentrality runs power iteration on A + I with a uniform start
// vector. Edge weights are ignored. The result has unit Euclidean norm.
func eigenvectorCentrality(g *domain.InteractionGraph, opts Options) (*domain.Annotation, error) {
	n := g.NodeCount()
	if n == 0 {
		return domain.NewScoreAnnotation(domain.MethodEigenvectorCentrality, map[string]float64{}), nil
	}

	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetSym(i, i, 1)
	}
	for _, e := range g.Edges() {
		u, _ := g.ID(e.A)
		v, _ := g.ID(e.B)
		a.SetSym(int(u), int(v), 1)
	}

	x := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.SetVec(i, 1/float64(n))
	}
	next := mat.NewVecDense(n, nil)
	tol := float64(n) * opts.EigenTol

	for iter := 0; iter < opts.EigenMaxIter; iter++ {
		next.MulVec(a, x)
		norm := mat.Norm(next, 2)
		if norm == 0 {
			norm = 1
		}
		next.ScaleVec(1/norm, next)

		diff := 0.0
		for i := 0; i < n; i++ {
			diff += math.Abs(next.AtVec(i) - x.AtVec(i))
		}
		x.CopyVec(next)
		if diff < tol {
			scores := make(map[string]float64, n)
			for i, v := range g.Nodes() {
				scores[v] = x.AtVec(i)
			}
			return domain.NewScoreAnnotation(domain.MethodEigenvectorCentrality, scores), nil
		}
	}
	return nil, &domain.ConvergenceError{Method: domain.MethodEigenvectorCentrality, Iterations: opts.EigenMaxIter}
}
