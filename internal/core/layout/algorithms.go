package layout

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	glayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/mds"

	"ppiviz/internal/domain"
)

var errEigenFailed = errors.New("eigendecomposition did not converge")

// orderedGraph fixes node iteration order so seeded layouts are repeatable.
// Weight is promoted from the embedded graph so edge scores still pull.
type orderedGraph struct {
	*simple.WeightedUndirectedGraph
}

func (g orderedGraph) Nodes() graph.Nodes {
	return byID(g.WeightedUndirectedGraph.Nodes())
}

func (g orderedGraph) From(id int64) graph.Nodes {
	return byID(g.WeightedUndirectedGraph.From(id))
}

func byID(it graph.Nodes) graph.Nodes {
	nodes := graph.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}

// spring runs the Eades force model with Barnes-Hut repulsion
func spring(g *domain.InteractionGraph, opts Options) ([]r2.Vec, error) {
	n := g.NodeCount()
	pos := make([]r2.Vec, n)
	if n < 2 {
		return pos, nil
	}

	eades := glayout.EadesR2{
		Updates:   opts.Iterations,
		Repulsion: opts.Repulsion,
		Rate:      opts.Rate,
		Theta:     opts.Theta,
		Src:       newSource(opts.Seed),
	}
	o := glayout.NewOptimizerR2(orderedGraph{g.Gonum()}, eades.Update)
	for o.Update() {
	}
	for i := range pos {
		pos[i] = o.Coord2(int64(i))
	}
	return pos, nil
}

func circular(g *domain.InteractionGraph, _ Options) ([]r2.Vec, error) {
	return ring(g.NodeCount(), 1, 0), nil
}

// ring spaces n points evenly on a circle, starting at angle offset
func ring(n int, radius, offset float64) []r2.Vec {
	pos := make([]r2.Vec, n)
	if n == 1 {
		return pos
	}
	for i := range pos {
		theta := offset + 2*math.Pi*float64(i)/float64(n)
		pos[i] = r2.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pos
}

// shell puts queried proteins on the inner ring and their neighbours on the
// outer one. A single queried protein sits at the centre.
func shell(g *domain.InteractionGraph, _ Options) ([]r2.Vec, error) {
	nodes := g.Nodes()
	var inner, outer []int
	for i, name := range nodes {
		if g.Role(name) == domain.RoleQueried {
			inner = append(inner, i)
		} else {
			outer = append(outer, i)
		}
	}

	shells := make([][]int, 0, 2)
	for _, s := range [][]int{inner, outer} {
		if len(s) > 0 {
			shells = append(shells, s)
		}
	}

	pos := make([]r2.Vec, len(nodes))
	if len(shells) == 0 {
		return pos, nil
	}
	bump := 1 / float64(len(shells))
	radius := bump
	if len(shells[0]) == 1 {
		radius = 0
	}
	rotate := math.Pi / float64(len(shells))
	var offset float64
	for _, s := range shells {
		placed := ring(len(s), radius, offset)
		for j, idx := range s {
			pos[idx] = placed[j]
		}
		radius += bump
		offset += rotate
	}
	return pos, nil
}

// spiral walks outwards with a constant angle step per node
func spiral(g *domain.InteractionGraph, opts Options) ([]r2.Vec, error) {
	pos := make([]r2.Vec, g.NodeCount())
	for i := range pos {
		d := float64(i)
		angle := opts.SpiralResolution * d
		pos[i] = r2.Vec{X: d * math.Cos(angle), Y: d * math.Sin(angle)}
	}
	return pos, nil
}

func random(g *domain.InteractionGraph, opts Options) ([]r2.Vec, error) {
	rnd := newRand(opts.Seed)
	pos := make([]r2.Vec, g.NodeCount())
	for i := range pos {
		pos[i] = r2.Vec{X: rnd.Float64(), Y: rnd.Float64()}
	}
	return pos, nil
}

// spectral uses the eigenvectors of the second and third smallest eigenvalues
// of the weighted graph Laplacian
func spectral(g *domain.InteractionGraph, _ Options) ([]r2.Vec, error) {
	n := g.NodeCount()
	if n <= 2 {
		return ring(n, 1, 0), nil
	}

	lap := mat.NewSymDense(n, nil)
	for _, e := range g.Edges() {
		i, _ := g.ID(e.A)
		j, _ := g.ID(e.B)
		w := e.Score
		lap.SetSym(int(i), int(j), lap.At(int(i), int(j))-w)
		lap.SetSym(int(i), int(i), lap.At(int(i), int(i))+w)
		lap.SetSym(int(j), int(j), lap.At(int(j), int(j))+w)
	}

	var eig mat.EigenSym
	if !eig.Factorize(lap, true) {
		return nil, errEigenFailed
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i] = r2.Vec{X: vecs.At(i, 1), Y: vecs.At(i, 2)}
	}
	return pos, nil
}

// kamadaKawai embeds hop distances with classical multidimensional scaling.
// Pairs in different components are treated as n hops apart.
func kamadaKawai(g *domain.InteractionGraph, opts Options) ([]r2.Vec, error) {
	n := g.NodeCount()
	if n <= 2 {
		return ring(n, 1, 0), nil
	}

	dis := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dis.SetSym(i, j, float64(n))
		}
	}
	gg := g.Gonum()
	for i := 0; i < n; i++ {
		var bfs traverse.BreadthFirst
		bfs.Walk(gg, gg.Node(int64(i)), func(v graph.Node, depth int) bool {
			j := int(v.ID())
			if j != i {
				dis.SetSym(i, j, float64(depth))
			}
			return false
		})
	}

	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, dis)
	if k == 0 {
		return circular(g, opts)
	}
	pos := make([]r2.Vec, n)
	for i := range pos {
		pos[i].X = coords.At(i, 0)
		if k > 1 {
			pos[i].Y = coords.At(i, 1)
		}
	}
	return pos, nil
}
