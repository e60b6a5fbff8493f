package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"ppiviz/internal/domain"
)

var errEigenFailed = errors.New("eigendecomposition failed")

// spectralClustering embeds nodes with the leading eigenvectors of the
// normalized affinity D^-1/2 A D^-1/2 (equivalently the smallest of the
// normalized Laplacian), then clusters the rows with k-means. The affinity is
// the weighted adjacency in graph iteration order.
func spectralClustering(g *domain.InteractionGraph, opts Options) (*domain.Annotation, error) {
	n := g.NodeCount()
	labels := make(map[string]int, n)
	if n == 0 {
		return domain.NewLabelAnnotation(domain.MethodSpectralClustering, labels), nil
	}
	k := opts.Clusters
	if k > n {
		k = n
	}

	embedding, err := SpectralEmbedding(g, k)
	if err != nil {
		return nil, err
	}

	rng := newRand(opts.Seed)
	assign := kmeans(embedding, k, opts.KMeansInit, rng)
	for i, l := range relabel(assign) {
		labels[g.Name(int64(i))] = l
	}
	return domain.NewLabelAnnotation(domain.MethodSpectralClustering, labels), nil
}

// AdjacencyMatrix returns the weighted adjacency in graph iteration order
func AdjacencyMatrix(g *domain.InteractionGraph) *mat.SymDense {
	n := g.NodeCount()
	a := mat.NewSymDense(max(n, 1), nil)
	for _, e := range g.Edges() {
		u, _ := g.ID(e.A)
		v, _ := g.ID(e.B)
		a.SetSym(int(u), int(v), e.Score)
	}
	return a
}

// SpectralEmbedding returns an n×k matrix whose rows embed the nodes. Each
// eigenvector is divided by sqrt(degree) and sign-flipped so that its
// largest-magnitude entry is positive.
func SpectralEmbedding(g *domain.InteractionGraph, k int) (*mat.Dense, error) {
	n := g.NodeCount()
	a := AdjacencyMatrix(g)

	invSqrt := make([]float64, n)
	for i := 0; i < n; i++ {
		d := 0.0
		for j := 0; j < n; j++ {
			d += a.At(i, j)
		}
		if d > 0 {
			invSqrt[i] = 1 / math.Sqrt(d)
		}
	}

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, a.At(i, j)*invSqrt[i]*invSqrt[j])
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(m, true); !ok {
		return nil, errEigenFailed
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Eigenvalues are ascending; the last k columns are the leading ones
	out := mat.NewDense(n, k, nil)
	for c := 0; c < k; c++ {
		src := n - 1 - c
		maxAbs, sign := 0.0, 1.0
		for i := 0; i < n; i++ {
			v := vecs.At(i, src)
			if invSqrt[i] > 0 {
				v *= invSqrt[i]
			}
			if math.Abs(v) > maxAbs {
				maxAbs = math.Abs(v)
				sign = math.Copysign(1, v)
			}
			out.Set(i, c, v)
		}
		if sign < 0 {
			for i := 0; i < n; i++ {
				out.Set(i, c, -out.At(i, c))
			}
		}
	}
	return out, nil
}
