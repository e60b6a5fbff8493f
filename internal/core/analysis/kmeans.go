package analysis

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	kmeansMaxIter = 300
	kmeansTol     = 1e-4
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// kmeans clusters the rows of x into k groups, keeping the best of nInit
// k-means++ initialisations by inertia
func kmeans(x *mat.Dense, k, nInit int, rng *rand.Rand) []int {
	n, _ := x.Dims()
	if k <= 1 || n <= 1 {
		return make([]int, n)
	}
	if k >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < nInit; run++ {
		labels, inertia := lloyd(x, seedPlusPlus(x, k, rng))
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return best
}

// seedPlusPlus picks k initial centres with D² weighting
func seedPlusPlus(x *mat.Dense, k int, rng *rand.Rand) [][]float64 {
	n, _ := x.Dims()
	centres := make([][]float64, 0, k)
	centres = append(centres, rowCopy(x, rng.IntN(n)))

	d2 := make([]float64, n)
	for len(centres) < k {
		for i := 0; i < n; i++ {
			d2[i] = nearest(x.RawRowView(i), centres)
		}
		total := floats.Sum(d2)
		if total == 0 {
			centres = append(centres, rowCopy(x, rng.IntN(n)))
			continue
		}
		target := rng.Float64() * total
		pick := n - 1
		acc := 0.0
		for i, d := range d2 {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centres = append(centres, rowCopy(x, pick))
	}
	return centres
}

// lloyd refines centres until they stop moving and returns labels and inertia
func lloyd(x *mat.Dense, centres [][]float64) ([]int, float64) {
	n, dim := x.Dims()
	k := len(centres)
	labels := make([]int, n)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		for i := 0; i < n; i++ {
			labels[i] = argNearest(x.RawRowView(i), centres)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dim)
		}
		for i := 0; i < n; i++ {
			floats.Add(next[labels[i]], x.RawRowView(i))
			counts[labels[i]]++
		}
		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				copy(next[c], centres[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
			shift += sqDist(next[c], centres[c])
		}
		centres = next
		if shift <= kmeansTol*kmeansTol {
			break
		}
	}

	inertia := 0.0
	for i := 0; i < n; i++ {
		labels[i] = argNearest(x.RawRowView(i), centres)
		inertia += sqDist(x.RawRowView(i), centres[labels[i]])
	}
	return labels, inertia
}

func rowCopy(x *mat.Dense, i int) []float64 {
	row := x.RawRowView(i)
	out := make([]float64, len(row))
	copy(out, row)
	return out
}

func nearest(p []float64, centres [][]float64) float64 {
	best := math.Inf(1)
	for _, c := range centres {
		if d := sqDist(p, c); d < best {
			best = d
		}
	}
	return best
}

func argNearest(p []float64, centres [][]float64) int {
	best, arg := math.Inf(1), 0
	for i, c := range centres {
		if d := sqDist(p, c); d < best {
			best, arg = d, i
		}
	}
	return arg
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
