package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph"

	"ppiviz/internal/domain"
)

func pathGraph() *domain.InteractionGraph {
	return domain.FromInteractions([]domain.Interaction{
		{A: "A", B: "B", Score: 0.9},
		{A: "B", B: "C", Score: 0.9},
		{A: "C", B: "D", Score: 0.9},
	})
}

// twoTriangles is {A,B,C} and {D,E,F} joined by the bridge C-D
func twoTriangles() *domain.InteractionGraph {
	return domain.FromInteractions([]domain.Interaction{
		{A: "A", B: "B", Score: 0.9},
		{A: "B", B: "C", Score: 0.9},
		{A: "A", B: "C", Score: 0.9},
		{A: "D", B: "E", Score: 0.9},
		{A: "E", B: "F", Score: 0.9},
		{A: "D", B: "F", Score: 0.9},
		{A: "C", B: "D", Score: 0.5},
	})
}

// samePartition compares partitions up to relabelling
func samePartition(t *testing.T, ann *domain.Annotation, groups ...[]string) {
	t.Helper()
	require.NotNil(t, ann)
	for _, group := range groups {
		first := ann.Labels[group[0]]
		for _, n := range group[1:] {
			assert.Equal(t, first, ann.Labels[n], "%s and %s should share a label", group[0], n)
		}
	}
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			assert.NotEqual(t, ann.Labels[groups[i][0]], ann.Labels[groups[j][0]],
				"%s and %s should be in different groups", groups[i][0], groups[j][0])
		}
	}
}

func TestAnalyzeDispatch(t *testing.T) {
	a := New(Options{})

	t.Run("none and with_labels produce no annotation", func(t *testing.T) {
		for _, m := range []domain.AnalysisMethod{domain.MethodNone, domain.MethodWithLabels} {
			ann, err := a.Analyze(pathGraph(), m)
			require.NoError(t, err)
			assert.Nil(t, ann)
		}
	})

	t.Run("every menu entry is dispatched", func(t *testing.T) {
		for _, m := range domain.AllMethods() {
			_, err := a.Analyze(twoTriangles(), m)
			assert.NoError(t, err, m)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := a.Analyze(pathGraph(), domain.AnalysisMethod("pagerank"))
		var unsupported *domain.UnsupportedMethodError
		assert.True(t, errors.As(err, &unsupported))
	})

	t.Run("nil graph", func(t *testing.T) {
		_, err := a.Analyze(nil, domain.MethodDegreeCentrality)
		assert.ErrorIs(t, err, domain.ErrNoGraph)
	})

	t.Run("analysis does not mutate the graph", func(t *testing.T) {
		g := twoTriangles()
		fp := g.Fingerprint()
		for _, m := range domain.AllMethods() {
			_, _ = a.Analyze(g, m)
		}
		assert.Equal(t, fp, g.Fingerprint())
	})
}

func TestDegreeCentrality(t *testing.T) {
	ann, err := New(Options{}).Analyze(pathGraph(), domain.MethodDegreeCentrality)
	require.NoError(t, err)

	s := ann.Scores
	assert.InDelta(t, 1.0/3, s["A"], 1e-12)
	assert.InDelta(t, 2.0/3, s["B"], 1e-12)
	assert.Equal(t, s["B"], s["C"])
	assert.Equal(t, s["A"], s["D"])
	assert.Greater(t, s["B"], s["A"])

	single := domain.NewInteractionGraph()
	single.AddNode("X")
	ann, err = New(Options{}).Analyze(single, domain.MethodDegreeCentrality)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ann.Scores["X"])
}

func TestBetweennessCentrality(t *testing.T) {
	ann, err := New(Options{}).Analyze(pathGraph(), domain.MethodBetweennessCentrality)
	require.NoError(t, err)

	s := ann.Scores
	assert.Equal(t, 0.0, s["A"])
	assert.Equal(t, 0.0, s["D"])
	assert.InDelta(t, s["B"], s["C"], 1e-12)
	assert.Greater(t, s["B"], s["A"])
	// B lies on A-C, A-D of the 3 pairs not involving B
	assert.InDelta(t, 2.0/3, s["B"], 1e-12)
}

func TestClosenessCentrality(t *testing.T) {
	ann, err := New(Options{}).Analyze(pathGraph(), domain.MethodClosenessCentrality)
	require.NoError(t, err)
	assert.InDelta(t, 3.0/6, ann.Scores["A"], 1e-12)
	assert.InDelta(t, 3.0/4, ann.Scores["B"], 1e-12)

	t.Run("disconnected graph uses component scaling", func(t *testing.T) {
		g := domain.FromInteractions([]domain.Interaction{
			{A: "A", B: "B", Score: 0.9},
			{A: "C", B: "D", Score: 0.9},
		})
		ann, err := New(Options{}).Analyze(g, domain.MethodClosenessCentrality)
		require.NoError(t, err)
		// (r-1)/sum * (r-1)/(n-1) = 1/1 * 1/3
		assert.InDelta(t, 1.0/3, ann.Scores["A"], 1e-12)
	})
}

func TestEigenvectorCentrality(t *testing.T) {
	t.Run("converges on a path", func(t *testing.T) {
		ann, err := New(Options{}).Analyze(pathGraph(), domain.MethodEigenvectorCentrality)
		require.NoError(t, err)
		s := ann.Scores
		assert.Greater(t, s["B"], s["A"])
		assert.InDelta(t, s["B"], s["C"], 1e-4)

		norm := 0.0
		for _, v := range s {
			norm += v * v
		}
		assert.InDelta(t, 1.0, norm, 1e-9)
	})

	t.Run("reports convergence failure", func(t *testing.T) {
		_, err := New(Options{EigenMaxIter: 1}).Analyze(pathGraph(), domain.MethodEigenvectorCentrality)
		var conv *domain.ConvergenceError
		require.True(t, errors.As(err, &conv))
		assert.Equal(t, domain.MethodEigenvectorCentrality, conv.Method)
		assert.Equal(t, 1, conv.Iterations)
	})
}

func TestCommunities(t *testing.T) {
	for _, m := range []domain.AnalysisMethod{domain.MethodCommunityLouvain, domain.MethodCommunityLeiden} {
		t.Run(string(m), func(t *testing.T) {
			g := twoTriangles()
			ann, err := New(Options{}).Analyze(g, m)
			require.NoError(t, err)
			samePartition(t, ann, []string{"A", "B", "C"}, []string{"D", "E", "F"})
			assert.Equal(t, 0, ann.Labels["A"], "labels follow enumeration order")
			assert.Greater(t, Modularity(g, ann, 1), 0.3)
		})
	}

	t.Run("edgeless graph gives singletons", func(t *testing.T) {
		g := domain.NewInteractionGraph()
		g.AddNode("A")
		g.AddNode("B")
		for _, m := range []domain.AnalysisMethod{domain.MethodCommunityLouvain, domain.MethodCommunityLeiden} {
			ann, err := New(Options{}).Analyze(g, m)
			require.NoError(t, err)
			assert.NotEqual(t, ann.Labels["A"], ann.Labels["B"])
		}
	})
}

func TestLeidenCommunitiesAreConnected(t *testing.T) {
	// Two 4-cliques joined by a single light edge plus a pendant
	g := domain.FromInteractions([]domain.Interaction{
		{A: "A1", B: "A2", Score: 1}, {A: "A1", B: "A3", Score: 1}, {A: "A1", B: "A4", Score: 1},
		{A: "A2", B: "A3", Score: 1}, {A: "A2", B: "A4", Score: 1}, {A: "A3", B: "A4", Score: 1},
		{A: "B1", B: "B2", Score: 1}, {A: "B1", B: "B3", Score: 1}, {A: "B1", B: "B4", Score: 1},
		{A: "B2", B: "B3", Score: 1}, {A: "B2", B: "B4", Score: 1}, {A: "B3", B: "B4", Score: 1},
		{A: "A4", B: "B1", Score: 0.1},
		{A: "B4", B: "P", Score: 1},
	})
	ann, err := New(Options{}).Analyze(g, domain.MethodCommunityLeiden)
	require.NoError(t, err)

	for label, members := range ann.Groups() {
		sub := map[string]bool{}
		for _, m := range members {
			sub[m] = true
		}
		seen := map[string]bool{members[0]: true}
		queue := []string{members[0]}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			id, _ := g.ID(u)
			for _, n := range graph.NodesOf(g.Gonum().From(id)) {
				v := g.Name(n.ID())
				if sub[v] && !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
		assert.Len(t, seen, len(members), "community %d is disconnected", label)
	}
	samePartition(t, ann, []string{"A1", "A2", "A3", "A4"}, []string{"B1", "B2", "B3"})
}

func TestLeidenRefine(t *testing.T) {
	t.Run("merges well-connected nodes within each community", func(t *testing.T) {
		// triangle {0,1,2} and pair {3,4}, bridged by 2-3
		w := newWGraph(5)
		w.addEdge(0, 1, 1)
		w.addEdge(1, 2, 1)
		w.addEdge(0, 2, 1)
		w.addEdge(3, 4, 1)
		w.addEdge(2, 3, 1)

		refined := refine(w, []int{0, 0, 0, 1, 1}, 1)
		assert.Equal(t, []int{0, 0, 0, 1, 1}, refined)
	})

	t.Run("leaves a weakly attached node alone", func(t *testing.T) {
		// node 2 hangs off community 0 by a light edge and pulls hard
		// towards node 3 in community 1
		w := newWGraph(4)
		w.addEdge(0, 1, 1)
		w.addEdge(0, 2, 0.01)
		w.addEdge(2, 3, 5)

		refined := refine(w, []int{0, 0, 0, 1}, 1)
		assert.Equal(t, []int{0, 0, 1, 2}, refined)
	})

	t.Run("never merges across communities", func(t *testing.T) {
		w := newWGraph(2)
		w.addEdge(0, 1, 1)
		assert.Equal(t, []int{0, 1}, refine(w, []int{0, 1}, 1))
	})
}

func TestSpectralClustering(t *testing.T) {
	t.Run("splits two triangles joined by a bridge", func(t *testing.T) {
		ann, err := New(Options{Clusters: 2}).Analyze(twoTriangles(), domain.MethodSpectralClustering)
		require.NoError(t, err)
		samePartition(t, ann, []string{"A", "B", "C"}, []string{"D", "E", "F"})
		assert.Len(t, ann.Groups(), 2)
	})

	t.Run("cluster count is clamped to node count", func(t *testing.T) {
		g := domain.FromInteractions([]domain.Interaction{{A: "A", B: "B", Score: 0.9}})
		ann, err := New(Options{Clusters: 5}).Analyze(g, domain.MethodSpectralClustering)
		require.NoError(t, err)
		assert.Len(t, ann.Labels, 2)
	})

	t.Run("same seed gives the same labels", func(t *testing.T) {
		a1, err := New(Options{Clusters: 2, Seed: 7}).Analyze(twoTriangles(), domain.MethodSpectralClustering)
		require.NoError(t, err)
		a2, err := New(Options{Clusters: 2, Seed: 7}).Analyze(twoTriangles(), domain.MethodSpectralClustering)
		require.NoError(t, err)
		assert.Equal(t, a1.Labels, a2.Labels)
	})
}

func TestRelabel(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1, 2, 1}, relabel([]int{7, 7, 3, 9, 3}))
}
