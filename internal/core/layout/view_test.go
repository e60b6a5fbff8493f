package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppiviz/internal/domain"
)

func viewFixture(t *testing.T) (*domain.InteractionGraph, *domain.Layout) {
	t.Helper()
	g := starGraph()
	l, err := New(DefaultOptions()).Compute(g, domain.LayoutCircular)
	require.NoError(t, err)
	return g, l
}

func nodeByID(v *domain.NetworkView, id string) domain.ViewNode {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n
		}
	}
	return domain.ViewNode{}
}

func TestBuildView_RoleColours(t *testing.T) {
	g, l := viewFixture(t)
	v := BuildView(ViewInput{
		Graph:  g,
		Layout: l,
		Method: domain.MethodNone,
		Genes:  []string{"TP53"},
		Links:  domain.Links{String: "https://string-db.org/x"},
	})

	assert.Equal(t, domain.StatusOK, v.Status)
	assert.Equal(t, "TP53 Protein - Protein Interaction Network", v.Title)
	assert.Equal(t, domain.LayoutCircular, v.Layout)
	assert.Empty(t, v.ColorScale)
	assert.False(t, v.ShowLabels)
	assert.Equal(t, "https://string-db.org/x", v.Links.String)
	require.Len(t, v.Nodes, g.NodeCount())
	require.Len(t, v.Edges, g.EdgeCount())

	tp53 := nodeByID(v, "TP53")
	assert.Equal(t, "green", tp53.Color)
	assert.Equal(t, 20.0, tp53.Size)
	assert.Nil(t, tp53.Value)
	assert.Empty(t, tp53.Label)

	mdm2 := nodeByID(v, "MDM2")
	assert.Equal(t, "blue", mdm2.Color)
	assert.Equal(t, 10.0, mdm2.Size)
	assert.Equal(t, domain.RoleNeighbor, mdm2.Role)
	assert.True(t, strings.HasPrefix(mdm2.HoverText, "Node: MDM2\n\n"))
	assert.Contains(t, mdm2.HoverText, "color: blue")
}

func TestBuildView_EdgeGeometry(t *testing.T) {
	g, l := viewFixture(t)
	v := BuildView(ViewInput{Graph: g, Layout: l, Genes: []string{"TP53"}})

	for _, e := range v.Edges {
		from, _ := l.Get(e.From)
		to, _ := l.Get(e.To)
		assert.Equal(t, from.X, e.X0)
		assert.Equal(t, from.Y, e.Y0)
		assert.Equal(t, to.X, e.X1)
		assert.Equal(t, to.Y, e.Y1)
		assert.Equal(t, domain.NewEdgeKey(e.From, e.To).ID(), e.ID)
	}
}

func TestBuildView_WithLabels(t *testing.T) {
	g, l := viewFixture(t)
	v := BuildView(ViewInput{Graph: g, Layout: l, Method: domain.MethodWithLabels, Genes: []string{"TP53"}})

	assert.True(t, v.ShowLabels)
	assert.Equal(t, "TP53 Protein - Protein Interaction Network with method with_labels", v.Title)
	for _, n := range v.Nodes {
		assert.Equal(t, n.ID, n.Label)
	}
	assert.Equal(t, "green", nodeByID(v, "TP53").Color)
}

func TestBuildView_Centrality(t *testing.T) {
	g, l := viewFixture(t)
	ann := domain.NewScoreAnnotation(domain.MethodDegreeCentrality, map[string]float64{
		"TP53": 0.75, "MDM2": 0.5, "EP300": 0.5, "ATM": 0.5, "CHEK2": 0.25,
	})
	v := BuildView(ViewInput{
		Graph:      g,
		Layout:     l,
		Method:     domain.MethodDegreeCentrality,
		Annotation: ann,
		Genes:      []string{"TP53", "ATM"},
	})

	assert.Equal(t, RainbowScale, v.ColorScale)
	assert.Equal(t, "[TP53, ATM] Protein - Protein Interaction Network with method degree_centrality", v.Title)
	for _, n := range v.Nodes {
		require.NotNil(t, n.Value, n.ID)
		assert.Equal(t, float64(AnnotatedNodeSize), n.Size)
		assert.Contains(t, n.HoverText, "degree_centrality: ")
	}
	assert.Equal(t, RainbowColor(1), nodeByID(v, "TP53").Color)
	assert.Equal(t, RainbowColor(0), nodeByID(v, "CHEK2").Color)
	assert.Equal(t, 0.75, *nodeByID(v, "TP53").Value)
}

func TestBuildView_NoneIgnoresStaleAnnotation(t *testing.T) {
	g, l := viewFixture(t)
	ann := domain.NewLabelAnnotation(domain.MethodCommunityLouvain, map[string]int{"TP53": 0})
	v := BuildView(ViewInput{Graph: g, Layout: l, Method: domain.MethodNone, Annotation: ann})

	for _, n := range v.Nodes {
		assert.Nil(t, n.Value, n.ID)
	}
	assert.Empty(t, v.ColorScale)
}

func TestBuildView_Placeholder(t *testing.T) {
	v := BuildView(ViewInput{Genes: []string{"TP53"}, Links: domain.Links{String: "s"}})
	assert.Equal(t, domain.StatusNoInteractions, v.Status)
	assert.Empty(t, v.Nodes)
	assert.NotEmpty(t, v.Message)
	assert.Equal(t, "s", v.Links.String)
}

func TestRainbowColor(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{-1, "rgb(150,0,90)"},
		{0, "rgb(150,0,90)"},
		{0.5, "rgb(44,255,150)"},
		{1, "rgb(255,0,0)"},
		{2, "rgb(255,0,0)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RainbowColor(tt.t), tt.t)
	}
}
