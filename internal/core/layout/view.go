package layout

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"ppiviz/internal/domain"
)

const (
	// RainbowScale is the continuous colour scale name used by annotated views
	RainbowScale = "Rainbow"
	// AnnotatedNodeSize is the fixed marker size of annotated views
	AnnotatedNodeSize = 14
	// roleSizeScale multiplies the role category rank
	roleSizeScale = 10
)

// rainbow stops, lowest value first
var rainbow = []struct {
	at      float64
	r, g, b uint8
}{
	{0, 150, 0, 90},
	{0.125, 0, 0, 200},
	{0.25, 0, 25, 255},
	{0.375, 0, 152, 255},
	{0.5, 44, 255, 150},
	{0.625, 151, 255, 0},
	{0.75, 255, 234, 0},
	{0.875, 255, 111, 0},
	{1, 255, 0, 0},
}

// RainbowColor maps t in [0, 1] onto the rainbow scale as an rgb() string
func RainbowColor(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	for i := 1; i < len(rainbow); i++ {
		hi := rainbow[i]
		if t > hi.at {
			continue
		}
		lo := rainbow[i-1]
		f := (t - lo.at) / (hi.at - lo.at)
		mix := func(a, b uint8) int {
			return int(math.Round(float64(a) + f*(float64(b)-float64(a))))
		}
		return fmt.Sprintf("rgb(%d,%d,%d)", mix(lo.r, hi.r), mix(lo.g, hi.g), mix(lo.b, hi.b))
	}
	last := rainbow[len(rainbow)-1]
	return fmt.Sprintf("rgb(%d,%d,%d)", last.r, last.g, last.b)
}

// ViewInput is everything a view is rendered from
type ViewInput struct {
	Graph      *domain.InteractionGraph
	Layout     *domain.Layout
	Method     domain.AnalysisMethod
	Annotation *domain.Annotation
	Genes      []string
	Links      domain.Links
}

// BuildView renders a graph, its layout and an optional annotation. A nil or
// empty graph yields a no_interactions placeholder.
func BuildView(in ViewInput) *domain.NetworkView {
	if in.Graph == nil || in.Graph.NodeCount() == 0 {
		v := domain.PlaceholderView(in.Genes, domain.StatusNoInteractions)
		v.Links = in.Links
		return v
	}
	method := in.Method
	if method == "" {
		method = domain.MethodNone
	}
	g := in.Graph

	v := &domain.NetworkView{
		Title:      domain.NetworkTitle(in.Genes, method),
		Status:     domain.StatusOK,
		Genes:      in.Genes,
		Method:     method,
		ShowLabels: method == domain.MethodWithLabels,
		Links:      in.Links,
		Nodes:      make([]domain.ViewNode, 0, g.NodeCount()),
		Edges:      make([]domain.ViewEdge, 0, g.EdgeCount()),
	}
	if in.Layout != nil {
		v.Layout = in.Layout.Algorithm
	}

	annotated := !method.UsesRoleColors() && in.Annotation != nil
	if annotated {
		v.ColorScale = RainbowScale
	}
	lo, hi := valueRange(g, in.Annotation)
	sizes := roleSizes(g)

	for _, name := range g.Nodes() {
		role := g.Role(name)
		n := domain.ViewNode{
			ID:   name,
			Role: role,
		}
		if p, ok := position(in.Layout, name); ok {
			n.X, n.Y, n.Pinned = p.X, p.Y, p.Pinned
		}
		if v.ShowLabels {
			n.Label = name
		}

		if value, ok := in.Annotation.Value(name); ok && annotated {
			n.Value = &value
			n.Size = AnnotatedNodeSize
			t := 0.0
			if hi > lo {
				t = (value - lo) / (hi - lo)
			}
			n.Color = RainbowColor(t)
		} else {
			n.Color = role.Color()
			n.Size = sizes[n.Color]
		}
		n.HoverText = hoverText(name, role, n.Color, method, n.Value)
		v.Nodes = append(v.Nodes, n)
	}

	for _, e := range g.Edges() {
		edge := domain.ViewEdge{
			ID:     e.Key().ID(),
			From:   e.A,
			To:     e.B,
			Weight: e.Score,
		}
		if p, ok := position(in.Layout, e.A); ok {
			edge.X0, edge.Y0 = p.X, p.Y
		}
		if p, ok := position(in.Layout, e.B); ok {
			edge.X1, edge.Y1 = p.X, p.Y
		}
		v.Edges = append(v.Edges, edge)
	}
	return v
}

func position(l *domain.Layout, name string) (*domain.NodePosition, bool) {
	if l == nil {
		return nil, false
	}
	return l.Get(name)
}

// roleSizes ranks the distinct role colours alphabetically, starting at 1
func roleSizes(g *domain.InteractionGraph) map[string]float64 {
	seen := make(map[string]struct{})
	for _, name := range g.Nodes() {
		seen[g.Role(name).Color()] = struct{}{}
	}
	colors := make([]string, 0, len(seen))
	for c := range seen {
		colors = append(colors, c)
	}
	sort.Strings(colors)
	sizes := make(map[string]float64, len(colors))
	for i, c := range colors {
		sizes[c] = float64((i + 1) * roleSizeScale)
	}
	return sizes
}

func valueRange(g *domain.InteractionGraph, ann *domain.Annotation) (lo, hi float64) {
	first := true
	for _, name := range g.Nodes() {
		v, ok := ann.Value(name)
		if !ok {
			continue
		}
		if first {
			lo, hi, first = v, v, false
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func hoverText(name string, role domain.Role, color string, method domain.AnalysisMethod, value *float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Node: %s\n\n", name)
	fmt.Fprintf(&b, "role: %s\n", role)
	fmt.Fprintf(&b, "color: %s\n", color)
	if value != nil {
		fmt.Fprintf(&b, "%s: %s\n", method, strconv.FormatFloat(*value, 'g', 6, 64))
	}
	return b.String()
}
