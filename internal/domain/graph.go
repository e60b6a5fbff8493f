package domain

import (
	"encoding/hex"
	"sort"
	"strconv"

	"golang.org/x/crypto/blake2b"
	"gonum.org/v1/gonum/graph/simple"
)

// InteractionGraph is an undirected, weighted protein interaction graph.
//
// Node names are the identifiers returned by the interaction service. Each
// name is assigned a dense gonum node id in insertion order, and Nodes()
// returns names in that order.
type InteractionGraph struct {
	names []string
	ids   map[string]int64
	roles map[string]Role
	edges []EdgeKey
	g     *simple.WeightedUndirectedGraph
}

// NewInteractionGraph creates an empty graph
func NewInteractionGraph() *InteractionGraph {
	return &InteractionGraph{
		ids:   make(map[string]int64),
		roles: make(map[string]Role),
		g:     simple.NewWeightedUndirectedGraph(0, 0),
	}
}

// FromInteractions builds a graph from one fetch result. Duplicate pairs keep
// the last score seen and self loops are dropped.
func FromInteractions(interactions []Interaction) *InteractionGraph {
	ig := NewInteractionGraph()
	for _, in := range interactions {
		ig.SetEdge(in.A, in.B, in.Score)
	}
	return ig
}

// AddNode inserts a node if absent and returns its gonum id
func (ig *InteractionGraph) AddNode(name string) int64 {
	if id, ok := ig.ids[name]; ok {
		return id
	}
	id := int64(len(ig.names))
	ig.names = append(ig.names, name)
	ig.ids[name] = id
	ig.roles[name] = RoleNeighbor
	ig.g.AddNode(simple.Node(id))
	return id
}

// SetEdge inserts or overwrites the edge between a and b. Self loops are ignored.
func (ig *InteractionGraph) SetEdge(a, b string, score float64) {
	if a == b {
		return
	}
	u, v := ig.AddNode(a), ig.AddNode(b)
	if !ig.g.HasEdgeBetween(u, v) {
		ig.edges = append(ig.edges, NewEdgeKey(a, b))
	}
	ig.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: score})
}

// AddEdgeIfAbsent inserts the edge only when the pair is not yet connected.
// It reports whether the edge was added.
func (ig *InteractionGraph) AddEdgeIfAbsent(a, b string, score float64) bool {
	if a == b || ig.HasEdge(a, b) {
		return false
	}
	ig.SetEdge(a, b, score)
	return true
}

// HasNode reports whether the node exists
func (ig *InteractionGraph) HasNode(name string) bool {
	_, ok := ig.ids[name]
	return ok
}

// HasEdge reports whether a and b are connected
func (ig *InteractionGraph) HasEdge(a, b string) bool {
	u, ok := ig.ids[a]
	if !ok {
		return false
	}
	v, ok := ig.ids[b]
	if !ok {
		return false
	}
	return ig.g.HasEdgeBetween(u, v)
}

// Weight returns the score of the edge between a and b
func (ig *InteractionGraph) Weight(a, b string) (float64, bool) {
	if !ig.HasEdge(a, b) {
		return 0, false
	}
	return ig.g.Weight(ig.ids[a], ig.ids[b])
}

// Nodes returns node names in insertion order
func (ig *InteractionGraph) Nodes() []string {
	out := make([]string, len(ig.names))
	copy(out, ig.names)
	return out
}

// Edges returns all interactions in insertion order
func (ig *InteractionGraph) Edges() []Interaction {
	out := make([]Interaction, 0, len(ig.edges))
	for _, k := range ig.edges {
		w, _ := ig.g.Weight(ig.ids[k.Lo], ig.ids[k.Hi])
		out = append(out, Interaction{A: k.Lo, B: k.Hi, Score: w})
	}
	return out
}

// NodeCount returns the number of nodes
func (ig *InteractionGraph) NodeCount() int {
	return len(ig.names)
}

// EdgeCount returns the number of undirected edges
func (ig *InteractionGraph) EdgeCount() int {
	return len(ig.edges)
}

// ID returns the gonum id of a node
func (ig *InteractionGraph) ID(name string) (int64, bool) {
	id, ok := ig.ids[name]
	return id, ok
}

// Name returns the node name for a gonum id
func (ig *InteractionGraph) Name(id int64) string {
	if id < 0 || int(id) >= len(ig.names) {
		return ""
	}
	return ig.names[id]
}

// Degree returns the number of neighbors of a node
func (ig *InteractionGraph) Degree(name string) int {
	id, ok := ig.ids[name]
	if !ok {
		return 0
	}
	return ig.g.From(id).Len()
}

// Role returns the role of a node
func (ig *InteractionGraph) Role(name string) Role {
	if r, ok := ig.roles[name]; ok {
		return r
	}
	return RoleNeighbor
}

// SetRole tags a node as queried or neighbor
func (ig *InteractionGraph) SetRole(name string, role Role) {
	if _, ok := ig.ids[name]; ok {
		ig.roles[name] = role
	}
}

// Gonum exposes the backing graph for algorithms. Callers must not mutate it.
func (ig *InteractionGraph) Gonum() *simple.WeightedUndirectedGraph {
	return ig.g
}

// Fingerprint hashes the node set and edge set independent of insertion
// order. Layouts are cached under this key.
func (ig *InteractionGraph) Fingerprint() string {
	nodes := ig.Nodes()
	sort.Strings(nodes)
	keys := make([]EdgeKey, len(ig.edges))
	copy(keys, ig.edges)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Lo != keys[j].Lo {
			return keys[i].Lo < keys[j].Lo
		}
		return keys[i].Hi < keys[j].Hi
	})

	h, _ := blake2b.New256(nil)
	for _, n := range nodes {
		h.Write([]byte(n))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, k := range keys {
		w, _ := ig.Weight(k.Lo, k.Hi)
		h.Write([]byte(k.Lo + "\x00" + k.Hi + "\x00" + strconv.FormatFloat(w, 'g', -1, 64) + "\x00"))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
