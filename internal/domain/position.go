package domain

// NodePosition represents the position and pinning state of a node in the visualization
type NodePosition struct {
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned"`
}

// NewNodePosition creates a new node position
func NewNodePosition(nodeID string, x, y float64) *NodePosition {
	return &NodePosition{
		NodeID: nodeID,
		X:      x,
		Y:      y,
		Pinned: false,
	}
}

// LayoutAlgorithm names a node placement strategy
type LayoutAlgorithm string

const (
	LayoutSpring      LayoutAlgorithm = "spring"
	LayoutCircular    LayoutAlgorithm = "circular"
	LayoutKamadaKawai LayoutAlgorithm = "kamada_kawai"
	LayoutRandom      LayoutAlgorithm = "random"
	LayoutShell       LayoutAlgorithm = "shell"
	LayoutSpectral    LayoutAlgorithm = "spectral"
	LayoutSpiral      LayoutAlgorithm = "spiral"
)

// AllLayouts lists the layout menu in display order
func AllLayouts() []LayoutAlgorithm {
	return []LayoutAlgorithm{
		LayoutSpring,
		LayoutCircular,
		LayoutKamadaKawai,
		LayoutRandom,
		LayoutShell,
		LayoutSpectral,
		LayoutSpiral,
	}
}

// ParseLayout maps a layout name onto the menu. Empty selects spring.
func ParseLayout(s string) (LayoutAlgorithm, error) {
	if s == "" {
		return LayoutSpring, nil
	}
	for _, l := range AllLayouts() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", &UnsupportedLayoutError{Algorithm: s}
}

// Layout maps every node name of a graph to a 2-D coordinate
type Layout struct {
	Algorithm LayoutAlgorithm          `json:"algorithm"`
	Positions map[string]*NodePosition `json:"positions"`
}

// NewLayout creates an empty layout
func NewLayout(algorithm LayoutAlgorithm) *Layout {
	return &Layout{
		Algorithm: algorithm,
		Positions: make(map[string]*NodePosition),
	}
}

// Set places a node, keeping its pinned flag when already present
func (l *Layout) Set(nodeID string, x, y float64) {
	if p, ok := l.Positions[nodeID]; ok {
		p.X, p.Y = x, y
		return
	}
	l.Positions[nodeID] = NewNodePosition(nodeID, x, y)
}

// Pin fixes a node at the given coordinate
func (l *Layout) Pin(nodeID string, x, y float64) {
	l.Set(nodeID, x, y)
	l.Positions[nodeID].Pinned = true
}

// Get returns the position of a node
func (l *Layout) Get(nodeID string) (*NodePosition, bool) {
	p, ok := l.Positions[nodeID]
	return p, ok
}

// Covers reports whether every node of g has a position
func (l *Layout) Covers(g *InteractionGraph) bool {
	for _, n := range g.Nodes() {
		if _, ok := l.Positions[n]; !ok {
			return false
		}
	}
	return true
}
