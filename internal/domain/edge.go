package domain

import (
	"crypto/sha256"
	"fmt"
)

// Interaction is one weighted protein-protein interaction as reported by the
// interaction service. Score is the experimental confidence in [0, 1].
type Interaction struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Score float64 `json:"score"`
}

// NewInteraction creates an interaction between two proteins
func NewInteraction(a, b string, score float64) Interaction {
	return Interaction{A: a, B: b, Score: score}
}

// Key returns the endpoints in canonical order so that {a,b} and {b,a}
// address the same undirected edge
func (i Interaction) Key() EdgeKey {
	return NewEdgeKey(i.A, i.B)
}

// IsSelfLoop reports whether both endpoints are the same protein
func (i Interaction) IsSelfLoop() bool {
	return i.A == i.B
}

// EdgeKey is an unordered pair of node names
type EdgeKey struct {
	Lo string
	Hi string
}

// NewEdgeKey normalizes the endpoint order
func NewEdgeKey(a, b string) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{Lo: a, Hi: b}
}

// ID creates a deterministic ID for the edge based on its endpoints
func (k EdgeKey) ID() string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s", k.Lo, k.Hi)))
	return fmt.Sprintf("%x", hash[:8])
}
