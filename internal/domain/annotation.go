package domain

import "sort"

// Annotation is the output of one analysis method over a graph. Centrality
// methods fill Scores, partition methods fill Labels.
type Annotation struct {
	Method AnalysisMethod     `json:"method"`
	Scores map[string]float64 `json:"scores,omitempty"`
	Labels map[string]int     `json:"labels,omitempty"`
}

// NewScoreAnnotation wraps a centrality result
func NewScoreAnnotation(m AnalysisMethod, scores map[string]float64) *Annotation {
	return &Annotation{Method: m, Scores: scores}
}

// NewLabelAnnotation wraps a partition result
func NewLabelAnnotation(m AnalysisMethod, labels map[string]int) *Annotation {
	return &Annotation{Method: m, Labels: labels}
}

// Value returns the numeric annotation of a node used for colouring
func (a *Annotation) Value(node string) (float64, bool) {
	if a == nil {
		return 0, false
	}
	if a.Scores != nil {
		v, ok := a.Scores[node]
		return v, ok
	}
	if a.Labels != nil {
		v, ok := a.Labels[node]
		return float64(v), ok
	}
	return 0, false
}

// RankedScore is a node with its centrality score
type RankedScore struct {
	Node  string  `json:"node"`
	Score float64 `json:"score"`
}

// Top returns the n highest scoring nodes, ties broken by name
func (a *Annotation) Top(n int) []RankedScore {
	if a == nil || a.Scores == nil {
		return nil
	}
	out := make([]RankedScore, 0, len(a.Scores))
	for node, s := range a.Scores {
		out = append(out, RankedScore{Node: node, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Node < out[j].Node
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Groups returns the members of each partition label, sorted
func (a *Annotation) Groups() map[int][]string {
	if a == nil || a.Labels == nil {
		return nil
	}
	out := make(map[int][]string)
	for node, l := range a.Labels {
		out[l] = append(out[l], node)
	}
	for _, members := range out {
		sort.Strings(members)
	}
	return out
}
