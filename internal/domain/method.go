package domain

import "strings"

// AnalysisMethod selects the annotation applied to an interaction graph
type AnalysisMethod string

const (
	MethodNone                  AnalysisMethod = "none"
	MethodWithLabels            AnalysisMethod = "with_labels"
	MethodDegreeCentrality      AnalysisMethod = "degree_centrality"
	MethodBetweennessCentrality AnalysisMethod = "betweenness_centrality"
	MethodClosenessCentrality   AnalysisMethod = "closeness_centrality"
	MethodEigenvectorCentrality AnalysisMethod = "eigenvector_centrality"
	MethodCommunityLouvain      AnalysisMethod = "community_louvain"
	MethodCommunityLeiden       AnalysisMethod = "community_leiden"
	MethodSpectralClustering    AnalysisMethod = "spectral_clustering"
)

// AllMethods lists the method menu in display order
func AllMethods() []AnalysisMethod {
	return []AnalysisMethod{
		MethodNone,
		MethodWithLabels,
		MethodBetweennessCentrality,
		MethodClosenessCentrality,
		MethodDegreeCentrality,
		MethodEigenvectorCentrality,
		MethodCommunityLouvain,
		MethodCommunityLeiden,
		MethodSpectralClustering,
	}
}

// ParseMethod maps a method name onto the menu. "None" and "" select MethodNone.
func ParseMethod(s string) (AnalysisMethod, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return MethodNone, nil
	}
	for _, m := range AllMethods() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", &UnsupportedMethodError{Method: s}
}

// IsCentrality reports whether the method yields a numeric score per node
func (m AnalysisMethod) IsCentrality() bool {
	return strings.HasSuffix(string(m), "_centrality")
}

// IsPartition reports whether the method yields an integer label per node
func (m AnalysisMethod) IsPartition() bool {
	switch m {
	case MethodCommunityLouvain, MethodCommunityLeiden, MethodSpectralClustering:
		return true
	}
	return false
}

// UsesRoleColors reports whether the view falls back to queried/neighbor coloring
func (m AnalysisMethod) UsesRoleColors() bool {
	return m == MethodNone || m == MethodWithLabels
}
