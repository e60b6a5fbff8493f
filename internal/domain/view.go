package domain

import "fmt"

// ViewStatus tells consumers whether the view holds a graph or a placeholder
type ViewStatus string

const (
	StatusOK             ViewStatus = "ok"
	StatusEmpty          ViewStatus = "empty"
	StatusNoProtein      ViewStatus = "no_protein"
	StatusNoInteractions ViewStatus = "no_interactions"
)

// EnsemblGeneURL is the Ensembl gene summary page for a genomic id
func EnsemblGeneURL(genomicID string) string {
	return fmt.Sprintf("http://www.ensembl.org/Homo_sapiens/Gene/Summary?db=core;g=%s", StripVersion(genomicID))
}

// Links are the informational deep links attached to a view
type Links struct {
	String  string            `json:"string,omitempty"`
	Ensembl map[string]string `json:"ensembl,omitempty"` // gene -> URL
}

// ViewNode is a positioned, styled node
type ViewNode struct {
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Pinned    bool     `json:"pinned,omitempty"`
	Role      Role     `json:"role"`
	Color     string   `json:"color"`
	Size      float64  `json:"size"`
	Value     *float64 `json:"value,omitempty"` // score or community label
	HoverText string   `json:"hover_text"`
}

// ViewEdge carries endpoint coordinates for straight-line rendering
type ViewEdge struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
}

// NetworkView is the renderable structure for one session state
type NetworkView struct {
	Title      string          `json:"title"`
	Status     ViewStatus      `json:"status"`
	Message    string          `json:"message,omitempty"`
	Genes      []string        `json:"genes"`
	Method     AnalysisMethod  `json:"method"`
	Layout     LayoutAlgorithm `json:"layout,omitempty"`
	ShowLabels bool            `json:"show_labels"`
	ColorScale string          `json:"color_scale,omitempty"`
	Nodes      []ViewNode      `json:"nodes"`
	Edges      []ViewEdge      `json:"edges"`
	Links      Links           `json:"links"`
}

// PlaceholderView is returned when there is nothing to draw
func PlaceholderView(genes []string, status ViewStatus) *NetworkView {
	v := &NetworkView{
		Title:  NetworkTitle(genes, MethodNone),
		Status: status,
		Genes:  genes,
		Method: MethodNone,
		Nodes:  []ViewNode{},
		Edges:  []ViewEdge{},
	}
	switch status {
	case StatusNoProtein:
		v.Message = fmt.Sprintf("%s does not translate to any protein", SelectionTitle(genes))
	case StatusNoInteractions:
		v.Message = fmt.Sprintf("No interactions with experimental evidence found for %s", SelectionTitle(genes))
	case StatusEmpty:
		v.Message = "Select one or more genes"
	}
	return v
}

// NetworkTitle formats the view title for a selection and method
func NetworkTitle(genes []string, method AnalysisMethod) string {
	if len(genes) == 0 {
		return "Protein - Protein Interaction Network"
	}
	title := fmt.Sprintf("%s Protein - Protein Interaction Network", SelectionTitle(genes))
	if method != MethodNone && method != "" {
		title += " with method " + string(method)
	}
	return title
}
