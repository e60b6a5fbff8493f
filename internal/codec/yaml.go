package codec

import (
	"fmt"
	"io"

	"ppiviz/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType implements Exporter
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlView is the YAML layout of an exported view
type yamlView struct {
	Title   string     `yaml:"title"`
	Status  string     `yaml:"status"`
	Message string     `yaml:"message,omitempty"`
	Genes   []string   `yaml:"genes"`
	Method  string     `yaml:"method"`
	Layout  string     `yaml:"layout,omitempty"`
	Scale   string     `yaml:"color_scale,omitempty"`
	Labels  bool       `yaml:"show_labels,omitempty"`
	Links   yamlLinks  `yaml:"links,omitempty"`
	Nodes   []yamlNode `yaml:"nodes"`
	Edges   []yamlEdge `yaml:"edges"`
}

type yamlLinks struct {
	String  string            `yaml:"string,omitempty"`
	Ensembl map[string]string `yaml:"ensembl,omitempty"`
}

type yamlNode struct {
	ID     string   `yaml:"id"`
	Label  string   `yaml:"label,omitempty"`
	Role   string   `yaml:"role"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Pinned bool     `yaml:"pinned,omitempty"`
	Color  string   `yaml:"color"`
	Size   float64  `yaml:"size"`
	Value  *float64 `yaml:"value,omitempty"`
	Hover  string   `yaml:"hover_text,omitempty"`
}

type yamlEdge struct {
	ID     string  `yaml:"id,omitempty"`
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

// Parse reads a view exported as YAML. Edge geometry is rebuilt from the
// node positions.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.NetworkView, error) {
	var yv yamlView
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yv); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	view := &domain.NetworkView{
		Title:      yv.Title,
		Status:     domain.ViewStatus(yv.Status),
		Message:    yv.Message,
		Genes:      yv.Genes,
		Method:     domain.AnalysisMethod(yv.Method),
		Layout:     domain.LayoutAlgorithm(yv.Layout),
		ColorScale: yv.Scale,
		ShowLabels: yv.Labels,
		Links:      domain.Links{String: yv.Links.String, Ensembl: yv.Links.Ensembl},
		Nodes:      make([]domain.ViewNode, 0, len(yv.Nodes)),
		Edges:      make([]domain.ViewEdge, 0, len(yv.Edges)),
	}

	pos := make(map[string]domain.ViewNode, len(yv.Nodes))
	for _, yn := range yv.Nodes {
		n := domain.ViewNode{
			ID:        yn.ID,
			Label:     yn.Label,
			X:         yn.X,
			Y:         yn.Y,
			Pinned:    yn.Pinned,
			Role:      domain.Role(yn.Role),
			Color:     yn.Color,
			Size:      yn.Size,
			Value:     yn.Value,
			HoverText: yn.Hover,
		}
		pos[n.ID] = n
		view.Nodes = append(view.Nodes, n)
	}

	for _, ye := range yv.Edges {
		e := domain.ViewEdge{
			ID:     ye.ID,
			From:   ye.From,
			To:     ye.To,
			Weight: ye.Weight,
		}
		if e.ID == "" {
			e.ID = domain.NewEdgeKey(e.From, e.To).ID()
		}
		from, to := pos[e.From], pos[e.To]
		e.X0, e.Y0, e.X1, e.Y1 = from.X, from.Y, to.X, to.Y
		view.Edges = append(view.Edges, e)
	}

	return view, nil
}

// Export writes the view as YAML
func (c *YAMLCodec) Export(view *domain.NetworkView, w io.Writer) error {
	yv := yamlView{
		Title:   view.Title,
		Status:  string(view.Status),
		Message: view.Message,
		Genes:   view.Genes,
		Method:  string(view.Method),
		Layout:  string(view.Layout),
		Scale:   view.ColorScale,
		Labels:  view.ShowLabels,
		Links:   yamlLinks{String: view.Links.String, Ensembl: view.Links.Ensembl},
		Nodes:   make([]yamlNode, 0, len(view.Nodes)),
		Edges:   make([]yamlEdge, 0, len(view.Edges)),
	}

	for _, n := range view.Nodes {
		yv.Nodes = append(yv.Nodes, yamlNode{
			ID:     n.ID,
			Label:  n.Label,
			Role:   string(n.Role),
			X:      n.X,
			Y:      n.Y,
			Pinned: n.Pinned,
			Color:  n.Color,
			Size:   n.Size,
			Value:  n.Value,
			Hover:  n.HoverText,
		})
	}

	for _, e := range view.Edges {
		yv.Edges = append(yv.Edges, yamlEdge{
			ID:     e.ID,
			From:   e.From,
			To:     e.To,
			Weight: e.Weight,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yv); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
