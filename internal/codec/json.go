package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"ppiviz/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType implements Exporter
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse reads a view exported as JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.NetworkView, error) {
	var view domain.NetworkView
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &view, nil
}

// Export writes the view as indented JSON
func (c *JSONCodec) Export(view *domain.NetworkView, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(view); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
