// Package codec serializes network views for export.
//
// JSON and YAML carry the complete view and can be read back. TSV is a flat
// edge list in the same column order the interaction service uses for
// preferred names, followed by the score.
package codec

import (
	"fmt"
	"io"
	"sort"

	"ppiviz/internal/domain"
)

// Importer reads a previously exported view
type Importer interface {
	Parse(r io.Reader) (*domain.NetworkView, error)
	Format() string
}

// Exporter writes a view in one format
type Exporter interface {
	Export(view *domain.NetworkView, w io.Writer) error
	Format() string
	ContentType() string
}

// UnsupportedFormatError reports an export format with no codec
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q", e.Format)
}

var exporters = map[string]Exporter{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
	"tsv":  NewTSVCodec(),
}

// ExporterFor returns the exporter for a format name
func ExporterFor(format string) (Exporter, error) {
	if e, ok := exporters[format]; ok {
		return e, nil
	}
	return nil, &UnsupportedFormatError{Format: format}
}

var importers = map[string]Importer{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
	"yml":  NewYAMLCodec(),
}

// ImporterFor returns the importer for a format name. TSV edge lists cannot
// be read back.
func ImporterFor(format string) (Importer, error) {
	if i, ok := importers[format]; ok {
		return i, nil
	}
	return nil, &UnsupportedFormatError{Format: format}
}

// Formats lists the export format names
func Formats() []string {
	out := make([]string, 0, len(exporters))
	for f := range exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
