package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"ppiviz/internal/domain"
)

// TSVCodec exports the edge list of a view
type TSVCodec struct{}

// NewTSVCodec creates a new TSV codec
func NewTSVCodec() *TSVCodec {
	return &TSVCodec{}
}

// Format returns the codec format identifier
func (c *TSVCodec) Format() string {
	return "tsv"
}

// ContentType implements Exporter
func (c *TSVCodec) ContentType() string {
	return "text/tab-separated-values"
}

// Export writes one "from, to, score" row per edge under a header row
func (c *TSVCodec) Export(view *domain.NetworkView, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "from\tto\tscore")
	for _, e := range view.Edges {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", e.From, e.To, strconv.FormatFloat(e.Weight, 'f', -1, 64))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write TSV: %w", err)
	}
	return nil
}
