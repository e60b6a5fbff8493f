package domain

import "strings"

// Identifier is the resolved form of a gene display name
type Identifier struct {
	Gene      string `json:"gene"`
	GenomicID string `json:"genomic_id"`
	ProteinID string `json:"protein_id,omitempty"` // empty for non-coding genes
}

// HasProtein reports whether the gene translates to a known protein
func (id Identifier) HasProtein() bool {
	return id.ProteinID != ""
}

// Candidates returns the ordered identifier sets tried against the interaction
// service: the display name first, then the resolved protein id.
func (id Identifier) Candidates() [][]string {
	candidates := [][]string{{id.Gene}}
	if id.ProteinID != "" && id.ProteinID != id.Gene {
		candidates = append(candidates, []string{id.ProteinID})
	}
	return candidates
}

// StripVersion removes the ".N" version suffix of a GENCODE identifier
// (ENSG00000141510.16 -> ENSG00000141510)
func StripVersion(genomicID string) string {
	if i := strings.IndexByte(genomicID, '.'); i >= 0 {
		return genomicID[:i]
	}
	return genomicID
}

// StripSpecies removes the NCBI taxon prefix STRING puts on protein ids
// (9606.ENSP00000269305 -> ENSP00000269305)
func StripSpecies(proteinID string) string {
	if i := strings.IndexByte(proteinID, '.'); i > 0 {
		prefix := proteinID[:i]
		for _, r := range prefix {
			if r < '0' || r > '9' {
				return proteinID
			}
		}
		return proteinID[i+1:]
	}
	return proteinID
}

// NormalizeSelection trims names, drops empty entries and duplicates while
// keeping the order in which genes were picked
func NormalizeSelection(genes []string) []string {
	seen := make(map[string]struct{}, len(genes))
	out := make([]string, 0, len(genes))
	for _, g := range genes {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// SelectionTitle renders a selection the way view titles show it
func SelectionTitle(genes []string) string {
	switch len(genes) {
	case 0:
		return ""
	case 1:
		return genes[0]
	default:
		return "[" + strings.Join(genes, ", ") + "]"
	}
}
