package domain

import (
	"errors"
	"testing"
)

func TestStripVersion(t *testing.T) {
	tests := map[string]string{
		"ENSG00000141510.16": "ENSG00000141510",
		"ENSG00000141510":    "ENSG00000141510",
		"":                   "",
	}
	for in, want := range tests {
		if got := StripVersion(in); got != want {
			t.Errorf("StripVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripSpecies(t *testing.T) {
	tests := map[string]string{
		"9606.ENSP00000269305": "ENSP00000269305",
		"ENSP00000269305":      "ENSP00000269305",
		"TP53":                 "TP53",
		"HLA.A":                "HLA.A",
	}
	for in, want := range tests {
		if got := StripSpecies(in); got != want {
			t.Errorf("StripSpecies(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIdentifierCandidates(t *testing.T) {
	t.Run("gene name first then protein id", func(t *testing.T) {
		id := Identifier{Gene: "TP53", GenomicID: "ENSG00000141510.16", ProteinID: "ENSP00000269305"}
		c := id.Candidates()
		if len(c) != 2 || c[0][0] != "TP53" || c[1][0] != "ENSP00000269305" {
			t.Errorf("unexpected candidates %v", c)
		}
	})

	t.Run("non-coding gene has only its name", func(t *testing.T) {
		id := Identifier{Gene: "MALAT1", GenomicID: "ENSG00000251562.8"}
		if id.HasProtein() {
			t.Error("expected no protein")
		}
		if len(id.Candidates()) != 1 {
			t.Errorf("expected 1 candidate, got %d", len(id.Candidates()))
		}
	})
}

func TestNormalizeSelection(t *testing.T) {
	got := NormalizeSelection([]string{" TP53", "", "MDM2", "TP53", "  "})
	if len(got) != 2 || got[0] != "TP53" || got[1] != "MDM2" {
		t.Errorf("expected [TP53 MDM2], got %v", got)
	}
}

func TestMatchesQuery(t *testing.T) {
	ids := []Identifier{{Gene: "TP53", GenomicID: "ENSG00000141510", ProteinID: "ENSP00000269305"}}

	tests := []struct {
		node string
		want bool
	}{
		{"TP53", true},
		{"ENSP00000269305", true},
		{"9606.ENSP00000269305", true},
		{"MDM2", false},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			if got := MatchesQuery(tt.node, ids); got != tt.want {
				t.Errorf("MatchesQuery(%q) = %v, want %v", tt.node, got, tt.want)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	t.Run("accepts every menu entry", func(t *testing.T) {
		for _, m := range AllMethods() {
			got, err := ParseMethod(string(m))
			if err != nil || got != m {
				t.Errorf("ParseMethod(%q) = %q, %v", m, got, err)
			}
		}
	})

	t.Run("None maps to none", func(t *testing.T) {
		if got, _ := ParseMethod("None"); got != MethodNone {
			t.Errorf("expected none, got %q", got)
		}
	})

	t.Run("rejects unknown methods", func(t *testing.T) {
		_, err := ParseMethod("pagerank")
		var unsupported *UnsupportedMethodError
		if !errors.As(err, &unsupported) {
			t.Fatalf("expected UnsupportedMethodError, got %v", err)
		}
		if unsupported.Method != "pagerank" {
			t.Errorf("expected method pagerank, got %q", unsupported.Method)
		}
	})

	t.Run("classifies methods", func(t *testing.T) {
		if !MethodEigenvectorCentrality.IsCentrality() || MethodEigenvectorCentrality.IsPartition() {
			t.Error("eigenvector should be a centrality")
		}
		if !MethodSpectralClustering.IsPartition() || MethodSpectralClustering.IsCentrality() {
			t.Error("spectral clustering should be a partition")
		}
		if !MethodWithLabels.UsesRoleColors() {
			t.Error("with_labels should use role colours")
		}
	})
}
