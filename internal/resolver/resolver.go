// Package resolver maps gene display names to genomic and protein identifiers.
package resolver

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"ppiviz/internal/domain"
	"ppiviz/internal/loader"
)

type tables struct {
	genes    *loader.Table // gene name -> genomic id
	proteins *loader.Table // genomic id (unversioned) -> protein id
}

// Resolver answers identifier lookups against an immutable snapshot of the
// two tables. Reload swaps the snapshot atomically.
type Resolver struct {
	genePath    string
	proteinPath string
	current     atomic.Pointer[tables]
}

// New creates a resolver over in-memory tables
func New(genes, proteins *loader.Table) *Resolver {
	r := &Resolver{}
	r.swap(genes, proteins)
	return r
}

// Load creates a resolver from table files
func Load(genePath, proteinPath string) (*Resolver, error) {
	r := &Resolver{genePath: genePath, proteinPath: proteinPath}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Paths returns the files the resolver was loaded from
func (r *Resolver) Paths() []string {
	var out []string
	if r.genePath != "" {
		out = append(out, r.genePath)
	}
	if r.proteinPath != "" {
		out = append(out, r.proteinPath)
	}
	return out
}

// Reload re-reads both table files. On failure the previous snapshot stays in place.
func (r *Resolver) Reload() error {
	if r.genePath == "" || r.proteinPath == "" {
		return fmt.Errorf("resolver has no table paths")
	}
	genes, err := loader.LoadTable(r.genePath)
	if err != nil {
		return fmt.Errorf("gene table: %w", err)
	}
	proteins, err := loader.LoadTable(r.proteinPath)
	if err != nil {
		return fmt.Errorf("protein table: %w", err)
	}
	r.swap(genes, proteins)
	log.Printf("resolver: loaded %d genes, %d protein mappings", genes.Len(), proteins.Len())
	return nil
}

func (r *Resolver) swap(genes, proteins *loader.Table) {
	if genes == nil {
		genes = loader.NewTable()
	}
	if proteins == nil {
		proteins = loader.NewTable()
	}
	r.current.Store(&tables{genes: genes, proteins: proteins})
}

// Resolve looks up a gene display name
func (r *Resolver) Resolve(gene string) (domain.Identifier, error) {
	t := r.current.Load()
	genomicID, ok := t.genes.Get(gene)
	if !ok {
		return domain.Identifier{}, &domain.UnknownGeneError{Gene: gene}
	}
	id := domain.Identifier{Gene: gene, GenomicID: genomicID}
	if p, ok := lookupProtein(t, genomicID); ok {
		id.ProteinID = p
	}
	return id, nil
}

// ProteinID looks up the protein for a genomic id. The version suffix is
// ignored. A missing protein is not an error.
func (r *Resolver) ProteinID(genomicID string) (string, bool) {
	return lookupProtein(r.current.Load(), genomicID)
}

func lookupProtein(t *tables, genomicID string) (string, bool) {
	p, ok := t.proteins.Get(domain.StripVersion(genomicID))
	if !ok {
		p, ok = t.proteins.Get(genomicID)
	}
	if !ok || p == "" {
		return "", false
	}
	return p, true
}

// ResolveSelection resolves every gene of a selection before any network
// call. The first unknown gene aborts the whole selection.
func (r *Resolver) ResolveSelection(genes []string) ([]domain.Identifier, error) {
	ids := make([]domain.Identifier, 0, len(genes))
	for _, g := range genes {
		id, err := r.Resolve(g)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the number of known genes
func (r *Resolver) Count() int {
	return r.current.Load().genes.Len()
}

// Suggest lists gene names starting with prefix (case-insensitive) in table
// order. limit <= 0 means no limit.
func (r *Resolver) Suggest(prefix string, limit int) []string {
	t := r.current.Load()
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	out := []string{}
	for _, name := range t.genes.Keys {
		if !strings.HasPrefix(strings.ToUpper(name), prefix) {
			continue
		}
		out = append(out, name)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
