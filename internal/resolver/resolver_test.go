package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppiviz/internal/domain"
	"ppiviz/internal/loader"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	genes := loader.NewTable()
	genes.Put("TP53", "ENSG00000141510.16")
	genes.Put("TP53BP1", "ENSG00000067369.15")
	genes.Put("MALAT1", "ENSG00000251562.8")
	proteins := loader.NewTable()
	proteins.Put("ENSG00000141510", "ENSP00000269305")
	proteins.Put("ENSG00000067369", "ENSP00000371475")
	return New(genes, proteins)
}

func TestResolve(t *testing.T) {
	r := testResolver(t)

	t.Run("strips version before protein lookup", func(t *testing.T) {
		id, err := r.Resolve("TP53")
		require.NoError(t, err)
		assert.Equal(t, "ENSG00000141510.16", id.GenomicID)
		assert.Equal(t, "ENSP00000269305", id.ProteinID)
	})

	t.Run("non-coding gene has empty protein", func(t *testing.T) {
		id, err := r.Resolve("MALAT1")
		require.NoError(t, err)
		assert.False(t, id.HasProtein())
		_, ok := r.ProteinID(id.GenomicID)
		assert.False(t, ok)
	})

	t.Run("unknown gene", func(t *testing.T) {
		_, err := r.Resolve("NOTAGENE")
		var unknown *domain.UnknownGeneError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "NOTAGENE", unknown.Gene)
	})
}

func TestResolveSelection(t *testing.T) {
	r := testResolver(t)

	ids, err := r.ResolveSelection([]string{"TP53", "MALAT1"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = r.ResolveSelection([]string{"TP53", "BOGUS", "ALSOBOGUS"})
	var unknown *domain.UnknownGeneError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "BOGUS", unknown.Gene)
}

func TestSuggest(t *testing.T) {
	r := testResolver(t)
	assert.Equal(t, []string{"TP53", "TP53BP1"}, r.Suggest("tp5", 0))
	assert.Equal(t, []string{"TP53"}, r.Suggest("TP", 1))
	assert.Empty(t, r.Suggest("ZZZ", 5))
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	genePath := filepath.Join(dir, "all_genes_dict.txt")
	proteinPath := filepath.Join(dir, "ENSG_to_ENSP.txt")
	require.NoError(t, os.WriteFile(genePath, []byte(`{'TP53': 'ENSG00000141510.16'}`), 0o644))
	require.NoError(t, os.WriteFile(proteinPath, []byte(`{'ENSG00000141510': 'ENSP00000269305'}`), 0o644))

	r, err := Load(genePath, proteinPath)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())
	_, err = r.Resolve("MDM2")
	var unknown *domain.UnknownGeneError
	assert.ErrorAs(t, err, &unknown)

	require.NoError(t, os.WriteFile(genePath, []byte(`{'TP53': 'ENSG00000141510.16', 'MDM2': 'ENSG00000135679.25'}`), 0o644))
	require.NoError(t, r.Reload())
	_, err = r.Resolve("MDM2")
	assert.NoError(t, err)

	t.Run("failed reload keeps previous tables", func(t *testing.T) {
		require.NoError(t, os.WriteFile(genePath, []byte(`{'broken'`), 0o644))
		assert.Error(t, r.Reload())
		_, err := r.Resolve("MDM2")
		assert.NoError(t, err)
	})
}
