package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppiviz/internal/config"
	"ppiviz/internal/domain"
)

func row(a, b string, score float64) string {
	return fmt.Sprintf("9606.ENSP_%s\t9606.ENSP_%s\t%s\t%s\t9606\t0.999\t0\t0\t0\t0.1\t%g\t0.5\t0.9", a, b, a, b, score)
}

// writeFixture lays out identifier tables, saved networks and a config file
// pointing at them, and returns the config path
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "networks")
	require.NoError(t, os.Mkdir(dataDir, 0755))

	files := map[string]string{
		"genes.tsv":    "TP53\tENSG00000141510.16\nTP63\tENSG00000073282.14\nMALAT1\tENSG00000251562.8\n",
		"proteins.tsv": "ENSG00000141510\tENSP00000269305\nENSG00000073282\tENSP00000264731\n",
		"networks/TP53.tsv": strings.Join([]string{
			row("TP53", "MDM2", 0.99),
			row("TP53", "EP300", 0.95),
			row("MDM2", "EP300", 0.7),
			row("TP53", "SIRT1", 0.2),
		}, "\n") + "\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	cfg := fmt.Sprintf(`tables:
  genes: %s
  proteins: %s
string:
  source: file
  data_dir: %s
`, filepath.Join(dir, "genes.tsv"), filepath.Join(dir, "proteins.tsv"), dataDir)
	cfgPath := filepath.Join(dir, "ppiviz.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolve(t *testing.T) {
	cfg := writeFixture(t)

	out, _, err := run(t, "--config", cfg, "resolve", "TP53", "MALAT1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"TP53", "ENSG00000141510.16", "ENSP00000269305"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"MALAT1", "ENSG00000251562.8", "-"}, strings.Fields(lines[2]))

	out, _, err = run(t, "--config", cfg, "resolve", "--prefix", "tp")
	require.NoError(t, err)
	assert.Equal(t, "TP53\nTP63\n", out)

	_, _, err = run(t, "--config", cfg, "resolve", "NOTAGENE")
	var unknown *domain.UnknownGeneError
	assert.ErrorAs(t, err, &unknown)
}

func TestNetwork_TSV(t *testing.T) {
	cfg := writeFixture(t)

	out, _, err := run(t, "--config", cfg, "network", "TP53", "--format", "tsv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "from\tto\tscore", lines[0])
	assert.Len(t, lines, 4, "SIRT1 falls below the default threshold")
}

func TestNetwork_ThresholdFlag(t *testing.T) {
	cfg := writeFixture(t)

	out, _, err := run(t, "--config", cfg, "--threshold", "0.9", "network", "TP53", "-f", "tsv")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	out, _, err = run(t, "--config", cfg, "--threshold", "0", "network", "TP53", "-f", "tsv")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5, "an explicit 0 keeps SIRT1")
}

func TestNetwork_ExportAndShow(t *testing.T) {
	cfg := writeFixture(t)
	outFile := filepath.Join(t.TempDir(), "network.json")

	_, _, err := run(t, "--config", cfg, "network", "TP53",
		"--method", "degree_centrality", "--layout", "circular", "-o", outFile)
	require.NoError(t, err)

	out, _, err := run(t, "show", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "TP53 Protein - Protein Interaction Network with method degree_centrality")
	assert.Contains(t, out, "method: degree_centrality, layout: circular, 3 nodes, 3 edges")
	assert.Contains(t, out, "MDM2")
}

func TestNetwork_NoProtein(t *testing.T) {
	cfg := writeFixture(t)

	out, errOut, err := run(t, "--config", cfg, "network", "MALAT1", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, errOut, "MALAT1 does not translate to any protein")
	assert.Contains(t, out, "status: no_protein")
}

func TestNetwork_Errors(t *testing.T) {
	cfg := writeFixture(t)

	_, _, err := run(t, "--config", cfg, "network", "TP53", "--format", "graphml")
	assert.ErrorContains(t, err, "unsupported export format")

	_, _, err = run(t, "--config", cfg, "network", "TP53", "--method", "pagerank")
	var badMethod *domain.UnsupportedMethodError
	assert.ErrorAs(t, err, &badMethod)

	_, _, err = run(t, "--config", cfg, "network", "TP53", "--layout", "hairball")
	var badLayout *domain.UnsupportedLayoutError
	assert.ErrorAs(t, err, &badLayout)
}

func TestMenus(t *testing.T) {
	out, _, err := run(t, "methods")
	require.NoError(t, err)
	assert.Regexp(t, `closeness_centrality\s+centrality`, out)
	assert.Regexp(t, `community_leiden\s+partition`, out)

	out, _, err = run(t, "layouts")
	require.NoError(t, err)
	assert.Equal(t, len(domain.AllLayouts()), strings.Count(out, "\n"))
	assert.Contains(t, out, "kamada_kawai\n")
}

func TestConfigInit(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	want := filepath.Join(xdg, "ppiviz", "config.yaml")

	out, _, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	cfg, _, err := config.LoadFromPath(want)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Addr, cfg.Server.Addr)

	_, _, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "config", "init", "--force")
	assert.NoError(t, err)

	explicit := filepath.Join(t.TempDir(), "ppiviz.yaml")
	out, _, err = run(t, "config", "init", "--path", explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit+"\n", out)
	assert.FileExists(t, explicit)
}
