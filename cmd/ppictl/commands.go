package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ppiviz/internal/adapter"
	"ppiviz/internal/codec"
	"ppiviz/internal/config"
	"ppiviz/internal/core/analysis"
	"ppiviz/internal/core/layout"
	"ppiviz/internal/domain"
	"ppiviz/internal/repository"
	"ppiviz/internal/repository/sqlite"
	"ppiviz/internal/resolver"
	"ppiviz/internal/service"
)

// cliOptions holds the persistent flags shared by every subcommand
type cliOptions struct {
	configPath string
	genes      string
	proteins   string
	source     string
	dataDir    string
	dbPath     string
	threshold  float64
	verbose    bool

	// thresholdSet records an explicit --threshold, which may be 0
	thresholdSet bool
	cfg          *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "ppictl",
		Short: "Explore protein-protein interaction networks",
		Long: `ppictl resolves human genes to Ensembl identifiers, fetches their
interaction partners, annotates the resulting network and exports it.

Examples:
  ppictl resolve TP53 BRCA1
  ppictl network TP53 --method degree_centrality --format yaml
  ppictl network TP53 BRCA1 --layout kamada_kawai -o network.json
  ppictl show network.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.verbose {
				log.SetOutput(io.Discard)
			}
			opts.thresholdSet = cmd.Flags().Changed("threshold")
			return opts.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: search $PPIVIZ_CONFIG, ./ppiviz.yaml, XDG, /etc)")
	flags.StringVar(&opts.genes, "genes", "", "gene name table (overrides config)")
	flags.StringVar(&opts.proteins, "proteins", "", "genomic to protein id table (overrides config)")
	flags.StringVar(&opts.source, "source", "", "interaction source: string or file (overrides config)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory of saved networks for the file source")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database for the response cache and stored layouts")
	flags.Float64Var(&opts.threshold, "threshold", 0, "experimental score an edge must exceed, 0 to 1 (overrides config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")

	root.AddCommand(
		newResolveCmd(opts),
		newNetworkCmd(opts),
		newMethodsCmd(),
		newLayoutsCmd(),
		newShowCmd(),
		newConfigCmd(),
	)
	return root
}

// load reads the config file and applies flag overrides
func (o *cliOptions) load() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, _, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.genes != "" {
		cfg.Tables.Genes = o.genes
	}
	if o.proteins != "" {
		cfg.Tables.Proteins = o.proteins
	}
	if o.source != "" {
		cfg.String.Source = o.source
	}
	if o.dataDir != "" {
		cfg.String.DataDir = o.dataDir
	}
	if o.thresholdSet {
		cfg.String.Threshold = &o.threshold
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func (o *cliOptions) resolver() (*resolver.Resolver, error) {
	return resolver.Load(o.cfg.Tables.Genes, o.cfg.Tables.Proteins)
}

// pipeline builds a service over a single-use session store. The returned
// func releases the database, if one was opened.
func (o *cliOptions) pipeline() (*service.PPIService, func(), error) {
	res, err := o.resolver()
	if err != nil {
		return nil, nil, err
	}

	var (
		repo    repository.Repository
		cleanup = func() {}
	)
	if o.dbPath != "" {
		r, err := sqlite.New(o.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		repo = r
		cleanup = func() { r.Close() }
	}

	registry := adapter.NewRegistry()
	if err := registry.Register(adapter.NewStringClient(o.cfg.String.StringOptions()...)); err != nil {
		cleanup()
		return nil, nil, err
	}
	if o.cfg.String.DataDir != "" {
		if err := registry.Register(adapter.NewFileSource(o.cfg.String.DataDir)); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	source, err := registry.Get(o.cfg.String.Source)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if repo != nil && o.cfg.String.CacheTTL > 0 {
		source = adapter.NewCachedSource(source, repo, o.cfg.String.Species, o.cfg.String.CacheTTL.Duration(), nil)
	}

	svc := service.NewPPIService(
		res,
		adapter.NewFetcher(source, o.cfg.String.EdgeThreshold()),
		analysis.New(o.cfg.Analysis.Options()),
		layout.New(o.cfg.Layout.Options()),
		repo,
		service.NewSessionStore(),
		nil,
		service.Options{
			DefaultLayout: o.cfg.Layout.DefaultLayout(),
		},
	)
	return svc, cleanup, nil
}

func newResolveCmd(opts *cliOptions) *cobra.Command {
	var prefix bool
	var limit int

	cmd := &cobra.Command{
		Use:   "resolve GENE...",
		Short: "Look up Ensembl identifiers for genes",
		Long: `Print the genomic and protein identifiers of each gene. With --prefix the
arguments are treated as name prefixes and matching gene names are listed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.resolver()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if prefix {
				for _, p := range args {
					for _, name := range res.Suggest(p, limit) {
						fmt.Fprintln(out, name)
					}
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GENE\tGENOMIC ID\tPROTEIN ID")
			for _, gene := range domain.NormalizeSelection(args) {
				id, err := res.Resolve(gene)
				if err != nil {
					return err
				}
				protein := id.ProteinID
				if protein == "" {
					protein = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id.Gene, id.GenomicID, protein)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&prefix, "prefix", false, "list gene names starting with each argument")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum suggestions per prefix")
	return cmd
}

func newNetworkCmd(opts *cliOptions) *cobra.Command {
	var (
		method    string
		algorithm string
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "network GENE...",
		Short: "Build, annotate and export an interaction network",
		Long: `Fetch the interaction partners of the genes, merge them into one network,
apply the analysis method and layout, and write the result.

Formats: json, yaml, tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := codec.ExporterFor(format)
			if err != nil {
				return err
			}

			svc, cleanup, err := opts.pipeline()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sess := svc.NewSession()
			defer svc.DeleteSession(sess.ID)

			if algorithm != "" {
				if _, err := svc.SetLayout(ctx, sess.ID, algorithm); err != nil {
					return err
				}
			}
			view, err := svc.SelectGenes(ctx, sess.ID, args)
			if err != nil {
				return err
			}
			switch {
			case view.Status != domain.StatusOK:
				if view.Message != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), view.Message)
				}
			case method != "":
				if _, err := svc.SelectMethod(ctx, sess.ID, method); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return svc.Export(sess.ID, exporter.Format(), w)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "analysis method (see 'ppictl methods')")
	cmd.Flags().StringVarP(&algorithm, "layout", "l", "", "layout algorithm (see 'ppictl layouts')")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: "+strings.Join(codec.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List analysis methods",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tKIND")
			for _, m := range domain.AllMethods() {
				kind := "display"
				switch {
				case m.IsCentrality():
					kind = "centrality"
				case m.IsPartition():
					kind = "partition"
				}
				fmt.Fprintf(tw, "%s\t%s\n", m, kind)
			}
			return tw.Flush()
		},
	}
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List layout algorithms",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range domain.AllLayouts() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Summarize an exported network",
		Long:  `Read a network exported as json or yaml and print its nodes.`,
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(args[0])), ".")
			importer, err := codec.ImporterFor(format)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			view, err := importer.Parse(f)
			if err != nil {
				return err
			}
			return printView(cmd.OutOrStdout(), view)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the ppiviz config file",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
	}

	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Long: `Write the default configuration as YAML. Without --path the file goes to
$XDG_CONFIG_HOME/ppiviz/config.yaml (or ~/.config/ppiviz/config.yaml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "destination file")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func printView(w io.Writer, view *domain.NetworkView) error {
	fmt.Fprintln(w, view.Title)
	fmt.Fprintf(w, "status: %s, method: %s, layout: %s, %d nodes, %d edges\n",
		view.Status, view.Method, view.Layout, len(view.Nodes), len(view.Edges))
	if view.Message != "" {
		fmt.Fprintln(w, view.Message)
	}
	if len(view.Nodes) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tROLE\tVALUE\tX\tY")
	for _, n := range view.Nodes {
		value := "-"
		if n.Value != nil {
			value = fmt.Sprintf("%.4g", *n.Value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\n", n.ID, n.Role, value, n.X, n.Y)
	}
	return tw.Flush()
}
