// Package config provides configuration management for ppiviz.
//
// Config file locations (priority order):
//  1. $PPIVIZ_CONFIG
//  2. ./ppiviz.yaml
//  3. $XDG_CONFIG_HOME/ppiviz/config.yaml
//  4. ~/.config/ppiviz/config.yaml
//  5. /etc/ppiviz/config.yaml
//
// Missing values are filled with defaults after loading and the result is
// validated before use.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ppiviz/internal/adapter"
	"ppiviz/internal/core/analysis"
	"ppiviz/internal/core/layout"
	"ppiviz/internal/domain"
)

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes the config as YAML, creating parent directories
func (c *Config) Save(path string) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = Duration(time.Hour)
	}
	if c.Server.SweepInterval == 0 {
		c.Server.SweepInterval = Duration(time.Minute)
	}
	if c.Server.ShutdownGrace == 0 {
		c.Server.ShutdownGrace = Duration(10 * time.Second)
	}

	if c.Database.Path == "" {
		c.Database.Path = "./ppiviz.db"
	}

	if c.Tables.Genes == "" {
		c.Tables.Genes = "./data/all_genes_dict.txt"
	}
	if c.Tables.Proteins == "" {
		c.Tables.Proteins = "./data/ENSG_to_ENSP.txt"
	}
	if c.Tables.Debounce == 0 {
		c.Tables.Debounce = Duration(500 * time.Millisecond)
	}

	if c.String.Source == "" {
		c.String.Source = "string"
	}
	if c.String.BaseURL == "" {
		c.String.BaseURL = adapter.DefaultStringBaseURL
	}
	if c.String.Species == 0 {
		c.String.Species = adapter.DefaultSpecies
	}
	if c.String.CallerIdentity == "" {
		c.String.CallerIdentity = adapter.DefaultCallerIdentity
	}
	if c.String.Threshold == nil {
		threshold := adapter.DefaultThreshold
		c.String.Threshold = &threshold
	}
	if c.String.Timeout == 0 {
		c.String.Timeout = Duration(30 * time.Second)
	}
	if c.String.RateLimit == 0 {
		c.String.RateLimit = 1
	}
	if c.String.Burst == 0 {
		c.String.Burst = 1
	}

	if c.Layout.Default == "" {
		c.Layout.Default = string(domain.LayoutSpring)
	}
}

// Validate checks field constraints and the layout name
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := domain.ParseLayout(c.Layout.Default); err != nil {
		return fmt.Errorf("invalid config: layout.default: %w", err)
	}
	return nil
}

// StringOptions builds the STRING client options
func (c StringConfig) StringOptions() []adapter.StringOption {
	return []adapter.StringOption{
		adapter.WithBaseURL(c.BaseURL),
		adapter.WithSpecies(c.Species),
		adapter.WithCallerIdentity(c.CallerIdentity),
		adapter.WithTimeout(c.Timeout.Duration()),
		adapter.WithRateLimit(c.RateLimit, c.Burst),
	}
}

// EdgeThreshold returns the configured threshold or the adapter default
func (c StringConfig) EdgeThreshold() float64 {
	if c.Threshold == nil {
		return adapter.DefaultThreshold
	}
	return *c.Threshold
}

// Options converts to analyzer options. Unset fields keep analyzer defaults.
func (c AnalysisConfig) Options() analysis.Options {
	opts := analysis.DefaultOptions()
	if c.EigenMaxIter > 0 {
		opts.EigenMaxIter = c.EigenMaxIter
	}
	if c.EigenTol > 0 {
		opts.EigenTol = c.EigenTol
	}
	if c.Clusters > 0 {
		opts.Clusters = c.Clusters
	}
	if c.KMeansInit > 0 {
		opts.KMeansInit = c.KMeansInit
	}
	if c.Resolution > 0 {
		opts.Resolution = c.Resolution
	}
	if c.Seed > 0 {
		opts.Seed = c.Seed
	}
	if c.TopN > 0 {
		opts.TopN = c.TopN
	}
	return opts
}

// Options converts to layout engine options
func (c LayoutConfig) Options() layout.Options {
	opts := layout.DefaultOptions()
	if c.Iterations > 0 {
		opts.Iterations = c.Iterations
	}
	if c.Repulsion > 0 {
		opts.Repulsion = c.Repulsion
	}
	if c.Rate > 0 {
		opts.Rate = c.Rate
	}
	if c.Theta > 0 {
		opts.Theta = c.Theta
	}
	if c.Seed > 0 {
		opts.Seed = c.Seed
	}
	return opts
}

// DefaultLayout returns the parsed default algorithm
func (c LayoutConfig) DefaultLayout() domain.LayoutAlgorithm {
	algorithm, err := domain.ParseLayout(c.Default)
	if err != nil {
		return domain.LayoutSpring
	}
	return algorithm
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Tables: %s, %s (watch: %v)\n", c.Tables.Genes, c.Tables.Proteins, c.Tables.Watch)
	summary += fmt.Sprintf("Source: %s, species %d, threshold %g, cache TTL %s",
		c.String.Source, c.String.Species, c.String.EdgeThreshold(), c.String.CacheTTL.Duration())
	return summary
}
