package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Tables   TablesConfig   `yaml:"tables"`
	String   StringConfig   `yaml:"string"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Layout   LayoutConfig   `yaml:"layout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// SessionTTL closes sessions idle for longer. Zero keeps them forever.
	SessionTTL    Duration `yaml:"session_ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
	ShutdownGrace Duration `yaml:"shutdown_grace"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// TablesConfig points at the identifier tables
type TablesConfig struct {
	Genes    string   `yaml:"genes" validate:"required"`
	Proteins string   `yaml:"proteins" validate:"required"`
	Watch    bool     `yaml:"watch"`
	Debounce Duration `yaml:"debounce"`
}

// StringConfig configures the interaction source
type StringConfig struct {
	// Source is "string" for the live service or "file" for canned bodies
	Source         string   `yaml:"source" validate:"oneof=string file"`
	BaseURL        string   `yaml:"base_url" validate:"omitempty,url"`
	Species        int      `yaml:"species" validate:"gt=0"`
	CallerIdentity string   `yaml:"caller_identity"`
	// Threshold is the experimental score an edge must exceed. Unset takes
	// the adapter default; an explicit 0 keeps every scored edge.
	Threshold      *float64 `yaml:"threshold" validate:"required,gte=0,lte=1"`
	Timeout        Duration `yaml:"timeout"`
	RateLimit      float64  `yaml:"rate_limit" validate:"gte=0"`
	Burst          int      `yaml:"burst" validate:"gte=0"`
	// CacheTTL bounds the age of cached bodies. Zero disables the cache.
	CacheTTL Duration `yaml:"cache_ttl"`
	DataDir  string   `yaml:"data_dir" validate:"required_if=Source file"`
}

// AnalysisConfig tunes the graph analyzer. Zero values take the analyzer
// defaults.
type AnalysisConfig struct {
	EigenMaxIter int     `yaml:"eigen_max_iter" validate:"gte=0"`
	EigenTol     float64 `yaml:"eigen_tol" validate:"gte=0"`
	Clusters     int     `yaml:"clusters" validate:"gte=0,lte=64"`
	KMeansInit   int     `yaml:"kmeans_init" validate:"gte=0"`
	Resolution   float64 `yaml:"resolution" validate:"gte=0"`
	Seed         uint64  `yaml:"seed"`
	TopN         int     `yaml:"top_n" validate:"gte=0"`
}

// LayoutConfig tunes node placement
type LayoutConfig struct {
	Default    string  `yaml:"default"`
	Iterations int     `yaml:"iterations" validate:"gte=0"`
	Repulsion  float64 `yaml:"repulsion" validate:"gte=0"`
	Rate       float64 `yaml:"rate" validate:"gte=0"`
	Theta      float64 `yaml:"theta" validate:"gte=0"`
	Seed       uint64  `yaml:"seed"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
