package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/dimkit/dimkit/units"
	"github.com/dimkit/dimkit/units/trace"
)

// Config is the engine configuration file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	CatalogPath      string        `yaml:"catalog_path"`      // "" = embedded catalog
	DefaultPrecision uint32        `yaml:"default_precision"` // 0 = exact results
	DefaultRounding  string        `yaml:"default_rounding"`
	Search           SearchConfig  `yaml:"search"`
	Metrics          MetricsConfig `yaml:"metrics"`
	Trace            TraceConfig   `yaml:"trace"`
}

// SearchConfig controls the label indexes.
type SearchConfig struct {
	CaseInsensitive *bool `yaml:"case_insensitive"` // nil = enabled
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TraceConfig controls match tracing for `dimkit match --explain`.
type TraceConfig struct {
	Level    string `yaml:"level"`
	MaxSteps int    `yaml:"max_steps"`
}

// LoadConfig reads and parses an engine configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the rounding mode, trace level and ranges.
func (c *Config) Validate() error {
	if !units.IsValidRounding(c.DefaultRounding) {
		return fmt.Errorf("unknown default_rounding %q; valid: %v", c.DefaultRounding, units.ValidRoundings())
	}
	if c.DefaultRounding != "" && c.DefaultPrecision == 0 {
		return fmt.Errorf("default_rounding %q requires default_precision", c.DefaultRounding)
	}
	if !trace.IsValidTraceLevel(c.Trace.Level) {
		return fmt.Errorf("unknown trace level %q; valid: none, steps", c.Trace.Level)
	}
	if c.Trace.MaxSteps < 0 {
		return fmt.Errorf("trace max_steps must be non-negative, got %d", c.Trace.MaxSteps)
	}
	return nil
}

// PrecisionContext returns the default rounding context, or nil for exact
// results.
func (c *Config) PrecisionContext() *units.PrecisionContext {
	if c.DefaultPrecision == 0 {
		return nil
	}
	return &units.PrecisionContext{Precision: c.DefaultPrecision, Rounding: c.DefaultRounding}
}

// MatchTraceConfig returns the match trace settings.
func (c *Config) MatchTraceConfig() trace.TraceConfig {
	return trace.TraceConfig{Level: trace.TraceLevel(c.Trace.Level), MaxSteps: c.Trace.MaxSteps}
}

// Options returns the build options for the configuration. Metrics are
// registered with reg when enabled.
func (c *Config) Options(reg prometheus.Registerer) ([]units.Option, error) {
	var opts []units.Option
	if c.Search.CaseInsensitive != nil {
		opts = append(opts, units.WithCaseInsensitiveSearch(*c.Search.CaseInsensitive))
	}
	if c.Metrics.Enabled {
		m, err := units.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		opts = append(opts, units.WithMetrics(m))
	}
	return opts, nil
}

// Open validates c and loads its catalog.
func (c *Config) Open(reg prometheus.Registerer) (*units.Catalog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts, err := c.Options(reg)
	if err != nil {
		return nil, err
	}
	return Load(c.CatalogPath, opts...)
}
