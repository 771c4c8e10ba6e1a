package sqle

import (
	"os"

	errors "gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
	"gopkg.in/src-d/go-sqlexpr.v0/sql/analyzer"
)

// ErrInvalidConfig is returned when a configuration file cannot be
// decoded.
var ErrInvalidConfig = errors.NewKind("invalid configuration in %s: %s")

// Config of an Engine.
type Config struct {
	// Debug logs the analyzer rules applied.
	Debug bool `yaml:"debug"`
	// Verbose logs the plan after every analyzer rule changing it.
	Verbose bool `yaml:"verbose"`
	// Validate checks the invariants of every program built.
	Validate bool `yaml:"validate"`
	// UseCalc compiles filters and projections into programs.
	UseCalc bool `yaml:"use_calc"`
	// MaxIterations of the analyzer batches.
	MaxIterations int `yaml:"max_iterations"`
	// PlanCacheSize is the number of plans kept in the plan cache.
	PlanCacheSize int `yaml:"plan_cache_size"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Validate:      true,
		MaxIterations: analyzer.DefaultMaxIterations,
		PlanCacheSize: sql.DefaultPlanCacheSize,
	}
}

// LoadConfig reads the configuration in the YAML file at path. Missing
// fields keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(path, data)
}

// ParseConfig decodes a YAML configuration. name is only used in errors.
func ParseConfig(name string, data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, ErrInvalidConfig.New(name, err)
	}
	return cfg, nil
}

func (c *Config) analyzerConfig() analyzer.Config {
	return analyzer.Config{
		Debug:         c.Debug,
		Verbose:       c.Verbose,
		Validate:      c.Validate,
		UseCalc:       c.UseCalc,
		MaxIterations: c.MaxIterations,
	}
}
