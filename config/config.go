// Package config loads the backchain configuration from YAML, with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all backchain configuration.
type Config struct {
	// KnowledgeBase lists the files consulted at startup, in order.
	KnowledgeBase []string `yaml:"knowledge_base"`

	Solver  SolverConfig  `yaml:"solver"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SolverConfig configures the search.
type SolverConfig struct {
	MaxDepth         int  `yaml:"max_depth"` // 0 disables the cap
	Trace            bool `yaml:"trace"`
	BatchConcurrency int  `yaml:"batch_concurrency"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			MaxDepth:         0,
			BatchConcurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("BACKCHAIN_MAX_DEPTH"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BACKCHAIN_MAX_DEPTH: %w", err)
		}
		c.Solver.MaxDepth = depth
	}
	if v := os.Getenv("BACKCHAIN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BACKCHAIN_KB"); v != "" {
		c.KnowledgeBase = nil
		for _, file := range strings.Split(v, ",") {
			if file = strings.TrimSpace(file); file != "" {
				c.KnowledgeBase = append(c.KnowledgeBase, file)
			}
		}
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Solver.MaxDepth < 0 {
		return fmt.Errorf("solver.max_depth must be non-negative, got %d", c.Solver.MaxDepth)
	}
	if c.Solver.BatchConcurrency < 1 {
		return fmt.Errorf("solver.batch_concurrency must be positive, got %d", c.Solver.BatchConcurrency)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
