// Package config holds the tool configuration: defaults, validation,
// environment overrides, and the optional .tuivet.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no config
// path is given.
const DefaultFileName = ".tuivet.yaml"

// Config is the full tool configuration.
type Config struct {
	// Depth is the default validation depth: "fast" or "full"
	// Default: full
	Depth string

	// Timeout bounds each sandbox run
	// Default: 5s, Range: 100ms-10m
	Timeout time.Duration

	// MaxIterations caps healing fix rounds
	// Default: 5, Range: 1-50
	MaxIterations int

	// Format selects output rendering: "text" or "json"
	// Default: text
	Format string

	// HistoryPath is the SQLite run log location
	// Default: .tuivet/runs.db
	HistoryPath string

	// GoBin overrides the Go toolchain binary for the sandbox
	GoBin string

	// WorkRoot overrides where sandbox directories are created
	WorkRoot string

	// Model overrides the AI repair model
	Model string

	// Concurrency bounds parallel files in batch validation
	// Default: 4, Range: 1-64
	Concurrency int
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Depth:         "full",
		Timeout:       5 * time.Second,
		MaxIterations: 5,
		Format:        "text",
		HistoryPath:   ".tuivet/runs.db",
		Concurrency:   4,
	}
}

// Validate checks if the configuration has valid values.
func (c *Config) Validate() error {
	if c.Depth != "fast" && c.Depth != "full" {
		return fmt.Errorf("depth must be \"fast\" or \"full\" (got %q)", c.Depth)
	}
	if c.Timeout < 100*time.Millisecond || c.Timeout > 10*time.Minute {
		return fmt.Errorf("timeout must be between 100ms and 10m (got %v)", c.Timeout)
	}
	if c.MaxIterations < 1 || c.MaxIterations > 50 {
		return fmt.Errorf("max_iterations must be between 1 and 50 (got %d)", c.MaxIterations)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("format must be \"text\" or \"json\" (got %q)", c.Format)
	}
	if c.Concurrency < 1 || c.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 1 and 64 (got %d)", c.Concurrency)
	}
	return nil
}

// yamlConfig is the on-disk shape; timeouts use Go duration syntax.
type yamlConfig struct {
	Depth         string `yaml:"depth,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
	MaxIterations int    `yaml:"max_iterations,omitempty"`
	Format        string `yaml:"format,omitempty"`
	HistoryPath   string `yaml:"history_path,omitempty"`
	GoBin         string `yaml:"go_bin,omitempty"`
	WorkRoot      string `yaml:"work_root,omitempty"`
	Model         string `yaml:"model,omitempty"`
	Concurrency   int    `yaml:"concurrency,omitempty"`
}

// UnmarshalYAML layers the file's values over whatever the receiver
// already holds, so absent keys keep their defaults.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw yamlConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Depth != "" {
		c.Depth = raw.Depth
	}
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		c.Timeout = parsed
	}
	if raw.MaxIterations != 0 {
		c.MaxIterations = raw.MaxIterations
	}
	if raw.Format != "" {
		c.Format = raw.Format
	}
	if raw.HistoryPath != "" {
		c.HistoryPath = raw.HistoryPath
	}
	if raw.GoBin != "" {
		c.GoBin = raw.GoBin
	}
	if raw.WorkRoot != "" {
		c.WorkRoot = raw.WorkRoot
	}
	if raw.Model != "" {
		c.Model = raw.Model
	}
	if raw.Concurrency != 0 {
		c.Concurrency = raw.Concurrency
	}
	return nil
}

func (c *Config) MarshalYAML() (any, error) {
	return yamlConfig{
		Depth:         c.Depth,
		Timeout:       c.Timeout.String(),
		MaxIterations: c.MaxIterations,
		Format:        c.Format,
		HistoryPath:   c.HistoryPath,
		GoBin:         c.GoBin,
		WorkRoot:      c.WorkRoot,
		Model:         c.Model,
		Concurrency:   c.Concurrency,
	}, nil
}

// Load builds the effective configuration: defaults, then the YAML file
// at path (or DefaultFileName when path is empty; a missing default
// file is fine), then TUIVET_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// No config file is the common case.
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// applyEnv layers TUIVET_* variables over the current values.
//
// Environment variables:
//   - TUIVET_DEPTH: default validation depth (fast|full)
//   - TUIVET_TIMEOUT: sandbox timeout, Go duration syntax
//   - TUIVET_MAX_ITERATIONS: healing fix-round ceiling
//   - TUIVET_FORMAT: output format (text|json)
//   - TUIVET_HISTORY: run log path
//   - TUIVET_GO_BIN: Go toolchain binary
//   - TUIVET_WORK_ROOT: sandbox parent directory
//   - TUIVET_MODEL: AI repair model
//   - TUIVET_CONCURRENCY: batch parallelism
func applyEnv(cfg *Config) error {
	parseEnvString("TUIVET_DEPTH", &cfg.Depth)
	parseEnvString("TUIVET_FORMAT", &cfg.Format)
	parseEnvString("TUIVET_HISTORY", &cfg.HistoryPath)
	parseEnvString("TUIVET_GO_BIN", &cfg.GoBin)
	parseEnvString("TUIVET_WORK_ROOT", &cfg.WorkRoot)
	parseEnvString("TUIVET_MODEL", &cfg.Model)
	if err := parseEnvInt("TUIVET_MAX_ITERATIONS", &cfg.MaxIterations); err != nil {
		return err
	}
	if err := parseEnvInt("TUIVET_CONCURRENCY", &cfg.Concurrency); err != nil {
		return err
	}
	if err := parseEnvDuration("TUIVET_TIMEOUT", &cfg.Timeout); err != nil {
		return err
	}
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvDuration(key string, dest *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvString(key string, dest *string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}
