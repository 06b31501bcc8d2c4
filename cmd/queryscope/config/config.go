// Package config provides configuration structures for the queryscope pipeline.
package config

import (
	"fmt"
)

// Config represents the pipeline configuration.
type Config struct {
	// Directory layout
	RawDataDir string `yaml:"raw_data_dir" json:"raw_data_dir"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`

	// Logging
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Warehouse publication. Empty path disables it.
	Warehouse WarehouseConfig `yaml:"warehouse" json:"warehouse"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Quicklook configuration
	Quicklook QuicklookConfig `yaml:"quicklook" json:"quicklook"`
}

// WarehouseConfig represents DuckDB warehouse configuration.
type WarehouseConfig struct {
	Path string `yaml:"path" json:"path"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Address serves a live /metrics endpoint for the duration of the run
	// when non-empty.
	Address string `yaml:"address" json:"address"`
	// TextfilePath receives the final exposition-format dump; empty keeps
	// the default name under OutputDir.
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"`
}

// QuicklookConfig represents quicklook analysis configuration.
type QuicklookConfig struct {
	// TopTables bounds the per-table complexity cut.
	TopTables int `yaml:"top_tables" json:"top_tables"`
}

// Validate validates the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	if c.RawDataDir == "" {
		c.RawDataDir = "raw_data"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.LogLevel)
	}

	if c.Quicklook.TopTables <= 0 {
		c.Quicklook.TopTables = 20
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		RawDataDir: "raw_data",
		OutputDir:  "curated_output",
		LogLevel:   "info",
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
		Quicklook: QuicklookConfig{
			TopTables: 20,
		},
	}
}
