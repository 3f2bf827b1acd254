// Package config provides configuration loading and management for scanoutliers.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"scanoutliers/pkg/metrics"
	"scanoutliers/pkg/stats"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detection parameters
	Detection struct {
		// Metric selects the measure computed per frame: "dvars" or "spm-global"
		Metric string `yaml:"metric"`

		// Proportion multiplies the IQR to place the outlier thresholds
		Proportion float64 `yaml:"proportion"`
	} `yaml:"detection"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many frames are reduced in parallel
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Detection.Metric = string(metrics.KindDVARS)
	cfg.Detection.Proportion = stats.DefaultProportion

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if _, err := metrics.ParseKind(c.Detection.Metric); err != nil {
		return fmt.Errorf("detection.metric: %w", err)
	}
	if c.Detection.Proportion < 0 {
		return fmt.Errorf("detection.proportion must be non-negative, got %v", c.Detection.Proportion)
	}
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("processing.numCores must be positive, got %d", c.Processing.NumCores)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Fields missing from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
