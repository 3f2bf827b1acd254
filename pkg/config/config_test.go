package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies the default values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "dvars", cfg.Detection.Metric)
	assert.Equal(t, 1.5, cfg.Detection.Proportion)
	assert.Equal(t, runtime.NumCPU(), cfg.Processing.NumCores)
	assert.NoError(t, cfg.Validate())
}

// TestLoadConfigMissingFile verifies that a missing file yields defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Detection.Proportion)
}

// TestLoadConfigPartial verifies that unspecified fields keep their defaults
func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "detection:\n  metric: spm-global\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "spm-global", cfg.Detection.Metric)
	assert.Equal(t, 1.5, cfg.Detection.Proportion)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Detection.Metric = "spm-global"
	cfg.Detection.Proportion = 0.5
	cfg.Processing.NumCores = 3
	cfg.Output.Verbose = true

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, *cfg, *loaded)
}

// TestCreateDefaultConfigFile verifies that the default file is valid YAML
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, *DefaultConfig(), *loaded)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detection: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

// TestValidate checks that invalid values are rejected
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown metric", func(c *Config) { c.Detection.Metric = "framewise-displacement" }},
		{"negative proportion", func(c *Config) { c.Detection.Proportion = -1 }},
		{"no cores", func(c *Config) { c.Processing.NumCores = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
