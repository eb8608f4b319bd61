package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "patient_id", cfg.PatientIDColumn)
	assert.Len(t, cfg.FeatureColumns, 4)
	assert.Equal(t, 0.0, cfg.Eps)
	assert.Equal(t, 5, cfg.MinSamples)
	assert.Equal(t, 50.0, cfg.KDistancePercentile)
	assert.Equal(t, 0.5, cfg.MaxNoiseRatio)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
eps: 0.8
min_samples: 3
feature_columns:
  - heart_rate_bpm
  - temperature_c
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Eps)
	assert.Equal(t, 3, cfg.MinSamples)
	assert.Equal(t, []string{"heart_rate_bpm", "temperature_c"}, cfg.FeatureColumns)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, "patient_id", cfg.PatientIDColumn)
	assert.Equal(t, 50.0, cfg.KDistancePercentile)
	assert.Equal(t, "data", cfg.OutputDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eps: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_samples: 0"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty id column", func(c *Config) { c.PatientIDColumn = "" }},
		{"no feature columns", func(c *Config) { c.FeatureColumns = nil }},
		{"negative eps", func(c *Config) { c.Eps = -1 }},
		{"zero min_samples", func(c *Config) { c.MinSamples = 0 }},
		{"percentile over 100", func(c *Config) { c.KDistancePercentile = 101 }},
		{"negative percentile", func(c *Config) { c.KDistancePercentile = -1 }},
		{"zero noise ratio", func(c *Config) { c.MaxNoiseRatio = 0 }},
		{"noise ratio over 1", func(c *Config) { c.MaxNoiseRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
