// Package config defines the analysis configuration for the vitalscan CLI:
// which CSV columns to read, default clustering parameters, and output
// locations. Configuration is an explicit value handed to each component,
// never ambient process state, so parallel runs cannot interfere.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full analysis configuration.
type Config struct {
	// PatientIDColumn names the record-identifier column of the input CSV.
	PatientIDColumn string `yaml:"patient_id_column"`

	// FeatureColumns names the numeric columns used for clustering.
	FeatureColumns []string `yaml:"feature_columns"`

	// Eps is the neighborhood radius. 0 means derive it from the
	// k-distance curve at KDistancePercentile.
	Eps float64 `yaml:"eps"`

	// MinSamples is the core-point threshold.
	MinSamples int `yaml:"min_samples"`

	// KDistancePercentile is the percentile of the k-distance curve used
	// to suggest Eps when Eps is 0. 50 (the median) by default.
	KDistancePercentile float64 `yaml:"k_distance_percentile"`

	// MaxNoiseRatio is the optimizer's acceptance ceiling on noise.
	MaxNoiseRatio float64 `yaml:"max_noise_ratio"`

	// OutputDir is where reports are written.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the configuration for the standard five-column patient
// vitals dataset.
func Default() *Config {
	return &Config{
		PatientIDColumn: "patient_id",
		FeatureColumns: []string{
			"blood_pressure_systolic",
			"blood_pressure_diastolic",
			"temperature_c",
			"heart_rate_bpm",
		},
		MinSamples:          5,
		KDistancePercentile: 50,
		MaxNoiseRatio:       0.5,
		OutputDir:           "data",
	}
}

// Load reads a YAML file over the defaults: absent keys keep their default
// values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the pipeline relies on.
func (c *Config) Validate() error {
	if c.PatientIDColumn == "" {
		return fmt.Errorf("config: patient_id_column must not be empty")
	}
	if len(c.FeatureColumns) == 0 {
		return fmt.Errorf("config: feature_columns must not be empty")
	}
	if c.Eps < 0 {
		return fmt.Errorf("config: eps must be >= 0, got %v", c.Eps)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("config: min_samples must be >= 1, got %d", c.MinSamples)
	}
	if c.KDistancePercentile < 0 || c.KDistancePercentile > 100 {
		return fmt.Errorf("config: k_distance_percentile must be in [0, 100], got %v", c.KDistancePercentile)
	}
	if c.MaxNoiseRatio <= 0 || c.MaxNoiseRatio > 1 {
		return fmt.Errorf("config: max_noise_ratio must be in (0, 1], got %v", c.MaxNoiseRatio)
	}
	return nil
}
