// Package config loads comparator tuning defaults from a JSON file. The
// schema mirrors the anomaly-detect command line flags so the same values can
// come from either place; fields omitted from the JSON retain their defaults,
// so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/density.report/internal/anomaly"
)

// TuningConfig holds optional overrides for the comparator thresholds.
type TuningConfig struct {
	// RatioThresh is the minimum current/baseline ratio to flag.
	RatioThresh *float64 `json:"ratio_thresh,omitempty"`
	// MinCurrentDensity is the minimum absolute current density to flag.
	// Hours for time_at_cells densities; use 1 for vessels_count.
	MinCurrentDensity *float64 `json:"min_current_density,omitempty"`
	// Eps is the floor applied to baseline before division.
	Eps *float64 `json:"eps,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg TuningConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}

	return &cfg, nil
}

// ApplyTo overlays the config's set fields onto p and returns the result.
// Nil fields leave p untouched.
func (c *TuningConfig) ApplyTo(p anomaly.Params) anomaly.Params {
	if c == nil {
		return p
	}
	if c.RatioThresh != nil {
		p.RatioThresh = *c.RatioThresh
	}
	if c.MinCurrentDensity != nil {
		p.MinCurrentDensity = *c.MinCurrentDensity
	}
	if c.Eps != nil {
		p.Eps = *c.Eps
	}
	return p
}
