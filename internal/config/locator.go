package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/subpixel/internal/interp"
	"github.com/banshee-data/subpixel/internal/subpixel"
)

// DefaultConfigPath is the path to the canonical locator defaults file.
const DefaultConfigPath = "config/locator.defaults.json"

// LocatorConfig holds the settings shared by the CLI and any caller that
// drives the locator from a file. Unset fields fall back to the Get*
// defaults, so partial files are valid.
type LocatorConfig struct {
	// Fitting
	Method   *string `json:"method,omitempty"`   // "parabolic", "gaussian separable", ...
	Polarity *string `json:"polarity,omitempty"` // "maximum" or "minimum"
	Workers  *int    `json:"workers,omitempty"`

	// Mean shift
	MeanShiftEpsilon       *float64 `json:"meanshift_epsilon,omitempty"`
	MeanShiftMaxIterations *int     `json:"meanshift_max_iterations,omitempty"` // 0 = unbounded
	MeanShiftInterpolation *string  `json:"meanshift_interpolation,omitempty"`

	// Reports
	PlotPaletteLevels *int `json:"plot_palette_levels,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyLocatorConfig returns a LocatorConfig with all fields unset.
func EmptyLocatorConfig() *LocatorConfig {
	return &LocatorConfig{}
}

// DefaultLocatorConfig returns a LocatorConfig with every field set to
// its default.
func DefaultLocatorConfig() *LocatorConfig {
	return &LocatorConfig{
		Method:                 ptrString("parabolic"),
		Polarity:               ptrString("maximum"),
		Workers:                ptrInt(1),
		MeanShiftEpsilon:       ptrFloat64(1e-3),
		MeanShiftMaxIterations: ptrInt(0),
		MeanShiftInterpolation: ptrString("cubic"),
		PlotPaletteLevels:      ptrInt(64),
	}
}

// LoadLocatorConfig loads a LocatorConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadLocatorConfig(path string) (*LocatorConfig, error) {
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

	cfg := EmptyLocatorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or one of its parents. Panics if the file cannot be loaded; intended for
// test setup.
func MustLoadDefaultConfig() *LocatorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadLocatorConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every set field holds a usable value.
func (c *LocatorConfig) Validate() error {
	if c.Method != nil {
		if _, err := subpixel.ParseMethod(*c.Method); err != nil {
			return fmt.Errorf("invalid method: %w", err)
		}
	}
	if c.Polarity != nil {
		if _, err := subpixel.ParsePolarity(*c.Polarity); err != nil {
			return fmt.Errorf("invalid polarity: %w", err)
		}
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.MeanShiftEpsilon != nil && !(*c.MeanShiftEpsilon > 0) {
		return fmt.Errorf("meanshift_epsilon must be positive, got %g", *c.MeanShiftEpsilon)
	}
	if c.MeanShiftMaxIterations != nil && *c.MeanShiftMaxIterations < 0 {
		return fmt.Errorf("meanshift_max_iterations must be non-negative, got %d", *c.MeanShiftMaxIterations)
	}
	if c.MeanShiftInterpolation != nil {
		if _, err := interp.ParseMethod(*c.MeanShiftInterpolation); err != nil {
			return fmt.Errorf("invalid meanshift_interpolation: %w", err)
		}
	}
	if c.PlotPaletteLevels != nil && (*c.PlotPaletteLevels < 2 || *c.PlotPaletteLevels > 1024) {
		return fmt.Errorf("plot_palette_levels must be between 2 and 1024, got %d", *c.PlotPaletteLevels)
	}
	return nil
}

// GetMethod returns the fit method or the default (parabolic).
// Call Validate first; an unparsable name also yields the default.
func (c *LocatorConfig) GetMethod() subpixel.Method {
	if c.Method == nil {
		return subpixel.MethodParabolic
	}
	m, err := subpixel.ParseMethod(*c.Method)
	if err != nil {
		return subpixel.MethodParabolic
	}
	return m
}

// GetPolarity returns the polarity or the default (maximum).
func (c *LocatorConfig) GetPolarity() subpixel.Polarity {
	if c.Polarity == nil {
		return subpixel.Maximum
	}
	p, err := subpixel.ParsePolarity(*c.Polarity)
	if err != nil {
		return subpixel.Maximum
	}
	return p
}

// GetWorkers returns the candidate worker count or the default.
func (c *LocatorConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetMeanShiftEpsilon returns the mean-shift step threshold or the default.
func (c *LocatorConfig) GetMeanShiftEpsilon() float64 {
	if c.MeanShiftEpsilon == nil {
		return 1e-3
	}
	return *c.MeanShiftEpsilon
}

// GetMeanShiftMaxIterations returns the mean-shift step cap or the default
// (0, unbounded).
func (c *LocatorConfig) GetMeanShiftMaxIterations() int {
	if c.MeanShiftMaxIterations == nil {
		return 0
	}
	return *c.MeanShiftMaxIterations
}

// GetMeanShiftInterpolation returns the field interpolation or the default.
func (c *LocatorConfig) GetMeanShiftInterpolation() interp.Method {
	if c.MeanShiftInterpolation == nil {
		return interp.Cubic
	}
	m, err := interp.ParseMethod(*c.MeanShiftInterpolation)
	if err != nil {
		return interp.Cubic
	}
	return m
}

// GetPlotPaletteLevels returns the number of heat-map colours or the default.
func (c *LocatorConfig) GetPlotPaletteLevels() int {
	if c.PlotPaletteLevels == nil {
		return 64
	}
	return *c.PlotPaletteLevels
}

// Tracker builds a MeanShiftTracker from the mean-shift settings.
func (c *LocatorConfig) Tracker() subpixel.MeanShiftTracker {
	return subpixel.MeanShiftTracker{
		Interpolation: c.GetMeanShiftInterpolation(),
		MaxIterations: c.GetMeanShiftMaxIterations(),
	}
}
