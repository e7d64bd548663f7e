package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/subpixel/internal/interp"
	"github.com/banshee-data/subpixel/internal/subpixel"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultLocatorConfig(t *testing.T) {
	cfg := DefaultLocatorConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, subpixel.MethodParabolic, cfg.GetMethod())
	assert.Equal(t, subpixel.Maximum, cfg.GetPolarity())
	assert.Equal(t, 1, cfg.GetWorkers())
	assert.Equal(t, 1e-3, cfg.GetMeanShiftEpsilon())
	assert.Equal(t, 0, cfg.GetMeanShiftMaxIterations())
	assert.Equal(t, interp.Cubic, cfg.GetMeanShiftInterpolation())
	assert.Equal(t, 64, cfg.GetPlotPaletteLevels())
}

func TestEmptyConfigMatchesDefaults(t *testing.T) {
	empty, def := EmptyLocatorConfig(), DefaultLocatorConfig()

	assert.Equal(t, def.GetMethod(), empty.GetMethod())
	assert.Equal(t, def.GetPolarity(), empty.GetPolarity())
	assert.Equal(t, def.GetWorkers(), empty.GetWorkers())
	assert.Equal(t, def.GetMeanShiftEpsilon(), empty.GetMeanShiftEpsilon())
	assert.Equal(t, def.GetMeanShiftMaxIterations(), empty.GetMeanShiftMaxIterations())
	assert.Equal(t, def.GetMeanShiftInterpolation(), empty.GetMeanShiftInterpolation())
	assert.Equal(t, def.GetPlotPaletteLevels(), empty.GetPlotPaletteLevels())
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	def := DefaultLocatorConfig()

	// The defaults file and DefaultLocatorConfig must not drift apart.
	assert.Equal(t, def, cfg)
}

func TestLoadLocatorConfig(t *testing.T) {
	path := writeConfig(t, "locator.json", `{
  "method": "gaussian_separable",
  "polarity": "min",
  "workers": 4,
  "meanshift_epsilon": 0.01,
  "meanshift_max_iterations": 50,
  "meanshift_interpolation": "linear"
}`)

	cfg, err := LoadLocatorConfig(path)
	require.NoError(t, err)

	assert.Equal(t, subpixel.MethodGaussianSeparable, cfg.GetMethod())
	assert.Equal(t, subpixel.Minimum, cfg.GetPolarity())
	assert.Equal(t, 4, cfg.GetWorkers())
	assert.Equal(t, 0.01, cfg.GetMeanShiftEpsilon())
	assert.Equal(t, 50, cfg.GetMeanShiftMaxIterations())
	assert.Equal(t, interp.Linear, cfg.GetMeanShiftInterpolation())
	// Omitted field keeps its default.
	assert.Nil(t, cfg.PlotPaletteLevels)
	assert.Equal(t, 64, cfg.GetPlotPaletteLevels())

	tr := cfg.Tracker()
	assert.Equal(t, interp.Linear, tr.Interpolation)
	assert.Equal(t, 50, tr.MaxIterations)
}

func TestLoadLocatorConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "locator.yaml", `{}`, ".json extension"},
		{"bad json", "locator.json", `{"method":`, "failed to parse config JSON"},
		{"unknown method", "locator.json", `{"method":"spline"}`, "invalid method"},
		{"unknown polarity", "locator.json", `{"polarity":"both"}`, "invalid polarity"},
		{"zero workers", "locator.json", `{"workers":0}`, "workers must be at least 1"},
		{"zero epsilon", "locator.json", `{"meanshift_epsilon":0}`, "meanshift_epsilon must be positive"},
		{"negative cap", "locator.json", `{"meanshift_max_iterations":-2}`, "non-negative"},
		{"unknown kernel", "locator.json", `{"meanshift_interpolation":"lanczos"}`, "invalid meanshift_interpolation"},
		{"palette too small", "locator.json", `{"plot_palette_levels":1}`, "plot_palette_levels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLocatorConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLocatorConfig(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to stat config file")
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"method":"linear","pad":"` + strings.Repeat("x", 1<<20) + `"}`
		_, err := LoadLocatorConfig(writeConfig(t, "big.json", body))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file too large")
	})
}
