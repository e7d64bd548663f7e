package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/subpixel/internal/db"
	"github.com/banshee-data/subpixel/internal/monitoring"
	"github.com/banshee-data/subpixel/internal/subpixel"
)

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// peakFile writes a 7x6 paraboloid peaking at (3.25, 2.4) with value 5.
func peakFile(t *testing.T, dir string) string {
	t.Helper()
	gf := gridFile{Sizes: []int{7, 6}}
	for y := 0; y < 6; y++ {
		for x := 0; x < 7; x++ {
			dx, dy := float64(x)-3.25, float64(y)-2.4
			gf.Data = append(gf.Data, 5-(dx*dx+dy*dy))
		}
	}
	return writeJSON(t, dir, "peak.json", gf)
}

func quiet(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(original) })
}

func decode(t *testing.T, data []byte) Output {
	t.Helper()
	var out Output
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRun_LocateAll(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	cfg, _ := parseFlags([]string{
		"-input", peakFile(t, dir),
		"-db", filepath.Join(dir, "runs.db"),
		"-png", filepath.Join(dir, "peak.png"),
		"-html", filepath.Join(dir, "peak.html"),
	})

	var stdout bytes.Buffer
	require.NoError(t, run(cfg, &stdout))
	out := decode(t, stdout.Bytes())

	assert.Equal(t, db.ModeLocate, out.Mode)
	assert.Equal(t, "parabolic", out.Method)
	assert.Equal(t, "maximum", out.Polarity)
	assert.Equal(t, []int{7, 6}, out.Sizes)
	want := []subpixel.Location{{Coordinates: []float64{3.25, 2.4}, Value: 5}}
	if diff := cmp.Diff(want, out.Locations, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}

	require.NotEmpty(t, out.RunID)
	store, err := db.OpenDB(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	stored, err := store.ListLocations(out.RunID)
	require.NoError(t, err)
	assert.Equal(t, out.Locations, stored)

	for _, name := range []string{"peak.png", "peak.html"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
}

func TestRun_CandidatesWithOverrides(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	cfgPath := writeJSON(t, dir, "locator.json", map[string]interface{}{"method": "linear", "workers": 1})
	jsonPath := filepath.Join(dir, "out.json")

	cfg, _ := parseFlags([]string{
		"-input", peakFile(t, dir),
		"-config", cfgPath,
		"-method", "integer",
		"-workers", "3",
		"-at", "3,2; 0,0",
		"-json", jsonPath,
	})
	require.NotNil(t, cfg.Workers)
	assert.Equal(t, 3, *cfg.Workers)

	var stdout bytes.Buffer
	require.NoError(t, run(cfg, &stdout))
	assert.Zero(t, stdout.Len(), "JSON goes to -json")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	out := decode(t, data)
	assert.Equal(t, "integer", out.Method)
	require.Len(t, out.Locations, 2)
	assert.Equal(t, []float64{3, 2}, out.Locations[0].Coordinates)
	assert.Equal(t, []float64{0, 0}, out.Locations[1].Coordinates)
}

func TestRun_Mask(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	mask := writeJSON(t, dir, "mask.json", gridFile{Sizes: []int{1, 1}, Data: []float64{0}})
	cfg, _ := parseFlags([]string{"-input", peakFile(t, dir), "-mask", mask})

	var stdout bytes.Buffer
	require.NoError(t, run(cfg, &stdout))
	assert.Empty(t, decode(t, stdout.Bytes()).Locations)
}

func TestRun_CandidatesFile(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	seeds := gridFile{Sizes: []int{7, 6}, Data: make([]float64, 42)}
	seeds.Data[0] = 1      // (0,0)
	seeds.Data[2*7+3] = 1  // (3,2)
	seeds.Data[4*7+5] = -2 // (5,4)
	roi := gridFile{Sizes: []int{7, 6}, Data: make([]float64, 42)}
	for i := range roi.Data {
		roi.Data[i] = 1
	}
	roi.Data[4*7+5] = 0

	cfg, _ := parseFlags([]string{
		"-input", peakFile(t, dir),
		"-candidates", writeJSON(t, dir, "seeds.json", seeds),
		"-mask", writeJSON(t, dir, "roi.json", roi),
		"-workers", "2",
	})

	var stdout bytes.Buffer
	require.NoError(t, run(cfg, &stdout))
	out := decode(t, stdout.Bytes())
	require.Len(t, out.Locations, 2)
	// Border candidates are reported unrefined.
	assert.Equal(t, []float64{0, 0}, out.Locations[0].Coordinates)
	assert.InDelta(t, 3.25, out.Locations[1].Coordinates[0], 1e-9)
	assert.InDelta(t, 2.4, out.Locations[1].Coordinates[1], 1e-9)
}

func TestRun_UndrawableReportLeavesNoTrace(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	cube := gridFile{Sizes: []int{3, 3, 3}, Data: make([]float64, 27)}
	cube.Data[13] = 1
	dbPath := filepath.Join(dir, "runs.db")
	pngPath := filepath.Join(dir, "cube.png")

	cfg, _ := parseFlags([]string{
		"-input", writeJSON(t, dir, "cube.json", cube),
		"-db", dbPath,
		"-png", pngPath,
	})

	var stdout bytes.Buffer
	err := run(cfg, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 1-D and 2-D")
	assert.Zero(t, stdout.Len())
	assert.NoFileExists(t, pngPath)
	assert.NoFileExists(t, dbPath)
}

func TestWriteFile_RemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := writeFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
	assert.NoFileExists(t, path)

	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "done")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "done", string(data))
}

func TestRun_Track(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	const cx, cy = 6.3, 5.6
	field := gridFile{Sizes: []int{12, 12}, TensorElements: 2}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			field.Data = append(field.Data, 0.5*(cx-float64(x)), 0.5*(cy-float64(y)))
		}
	}
	cfg, _ := parseFlags([]string{
		"-input", writeJSON(t, dir, "field.json", field),
		"-track", "3.5, 8",
		"-epsilon", "1e-4",
		"-db", filepath.Join(dir, "runs.db"),
	})

	var stdout bytes.Buffer
	require.NoError(t, run(cfg, &stdout))
	out := decode(t, stdout.Bytes())
	assert.Equal(t, db.ModeTrack, out.Mode)
	require.NotNil(t, out.Track)
	require.NotNil(t, out.Converged)
	assert.True(t, *out.Converged)
	assert.InDelta(t, cx, out.Track.Coordinates[0], 1e-4)
	assert.InDelta(t, cy, out.Track.Coordinates[1], 1e-4)
	assert.NotEmpty(t, out.RunID)

	cfg.MaxIterations = new(int)
	*cfg.MaxIterations = 2
	stdout.Reset()
	require.NoError(t, run(cfg, &stdout))
	out = decode(t, stdout.Bytes())
	assert.False(t, *out.Converged)
	assert.Equal(t, 2, out.Track.Steps)
}

func TestRun_Errors(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	peak := peakFile(t, dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"-input", filepath.Join(dir, "absent.json")}, "failed to stat grid file"},
		{"bad method", []string{"-input", peak, "-method", "spline"}, "invalid method"},
		{"bad config", []string{"-input", peak, "-config", filepath.Join(dir, "x.yaml")}, ".json extension"},
		{"bad position", []string{"-input", peak, "-at", "1,x"}, "invalid position"},
		{"out of bounds", []string{"-input", peak, "-at", "9,9"}, "out of image bounds"},
		{"track on scalar grid", []string{"-input", peak, "-track", "1,1"}, "tensor elements"},
		{"bad track point", []string{"-input", peak, "-track", "1;1"}, "invalid coordinate"},
		{"mask with explicit positions", []string{"-input", peak, "-at", "3,2", "-mask", peak}, "-mask does not apply to -at"},
		{"at with candidates", []string{"-input", peak, "-at", "3,2", "-candidates", peak}, "exclusive"},
		{"track with png", []string{"-input", peak, "-track", "1,1", "-png", filepath.Join(dir, "t.png")}, "not drawn for -track"},
		{"candidate mask mismatch", []string{"-input", peak, "-candidates", peak, "-mask", writeJSON(t, dir, "m.json", gridFile{Sizes: []int{1, 1}, Data: []float64{1}})}, "mask"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := parseFlags(tt.args)
			err := run(cfg, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFlags_Version(t *testing.T) {
	_, showVersion := parseFlags([]string{"-version"})
	assert.True(t, showVersion)

	cfg, showVersion := parseFlags([]string{"-input", "a.json"})
	assert.False(t, showVersion)
	assert.Nil(t, cfg.Method, "unset flags must not override the config file")
	assert.Nil(t, cfg.Epsilon)
}

func TestLoadGrid_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "short.json", gridFile{Sizes: []int{3, 3}, Data: []float64{1, 2}})
	_, err := loadGrid(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0644))
	_, err = loadGrid(filepath.Join(dir, "junk.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse grid file")
}
