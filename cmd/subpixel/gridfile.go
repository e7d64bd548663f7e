package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/subpixel/internal/extrema"
	"github.com/banshee-data/subpixel/internal/grid"
)

// gridFile is the on-disk JSON form of a grid. Data is in raster order,
// axis 0 fastest, with the tensor elements of each point contiguous.
type gridFile struct {
	Sizes          []int     `json:"sizes"`
	TensorElements int       `json:"tensor_elements,omitempty"`
	Data           []float64 `json:"data"`
}

const maxGridFileSize = 256 * 1024 * 1024

func readGridFile(path string) (*gridFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat grid file: %w", err)
	}
	if info.Size() > maxGridFileSize {
		return nil, fmt.Errorf("grid file too large: %d bytes (max %d)", info.Size(), maxGridFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid file: %w", err)
	}
	var gf gridFile
	if err := json.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("failed to parse grid file %s: %w", path, err)
	}
	if gf.TensorElements == 0 {
		gf.TensorElements = 1
	}
	return &gf, nil
}

// loadGrid reads a float64 grid.
func loadGrid(path string) (*grid.Grid[float64], error) {
	gf, err := readGridFile(path)
	if err != nil {
		return nil, err
	}
	g, err := grid.VectorFromSlice(gf.Data, gf.TensorElements, gf.Sizes...)
	if err != nil {
		return nil, fmt.Errorf("grid file %s: %w", path, err)
	}
	return g, nil
}

// loadMask reads a scalar grid and sets every non-zero sample.
func loadMask(path string) (*grid.Grid[bool], error) {
	gf, err := readGridFile(path)
	if err != nil {
		return nil, err
	}
	if gf.TensorElements != 1 {
		return nil, fmt.Errorf("mask %s must be scalar, has %d elements", path, gf.TensorElements)
	}
	bits := make([]bool, len(gf.Data))
	for i, v := range gf.Data {
		bits[i] = v != 0
	}
	m, err := grid.FromSlice(bits, gf.Sizes...)
	if err != nil {
		return nil, fmt.Errorf("mask file %s: %w", path, err)
	}
	return m, nil
}

// loadCandidates reads a scalar grid and returns the positions of its
// non-zero samples in raster order, restricted to mask when it is set.
func loadCandidates(path string, mask *grid.Grid[bool]) ([][]int, error) {
	g, err := loadGrid(path)
	if err != nil {
		return nil, err
	}
	positions, err := extrema.Find(g, mask)
	if err != nil {
		return nil, fmt.Errorf("candidates %s: %w", path, err)
	}
	return positions, nil
}

// parsePoint parses "x,y[,z...]" into real coordinates.
func parsePoint(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q in %q", p, s)
		}
		out[i] = v
	}
	return out, nil
}

// parsePositions parses "x,y;x,y;..." into integer positions.
func parsePositions(s string) ([][]int, error) {
	var out [][]int
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		var pos []int
		for _, p := range strings.Split(item, ",") {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("invalid position %q: %w", item, err)
			}
			pos = append(pos, v)
		}
		out = append(out, pos)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no positions in %q", s)
	}
	return out, nil
}
