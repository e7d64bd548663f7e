package extrema

import (
	"fmt"

	"github.com/banshee-data/subpixel/internal/grid"
)

// ApplyMask clears every label whose mask sample is false. The mask must
// have the dimensionality of labels; each mask size must equal the label
// size or be 1, in which case the mask is broadcast along that axis.
func ApplyMask(labels *grid.Grid[uint32], mask *grid.Grid[bool]) error {
	if !labels.IsForged() || !mask.IsForged() {
		return ErrNotForged
	}
	if err := checkMask(labels.Sizes(), mask); err != nil {
		return err
	}

	ld := labels.Data()
	md := mask.Data()
	coords := make([]int, labels.Dimensionality())
	for p := range ld {
		if ld[p] == 0 {
			continue
		}
		labels.Coordinates(p, coords)
		if !md[maskOffset(mask, coords)] {
			ld[p] = 0
		}
	}
	return nil
}

// checkMask validates that mask is a scalar binary grid compatible with sizes.
func checkMask(sizes []int, mask *grid.Grid[bool]) error {
	if mask.TensorElements() != 1 {
		return fmt.Errorf("%w: mask is not scalar", ErrMaskSizeMismatch)
	}
	msizes := mask.Sizes()
	if len(msizes) != len(sizes) {
		return fmt.Errorf("%w: mask has %d dimensions, want %d", ErrMaskSizeMismatch, len(msizes), len(sizes))
	}
	for axis := range sizes {
		if msizes[axis] != sizes[axis] && msizes[axis] != 1 {
			return fmt.Errorf("%w: axis %d is %d, want %d or 1", ErrMaskSizeMismatch, axis, msizes[axis], sizes[axis])
		}
	}
	return nil
}

// maskOffset maps a coordinate into mask, collapsing singleton axes.
func maskOffset(mask *grid.Grid[bool], coords []int) int {
	off := 0
	for axis, c := range coords {
		if mask.Size(axis) == 1 {
			continue
		}
		off += c * mask.Stride(axis)
	}
	return off
}

// ClearBorderRegions zeroes the one-sample border ring of the label image,
// so no remaining labelled sample touches the grid edge.
func ClearBorderRegions(labels *grid.Grid[uint32]) {
	if !labels.IsForged() {
		return
	}
	ld := labels.Data()
	sizes := labels.Sizes()
	coords := make([]int, len(sizes))
	for p := range ld {
		if ld[p] == 0 {
			continue
		}
		labels.Coordinates(p, coords)
		for axis, c := range coords {
			if c == 0 || c == sizes[axis]-1 {
				ld[p] = 0
				break
			}
		}
	}
}

// Find returns the coordinates of all non-zero samples of g in raster
// order. When mask is forged only samples where the mask is set are
// considered; the mask must match g exactly (no broadcasting).
func Find[T grid.Real](g *grid.Grid[T], mask *grid.Grid[bool]) ([][]int, error) {
	if !g.IsForged() {
		return nil, ErrNotForged
	}
	if g.TensorElements() != 1 {
		return nil, ErrNotScalar
	}
	masked := mask.IsForged()
	if masked {
		if err := checkMask(g.Sizes(), mask); err != nil {
			return nil, err
		}
		for axis, s := range mask.Sizes() {
			if s != g.Size(axis) {
				return nil, fmt.Errorf("%w: axis %d is %d, want %d", ErrMaskSizeMismatch, axis, s, g.Size(axis))
			}
		}
	}

	var out [][]int
	var zero T
	for p, v := range g.Data() {
		if v == zero {
			continue
		}
		if masked && !mask.Data()[p] {
			continue
		}
		out = append(out, g.Coordinates(p, nil))
	}
	return out, nil
}
