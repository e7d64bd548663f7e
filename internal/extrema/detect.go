package extrema

import (
	"errors"
	"fmt"

	"github.com/banshee-data/subpixel/internal/grid"
)

var (
	// ErrNotForged is returned for grids without data.
	ErrNotForged = errors.New("extrema: grid not forged")
	// ErrNotScalar is returned for vector grids.
	ErrNotScalar = errors.New("extrema: grid not scalar")
	// ErrConnectivity is returned when connectivity is outside 1..nDims.
	ErrConnectivity = errors.New("extrema: connectivity out of range")
	// ErrMaskSizeMismatch is returned when a mask cannot be matched to a grid.
	ErrMaskSizeMismatch = errors.New("extrema: mask sizes do not match")
)

// DetectLocalExtrema labels every plateau of equal-valued samples that has
// no neighbour strictly more extreme than itself. maxima selects local
// maxima; otherwise local minima are labelled. Plateaus are connected with
// the given connectivity (1 = face neighbours, nDims = full neighbourhood).
//
// Labels run from 1 to n in raster order (axis 0 fastest) of the first
// sample of each plateau; n is returned alongside the label image.
// NaN samples are never part of an extremum.
func DetectLocalExtrema[T grid.Real](g *grid.Grid[T], connectivity int, maxima bool) (*grid.Grid[uint32], int, error) {
	if !g.IsForged() {
		return nil, 0, ErrNotForged
	}
	if g.TensorElements() != 1 {
		return nil, 0, ErrNotScalar
	}
	nDims := g.Dimensionality()
	if connectivity < 1 || connectivity > nDims {
		return nil, 0, fmt.Errorf("%w: %d for %d dimensions", ErrConnectivity, connectivity, nDims)
	}

	labels, err := grid.New[uint32](g.Sizes()...)
	if err != nil {
		return nil, 0, err
	}

	data := g.Data()
	sizes := g.Sizes()
	deltas := neighborDeltas(nDims, connectivity)
	visited := make([]bool, len(data))
	coords := make([]int, nDims)
	next := make([]int, nDims)
	var plateau []int
	label := uint32(0)

	moreExtreme := func(a, b T) bool {
		if maxima {
			return a > b
		}
		return a < b
	}

	for start := range data {
		if visited[start] {
			continue
		}
		v := data[start]
		visited[start] = true
		if v != v { // NaN
			continue
		}

		// Queue-based flood fill over the plateau containing start.
		plateau = append(plateau[:0], start)
		isExtremum := true
		for j := 0; j < len(plateau); j++ {
			g.Coordinates(plateau[j], coords)
			for _, d := range deltas {
				if !neighbor(coords, d, sizes, next) {
					continue
				}
				idx := g.Offset(next)
				w := data[idx]
				switch {
				case w == v:
					if !visited[idx] {
						visited[idx] = true
						plateau = append(plateau, idx)
					}
				case moreExtreme(w, v):
					isExtremum = false
				}
			}
		}

		if !isExtremum {
			continue
		}
		label++
		ld := labels.Data()
		for _, idx := range plateau {
			ld[idx] = label
		}
	}

	return labels, int(label), nil
}
