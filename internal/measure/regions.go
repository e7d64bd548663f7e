// Package measure computes per-region statistics over a label image.
package measure

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/subpixel/internal/grid"
)

var (
	// ErrNotForged is returned when either input has no data.
	ErrNotForged = errors.New("measure: grid not forged")
	// ErrSizeMismatch is returned when labels and grey values differ in shape.
	ErrSizeMismatch = errors.New("measure: label and grey grid sizes differ")
)

// Region holds the measurements of one labelled object.
type Region struct {
	Label    uint32
	Centroid []float64 // Geometric centre in samples (unweighted).
	Size     int       // Number of samples.
	Mean     float64   // Mean grey value over the region.
}

type accumulator struct {
	sum   []float64
	count int
	grey  float64
}

// MeasureRegions measures every label present in labels against the grey
// values in g. Regions are returned in ascending label order; labels that
// do not occur are skipped.
func MeasureRegions[T grid.Real](labels *grid.Grid[uint32], g *grid.Grid[T]) ([]Region, error) {
	if !labels.IsForged() || !g.IsForged() {
		return nil, ErrNotForged
	}
	if g.TensorElements() != 1 || labels.TensorElements() != 1 {
		return nil, fmt.Errorf("%w: inputs must be scalar", ErrSizeMismatch)
	}
	ls, gs := labels.Sizes(), g.Sizes()
	if len(ls) != len(gs) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, ls, gs)
	}
	for axis := range ls {
		if ls[axis] != gs[axis] {
			return nil, fmt.Errorf("%w: %v vs %v", ErrSizeMismatch, ls, gs)
		}
	}

	nDims := len(ls)
	acc := make(map[uint32]*accumulator)
	coords := make([]int, nDims)
	grey := g.Data()
	for p, l := range labels.Data() {
		if l == 0 {
			continue
		}
		a, ok := acc[l]
		if !ok {
			a = &accumulator{sum: make([]float64, nDims)}
			acc[l] = a
		}
		labels.Coordinates(p, coords)
		for axis, c := range coords {
			a.sum[axis] += float64(c)
		}
		a.count++
		a.grey += float64(grey[p])
	}

	ids := make([]uint32, 0, len(acc))
	for l := range acc {
		ids = append(ids, l)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Region, 0, len(ids))
	for _, l := range ids {
		a := acc[l]
		n := float64(a.count)
		floats.Scale(1/n, a.sum)
		out = append(out, Region{
			Label:    l,
			Centroid: a.sum,
			Size:     a.count,
			Mean:     a.grey / n,
		})
	}
	return out, nil
}
