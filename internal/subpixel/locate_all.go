package subpixel

import (
	"fmt"
	"math"

	"github.com/banshee-data/subpixel/internal/extrema"
	"github.com/banshee-data/subpixel/internal/grid"
	"github.com/banshee-data/subpixel/internal/measure"
)

type batchStats struct {
	regions  int
	plateaus int
	rejected int
}

// LocateAllExtrema detects the local extrema of img (full connectivity),
// restricts them to mask when it is forged, drops those on the image
// border and refines each remaining one. Plateaus (regions larger than one
// sample) and MethodInteger report the region centroid and mean value
// without fitting. Results are ordered by region label, i.e. by the raster
// position of each region's first sample.
func LocateAllExtrema(img grid.Image, mask *grid.Grid[bool], method Method, polarity Polarity) ([]Location, error) {
	e, method, err := prepare(img, polarity, method)
	if err != nil {
		return nil, err
	}
	out, stats, err := e.extrema(mask, polarity, method)
	if err != nil {
		return nil, err
	}
	diagf("located %d extrema method=%s polarity=%s plateaus=%d rejected_fits=%d",
		stats.regions, method, polarity, stats.plateaus, stats.rejected)
	return out, nil
}

// LocateMaxima is LocateAllExtrema with Maximum polarity.
func LocateMaxima(img grid.Image, mask *grid.Grid[bool], method Method) ([]Location, error) {
	return LocateAllExtrema(img, mask, method, Maximum)
}

// LocateMinima is LocateAllExtrema with Minimum polarity.
func LocateMinima(img grid.Image, mask *grid.Grid[bool], method Method) ([]Location, error) {
	return LocateAllExtrema(img, mask, method, Minimum)
}

func locateAll[T grid.Real](g *grid.Grid[T], mask *grid.Grid[bool], polarity Polarity, method Method) ([]Location, batchStats, error) {
	var stats batchStats
	nDims := g.Dimensionality()

	labels, _, err := extrema.DetectLocalExtrema(g, nDims, polarity == Maximum)
	if err != nil {
		return nil, stats, fmt.Errorf("detect extrema: %w", err)
	}
	if mask.IsForged() {
		if err := extrema.ApplyMask(labels, mask); err != nil {
			return nil, stats, fmt.Errorf("apply mask: %w", err)
		}
	}
	extrema.ClearBorderRegions(labels)

	regions, err := measure.MeasureRegions(labels, g)
	if err != nil {
		return nil, stats, fmt.Errorf("measure extrema: %w", err)
	}
	stats.regions = len(regions)

	out := make([]Location, len(regions))
	position := make([]int, nDims)
	for i, r := range regions {
		if method == MethodInteger || r.Size > 1 {
			if r.Size > 1 {
				stats.plateaus++
			}
			out[i] = Location{Coordinates: r.Centroid, Value: r.Mean}
			continue
		}
		for axis, c := range r.Centroid {
			position[axis] = int(math.Floor(c + 0.5))
		}
		loc, rejected := locateAt(g, position, polarity, method)
		if rejected {
			stats.rejected++
		}
		out[i] = loc
	}
	return out, stats, nil
}
