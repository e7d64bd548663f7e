package subpixel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/subpixel/internal/grid"
	"github.com/banshee-data/subpixel/internal/interp"
)

// MeanShiftResult is the outcome of a mean-shift track.
type MeanShiftResult struct {
	Coordinates []float64 `json:"coordinates"`
	Steps       int       `json:"steps"`
}

// MeanShiftTracker follows a displacement-vector field to a fixed point.
// The zero value interpolates with the cubic kernel and never gives up.
type MeanShiftTracker struct {
	Interpolation interp.Method
	// MaxIterations caps the number of steps; 0 means unbounded.
	MaxIterations int
}

// TrackMeanShift follows field from start until a step's squared length is
// at most epsilon². field must hold one vector of Dimensionality()
// components per point. There is no iteration limit; use
// MeanShiftTracker.Track with MaxIterations for fields that may not
// converge.
func TrackMeanShift(field grid.Image, start []float64, epsilon float64) ([]float64, error) {
	res, err := MeanShiftTracker{}.Track(field, start, epsilon)
	if err != nil {
		return nil, err
	}
	return res.Coordinates, nil
}

// Track runs the tracker. When MaxIterations is reached first, the last
// position is returned together with ErrNotConverged.
func (t MeanShiftTracker) Track(field grid.Image, start []float64, epsilon float64) (MeanShiftResult, error) {
	if field == nil || !field.IsForged() {
		return MeanShiftResult{}, ErrNotForged
	}
	nDims := field.Dimensionality()
	if field.TensorElements() != nDims {
		return MeanShiftResult{}, fmt.Errorf("%w: %d elements on %d dimensions",
			ErrTensorElementsMismatch, field.TensorElements(), nDims)
	}
	if !field.DataType().IsReal() {
		return MeanShiftResult{}, fmt.Errorf("%w: %s", ErrDataTypeNotSupported, field.DataType())
	}
	if len(start) != nDims {
		return MeanShiftResult{}, fmt.Errorf("%w: start has %d coordinates, field has %d dimensions",
			ErrWrongLength, len(start), nDims)
	}
	if !(epsilon > 0) {
		return MeanShiftResult{}, fmt.Errorf("%w: epsilon %v", ErrParameterOutOfRange, epsilon)
	}
	if t.MaxIterations < 0 {
		return MeanShiftResult{}, fmt.Errorf("%w: max iterations %d", ErrParameterOutOfRange, t.MaxIterations)
	}

	e, err := engineFor(field)
	if err != nil {
		return MeanShiftResult{}, err
	}
	r, err := e.resampler(t.Interpolation)
	if err != nil {
		return MeanShiftResult{}, err
	}

	eps2 := epsilon * epsilon
	pt := append([]float64(nil), start...)
	shift := make([]float64, nDims)
	for steps := 1; ; steps++ {
		shift = r.At(pt, shift)
		floats.Add(pt, shift)
		d2 := floats.Dot(shift, shift)
		if d2 <= eps2 || math.IsNaN(d2) {
			return MeanShiftResult{Coordinates: pt, Steps: steps}, nil
		}
		if t.MaxIterations > 0 && steps >= t.MaxIterations {
			opsf("mean shift stopped after %d steps at %v (last step² %.3g > %.3g)", steps, pt, d2, eps2)
			return MeanShiftResult{Coordinates: pt, Steps: steps}, ErrNotConverged
		}
	}
}
