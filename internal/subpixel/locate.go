package subpixel

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/subpixel/internal/grid"
)

// Location is a refined extremum: real coordinates and the interpolated
// value at them.
type Location struct {
	Coordinates []float64 `json:"coordinates"`
	Value       float64   `json:"value"`
}

// LocateExtremum refines the extremum at the integer position of img.
//
// Candidates within one sample of any edge are returned unrefined with the
// raw sample value; that is not an error. A position outside the grid is
// ErrOutOfBounds. A fit that is singular or whose peak falls outside the
// stencil also yields the unrefined result.
func LocateExtremum(img grid.Image, position []int, polarity Polarity, method Method) (Location, error) {
	e, method, err := prepare(img, polarity, method)
	if err != nil {
		return Location{}, err
	}
	loc, _, err := locateChecked(e, position, polarity, method)
	return loc, err
}

// Option configures LocateCandidates.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers processes candidates on up to n goroutines. Values below 2
// keep the work on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// LocateCandidates refines each of positions in turn. Results are in the
// order of positions. Any invalid position fails the whole call.
func LocateCandidates(img grid.Image, positions [][]int, polarity Polarity, method Method, opts ...Option) ([]Location, error) {
	e, method, err := prepare(img, polarity, method)
	if err != nil {
		return nil, err
	}
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]Location, len(positions))
	rejected := make([]bool, len(positions))
	if o.workers < 2 {
		for i, p := range positions {
			loc, rej, err := locateChecked(e, p, polarity, method)
			if err != nil {
				return nil, fmt.Errorf("candidate %d: %w", i, err)
			}
			out[i], rejected[i] = loc, rej
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(o.workers)
		for i, p := range positions {
			eg.Go(func() error {
				loc, rej, err := locateChecked(e, p, polarity, method)
				if err != nil {
					return fmt.Errorf("candidate %d: %w", i, err)
				}
				out[i], rejected[i] = loc, rej
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	nRejected := 0
	for _, r := range rejected {
		if r {
			nRejected++
		}
	}
	diagf("located %d candidates method=%s polarity=%s workers=%d rejected_fits=%d",
		len(positions), method, polarity, o.workers, nRejected)
	return out, nil
}

// checkImage applies the preconditions shared by every entry point.
func checkImage(img grid.Image) error {
	if img == nil || !img.IsForged() {
		return ErrNotForged
	}
	if img.TensorElements() != 1 {
		return ErrNotScalar
	}
	if !img.DataType().IsReal() {
		return fmt.Errorf("%w: %s", ErrDataTypeNotSupported, img.DataType())
	}
	if img.Dimensionality() < 1 {
		return ErrDimensionalityNotSupported
	}
	return nil
}

// prepare validates the inputs and resolves the element type and method.
func prepare(img grid.Image, polarity Polarity, method Method) (engine, Method, error) {
	if err := checkImage(img); err != nil {
		return nil, 0, err
	}
	if err := polarity.validate(); err != nil {
		return nil, 0, err
	}
	method, err := method.resolve(img.Dimensionality())
	if err != nil {
		return nil, 0, err
	}
	e, err := engineFor(img)
	if err != nil {
		return nil, 0, err
	}
	return e, method, nil
}

// locateChecked applies the bounds and border policy before fitting.
func locateChecked(e engine, position []int, polarity Polarity, method Method) (Location, bool, error) {
	sizes := e.sizes()
	if len(position) != len(sizes) {
		return Location{}, false, fmt.Errorf("%w: position has %d coordinates, image has %d dimensions",
			ErrWrongLength, len(position), len(sizes))
	}
	onBorder := false
	for axis, p := range position {
		if p < 0 || p >= sizes[axis] {
			return Location{}, false, fmt.Errorf("%w: %v", ErrOutOfBounds, position)
		}
		if p < 1 || p >= sizes[axis]-1 {
			onBorder = true
		}
	}
	if onBorder {
		return Location{Coordinates: toFloats(position), Value: e.raw(position)}, false, nil
	}
	loc, rejected := e.locate(position, polarity, method)
	return loc, rejected, nil
}

// locateAt runs the fit selected by method at an interior position. The
// second result reports a rejected fit (unrefined fallback).
func locateAt[T grid.Real](g *grid.Grid[T], position []int, polarity Polarity, method Method) (Location, bool) {
	s := newSampler(g, position, polarity)
	coords := toFloats(position)
	raw := s.center()
	value := raw
	rejected := false

	switch method {
	case MethodLinear:
		// The value stays at the centre sample: the linear model can only
		// underestimate the peak.
		for axis := range coords {
			coords[axis] += fitLinear(s.axis(axis))
		}

	case MethodParabolicSeparable, MethodGaussianSeparable:
		gaussian := method == MethodGaussianSeparable
		for axis := range coords {
			off, v, ok := fitSeparable(s.axis(axis), gaussian)
			if !ok {
				continue
			}
			coords[axis] += off
			// Most extreme of the per-axis estimates, not a resample at
			// the combined location.
			value = math.Max(value, v)
		}

	case MethodParabolic, MethodGaussian:
		gaussian := method == MethodGaussian
		off, v, ok := fitJoint(s, len(coords), gaussian)
		if ok {
			for axis := range coords {
				coords[axis] += off[axis]
			}
			value = math.Max(value, v)
		} else {
			rejected = true
			tracef("fit rejected at %v method=%s polarity=%s", position, method, polarity)
		}

	case MethodInteger:
	}

	return Location{Coordinates: coords, Value: s.sign * value}, rejected
}

// fitJoint samples the full stencil and runs the 2-D or 3-D joint fit.
func fitJoint[T grid.Real](s sampler[T], nDims int, gaussian bool) ([]float64, float64, bool) {
	switch nDims {
	case 2:
		t := s.stencil2()
		inverted := false
		if gaussian {
			var finite bool
			if inverted, finite = logTransform(t[:], 4); !finite {
				return nil, 0, false
			}
		}
		x, y, v, ok := fitQuadratic2(&t)
		if !ok {
			return nil, 0, false
		}
		if gaussian {
			v = expUndo(v, inverted)
		}
		return []float64{x, y}, v, true

	case 3:
		t := s.stencil3()
		inverted := false
		if gaussian {
			var finite bool
			if inverted, finite = logTransform(t[:], 13); !finite {
				return nil, 0, false
			}
		}
		off, v, ok := fitQuadratic3(&t)
		if !ok {
			return nil, 0, false
		}
		if gaussian {
			v = expUndo(v, inverted)
		}
		return off[:], v, true
	}
	return nil, 0, false
}

func toFloats(position []int) []float64 {
	out := make([]float64, len(position))
	for i, p := range position {
		out[i] = float64(p)
	}
	return out
}
