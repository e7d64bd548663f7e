// Package interp resamples vector grids at real-valued coordinates.
//
// Interpolation is separable: per axis a small kernel (1, 2 or 4 taps) is
// evaluated and the taps are combined as a tensor product. Taps that fall
// outside the grid are clamped to the nearest edge sample. A point outside
// [0, size-1] along any axis resolves to the zero vector.
package interp

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/subpixel/internal/grid"
)

var (
	// ErrNotForged is returned for grids without data.
	ErrNotForged = errors.New("interp: grid not forged")
	// ErrUnknownMethod is returned by ParseMethod and New for unsupported kernels.
	ErrUnknownMethod = errors.New("interp: unknown interpolation method")
)

// Method selects the interpolation kernel.
type Method uint8

const (
	Cubic Method = iota // Keys cubic convolution, a = -0.5 (third order).
	Linear
	Nearest
)

func (m Method) String() string {
	switch m {
	case Cubic:
		return "cubic"
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// ParseMethod maps a kernel name to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cubic", "3-cubic", "cubic order 3":
		return Cubic, nil
	case "linear":
		return Linear, nil
	case "nearest", "nn":
		return Nearest, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Interpolator evaluates a vector field at a real coordinate.
type Interpolator interface {
	// At writes the interpolated vector at pt into out (reallocated when
	// its length is wrong) and returns it.
	At(pt []float64, out []float64) []float64
	Dimensionality() int
	TensorElements() int
}

var _ Interpolator = (*Resampler[float64])(nil)

// Resampler interpolates a grid of element type T. It keeps per-axis
// scratch buffers, so a Resampler is not safe for concurrent use; create
// one per goroutine.
type Resampler[T grid.Real] struct {
	g       *grid.Grid[T]
	method  Method
	taps    int
	sizes   []int
	strides []int
	idx     [][]int
	w       [][]float64
	cur     []int
}

// New prepares a Resampler for g.
func New[T grid.Real](g *grid.Grid[T], method Method) (*Resampler[T], error) {
	if !g.IsForged() {
		return nil, ErrNotForged
	}
	var taps int
	switch method {
	case Cubic:
		taps = 4
	case Linear:
		taps = 2
	case Nearest:
		taps = 1
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
	}
	nDims := g.Dimensionality()
	r := &Resampler[T]{
		g:       g,
		method:  method,
		taps:    taps,
		sizes:   g.Sizes(),
		strides: g.Strides(),
		idx:     make([][]int, nDims),
		w:       make([][]float64, nDims),
		cur:     make([]int, nDims),
	}
	for axis := range r.idx {
		r.idx[axis] = make([]int, taps)
		r.w[axis] = make([]float64, taps)
	}
	return r, nil
}

// Dimensionality returns the number of axes of the underlying grid.
func (r *Resampler[T]) Dimensionality() int { return len(r.sizes) }

// TensorElements returns the length of the interpolated vectors.
func (r *Resampler[T]) TensorElements() int { return r.g.TensorElements() }

// At implements Interpolator.
func (r *Resampler[T]) At(pt []float64, out []float64) []float64 {
	nt := r.g.TensorElements()
	if len(out) != nt {
		out = make([]float64, nt)
	}
	for e := range out {
		out[e] = 0
	}

	for axis, p := range pt {
		if !(p >= 0 && p <= float64(r.sizes[axis]-1)) {
			return out
		}
		r.kernel(axis, p)
	}

	data := r.g.Data()
	for i := range r.cur {
		r.cur[i] = 0
	}
	for {
		off := 0
		weight := 1.0
		for axis, k := range r.cur {
			off += r.idx[axis][k] * r.strides[axis]
			weight *= r.w[axis][k]
		}
		if weight != 0 {
			for e := 0; e < nt; e++ {
				out[e] += weight * float64(data[off+e])
			}
		}

		// odometer over the tap product, axis 0 fastest
		axis := 0
		for ; axis < len(r.cur); axis++ {
			r.cur[axis]++
			if r.cur[axis] < r.taps {
				break
			}
			r.cur[axis] = 0
		}
		if axis == len(r.cur) {
			return out
		}
	}
}

// kernel fills r.idx[axis] and r.w[axis] for coordinate p.
func (r *Resampler[T]) kernel(axis int, p float64) {
	last := r.sizes[axis] - 1
	idx, w := r.idx[axis], r.w[axis]
	switch r.method {
	case Nearest:
		idx[0] = clamp(int(math.Floor(p+0.5)), last)
		w[0] = 1
	case Linear:
		i := math.Floor(p)
		f := p - i
		idx[0] = clamp(int(i), last)
		idx[1] = clamp(int(i)+1, last)
		w[0], w[1] = 1-f, f
	case Cubic:
		i := math.Floor(p)
		f := p - i
		base := int(i)
		for k := 0; k < 4; k++ {
			idx[k] = clamp(base-1+k, last)
		}
		w[0] = keys(1 + f)
		w[1] = keys(f)
		w[2] = keys(1 - f)
		w[3] = keys(2 - f)
	}
}

// keys is the cubic convolution kernel with a = -0.5.
func keys(x float64) float64 {
	const a = -0.5
	x = math.Abs(x)
	switch {
	case x <= 1:
		return ((a+2)*x-(a+3))*x*x + 1
	case x < 2:
		return ((a*x-5*a)*x+8*a)*x - 4*a
	default:
		return 0
	}
}

func clamp(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
