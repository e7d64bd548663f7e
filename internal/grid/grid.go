package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when sizes are empty or contain a non-positive entry.
	ErrBadShape = errors.New("grid: invalid shape")
	// ErrDataLength is returned when a backing slice does not match the shape.
	ErrDataLength = errors.New("grid: data length does not match shape")
)

// Real is the set of element types the numeric code is instantiated for.
type Real interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64
}

// Image is the element-type independent view of a Grid. Every *Grid[T]
// satisfies it.
type Image interface {
	IsForged() bool
	Dimensionality() int
	Sizes() []int
	Size(axis int) int
	TensorElements() int
	DataType() DataType
}

var (
	_ Image = (*Grid[float64])(nil)
	_ Image = (*Grid[bool])(nil)
	_ Image = (*Grid[complex128])(nil)
)

// Grid is a dense N-dimensional array of samples. A zero Grid has no data
// and reports IsForged() == false.
type Grid[T any] struct {
	sizes   []int
	strides []int
	tensor  int
	data    []T
}

// New allocates a scalar grid of the given sizes, zero filled.
func New[T any](sizes ...int) (*Grid[T], error) {
	return NewVector[T](1, sizes...)
}

// NewVector allocates a grid holding tensorElements values per point.
func NewVector[T any](tensorElements int, sizes ...int) (*Grid[T], error) {
	n, err := count(tensorElements, sizes)
	if err != nil {
		return nil, err
	}
	return build(tensorElements, sizes, make([]T, n)), nil
}

// FromSlice wraps data (not copied) as a scalar grid.
func FromSlice[T any](data []T, sizes ...int) (*Grid[T], error) {
	return VectorFromSlice(data, 1, sizes...)
}

// VectorFromSlice wraps interleaved vector data (not copied).
func VectorFromSlice[T any](data []T, tensorElements int, sizes ...int) (*Grid[T], error) {
	n, err := count(tensorElements, sizes)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrDataLength, len(data), n)
	}
	return build(tensorElements, sizes, data), nil
}

func count(tensorElements int, sizes []int) (int, error) {
	if tensorElements < 1 {
		return 0, fmt.Errorf("%w: tensor elements %d", ErrBadShape, tensorElements)
	}
	if len(sizes) == 0 {
		return 0, fmt.Errorf("%w: no dimensions", ErrBadShape)
	}
	n := tensorElements
	for axis, s := range sizes {
		if s < 1 {
			return 0, fmt.Errorf("%w: size %d along axis %d", ErrBadShape, s, axis)
		}
		n *= s
	}
	return n, nil
}

func build[T any](tensorElements int, sizes []int, data []T) *Grid[T] {
	g := &Grid[T]{
		sizes:   append([]int(nil), sizes...),
		strides: make([]int, len(sizes)),
		tensor:  tensorElements,
		data:    data,
	}
	stride := tensorElements
	for axis, s := range sizes {
		g.strides[axis] = stride
		stride *= s
	}
	return g
}

// IsForged reports whether the grid has backing data.
func (g *Grid[T]) IsForged() bool {
	return g != nil && g.data != nil
}

// Dimensionality returns the number of axes.
func (g *Grid[T]) Dimensionality() int {
	if g == nil {
		return 0
	}
	return len(g.sizes)
}

// Sizes returns a copy of the per-axis sizes.
func (g *Grid[T]) Sizes() []int {
	if g == nil {
		return nil
	}
	return append([]int(nil), g.sizes...)
}

// Size returns the size along one axis.
func (g *Grid[T]) Size(axis int) int { return g.sizes[axis] }

// Stride returns the element offset between neighbours along axis.
func (g *Grid[T]) Stride(axis int) int { return g.strides[axis] }

// Strides returns a copy of all strides.
func (g *Grid[T]) Strides() []int { return append([]int(nil), g.strides...) }

// TensorElements returns the number of values stored per grid point.
func (g *Grid[T]) TensorElements() int {
	if g == nil || g.tensor == 0 {
		return 1
	}
	return g.tensor
}

// NumPoints returns the number of grid points (not elements).
func (g *Grid[T]) NumPoints() int {
	if !g.IsForged() {
		return 0
	}
	return len(g.data) / g.TensorElements()
}

// Data exposes the backing slice.
func (g *Grid[T]) Data() []T { return g.data }

// DataType returns the element type tag.
func (g *Grid[T]) DataType() DataType {
	var zero T
	return dataTypeOf(any(zero))
}

// Offset converts a coordinate into an element offset. The coordinate is
// not bounds checked.
func (g *Grid[T]) Offset(coords []int) int {
	off := 0
	for axis, c := range coords {
		off += c * g.strides[axis]
	}
	return off
}

// Coordinates converts a point index (offset / TensorElements) back to a
// coordinate, writing into dst when it has the right length.
func (g *Grid[T]) Coordinates(point int, dst []int) []int {
	if len(dst) != len(g.sizes) {
		dst = make([]int, len(g.sizes))
	}
	for axis, s := range g.sizes {
		dst[axis] = point % s
		point /= s
	}
	return dst
}

// Contains reports whether coords lies inside the grid.
func (g *Grid[T]) Contains(coords []int) bool {
	if len(coords) != len(g.sizes) {
		return false
	}
	for axis, c := range coords {
		if c < 0 || c >= g.sizes[axis] {
			return false
		}
	}
	return true
}

// At returns the first tensor element at coords.
func (g *Grid[T]) At(coords ...int) T {
	return g.data[g.Offset(coords)]
}

// Set stores v as the first tensor element at coords.
func (g *Grid[T]) Set(v T, coords ...int) {
	g.data[g.Offset(coords)] = v
}

// Vector returns the tensor elements stored at coords (aliases the data).
func (g *Grid[T]) Vector(coords ...int) []T {
	off := g.Offset(coords)
	return g.data[off : off+g.TensorElements()]
}
