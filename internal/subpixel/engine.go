package subpixel

import (
	"fmt"

	"github.com/banshee-data/subpixel/internal/grid"
	"github.com/banshee-data/subpixel/internal/interp"
)

// engine is the element-type specific half of the API. engineFor picks the
// instantiation once per call; everything below it is monomorphic.
type engine interface {
	sizes() []int
	raw(position []int) float64
	locate(position []int, polarity Polarity, method Method) (Location, bool)
	extrema(mask *grid.Grid[bool], polarity Polarity, method Method) ([]Location, batchStats, error)
	resampler(method interp.Method) (interp.Interpolator, error)
}

type typedEngine[T grid.Real] struct {
	g *grid.Grid[T]
}

func (e typedEngine[T]) sizes() []int { return e.g.Sizes() }

func (e typedEngine[T]) raw(position []int) float64 {
	return float64(e.g.At(position...))
}

func (e typedEngine[T]) locate(position []int, polarity Polarity, method Method) (Location, bool) {
	return locateAt(e.g, position, polarity, method)
}

func (e typedEngine[T]) extrema(mask *grid.Grid[bool], polarity Polarity, method Method) ([]Location, batchStats, error) {
	return locateAll(e.g, mask, polarity, method)
}

func (e typedEngine[T]) resampler(method interp.Method) (interp.Interpolator, error) {
	return interp.New(e.g, method)
}

func engineFor(img grid.Image) (engine, error) {
	switch g := img.(type) {
	case *grid.Grid[uint8]:
		return typedEngine[uint8]{g}, nil
	case *grid.Grid[uint16]:
		return typedEngine[uint16]{g}, nil
	case *grid.Grid[uint32]:
		return typedEngine[uint32]{g}, nil
	case *grid.Grid[uint64]:
		return typedEngine[uint64]{g}, nil
	case *grid.Grid[int8]:
		return typedEngine[int8]{g}, nil
	case *grid.Grid[int16]:
		return typedEngine[int16]{g}, nil
	case *grid.Grid[int32]:
		return typedEngine[int32]{g}, nil
	case *grid.Grid[int64]:
		return typedEngine[int64]{g}, nil
	case *grid.Grid[float32]:
		return typedEngine[float32]{g}, nil
	case *grid.Grid[float64]:
		return typedEngine[float64]{g}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrDataTypeNotSupported, img)
}
