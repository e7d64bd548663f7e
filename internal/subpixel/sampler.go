package subpixel

import "github.com/banshee-data/subpixel/internal/grid"

// sampler reads the stencil around one candidate. Values are converted to
// float64 and multiplied by the polarity sign. The caller guarantees the
// candidate is at least one sample away from every edge.
type sampler[T grid.Real] struct {
	data    []T
	strides []int
	origin  int
	sign    float64
}

func newSampler[T grid.Real](g *grid.Grid[T], position []int, polarity Polarity) sampler[T] {
	return sampler[T]{
		data:    g.Data(),
		strides: g.Strides(),
		origin:  g.Offset(position),
		sign:    polarity.sign(),
	}
}

func (s sampler[T]) at(off int) float64 {
	return s.sign * float64(s.data[s.origin+off])
}

func (s sampler[T]) center() float64 { return s.at(0) }

// axis returns the samples at -1, 0, +1 along one axis.
func (s sampler[T]) axis(axis int) [3]float64 {
	st := s.strides[axis]
	return [3]float64{s.at(-st), s.at(0), s.at(st)}
}

// stencil2 returns the 3x3 neighbourhood, x fastest.
func (s sampler[T]) stencil2() [9]float64 {
	var t [9]float64
	sx, sy := s.strides[0], s.strides[1]
	k := 0
	for jj := -1; jj <= 1; jj++ {
		for ii := -1; ii <= 1; ii++ {
			t[k] = s.at(ii*sx + jj*sy)
			k++
		}
	}
	return t
}

// stencil3 returns the 3x3x3 neighbourhood, x fastest then y then z.
func (s sampler[T]) stencil3() [27]float64 {
	var t [27]float64
	sx, sy, sz := s.strides[0], s.strides[1], s.strides[2]
	k := 0
	for kk := -1; kk <= 1; kk++ {
		for jj := -1; jj <= 1; jj++ {
			for ii := -1; ii <= 1; ii++ {
				t[k] = s.at(ii*sx + jj*sy + kk*sz)
				k++
			}
		}
	}
	return t
}
