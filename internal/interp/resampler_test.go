package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/subpixel/internal/grid"
)

// rampField builds an 8x6 two-component field with v = (2x+1, y-3x).
func rampField(t *testing.T) *grid.Grid[float64] {
	t.Helper()
	g, err := grid.NewVector[float64](2, 8, 6)
	require.NoError(t, err)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			v := g.Vector(x, y)
			v[0] = 2*float64(x) + 1
			v[1] = float64(y) - 3*float64(x)
		}
	}
	return g
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Method{
		"cubic":   Cubic,
		"3-cubic": Cubic,
		"Linear":  Linear,
		"nearest": Nearest,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("lanczos")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestKeysPartitionOfUnity(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{0, 0.1, 0.25, 0.5, 0.77, 0.999} {
		sum := keys(1+f) + keys(f) + keys(1-f) + keys(2-f)
		assert.InDelta(t, 1.0, sum, 1e-12, "f=%v", f)
	}
	assert.Equal(t, 1.0, keys(0))
	assert.Equal(t, 0.0, keys(1))
	assert.Equal(t, 0.0, keys(2.5))
}

func TestResampler_ExactAtSamples(t *testing.T) {
	t.Parallel()

	g := rampField(t)
	for _, m := range []Method{Cubic, Linear, Nearest} {
		r, err := New(g, m)
		require.NoError(t, err)
		got := r.At([]float64{3, 4}, nil)
		assert.InDeltaSlice(t, []float64{7, 4 - 9}, got, 1e-12, m.String())
	}
}

func TestResampler_ReproducesLinearFieldInInterior(t *testing.T) {
	t.Parallel()

	g := rampField(t)
	pt := []float64{3.3, 2.6}
	want := []float64{2*3.3 + 1, 2.6 - 3*3.3}

	for _, m := range []Method{Cubic, Linear} {
		r, err := New(g, m)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, r.At(pt, nil), 1e-9, m.String())
	}

	r, err := New(g, Nearest)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{7, 3 - 9}, r.At(pt, nil), 1e-12)
}

func TestResampler_OutsideIsZero(t *testing.T) {
	t.Parallel()

	r, err := New(rampField(t), Cubic)
	require.NoError(t, err)

	out := make([]float64, 2)
	assert.Equal(t, []float64{0, 0}, r.At([]float64{-0.01, 2}, out))
	assert.Equal(t, []float64{0, 0}, r.At([]float64{2, 5.5}, out))
}

func TestResampler_EdgeClamp(t *testing.T) {
	t.Parallel()

	g, err := grid.FromSlice([]float32{5, 5, 5, 5}, 4)
	require.NoError(t, err)
	r, err := New(g, Cubic)
	require.NoError(t, err)

	// Constant data stays constant even where taps are clamped.
	assert.InDelta(t, 5.0, r.At([]float64{0.4}, nil)[0], 1e-12)
	assert.InDelta(t, 5.0, r.At([]float64{2.9}, nil)[0], 1e-12)
	assert.Equal(t, 1, r.Dimensionality())
	assert.Equal(t, 1, r.TensorElements())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(&grid.Grid[float64]{}, Cubic)
	assert.ErrorIs(t, err, ErrNotForged)

	_, err = New(rampField(t), Method(9))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
