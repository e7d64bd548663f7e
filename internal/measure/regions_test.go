package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/subpixel/internal/grid"
)

func TestMeasureRegions(t *testing.T) {
	t.Parallel()

	labels, err := grid.FromSlice([]uint32{
		0, 0, 0, 0,
		0, 5, 5, 0,
		0, 0, 0, 2,
	}, 4, 3)
	require.NoError(t, err)
	g, err := grid.FromSlice([]float64{
		0, 0, 0, 0,
		0, 3, 5, 0,
		0, 0, 0, 9,
	}, 4, 3)
	require.NoError(t, err)

	regions, err := MeasureRegions(labels, g)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	// Ascending label order regardless of raster order.
	assert.Equal(t, uint32(2), regions[0].Label)
	assert.Equal(t, []float64{3, 2}, regions[0].Centroid)
	assert.Equal(t, 1, regions[0].Size)
	assert.Equal(t, 9.0, regions[0].Mean)

	assert.Equal(t, uint32(5), regions[1].Label)
	assert.InDeltaSlice(t, []float64{1.5, 1}, regions[1].Centroid, 1e-12)
	assert.Equal(t, 2, regions[1].Size)
	assert.InDelta(t, 4.0, regions[1].Mean, 1e-12)
}

func TestMeasureRegions_Empty(t *testing.T) {
	t.Parallel()

	labels, err := grid.New[uint32](3, 3)
	require.NoError(t, err)
	g, err := grid.New[uint8](3, 3)
	require.NoError(t, err)

	regions, err := MeasureRegions(labels, g)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestMeasureRegions_Errors(t *testing.T) {
	t.Parallel()

	labels, err := grid.New[uint32](3, 3)
	require.NoError(t, err)
	other, err := grid.New[float32](3, 4)
	require.NoError(t, err)

	_, err = MeasureRegions(labels, other)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = MeasureRegions(labels, &grid.Grid[float32]{})
	assert.ErrorIs(t, err, ErrNotForged)
}
