package subpixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethodAndPolarity(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Method{
		"linear":              MethodLinear,
		"parabolic separable": MethodParabolicSeparable,
		"parabolic_separable": MethodParabolicSeparable,
		"Gaussian-Separable":  MethodGaussianSeparable,
		"parabolic":           MethodParabolic,
		" gaussian ":          MethodGaussian,
		"integer":             MethodInteger,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("spline")
	assert.ErrorIs(t, err, ErrInvalidFlag)

	p, err := ParsePolarity("minimum")
	require.NoError(t, err)
	assert.Equal(t, Minimum, p)
	p, err = ParsePolarity("MAX")
	require.NoError(t, err)
	assert.Equal(t, Maximum, p)
	_, err = ParsePolarity("both")
	assert.ErrorIs(t, err, ErrInvalidFlag)

	assert.Equal(t, "gaussian separable", MethodGaussianSeparable.String())
	assert.Equal(t, "Method(42)", Method(42).String())
	assert.Equal(t, "minimum", Minimum.String())
}

func TestMethodResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method Method
		nDims  int
		want   Method
		err    error
	}{
		{MethodParabolic, 1, MethodParabolicSeparable, nil},
		{MethodGaussian, 1, MethodGaussianSeparable, nil},
		{MethodParabolic, 2, MethodParabolic, nil},
		{MethodGaussian, 3, MethodGaussian, nil},
		{MethodParabolic, 4, 0, ErrIllegalDimensionality},
		{MethodGaussianSeparable, 5, MethodGaussianSeparable, nil},
		{MethodLinear, 1, MethodLinear, nil},
		{MethodInteger, 7, MethodInteger, nil},
		{Method(99), 2, 0, ErrInvalidFlag},
	}
	for _, tt := range tests {
		got, err := tt.method.resolve(tt.nDims)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, "%s/%d", tt.method, tt.nDims)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%d", tt.method, tt.nDims)
	}
}

func TestPolaritySign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Maximum.sign())
	assert.Equal(t, -1.0, Minimum.sign())
	assert.NoError(t, Minimum.validate())
	assert.ErrorIs(t, Polarity(2).validate(), ErrInvalidFlag)
}
