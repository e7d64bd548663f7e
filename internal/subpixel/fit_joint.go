package subpixel

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// The joint fits are least-squares solutions a = (GᵀG)⁻¹Gᵀt of a quadratic
// over the stencil. G depends only on the stencil coordinates, so the
// projection (GᵀG)⁻¹Gᵀ is a constant. The tables below hold it multiplied
// by quad2Scale / quad3Scale to keep the entries short rationals; rows are
// polynomial terms and columns are stencil samples, x fastest.
//
// 2-D basis: 1, x, y, x², y², xy.
// 3-D basis: 1, x, y, z, x², y², z², yz, zx, xy.
//
// TestProjectionTables re-derives both tables from G.

const (
	quad2Scale = 6
	quad3Scale = 18
)

var quad2Weights = [6][9]float64{
	{-2. / 3, 4. / 3, -2. / 3, 4. / 3, 10. / 3, 4. / 3, -2. / 3, 4. / 3, -2. / 3},
	{-1, 0, 1, -1, 0, 1, -1, 0, 1},
	{-1, -1, -1, 0, 0, 0, 1, 1, 1},
	{1, -2, 1, 1, -2, 1, 1, -2, 1},
	{1, 1, 1, -2, -2, -2, 1, 1, 1},
	{3. / 2, 0, -3. / 2, 0, 0, 0, -3. / 2, 0, 3. / 2},
}

var quad3Weights = [10][27]float64{
	{
		-4. / 3, 2. / 3, -4. / 3, 2. / 3, 8. / 3, 2. / 3, -4. / 3, 2. / 3, -4. / 3,
		2. / 3, 8. / 3, 2. / 3, 8. / 3, 14. / 3, 8. / 3, 2. / 3, 8. / 3, 2. / 3,
		-4. / 3, 2. / 3, -4. / 3, 2. / 3, 8. / 3, 2. / 3, -4. / 3, 2. / 3, -4. / 3,
	},
	{
		-1, 0, 1, -1, 0, 1, -1, 0, 1,
		-1, 0, 1, -1, 0, 1, -1, 0, 1,
		-1, 0, 1, -1, 0, 1, -1, 0, 1,
	},
	{
		-1, -1, -1, 0, 0, 0, 1, 1, 1,
		-1, -1, -1, 0, 0, 0, 1, 1, 1,
		-1, -1, -1, 0, 0, 0, 1, 1, 1,
	},
	{
		-1, -1, -1, -1, -1, -1, -1, -1, -1,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 1, 1, 1, 1,
	},
	{
		1, -2, 1, 1, -2, 1, 1, -2, 1,
		1, -2, 1, 1, -2, 1, 1, -2, 1,
		1, -2, 1, 1, -2, 1, 1, -2, 1,
	},
	{
		1, 1, 1, -2, -2, -2, 1, 1, 1,
		1, 1, 1, -2, -2, -2, 1, 1, 1,
		1, 1, 1, -2, -2, -2, 1, 1, 1,
	},
	{
		1, 1, 1, 1, 1, 1, 1, 1, 1,
		-2, -2, -2, -2, -2, -2, -2, -2, -2,
		1, 1, 1, 1, 1, 1, 1, 1, 1,
	},
	{
		3. / 2, 3. / 2, 3. / 2, 0, 0, 0, -3. / 2, -3. / 2, -3. / 2,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		-3. / 2, -3. / 2, -3. / 2, 0, 0, 0, 3. / 2, 3. / 2, 3. / 2,
	},
	{
		3. / 2, 0, -3. / 2, 3. / 2, 0, -3. / 2, 3. / 2, 0, -3. / 2,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		-3. / 2, 0, 3. / 2, -3. / 2, 0, 3. / 2, -3. / 2, 0, 3. / 2,
	},
	{
		3. / 2, 0, -3. / 2, 0, 0, 0, -3. / 2, 0, 3. / 2,
		3. / 2, 0, -3. / 2, 0, 0, 0, -3. / 2, 0, 3. / 2,
		3. / 2, 0, -3. / 2, 0, 0, 0, -3. / 2, 0, 3. / 2,
	},
}

// fitQuadratic2 fits f = a0 + a1x + a2y + a3x² + a4y² + a5xy to a 3x3
// stencil and returns the stationary point and f there. ok is false when
// the system is singular or the point lies outside the tolerance.
func fitQuadratic2(t *[9]float64) (x, y, value float64, ok bool) {
	var a [6]float64
	for i := range a {
		a[i] = floats.Dot(quad2Weights[i][:], t[:]) / quad2Scale
	}

	// | 2a3  a5 | |x|   |-a1|
	// |  a5 2a4 | |y| = |-a2|
	denom := a[5]*a[5] - 4*a[3]*a[4]
	if denom == 0 {
		return 0, 0, 0, false
	}
	x = (2*a[4]*a[1] - a[5]*a[2]) / denom
	y = (2*a[3]*a[2] - a[5]*a[1]) / denom
	if !withinTolerance(x, y) {
		return 0, 0, 0, false
	}

	value = a[0] + a[1]*x + a[2]*y + a[3]*x*x + a[4]*y*y + a[5]*x*y
	return x, y, value, !math.IsNaN(value)
}

// fitQuadratic3 is the 3x3x3 counterpart of fitQuadratic2 for
// f = a0 + a1x + a2y + a3z + a4x² + a5y² + a6z² + a7yz + a8zx + a9xy.
func fitQuadratic3(t *[27]float64) (off [3]float64, value float64, ok bool) {
	var a [10]float64
	for i := range a {
		a[i] = floats.Dot(quad3Weights[i][:], t[:]) / quad3Scale
	}

	// | 2a4  a9  a8 | |x|   |-a1|
	// |  a9 2a5  a7 | |y| = |-a2|
	// |  a8  a7 2a6 | |z|   |-a3|
	h := mat.NewDense(3, 3, []float64{
		2 * a[4], a[9], a[8],
		a[9], 2 * a[5], a[7],
		a[8], a[7], 2 * a[6],
	})
	if det := mat.Det(h); det == 0 || math.IsNaN(det) {
		return off, 0, false
	}
	b := mat.NewVecDense(3, []float64{-a[1], -a[2], -a[3]})
	var sol mat.VecDense
	if err := sol.SolveVec(h, b); err != nil {
		// An ill-conditioned but solvable system still yields a usable
		// answer; only an exactly singular one is rejected here.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return off, 0, false
		}
	}
	off = [3]float64{sol.AtVec(0), sol.AtVec(1), sol.AtVec(2)}
	if !withinTolerance(off[:]...) {
		return off, 0, false
	}

	x, y, z := off[0], off[1], off[2]
	value = a[0] + a[1]*x + a[2]*y + a[3]*z +
		a[4]*x*x + a[5]*y*y + a[6]*z*z +
		a[7]*y*z + a[8]*z*x + a[9]*x*y
	return off, value, !math.IsNaN(value)
}
