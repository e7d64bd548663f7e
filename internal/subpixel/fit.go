package subpixel

import "math"

// offsetTolerance bounds joint-fit offsets. The true peak of a valid fit is
// within ±0.5; the extra margin absorbs rounding when it sits near 0.5.
const offsetTolerance = 0.75

// fitLinear returns the centre-of-gravity offset of three samples after
// subtracting their minimum.
func fitLinear(t [3]float64) float64 {
	b := math.Min(math.Min(t[0], t[1]), t[2])
	t0, t1, t2 := t[0]-b, t[1]-b, t[2]-b
	m := t0 + t1 + t2
	if m == 0 {
		return 0
	}
	return (t2 - t0) / m
}

// fitParabola fits a + bx + cx² through three samples at x = -1, 0, 1 and
// returns the vertex offset and height. ok is false when the samples are
// collinear or non-finite.
func fitParabola(t [3]float64) (offset, value float64, ok bool) {
	m := t[0] - 2*t[1] + t[2]
	if m == 0 {
		return 0, 0, false
	}
	d := t[0] - t[2]
	offset = d / (2 * m)
	value = t[1] - d*d/(8*m)
	if math.IsNaN(offset) || math.IsInf(offset, 0) || math.IsNaN(value) {
		return 0, 0, false
	}
	return offset, value, true
}

// fitSeparable is the per-axis parabolic or Gaussian fit.
func fitSeparable(t [3]float64, gaussian bool) (offset, value float64, ok bool) {
	if !gaussian {
		return fitParabola(t)
	}
	inverted, finite := logTransform(t[:], 1)
	if !finite {
		return 0, 0, false
	}
	offset, value, ok = fitParabola(t)
	if !ok {
		return 0, 0, false
	}
	return offset, expUndo(value, inverted), true
}

// logTransform replaces t with ln(t), or ln(-t) when the centre sample is
// negative. It reports the inversion and whether every result is finite.
func logTransform(t []float64, center int) (inverted, finite bool) {
	inverted = t[center] < 0
	finite = true
	for i, v := range t {
		if inverted {
			v = -v
		}
		t[i] = math.Log(v)
		if math.IsNaN(t[i]) || math.IsInf(t[i], 0) {
			finite = false
		}
	}
	return inverted, finite
}

// expUndo maps a value fitted in the log domain back to sample units.
func expUndo(v float64, inverted bool) float64 {
	v = math.Exp(v)
	if inverted {
		return -v
	}
	return v
}

func withinTolerance(offsets ...float64) bool {
	for _, o := range offsets {
		// written so NaN fails the check
		if !(o >= -offsetTolerance && o <= offsetTolerance) {
			return false
		}
	}
	return true
}
