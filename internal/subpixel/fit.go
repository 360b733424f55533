package subpixel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxOffset bounds the accepted apex offset along each axis. A true apex in
// the 3-sample window lies within ±0.5; the slack absorbs rounding for peaks
// that sit close to half a pixel.
const maxOffset = 0.75

// weights2D is 6·inv(GᵀG)·Gᵀ for the quadratic basis
// f = a0 + a1x + a2y + a3x² + a4y² + a5xy sampled on {-1,0,1}², x fastest.
var weights2D = [6][9]float64{
	{-2. / 3., 4. / 3., -2. / 3., 4. / 3., 10. / 3., 4. / 3., -2. / 3., 4. / 3., -2. / 3.},
	{-1., 0., 1., -1., 0., 1., -1., 0., 1.},
	{-1., -1., -1., 0., 0., 0., 1., 1., 1.},
	{1., -2., 1., 1., -2., 1., 1., -2., 1.},
	{1., 1., 1., -2., -2., -2., 1., 1., 1.},
	{3. / 2., 0., -3. / 2., 0., 0., 0., -3. / 2., 0., 3. / 2.},
}

// weights3D is 18·inv(GᵀG)·Gᵀ for the basis
// f = a0 + a1x + a2y + a3z + a4x² + a5y² + a6z² + a7yz + a8zx + a9xy
// sampled on {-1,0,1}³, x fastest then y then z.
var weights3D = [10][27]float64{
	{-4. / 3., 2. / 3., -4. / 3., 2. / 3., 8. / 3., 2. / 3., -4. / 3., 2. / 3., -4. / 3., 2. / 3., 8. / 3., 2. / 3., 8. / 3., 14. / 3., 8. / 3., 2. / 3., 8. / 3., 2. / 3., -4. / 3., 2. / 3., -4. / 3., 2. / 3., 8. / 3., 2. / 3., -4. / 3., 2. / 3., -4. / 3.},
	{-1., 0., 1., -1., 0., 1., -1., 0., 1., -1., 0., 1., -1., 0., 1., -1., 0., 1., -1., 0., 1., -1., 0., 1., -1., 0., 1.},
	{-1., -1., -1., 0., 0., 0., 1., 1., 1., -1., -1., -1., 0., 0., 0., 1., 1., 1., -1., -1., -1., 0., 0., 0., 1., 1., 1.},
	{-1., -1., -1., -1., -1., -1., -1., -1., -1., 0., 0., 0., 0., 0., 0., 0., 0., 0., 1., 1., 1., 1., 1., 1., 1., 1., 1.},
	{1., -2., 1., 1., -2., 1., 1., -2., 1., 1., -2., 1., 1., -2., 1., 1., -2., 1., 1., -2., 1., 1., -2., 1., 1., -2., 1.},
	{1., 1., 1., -2., -2., -2., 1., 1., 1., 1., 1., 1., -2., -2., -2., 1., 1., 1., 1., 1., 1., -2., -2., -2., 1., 1., 1.},
	{1., 1., 1., 1., 1., 1., 1., 1., 1., -2., -2., -2., -2., -2., -2., -2., -2., -2., 1., 1., 1., 1., 1., 1., 1., 1., 1.},
	{3. / 2., 3. / 2., 3. / 2., 0., 0., 0., -3. / 2., -3. / 2., -3. / 2., 0., 0., 0., 0., 0., 0., 0., 0., 0., -3. / 2., -3. / 2., -3. / 2., 0., 0., 0., 3. / 2., 3. / 2., 3. / 2.},
	{3. / 2., 0., -3. / 2., 3. / 2., 0., -3. / 2., 3. / 2., 0., -3. / 2., 0., 0., 0., 0., 0., 0., 0., 0., 0., -3. / 2., 0., 3. / 2., -3. / 2., 0., 3. / 2., -3. / 2., 0., 3. / 2.},
	{3. / 2., 0., -3. / 2., 0., 0., 0., -3. / 2., 0., 3. / 2., 3. / 2., 0., -3. / 2., 0., 0., 0., -3. / 2., 0., 3. / 2., 3. / 2., 0., -3. / 2., 0., 0., 0., -3. / 2., 0., 3. / 2.},
}

// quadraticFit2D fits f = a0 + a1x + a2y + a3x² + a4y² + a5xy to the 3x3
// patch t and returns the apex offset from the centre and the fitted value
// there. ok is false when the surface has no unique apex or the apex lies
// outside the patch.
func quadraticFit2D(t *[9]float64) (x, y, val float64, ok bool) {
	var a [6]float64
	for i := range a {
		for j, w := range weights2D[i] {
			a[i] += w * t[j]
		}
		a[i] /= 6
	}

	// Zero gradient:
	//   | 2a3  a5  | |x|   |-a1|
	//   | a5   2a4 | |y| = |-a2|
	denom := a[5]*a[5] - 4*a[3]*a[4]
	if denom == 0 {
		return 0, 0, 0, false
	}
	x = (2*a[4]*a[1] - a[5]*a[2]) / denom
	y = (2*a[3]*a[2] - a[5]*a[1]) / denom
	if !withinPatch(x) || !withinPatch(y) {
		return 0, 0, 0, false
	}

	val = a[0] + a[1]*x + a[2]*y + a[3]*x*x + a[4]*y*y + a[5]*x*y
	if !isFinite(val) {
		return 0, 0, 0, false
	}
	return x, y, val, true
}

// quadraticFit3D fits the 10-term quadratic to the 3x3x3 patch t. See
// quadraticFit2D for the meaning of the results.
func quadraticFit3D(t *[27]float64) (x, y, z, val float64, ok bool) {
	var a [10]float64
	for i := range a {
		for j, w := range weights3D[i] {
			a[i] += w * t[j]
		}
		a[i] /= 18
		if !isFinite(a[i]) {
			return 0, 0, 0, 0, false
		}
	}

	h := mat.NewDense(3, 3, []float64{
		2 * a[4], a[9], a[8],
		a[9], 2 * a[5], a[7],
		a[8], a[7], 2 * a[6],
	})
	g := mat.NewVecDense(3, []float64{-a[1], -a[2], -a[3]})
	var apex mat.VecDense
	if err := apex.SolveVec(h, g); err != nil {
		return 0, 0, 0, 0, false
	}
	x, y, z = apex.AtVec(0), apex.AtVec(1), apex.AtVec(2)
	if !withinPatch(x) || !withinPatch(y) || !withinPatch(z) {
		return 0, 0, 0, 0, false
	}

	val = a[0] + a[1]*x + a[2]*y + a[3]*z +
		a[4]*x*x + a[5]*y*y + a[6]*z*z +
		a[7]*y*z + a[8]*z*x + a[9]*x*y
	if !isFinite(val) {
		return 0, 0, 0, 0, false
	}
	return x, y, z, val, true
}

// parabolicFit1D fits a parabola through three equally spaced samples.
func parabolicFit1D(t *[3]float64) (x, val float64, ok bool) {
	m := t[0] - 2*t[1] + t[2]
	if m == 0 {
		return 0, 0, false
	}
	d := t[0] - t[2]
	x = d / (2 * m)
	if !withinPatch(x) {
		return 0, 0, false
	}
	val = t[1] - d*d/(8*m)
	if !isFinite(val) {
		return 0, 0, false
	}
	return x, val, true
}

// linearCentroid returns the centre-of-gravity offset of three samples after
// shifting them so the smallest is zero.
func linearCentroid(t [3]float64) float64 {
	b := math.Min(math.Min(t[0], t[1]), t[2])
	t[0] -= b
	t[1] -= b
	t[2] -= b
	m := t[0] + t[1] + t[2]
	if m == 0 {
		return 0
	}
	return (t[2] - t[0]) / m
}

// logTransform replaces t by log(t), or by log(-t) when invert is set.
func logTransform(t []float64, invert bool) {
	for i, v := range t {
		if invert {
			v = -v
		}
		t[i] = math.Log(v)
	}
}

// fromLog undoes logTransform on a fitted value.
func fromLog(v float64, inverted bool) float64 {
	v = math.Exp(v)
	if inverted {
		return -v
	}
	return v
}

// fitAxis fits one axis of a separable model. In the log domain the sign of
// the centre sample decides whether the samples are negated first.
func fitAxis(t [3]float64, logDomain bool) (x, val float64, ok bool) {
	inverted := false
	if logDomain {
		inverted = t[1] < 0
		logTransform(t[:], inverted)
	}
	x, val, ok = parabolicFit1D(&t)
	if !ok {
		return 0, 0, false
	}
	if logDomain {
		val = fromLog(val, inverted)
	}
	return x, val, true
}

// fitBlock2 fits the non-separable model to a 3x3 patch.
func fitBlock2(t [9]float64, logDomain bool) (offset [2]float64, val float64, ok bool) {
	inverted := false
	if logDomain {
		inverted = t[4] < 0
		logTransform(t[:], inverted)
	}
	x, y, val, ok := quadraticFit2D(&t)
	if !ok {
		return offset, 0, false
	}
	if logDomain {
		val = fromLog(val, inverted)
	}
	return [2]float64{x, y}, val, true
}

// fitBlock3 fits the non-separable model to a 3x3x3 patch.
func fitBlock3(t [27]float64, logDomain bool) (offset [3]float64, val float64, ok bool) {
	inverted := false
	if logDomain {
		inverted = t[13] < 0
		logTransform(t[:], inverted)
	}
	x, y, z, val, ok := quadraticFit3D(&t)
	if !ok {
		return offset, 0, false
	}
	if logDomain {
		val = fromLog(val, inverted)
	}
	return [3]float64{x, y, z}, val, true
}

// withinPatch also rejects NaN.
func withinPatch(v float64) bool {
	return v >= -maxOffset && v <= maxOffset
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
