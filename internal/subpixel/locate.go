package subpixel

import (
	"fmt"
	"math"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// Result is a refined extremum location.
type Result struct {
	// Coordinates holds one continuous coordinate per image axis.
	Coordinates []float64 `json:"coordinates"`

	// Value is the estimated intensity at Coordinates.
	Value float64 `json:"value"`
}

// Locate refines the extremum at the integer position to subpixel
// precision. polarity is "maximum" or "minimum"; method is one of "linear",
// "parabolic separable", "gaussian separable", "parabolic", "gaussian" or
// "integer".
//
// Positions on the first or last index of any axis cannot be refined and
// are returned unchanged with their pixel value. When the fit is degenerate
// the integer position is returned as well. The returned value is never
// worse than the pixel value at position.
func Locate(img *ndimage.Image, position []int, polarity, method string) (Result, error) {
	if err := checkScalarReal(img); err != nil {
		return Result{}, err
	}
	p, err := ParsePolarity(polarity)
	if err != nil {
		return Result{}, err
	}
	m, err := ParseMethod(method, img.Dimensionality())
	if err != nil {
		return Result{}, err
	}
	return LocateWith(img, position, p, m)
}

// LocateWith is Locate with the polarity and method already resolved.
func LocateWith(img *ndimage.Image, position []int, polarity Polarity, method Method) (Result, error) {
	if err := checkScalarReal(img); err != nil {
		return Result{}, err
	}
	if err := polarity.check(); err != nil {
		return Result{}, err
	}
	nd := img.Dimensionality()
	if len(position) != nd {
		return Result{}, fmt.Errorf("%w: %d coordinates for a %d-D image",
			ErrPreconditionViolation, len(position), nd)
	}
	method = method.forDimensionality(nd)
	if err := checkMethodDimensionality(method, nd); err != nil {
		return Result{}, err
	}
	for i, c := range position {
		if c < 0 || c >= img.Size(i) {
			return Result{}, fmt.Errorf("%w: %v in sizes %v", ErrCoordinateOutOfBounds, position, img.Sizes())
		}
	}

	refine, err := refinerFor(img, method, polarity)
	if err != nil {
		return Result{}, err
	}
	return refine(position), nil
}

func checkScalarReal(img *ndimage.Image) error {
	if !img.IsForged() {
		return fmt.Errorf("%w: %w", ErrPreconditionViolation, ndimage.ErrNotForged)
	}
	if !img.IsScalar() {
		return fmt.Errorf("%w: image has %d tensor elements", ErrPreconditionViolation, img.TensorElements())
	}
	if !img.DataType().IsReal() {
		return fmt.Errorf("%w: data type %s not supported", ErrPreconditionViolation, img.DataType())
	}
	if img.Dimensionality() < 1 {
		return fmt.Errorf("%w: 0-D image", ErrPreconditionViolation)
	}
	return nil
}

func checkMethodDimensionality(m Method, nd int) error {
	if (m == Parabolic || m == Gaussian) && nd != 2 && nd != 3 {
		return fmt.Errorf("%w: method %q needs a 2-D or 3-D image, got %d-D",
			ErrDimensionalityUnsupported, m, nd)
	}
	return nil
}

// refineFunc refines one integer position of the image it was built for.
// It is safe for concurrent use.
type refineFunc func(position []int) Result

// refinerFor resolves the storage type once and returns a refiner that
// samples that type directly.
func refinerFor(img *ndimage.Image, m Method, p Polarity) (refineFunc, error) {
	switch img.DataType() {
	case ndimage.Uint8:
		return typedRefiner[uint8](img, m, p), nil
	case ndimage.Uint16:
		return typedRefiner[uint16](img, m, p), nil
	case ndimage.Uint32:
		return typedRefiner[uint32](img, m, p), nil
	case ndimage.Uint64:
		return typedRefiner[uint64](img, m, p), nil
	case ndimage.Int8:
		return typedRefiner[int8](img, m, p), nil
	case ndimage.Int16:
		return typedRefiner[int16](img, m, p), nil
	case ndimage.Int32:
		return typedRefiner[int32](img, m, p), nil
	case ndimage.Int64:
		return typedRefiner[int64](img, m, p), nil
	case ndimage.Float32:
		return typedRefiner[float32](img, m, p), nil
	case ndimage.Float64:
		return typedRefiner[float64](img, m, p), nil
	}
	return nil, fmt.Errorf("%w: data type %s not supported", ErrPreconditionViolation, img.DataType())
}

func typedRefiner[T ndimage.Real](img *ndimage.Image, m Method, p Polarity) refineFunc {
	data, _ := ndimage.Samples[T](img)
	sizes := img.Sizes()
	strides := img.Strides()
	return func(position []int) Result {
		return refineAt(data, sizes, strides, position, m, p)
	}
}

// refineAt applies method m at position. The extremum is always handled as
// a maximum: for minima every sample is negated on read and the value is
// negated back at the end.
func refineAt[T ndimage.Real](data []T, sizes, strides, position []int, m Method, p Polarity) Result {
	nd := len(position)
	c := 0
	for i, v := range position {
		c += v * strides[i]
	}

	res := Result{Coordinates: make([]float64, nd), Value: float64(data[c])}
	for i, v := range position {
		res.Coordinates[i] = float64(v)
	}
	if m == IntegerOnly {
		return res
	}
	for i, v := range position {
		if v == 0 || v == sizes[i]-1 {
			return res
		}
	}

	sign := p.sign()
	best := sign * res.Value

	switch {
	case m == Linear:
		// The centre sample is kept as the value: interpolating linearly
		// can only move away from the extremum.
		for i := range nd {
			res.Coordinates[i] += linearCentroid(sampleAxis(data, c, strides[i], sign))
		}
		return res

	case m.separable():
		for i := range nd {
			dx, val, ok := fitAxis(sampleAxis(data, c, strides[i], sign), m.logDomain())
			if !ok {
				continue
			}
			res.Coordinates[i] += dx
			best = math.Max(best, val)
		}

	case nd == 2:
		off, val, ok := fitBlock2(sampleBlock2(data, c, strides[0], strides[1], sign), m.logDomain())
		if ok {
			res.Coordinates[0] += off[0]
			res.Coordinates[1] += off[1]
			best = math.Max(best, val)
		}

	case nd == 3:
		off, val, ok := fitBlock3(sampleBlock3(data, c, strides[0], strides[1], strides[2], sign), m.logDomain())
		if ok {
			res.Coordinates[0] += off[0]
			res.Coordinates[1] += off[1]
			res.Coordinates[2] += off[2]
			best = math.Max(best, val)
		}
	}

	res.Value = sign * best
	return res
}
