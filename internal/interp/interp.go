package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// Method selects the interpolation kernel.
type Method uint8

const (
	// Cubic is the four-tap cubic convolution kernel (Keys, a = -1/2).
	Cubic Method = iota
	Linear
	Nearest
)

// ErrUnknownMethod is returned by ParseMethod for unrecognised names.
var ErrUnknownMethod = errors.New("unknown interpolation method")

// ParseMethod resolves an interpolation method name. The empty string
// selects Cubic.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "3-cubic", "cubic":
		return Cubic, nil
	case "linear":
		return Linear, nil
	case "nearest":
		return Nearest, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

func (m Method) String() string {
	switch m {
	case Cubic:
		return "3-cubic"
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	}
	return "unknown"
}

func (m Method) taps() int {
	switch m {
	case Cubic:
		return 4
	case Linear:
		return 2
	}
	return 1
}

// Sampler evaluates an image at continuous coordinates. A Sampler is bound
// to one image and reuses its scratch buffers, so it must not be shared
// between goroutines.
type Sampler struct {
	img     *ndimage.Image
	method  Method
	indices [][]int
	weights [][]float64
	tap     []int
}

// Prepare validates img and returns a Sampler for repeated lookups.
func Prepare(img *ndimage.Image, method Method) (*Sampler, error) {
	if !img.IsForged() {
		return nil, ndimage.ErrNotForged
	}
	if !img.DataType().IsReal() {
		return nil, fmt.Errorf("interpolation needs real samples, got %s", img.DataType())
	}
	nd := img.Dimensionality()
	taps := method.taps()
	s := &Sampler{
		img:     img,
		method:  method,
		indices: make([][]int, nd),
		weights: make([][]float64, nd),
		tap:     make([]int, nd),
	}
	for i := range nd {
		s.indices[i] = make([]int, taps)
		s.weights[i] = make([]float64, taps)
	}
	return s, nil
}

// At returns the interpolated tensor at coords, one value per tensor
// element, written into dst when it has enough capacity. Coordinates outside
// [0, size-1] on any axis yield zeros.
func (s *Sampler) At(coords []float64, dst []float64) []float64 {
	img := s.img
	te := img.TensorElements()
	if cap(dst) < te {
		dst = make([]float64, te)
	}
	dst = dst[:te]
	for i := range dst {
		dst[i] = 0
	}

	nd := img.Dimensionality()
	for i := range nd {
		p := coords[i]
		size := img.Size(i)
		if !(p >= 0 && p <= float64(size-1)) {
			return dst
		}
		s.axisTaps(i, p, size)
	}

	for i := range s.tap {
		s.tap[i] = 0
	}
	taps := s.method.taps()
	for {
		w := 1.0
		off := 0
		for i := range nd {
			w *= s.weights[i][s.tap[i]]
			off += s.indices[i][s.tap[i]] * img.Stride(i)
		}
		if w != 0 {
			for t := range te {
				dst[t] += w * img.Float64At(off+t*img.TensorStride())
			}
		}

		i := 0
		for ; i < nd; i++ {
			s.tap[i]++
			if s.tap[i] < taps {
				break
			}
			s.tap[i] = 0
		}
		if i == nd {
			return dst
		}
	}
}

func (s *Sampler) axisTaps(axis int, p float64, size int) {
	idx := s.indices[axis]
	w := s.weights[axis]
	switch s.method {
	case Nearest:
		idx[0] = clamp(int(math.Floor(p+0.5)), size)
		w[0] = 1
	case Linear:
		i0 := int(math.Floor(p))
		f := p - float64(i0)
		idx[0], idx[1] = clamp(i0, size), clamp(i0+1, size)
		w[0], w[1] = 1-f, f
	default:
		i0 := int(math.Floor(p))
		f := p - float64(i0)
		for k := range 4 {
			idx[k] = clamp(i0-1+k, size)
		}
		w[0] = keys(f + 1)
		w[1] = keys(f)
		w[2] = keys(1 - f)
		w[3] = keys(2 - f)
	}
}

// keys is the cubic convolution kernel with a = -1/2.
func keys(x float64) float64 {
	const a = -0.5
	x = math.Abs(x)
	switch {
	case x <= 1:
		return ((a+2)*x-(a+3))*x*x + 1
	case x < 2:
		return ((a*x-5*a)*x+8*a)*x - 4*a
	}
	return 0
}

func clamp(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

// At is a one-shot lookup of img at coords.
func At(img *ndimage.Image, coords []float64, method Method) ([]float64, error) {
	s, err := Prepare(img, method)
	if err != nil {
		return nil, err
	}
	if len(coords) != img.Dimensionality() {
		return nil, fmt.Errorf("%w: %d coordinates for a %d-D image",
			ndimage.ErrShapeMismatch, len(coords), img.Dimensionality())
	}
	return s.At(coords, nil), nil
}
