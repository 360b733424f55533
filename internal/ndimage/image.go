package ndimage

import (
	"errors"
	"fmt"
)

// Errors returned by the constructors and the mask broadcaster.
var (
	ErrNotForged     = errors.New("image not forged")
	ErrSizeMismatch  = errors.New("data length does not match image sizes")
	ErrShapeMismatch = errors.New("shapes are not compatible")
	ErrNotBinary     = errors.New("mask image is not binary")
	ErrBadSizes      = errors.New("image sizes must be positive")
)

// Element lists the storage types an Image can hold.
type Element interface {
	bool | uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 |
		float32 | float64 | complex64 | complex128
}

// Real lists the storage types that carry a real value.
type Real interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64
}

// Image is an n-dimensional strided sample container.
//
// Axis 0 is the fastest-varying axis (x), axis 1 is y, and so on. Each pixel
// holds TensorElements samples spaced TensorStride apart; scalar images have a
// single tensor element. Strides are in samples, not bytes.
//
// An Image never copies its backing slice: constructors wrap the slice they are
// given and views (Broadcast) share it.
type Image struct {
	sizes          []int
	strides        []int
	tensorElements int
	tensorStride   int
	dtype          DataType
	data           any
}

// New wraps data as a contiguous scalar image with the given sizes.
func New[T Element](data []T, sizes ...int) (*Image, error) {
	return NewTensor(data, 1, sizes...)
}

// NewTensor wraps data as a contiguous image with tensorElements interleaved
// samples per pixel.
func NewTensor[T Element](data []T, tensorElements int, sizes ...int) (*Image, error) {
	if tensorElements < 1 {
		return nil, fmt.Errorf("%w: %d tensor elements", ErrBadSizes, tensorElements)
	}
	n := tensorElements
	for _, s := range sizes {
		if s < 1 {
			return nil, fmt.Errorf("%w: %v", ErrBadSizes, sizes)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: have %d samples, sizes %v x %d need %d",
			ErrSizeMismatch, len(data), sizes, tensorElements, n)
	}

	strides := make([]int, len(sizes))
	stride := tensorElements
	for i, s := range sizes {
		strides[i] = stride
		stride *= s
	}

	return &Image{
		sizes:          append([]int(nil), sizes...),
		strides:        strides,
		tensorElements: tensorElements,
		tensorStride:   1,
		dtype:          dataTypeOf(data),
		data:           data,
	}, nil
}

// IsForged reports whether the image has backing storage.
func (img *Image) IsForged() bool {
	return img != nil && img.data != nil
}

// Dimensionality returns the number of spatial axes.
func (img *Image) Dimensionality() int {
	return len(img.sizes)
}

// Size returns the number of pixels along axis i.
func (img *Image) Size(i int) int {
	return img.sizes[i]
}

// Sizes returns a copy of the per-axis sizes.
func (img *Image) Sizes() []int {
	return append([]int(nil), img.sizes...)
}

// Stride returns the sample stride along axis i.
func (img *Image) Stride(i int) int {
	return img.strides[i]
}

// Strides returns a copy of the per-axis strides.
func (img *Image) Strides() []int {
	return append([]int(nil), img.strides...)
}

// TensorElements returns the number of samples per pixel.
func (img *Image) TensorElements() int {
	return img.tensorElements
}

// TensorStride returns the distance between samples of one pixel.
func (img *Image) TensorStride() int {
	return img.tensorStride
}

// DataType returns the storage type tag.
func (img *Image) DataType() DataType {
	return img.dtype
}

// IsScalar reports whether each pixel holds a single sample.
func (img *Image) IsScalar() bool {
	return img.tensorElements == 1
}

// NumPixels returns the product of all sizes.
func (img *Image) NumPixels() int {
	n := 1
	for _, s := range img.sizes {
		n *= s
	}
	return n
}

// Offset returns the sample offset of the pixel at coords. Coordinates are
// not checked against the sizes.
func (img *Image) Offset(coords []int) int {
	off := 0
	for i, c := range coords {
		off += c * img.strides[i]
	}
	return off
}

// Contains reports whether coords addresses a pixel inside the image.
func (img *Image) Contains(coords []int) bool {
	if len(coords) != len(img.sizes) {
		return false
	}
	for i, c := range coords {
		if c < 0 || c >= img.sizes[i] {
			return false
		}
	}
	return true
}

// Coordinates converts a raster index (axis 0 fastest) into coordinates.
func (img *Image) Coordinates(index int, dst []int) []int {
	if cap(dst) < len(img.sizes) {
		dst = make([]int, len(img.sizes))
	}
	dst = dst[:len(img.sizes)]
	for i, s := range img.sizes {
		dst[i] = index % s
		index /= s
	}
	return dst
}

// ForEach calls fn for every pixel in raster order with its coordinates and
// sample offset. The coords slice is reused between calls.
func (img *Image) ForEach(fn func(coords []int, offset int)) {
	nd := len(img.sizes)
	coords := make([]int, nd)
	total := img.NumPixels()
	off := 0
	for range total {
		fn(coords, off)
		for i := 0; i < nd; i++ {
			coords[i]++
			off += img.strides[i]
			if coords[i] < img.sizes[i] {
				break
			}
			off -= coords[i] * img.strides[i]
			coords[i] = 0
		}
	}
}

// Samples returns the backing slice if the image stores elements of type T.
func Samples[T Element](img *Image) ([]T, bool) {
	if !img.IsForged() {
		return nil, false
	}
	s, ok := img.data.([]T)
	return s, ok
}

// Float64At returns the sample at offset converted to float64. Complex
// samples yield their real part and binary samples yield 0 or 1.
func (img *Image) Float64At(offset int) float64 {
	switch d := img.data.(type) {
	case []bool:
		if d[offset] {
			return 1
		}
		return 0
	case []uint8:
		return float64(d[offset])
	case []uint16:
		return float64(d[offset])
	case []uint32:
		return float64(d[offset])
	case []uint64:
		return float64(d[offset])
	case []int8:
		return float64(d[offset])
	case []int16:
		return float64(d[offset])
	case []int32:
		return float64(d[offset])
	case []int64:
		return float64(d[offset])
	case []float32:
		return float64(d[offset])
	case []float64:
		return d[offset]
	case []complex64:
		return float64(real(d[offset]))
	case []complex128:
		return real(d[offset])
	}
	panic(fmt.Sprintf("ndimage: unsupported storage %T", img.data))
}

// IsZeroAt reports whether the sample at offset is zero. Complex samples
// are zero only when both parts are.
func (img *Image) IsZeroAt(offset int) bool {
	switch d := img.data.(type) {
	case []complex64:
		return d[offset] == 0
	case []complex128:
		return d[offset] == 0
	}
	return img.Float64At(offset) == 0
}

// BoolAt returns whether the sample at offset is non-zero.
func (img *Image) BoolAt(offset int) bool {
	if d, ok := img.data.([]bool); ok {
		return d[offset]
	}
	return img.Float64At(offset) != 0
}

// CheckMask verifies that img is a binary scalar image whose sizes can be
// broadcast to sizes: same dimensionality, each axis either equal or 1.
func (img *Image) CheckMask(sizes []int) error {
	if !img.IsForged() {
		return ErrNotForged
	}
	if img.dtype != Binary || !img.IsScalar() {
		return fmt.Errorf("%w: %s with %d tensor elements", ErrNotBinary, img.dtype, img.tensorElements)
	}
	if len(img.sizes) != len(sizes) {
		return fmt.Errorf("%w: mask %v, image %v", ErrShapeMismatch, img.sizes, sizes)
	}
	for i, s := range img.sizes {
		if s != sizes[i] && s != 1 {
			return fmt.Errorf("%w: mask %v, image %v", ErrShapeMismatch, img.sizes, sizes)
		}
	}
	return nil
}

// Broadcast returns a view of img expanded to sizes. Axes of size 1 are
// repeated by giving them a zero stride. The view shares storage with img.
func (img *Image) Broadcast(sizes []int) (*Image, error) {
	if !img.IsForged() {
		return nil, ErrNotForged
	}
	if len(img.sizes) != len(sizes) {
		return nil, fmt.Errorf("%w: %v to %v", ErrShapeMismatch, img.sizes, sizes)
	}
	view := *img
	view.sizes = append([]int(nil), sizes...)
	view.strides = append([]int(nil), img.strides...)
	for i, s := range img.sizes {
		switch {
		case s == sizes[i]:
		case s == 1:
			view.strides[i] = 0
		default:
			return nil, fmt.Errorf("%w: %v to %v", ErrShapeMismatch, img.sizes, sizes)
		}
	}
	return &view, nil
}
