package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/subpixel-mcp/internal/interp"
	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// Channel selects which scalar quantity of a color image is localized.
type Channel string

const (
	// Luma is the 8-bit weighted luminance.
	Luma Channel = "luma"

	// Lightness is CIE L* in [0, 100], stored as float64. It is
	// perceptually uniform, so peak shapes are less distorted by gamma.
	Lightness Channel = "lightness"

	// Red, Green and Blue are the non-premultiplied 8-bit components.
	Red   Channel = "red"
	Green Channel = "green"
	Blue  Channel = "blue"

	// Gray16 is 16-bit luminance, lossless for 16-bit grayscale sources.
	Gray16 Channel = "gray16"
)

// Channels returns every supported channel in presentation order.
func Channels() []Channel {
	return []Channel{Luma, Lightness, Red, Green, Blue, Gray16}
}

// ParseChannel resolves a channel name. The empty string selects Luma.
func ParseChannel(s string) (Channel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Luma, nil
	}
	for _, ch := range Channels() {
		if string(ch) == s {
			return ch, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// ToField converts one channel of img into a 2-D scalar image with axis 0
// along x and axis 1 along y. The image origin is moved to (0, 0).
//
// Luma and the RGB channels produce Uint8 fields, Gray16 a Uint16 field and
// Lightness a Float64 field.
func ToField(img image.Image, channel Channel) (*ndimage.Image, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	switch channel {
	case Luma:
		// Grayscale yields RGBA with R=G=B; take R of each pixel.
		gray := effect.Grayscale(img)
		data := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			row := gray.Pix[y*gray.Stride:]
			for x := 0; x < w; x++ {
				data[x+w*y] = row[4*x]
			}
		}
		return ndimage.New(data, w, h)

	case Red, Green, Blue:
		offset := map[Channel]int{Red: 0, Green: 1, Blue: 2}[channel]
		nrgba := imaging.Clone(img)
		data := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			row := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < w; x++ {
				data[x+w*y] = row[4*x+offset]
			}
		}
		return ndimage.New(data, w, h)

	case Gray16:
		data := make([]uint16, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				data[x+w*y] = c.Y
			}
		}
		return ndimage.New(data, w, h)

	case Lightness:
		data := make([]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// Fully transparent pixels have no color and stay at 0.
				c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
				if !ok {
					continue
				}
				l, _, _ := c.Lab()
				data[x+w*y] = l * 100
			}
		}
		return ndimage.New(data, w, h)
	}
	return nil, fmt.Errorf("unknown channel %q", channel)
}

// SampleResult is an interpolated field lookup.
type SampleResult struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Method string    `json:"method"`
	Inside bool      `json:"inside"`
	Values []float64 `json:"values"`
}

// SampleValue interpolates field at the continuous position (x, y). method
// is "cubic" (default), "linear" or "nearest". Positions outside the field
// report Inside=false and zero values.
func SampleValue(field *ndimage.Image, x, y float64, method string) (*SampleResult, error) {
	if !field.IsForged() {
		return nil, ndimage.ErrNotForged
	}
	if field.Dimensionality() != 2 {
		return nil, fmt.Errorf("expected a 2-D field, got %d-D", field.Dimensionality())
	}
	m, err := interp.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	values, err := interp.At(field, []float64{x, y}, m)
	if err != nil {
		return nil, fmt.Errorf("failed to sample field: %w", err)
	}
	return &SampleResult{
		X:      x,
		Y:      y,
		Method: m.String(),
		Inside: x >= 0 && y >= 0 && x <= float64(field.Size(0)-1) && y <= float64(field.Size(1)-1),
		Values: values,
	}, nil
}
