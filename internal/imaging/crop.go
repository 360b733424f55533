package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	// OriginX and OriginY locate the crop's top-left pixel in the source
	// image, so coordinates read off the crop can be mapped back.
	OriginX     int     `json:"origin_x"`
	OriginY     int     `json:"origin_y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Scale       float64 `json:"scale"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// Crop extracts the region (x1,y1)-(x2,y2), end exclusive, and resamples it
// by scale with a Lanczos filter.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return crop(img, image.Rect(x1, y1, x2, y2), scale, imaging.Lanczos)
}

// CropPatch extracts the (2·radius+1)² neighbourhood centred on pixel
// (x, y) and enlarges it by an integer-friendly scale with nearest-neighbour
// resampling, so each source pixel stays a crisp block. The patch is
// clipped at the image border. A scale of zero or less defaults to 8.
func CropPatch(img image.Image, x, y, radius int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if !image.Pt(x, y).In(bounds) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	if radius < 1 {
		return nil, fmt.Errorf("radius must be at least 1, got %d", radius)
	}
	if scale <= 0 {
		scale = 8
	}

	rect := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1).Intersect(bounds)
	return crop(img, rect, scale, imaging.NearestNeighbor)
}

func crop(img image.Image, rect image.Rectangle, scale float64, filter imaging.ResampleFilter) (*CropResult, error) {
	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %v leaves an empty image", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, filter)
	} else {
		scale = 1.0
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		OriginX:     rect.Min.X,
		OriginY:     rect.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		Scale:       scale,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
