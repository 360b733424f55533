package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
)

// OverlayResult contains the image with located extrema marked.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Markers     int    `json:"markers"`
}

// ExtremaOverlay draws a crosshair at every point of points (each an [x, y]
// pair in pixel coordinates relative to the image origin) and returns the
// result as base64 PNG. Markers are drawn at the nearest pixel; armLength
// is the crosshair half-width (3 when zero or less). When numbered is set,
// each marker is labelled with its index. Points outside the image are
// skipped and not counted.
func ExtremaOverlay(img image.Image, points [][]float64, markerColorHex string, armLength int, numbered bool) (*OverlayResult, error) {
	markerColor, err := parseHexColor(markerColorHex)
	if err != nil {
		markerColor = color.RGBA{255, 0, 0, 255} // Default: opaque red
	}
	if armLength <= 0 {
		armLength = 3
	}

	result := imaging.Clone(img)
	bounds := result.Bounds()

	drawn := 0
	for i, p := range points {
		if len(p) != 2 {
			return nil, fmt.Errorf("point %d has %d coordinates, want 2", i, len(p))
		}
		cx, cy := int(math.Round(p[0])), int(math.Round(p[1]))
		if !image.Pt(cx, cy).In(bounds) {
			continue
		}
		for d := -armLength; d <= armLength; d++ {
			setClipped(result, cx+d, cy, markerColor)
			setClipped(result, cx, cy+d, markerColor)
		}
		if numbered {
			drawLabel(result, cx+armLength+2, cy-armLength-2, strconv.Itoa(i),
				color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
		}
		drawn++
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Markers:     drawn,
	}, nil
}

func setClipped(img draw.Image, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// digitGlyphs is a 3x5 pixel font for marker indices.
var digitGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text with its top-left corner at (x, y) on a filled
// background, clipped to the image.
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.Color) {
	const charWidth, labelHeight = 4, 7
	labelWidth := len(text) * charWidth

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range digitGlyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
