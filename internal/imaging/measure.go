package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DisplacementResult describes the offset from one located point to another.
type DisplacementResult struct {
	Distance float64   `json:"distance_pixels"`
	Delta    []float64 `json:"delta"`

	// AngleDegrees is only set for 2-D points: 0 points right along +x and
	// 90 points down along +y.
	AngleDegrees *float64 `json:"angle_degrees,omitempty"`
}

// MeasureDisplacement returns the Euclidean distance and per-axis delta
// from a to b. Both points must have the same, non-zero number of
// coordinates. No rounding is applied: subpixel results are reported at
// full precision.
func MeasureDisplacement(a, b []float64) (*DisplacementResult, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("points must have the same non-zero dimensionality, got %d and %d", len(a), len(b))
	}

	delta := make([]float64, len(a))
	floats.SubTo(delta, b, a)

	res := &DisplacementResult{
		Distance: floats.Distance(a, b, 2),
		Delta:    delta,
	}
	if len(a) == 2 {
		angle := math.Atan2(delta[1], delta[0]) * 180 / math.Pi
		res.AngleDegrees = &angle
	}
	return res, nil
}
