package regions

import (
	"fmt"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// Measurement holds the per-region features used by the extrema locator.
type Measurement struct {
	Label int `json:"label"`

	// Centroid is the unweighted mean pixel coordinate, in pixel units.
	Centroid []float64 `json:"centroid"`

	// Size is the number of pixels in the region.
	Size int `json:"size"`

	// Mean is the average intensity of img over the region.
	Mean float64 `json:"mean"`
}

// Measure computes centroid, size and mean intensity for every label present
// in labels. Results are ordered by label number; labels with no pixels left
// (after masking or border removal) are skipped.
func Measure(labels *Labels, img *ndimage.Image) ([]Measurement, error) {
	if !img.IsForged() {
		return nil, ndimage.ErrNotForged
	}
	sizes := img.Sizes()
	if len(sizes) != len(labels.Sizes) {
		return nil, fmt.Errorf("%w: labels %v, image %v", ndimage.ErrShapeMismatch, labels.Sizes, sizes)
	}
	for i := range sizes {
		if sizes[i] != labels.Sizes[i] {
			return nil, fmt.Errorf("%w: labels %v, image %v", ndimage.ErrShapeMismatch, labels.Sizes, sizes)
		}
	}

	nd := len(sizes)
	sums := make([][]float64, labels.Count+1)
	counts := make([]int, labels.Count+1)
	totals := make([]float64, labels.Count+1)

	img.ForEach(func(coords []int, offset int) {
		lab := labels.Data[rasterIndex(coords, sizes)]
		if lab == 0 {
			return
		}
		if sums[lab] == nil {
			sums[lab] = make([]float64, nd)
		}
		for i, c := range coords {
			sums[lab][i] += float64(c)
		}
		counts[lab]++
		totals[lab] += img.Float64At(offset)
	})

	out := make([]Measurement, 0, labels.Count)
	for lab := 1; lab <= labels.Count; lab++ {
		n := counts[lab]
		if n == 0 {
			continue
		}
		centroid := make([]float64, nd)
		for i := range centroid {
			centroid[i] = sums[lab][i] / float64(n)
		}
		out = append(out, Measurement{
			Label:    lab,
			Centroid: centroid,
			Size:     n,
			Mean:     totals[lab] / float64(n),
		})
	}
	return out, nil
}
