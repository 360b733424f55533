package subpixel

import (
	"fmt"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// Find returns the coordinates of every non-zero pixel of a scalar image, in
// raster order. When mask is forged it must be binary with exactly the
// image's sizes, and only pixels inside the mask are considered.
func Find(img, mask *ndimage.Image) ([][]int, error) {
	if !img.IsForged() {
		return nil, fmt.Errorf("%w: %w", ErrPreconditionViolation, ndimage.ErrNotForged)
	}
	if !img.IsScalar() {
		return nil, fmt.Errorf("%w: image has %d tensor elements", ErrPreconditionViolation, img.TensorElements())
	}
	if mask.IsForged() {
		if err := mask.CheckMask(img.Sizes()); err != nil {
			return nil, fmt.Errorf("%w: mask: %w", ErrPreconditionViolation, err)
		}
		for i := range img.Dimensionality() {
			if mask.Size(i) != img.Size(i) {
				return nil, fmt.Errorf("%w: mask sizes %v differ from image sizes %v",
					ErrPreconditionViolation, mask.Sizes(), img.Sizes())
			}
		}
	}

	var out [][]int
	img.ForEach(func(coords []int, offset int) {
		if img.IsZeroAt(offset) {
			return
		}
		if mask.IsForged() && !mask.BoolAt(mask.Offset(coords)) {
			return
		}
		out = append(out, append([]int(nil), coords...))
	})
	return out, nil
}
