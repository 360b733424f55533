package regions

import (
	"fmt"
	"math"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// Labels is a label image in raster order (axis 0 fastest). Zero is
// background; regions are numbered from 1 in the order their first pixel is
// met during a raster scan.
type Labels struct {
	Sizes []int
	Data  []int
	Count int
}

// LabelMaxima labels the regional maxima of a scalar image.
//
// A regional maximum is a connected plateau of equal-valued pixels none of
// whose neighbours is strictly larger. Connectivity ranges from 1 (pixels
// sharing a face) to the image dimensionality (the full 3^n neighbourhood).
func LabelMaxima(img *ndimage.Image, connectivity int) (*Labels, error) {
	return label(img, connectivity, func(neighbour, plateau float64) bool {
		return neighbour > plateau
	})
}

// LabelMinima labels the regional minima of a scalar image.
func LabelMinima(img *ndimage.Image, connectivity int) (*Labels, error) {
	return label(img, connectivity, func(neighbour, plateau float64) bool {
		return neighbour < plateau
	})
}

func label(img *ndimage.Image, connectivity int, dominates func(neighbour, plateau float64) bool) (*Labels, error) {
	if !img.IsForged() {
		return nil, ndimage.ErrNotForged
	}
	nd := img.Dimensionality()
	if connectivity < 1 || connectivity > nd {
		return nil, fmt.Errorf("connectivity %d out of range 1..%d", connectivity, nd)
	}

	sizes := img.Sizes()
	total := img.NumPixels()
	neighbours := neighbourhood(nd, connectivity)

	out := &Labels{Sizes: sizes, Data: make([]int, total)}
	visited := make([]bool, total)
	values := make([]float64, total)
	img.ForEach(func(coords []int, offset int) {
		values[rasterIndex(coords, sizes)] = img.Float64At(offset)
	})

	coords := make([]int, nd)
	ncoords := make([]int, nd)
	var queue, plateau []int

	for start := 0; start < total; start++ {
		if visited[start] {
			continue
		}
		v := values[start]
		// NaN samples belong to no region. Comparisons against a NaN
		// neighbour are false, so NaNs never split or suppress a plateau.
		if math.IsNaN(v) {
			visited[start] = true
			continue
		}
		extremum := true
		queue = append(queue[:0], start)
		plateau = plateau[:0]
		visited[start] = true

		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			plateau = append(plateau, idx)
			coords = img.Coordinates(idx, coords)

			for _, d := range neighbours {
				if !shift(coords, d, sizes, ncoords) {
					continue
				}
				n := rasterIndex(ncoords, sizes)
				nv := values[n]
				if dominates(nv, v) {
					extremum = false
					continue
				}
				if nv == v && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		if extremum {
			out.Count++
			for _, idx := range plateau {
				out.Data[idx] = out.Count
			}
		}
	}

	return out, nil
}

// Mask clears every labelled pixel where mask is false. The mask must be
// broadcastable to the label sizes.
func (l *Labels) Mask(mask *ndimage.Image) error {
	if err := mask.CheckMask(l.Sizes); err != nil {
		return err
	}
	view, err := mask.Broadcast(l.Sizes)
	if err != nil {
		return err
	}
	view.ForEach(func(coords []int, offset int) {
		if !view.BoolAt(offset) {
			l.Data[rasterIndex(coords, l.Sizes)] = 0
		}
	})
	return nil
}

// DiscardBorder removes every region that has at least one pixel on the
// first or last index of any axis. Remaining labels keep their numbers.
func (l *Labels) DiscardBorder() {
	touching := make(map[int]bool)
	coords := make([]int, len(l.Sizes))
	for idx, lab := range l.Data {
		if lab == 0 || touching[lab] {
			continue
		}
		coords = coordinatesOf(idx, l.Sizes, coords)
		for i, c := range coords {
			if c == 0 || c == l.Sizes[i]-1 {
				touching[lab] = true
				break
			}
		}
	}
	if len(touching) == 0 {
		return
	}
	for idx, lab := range l.Data {
		if touching[lab] {
			l.Data[idx] = 0
		}
	}
}

// neighbourhood lists the offsets in {-1,0,1}^n, excluding the origin, with
// at most connectivity non-zero components.
func neighbourhood(nd, connectivity int) [][]int {
	var out [][]int
	d := make([]int, nd)
	for i := range d {
		d[i] = -1
	}
	for {
		nonZero := 0
		for _, v := range d {
			if v != 0 {
				nonZero++
			}
		}
		if nonZero > 0 && nonZero <= connectivity {
			out = append(out, append([]int(nil), d...))
		}
		i := 0
		for ; i < nd; i++ {
			d[i]++
			if d[i] <= 1 {
				break
			}
			d[i] = -1
		}
		if i == nd {
			return out
		}
	}
}

func shift(coords, d, sizes, dst []int) bool {
	for i, c := range coords {
		c += d[i]
		if c < 0 || c >= sizes[i] {
			return false
		}
		dst[i] = c
	}
	return true
}

func rasterIndex(coords, sizes []int) int {
	idx := 0
	mul := 1
	for i, c := range coords {
		idx += c * mul
		mul *= sizes[i]
	}
	return idx
}

func coordinatesOf(idx int, sizes, dst []int) []int {
	for i, s := range sizes {
		dst[i] = idx % s
		idx /= s
	}
	return dst
}
