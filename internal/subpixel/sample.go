package subpixel

import "github.com/ironsheep/subpixel-mcp/internal/ndimage"

// The samplers read fixed-shape patches around the sample at offset c. They
// never check bounds: callers must pass an interior pixel.

// sampleAxis reads the samples at -1, 0, +1 along one axis.
func sampleAxis[T ndimage.Real](data []T, c, stride int, sign float64) [3]float64 {
	return [3]float64{
		sign * float64(data[c-stride]),
		sign * float64(data[c]),
		sign * float64(data[c+stride]),
	}
}

// sampleBlock2 reads the 3x3 neighbourhood, x fastest.
func sampleBlock2[T ndimage.Real](data []T, c, sx, sy int, sign float64) [9]float64 {
	var t [9]float64
	k := 0
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			t[k] = sign * float64(data[c+i*sx+j*sy])
			k++
		}
	}
	return t
}

// sampleBlock3 reads the 3x3x3 neighbourhood, x fastest then y then z.
func sampleBlock3[T ndimage.Real](data []T, c, sx, sy, sz int, sign float64) [27]float64 {
	var t [27]float64
	k := 0
	for l := -1; l <= 1; l++ {
		for j := -1; j <= 1; j++ {
			for i := -1; i <= 1; i++ {
				t[k] = sign * float64(data[c+i*sx+j*sy+l*sz])
				k++
			}
		}
	}
	return t
}
