package subpixel

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
	"github.com/ironsheep/subpixel-mcp/internal/regions"
)

type blob struct {
	x, y, amplitude float64
}

// blobImage renders isotropic Gaussians of sigma 1.5 on a w x h grid.
func blobImage(t *testing.T, w, h int, blobs ...blob) ([]float64, *ndimage.Image) {
	t.Helper()
	const s2 = 2 * 1.5 * 1.5
	data := make([]float64, w*h)
	for y := range h {
		for x := range w {
			for _, b := range blobs {
				d2 := sq(float64(x)-b.x) + sq(float64(y)-b.y)
				data[x+w*y] += b.amplitude * math.Exp(-d2/s2)
			}
		}
	}
	return data, mustImage(t, data, w, h)
}

var twoBlobs = []blob{{5.3, 6.2, 100}, {14.6, 12.4, 100}}

func TestLocateMaxima_TwoPeaks(t *testing.T) {
	_, img := blobImage(t, 20, 20, twoBlobs...)

	got, err := LocateMaxima(context.Background(), img, nil, "gaussian")
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, b := range twoBlobs {
		assert.InDelta(t, b.x, got[i].Coordinates[0], 1e-6, "peak %d x", i)
		assert.InDelta(t, b.y, got[i].Coordinates[1], 1e-6, "peak %d y", i)
		assert.InDelta(t, b.amplitude, got[i].Value, 1e-6, "peak %d value", i)
	}
}

func TestLocateMinima_TwoPits(t *testing.T) {
	data, _ := blobImage(t, 20, 20, twoBlobs...)
	for i := range data {
		data[i] = -data[i]
	}
	img := mustImage(t, data, 20, 20)

	got, err := LocateMinima(context.Background(), img, nil, "parabolic")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, b := range twoBlobs {
		assert.InDelta(t, b.x, got[i].Coordinates[0], 0.1)
		assert.InDelta(t, b.y, got[i].Coordinates[1], 0.1)
		assert.LessOrEqual(t, got[i].Value, data[int(math.Round(b.x))+20*int(math.Round(b.y))])
	}
}

func TestLocateMaxima_NoExtrema(t *testing.T) {
	ramp := make([]float64, 25)
	for y := range 5 {
		for x := range 5 {
			ramp[x+5*y] = float64(x + 10*y)
		}
	}

	tests := []struct {
		name string
		img  *ndimage.Image
	}{
		{"constant", mustImage(t, make([]float64, 25), 5, 5)},
		{"ramp", mustImage(t, ramp, 5, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxima, err := LocateMaxima(context.Background(), tt.img, nil, "parabolic")
			require.NoError(t, err)
			assert.NotNil(t, maxima)
			assert.Empty(t, maxima)

			minima, err := LocateMinima(context.Background(), tt.img, nil, "parabolic")
			require.NoError(t, err)
			assert.Empty(t, minima)
		})
	}
}

func TestLocateMaxima_Plateau(t *testing.T) {
	data := make([]float64, 49)
	data[3+7*3] = 5
	data[4+7*3] = 5
	img := mustImage(t, data, 7, 7)

	got, err := LocateMaxima(context.Background(), img, nil, "parabolic")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{3.5, 3}, got[0].Coordinates)
	assert.Equal(t, 5.0, got[0].Value)
}

func TestLocateMaxima_IntegerMethod(t *testing.T) {
	data, img := blobImage(t, 20, 20, twoBlobs...)

	got, err := LocateMaxima(context.Background(), img, nil, "integer")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{5, 6}, got[0].Coordinates)
	assert.Equal(t, data[5+20*6], got[0].Value)
	assert.Equal(t, []float64{15, 12}, got[1].Coordinates)
	assert.Equal(t, data[15+20*12], got[1].Value)
}

func TestLocateMaxima_Mask(t *testing.T) {
	_, img := blobImage(t, 20, 20, twoBlobs...)

	t.Run("full size", func(t *testing.T) {
		keep := make([]bool, 400)
		for y := range 20 {
			for x := range 10 {
				keep[x+20*y] = true
			}
		}
		got, err := LocateMaxima(context.Background(), img, mustImage(t, keep, 20, 20), "gaussian")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 5.3, got[0].Coordinates[0], 1e-6)
	})

	t.Run("broadcast row", func(t *testing.T) {
		keep := make([]bool, 20)
		for x := 10; x < 20; x++ {
			keep[x] = true
		}
		got, err := LocateMaxima(context.Background(), img, mustImage(t, keep, 20, 1), "gaussian")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 14.6, got[0].Coordinates[0], 1e-6)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := LocateMaxima(context.Background(), img, mustImage(t, make([]bool, 100), 10, 10), "gaussian")
		assert.ErrorIs(t, err, ErrPreconditionViolation)
	})

	t.Run("not binary", func(t *testing.T) {
		_, err := LocateMaxima(context.Background(), img, mustImage(t, make([]float64, 400), 20, 20), "gaussian")
		assert.ErrorIs(t, err, ErrPreconditionViolation)
	})
}

func TestExtremaLocator_WorkersKeepOrder(t *testing.T) {
	_, img := blobImage(t, 40, 40,
		blob{5.2, 5.1, 50}, blob{20.4, 6.3, 60}, blob{33.1, 7.7, 70},
		blob{8.6, 22.2, 80}, blob{24.9, 25.5, 90}, blob{31.3, 33.4, 40},
	)

	serial := ExtremaLocator{Workers: 1}
	want, err := serial.Locate(context.Background(), img, nil, "parabolic", Maximum)
	require.NoError(t, err)
	require.Len(t, want, 6)

	parallel := ExtremaLocator{Workers: 4}
	got, err := parallel.Locate(context.Background(), img, nil, "parabolic", Maximum)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExtremaLocator_Cancelled(t *testing.T) {
	_, img := blobImage(t, 20, 20, twoBlobs...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LocateMaxima(ctx, img, nil, "parabolic")
	assert.ErrorIs(t, err, context.Canceled)
}

type emptyLabeler struct{}

func (emptyLabeler) Label(img *ndimage.Image, _ Polarity, _ int) (*regions.Labels, error) {
	return &regions.Labels{Sizes: img.Sizes(), Data: make([]int, img.NumPixels())}, nil
}

func TestExtremaLocator_CustomLabeler(t *testing.T) {
	_, img := blobImage(t, 20, 20, twoBlobs...)
	l := ExtremaLocator{Labeler: emptyLabeler{}}

	got, err := l.Locate(context.Background(), img, nil, "parabolic", Maximum)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocateMaxima_Errors(t *testing.T) {
	img4 := mustImage(t, make([]float64, 81), 3, 3, 3, 3)
	_, err := LocateMaxima(context.Background(), img4, nil, "gaussian")
	assert.ErrorIs(t, err, ErrDimensionalityUnsupported)

	_, err = LocateMaxima(context.Background(), img4, nil, "spline")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = LocateMinima(context.Background(), mustImage(t, make([]complex64, 9), 3, 3), nil, "linear")
	assert.ErrorIs(t, err, ErrPreconditionViolation)

	var l ExtremaLocator
	_, err = l.Locate(context.Background(), mustImage(t, make([]float64, 25), 5, 5), nil, "parabolic", Polarity(7))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
