package subpixel

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/subpixel-mcp/internal/logger"
	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
	"github.com/ironsheep/subpixel-mcp/internal/regions"
)

// Labeler finds the regional extrema of an image. Connected pixels of one
// extremum (a plateau) share a label.
type Labeler interface {
	Label(img *ndimage.Image, polarity Polarity, connectivity int) (*regions.Labels, error)
}

// Measurer reports centroid, size and mean intensity per label, in label
// order, in pixel units.
type Measurer interface {
	Measure(labels *regions.Labels, img *ndimage.Image) ([]regions.Measurement, error)
}

// RegionLabeler is the default Labeler, backed by package regions.
type RegionLabeler struct{}

// Label implements Labeler.
func (RegionLabeler) Label(img *ndimage.Image, polarity Polarity, connectivity int) (*regions.Labels, error) {
	if polarity == Minimum {
		return regions.LabelMinima(img, connectivity)
	}
	return regions.LabelMaxima(img, connectivity)
}

// RegionMeasurer is the default Measurer, backed by package regions.
type RegionMeasurer struct{}

// Measure implements Measurer.
func (RegionMeasurer) Measure(labels *regions.Labels, img *ndimage.Image) ([]regions.Measurement, error) {
	return regions.Measure(labels, img)
}

// ExtremaLocator finds and refines every local extremum of an image.
//
// The zero value is ready to use: it labels with RegionLabeler, measures with
// RegionMeasurer and refines on GOMAXPROCS goroutines.
type ExtremaLocator struct {
	Labeler  Labeler
	Measurer Measurer

	// Workers bounds the number of regions refined concurrently.
	// Zero or negative means GOMAXPROCS.
	Workers int

	Logger *logger.Logger
}

// LocateMaxima finds all local maxima of img and refines each one.
// mask may be nil; see ExtremaLocator.Locate.
func LocateMaxima(ctx context.Context, img, mask *ndimage.Image, method string) ([]Result, error) {
	var l ExtremaLocator
	return l.Locate(ctx, img, mask, method, Maximum)
}

// LocateMinima finds all local minima of img and refines each one.
func LocateMinima(ctx context.Context, img, mask *ndimage.Image, method string) ([]Result, error) {
	var l ExtremaLocator
	return l.Locate(ctx, img, mask, method, Minimum)
}

// Locate finds all regional extrema of the given polarity and refines them.
//
// Extrema touching the image border are dropped. When mask is forged, it
// must be binary and broadcastable to img; extremum pixels outside the mask
// are ignored. Single-pixel extrema are refined with the given method at
// their pixel; plateaus (and every extremum when method is "integer") are
// reported at their centroid with their mean value. Results follow label
// order. An image without extrema yields an empty slice.
func (l *ExtremaLocator) Locate(ctx context.Context, img, mask *ndimage.Image, method string, polarity Polarity) ([]Result, error) {
	if err := checkScalarReal(img); err != nil {
		return nil, err
	}
	if err := polarity.check(); err != nil {
		return nil, err
	}
	nd := img.Dimensionality()
	m, err := ParseMethod(method, nd)
	if err != nil {
		return nil, err
	}
	if err := checkMethodDimensionality(m, nd); err != nil {
		return nil, err
	}

	labeler := l.Labeler
	if labeler == nil {
		labeler = RegionLabeler{}
	}
	measurer := l.Measurer
	if measurer == nil {
		measurer = RegionMeasurer{}
	}

	labels, err := labeler.Label(img, polarity, nd)
	if err != nil {
		return nil, fmt.Errorf("labelling %s: %w", polarity, err)
	}
	if mask.IsForged() {
		if err := labels.Mask(mask); err != nil {
			return nil, fmt.Errorf("%w: mask: %w", ErrPreconditionViolation, err)
		}
	}
	labels.DiscardBorder()

	measurements, err := measurer.Measure(labels, img)
	if err != nil {
		return nil, fmt.Errorf("measuring extrema: %w", err)
	}

	out := make([]Result, len(measurements))
	if len(measurements) == 0 {
		l.Logger.Debug("subpixel", "no extrema found", map[string]interface{}{
			"polarity": polarity.String(),
		})
		return out, nil
	}

	refine, err := refinerFor(img, m, polarity)
	if err != nil {
		return nil, err
	}

	workers := l.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ms := range measurements {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = refineRegion(ms, m, refine)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.Logger.Debug("subpixel", "located extrema", map[string]interface{}{
		"polarity": polarity.String(),
		"method":   m.String(),
		"count":    len(out),
	})
	return out, nil
}

func refineRegion(ms regions.Measurement, m Method, refine refineFunc) Result {
	if m == IntegerOnly || ms.Size > 1 {
		return Result{
			Coordinates: append([]float64(nil), ms.Centroid...),
			Value:       ms.Mean,
		}
	}
	position := make([]int, len(ms.Centroid))
	for i, c := range ms.Centroid {
		position[i] = int(math.Round(c))
	}
	return refine(position)
}
