// Package imaging bridges decoded raster images and the n-dimensional
// sample containers used by the localization core.
//
// It loads and caches image files, converts a chosen channel into a 2-D
// scalar field, prepares fields for localization (Gaussian pre-smoothing,
// mean-shift vector fields) and renders results back onto images for visual
// inspection.
//
// # Coordinate System
//
// Fields produced by ToField use axis 0 for X (increasing rightward) and
// axis 1 for Y (increasing downward), with (0,0) at the top-left pixel of
// the source image regardless of its bounds. Located extrema are continuous
// coordinates in this system: (10.5, 3.0) lies halfway between the centres
// of pixels (10,3) and (11,3).
//
// # Channels
//
//   - luma: 8-bit weighted luminance
//   - lightness: CIE L* in [0, 100]
//   - red, green, blue: 8-bit components
//   - gray16: 16-bit luminance
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless
// and may be called concurrently on images that are not being modified.
package imaging
