// Package subpixel refines the location of intensity extrema beyond pixel
// resolution and follows mean-shift vector fields to their fixed points.
//
// # Operations
//
//   - Locate: refine one integer extremum position.
//   - LocateMaxima / LocateMinima: find every regional extremum of an image
//     and refine each one.
//   - MeanShift: iterate a point along an interpolated vector field until
//     the step becomes shorter than a tolerance.
//
// # Methods
//
// Refinement fits a local model to the samples at offsets {-1,0,1} around
// the integer position:
//
//   - "linear": per-axis centre of gravity; the value is not re-estimated.
//   - "parabolic separable": per-axis parabola through three samples.
//   - "gaussian separable": the same on the logarithm of the samples.
//   - "parabolic": least-squares quadratic surface on the 3x3 (2-D) or
//     3x3x3 (3-D) neighbourhood.
//   - "gaussian": the same on the logarithm of the samples.
//   - "integer": no refinement.
//
// For 1-D images "parabolic" and "gaussian" are the separable forms.
//
// Because the sample grid is fixed, the least-squares solutions reduce to
// constant weight tables applied to the samples. A fit whose apex lies more
// than 0.75 pixel from the centre on any axis, or that has no unique apex,
// is discarded and the integer position is kept. The reported value is
// never worse than the pixel value at the integer position.
//
// # Errors
//
// Usage errors wrap ErrPreconditionViolation, ErrInvalidParameter,
// ErrDimensionalityUnsupported or ErrCoordinateOutOfBounds. Degenerate fits
// are not errors.
package subpixel
