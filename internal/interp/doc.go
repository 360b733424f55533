// Package interp samples ndimage images at continuous coordinates.
//
// The default kernel is four-tap cubic convolution, which reproduces linear
// and quadratic signals exactly away from the image edges. Neighbours that
// fall outside the image are clamped to the nearest edge pixel; query points
// outside the image extent return zero.
package interp
