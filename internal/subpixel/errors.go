package subpixel

import "errors"

// Errors reported by the locators. Callers should test with errors.Is; the
// returned errors wrap these with details.
var (
	// ErrPreconditionViolation: unforged, non-scalar or non-real image, or an
	// array argument of the wrong length.
	ErrPreconditionViolation = errors.New("precondition violated")

	// ErrInvalidParameter: unknown method or polarity, non-positive epsilon,
	// or a tensor/dimensionality mismatch.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDimensionalityUnsupported: a non-separable fit on an image that is
	// not 2-D or 3-D.
	ErrDimensionalityUnsupported = errors.New("dimensionality not supported")

	// ErrCoordinateOutOfBounds: a coordinate outside the image extent.
	ErrCoordinateOutOfBounds = errors.New("initial coordinates out of image bounds")

	// ErrNotConverged: MeanShift hit its iteration limit.
	ErrNotConverged = errors.New("mean shift did not converge")
)
