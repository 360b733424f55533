package subpixel

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/subpixel-mcp/internal/interp"
	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

// DefaultMaxIterations caps MeanShift when no WithMaxIterations option is
// given.
const DefaultMaxIterations = 10000

// MeanShiftResult is the outcome of a MeanShift run.
type MeanShiftResult struct {
	// Point is the final position.
	Point []float64 `json:"point"`

	// Iterations is the number of field samples taken.
	Iterations int `json:"iterations"`
}

// StepFunc observes one MeanShift iteration: the position after the step
// and the shift that was applied. The slices are reused between calls.
type StepFunc func(step int, point, shift []float64)

type meanShiftOptions struct {
	maxIterations int
	onStep        StepFunc
}

// MeanShiftOption configures MeanShift.
type MeanShiftOption func(*meanShiftOptions)

// WithMaxIterations bounds the number of iterations. Values below 1 select
// DefaultMaxIterations.
func WithMaxIterations(n int) MeanShiftOption {
	return func(o *meanShiftOptions) {
		if n < 1 {
			n = DefaultMaxIterations
		}
		o.maxIterations = n
	}
}

// WithStepObserver registers fn to be called after every iteration.
func WithStepObserver(fn StepFunc) MeanShiftOption {
	return func(o *meanShiftOptions) {
		o.onStep = fn
	}
}

// MeanShift follows the vector field from start until the sampled vector
// is shorter than epsilon.
//
// field must hold one vector component per spatial axis
// (TensorElements == Dimensionality). At each step the field is sampled at
// the current position with cubic interpolation and the sample is added to
// the position. The loop ends when the squared norm of the last sample is
// at most epsilon². When the iteration limit is reached first, the last
// position is returned together with ErrNotConverged; when ctx is done, it
// is returned with ctx.Err().
func MeanShift(ctx context.Context, field *ndimage.Image, start []float64, epsilon float64, opts ...MeanShiftOption) (MeanShiftResult, error) {
	o := meanShiftOptions{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&o)
	}

	if !field.IsForged() {
		return MeanShiftResult{}, fmt.Errorf("%w: %w", ErrPreconditionViolation, ndimage.ErrNotForged)
	}
	nd := field.Dimensionality()
	if field.TensorElements() != nd {
		return MeanShiftResult{}, fmt.Errorf("%w: %d tensor elements for a %d-D field",
			ErrInvalidParameter, field.TensorElements(), nd)
	}
	if !field.DataType().IsReal() {
		return MeanShiftResult{}, fmt.Errorf("%w: data type %s not supported",
			ErrPreconditionViolation, field.DataType())
	}
	if len(start) != nd {
		return MeanShiftResult{}, fmt.Errorf("%w: %d start coordinates for a %d-D field",
			ErrPreconditionViolation, len(start), nd)
	}
	if !(epsilon > 0) {
		return MeanShiftResult{}, fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidParameter, epsilon)
	}

	sampler, err := interp.Prepare(field, interp.Cubic)
	if err != nil {
		return MeanShiftResult{}, fmt.Errorf("%w: %w", ErrPreconditionViolation, err)
	}

	eps2 := epsilon * epsilon
	pt := append([]float64(nil), start...)
	shift := make([]float64, nd)
	for step := 1; ; step++ {
		if step > o.maxIterations {
			return MeanShiftResult{Point: pt, Iterations: step - 1},
				fmt.Errorf("%w after %d iterations", ErrNotConverged, o.maxIterations)
		}
		if err := ctx.Err(); err != nil {
			return MeanShiftResult{Point: pt, Iterations: step - 1}, err
		}

		shift = sampler.At(pt, shift)
		floats.Add(pt, shift)
		if o.onStep != nil {
			o.onStep(step, pt, shift)
		}
		if floats.Dot(shift, shift) <= eps2 {
			return MeanShiftResult{Point: pt, Iterations: step}, nil
		}
	}
}
