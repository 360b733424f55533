package subpixel

import (
	"fmt"
	"strings"
)

// Method selects how the neighbourhood of an integer extremum is modelled.
type Method uint8

const (
	// Linear estimates each axis offset as a centre of gravity of the three
	// samples along that axis.
	Linear Method = iota

	// ParabolicSeparable fits a parabola independently along each axis.
	ParabolicSeparable

	// GaussianSeparable fits a parabola to the logarithm of the samples
	// along each axis.
	GaussianSeparable

	// Parabolic fits a full quadratic surface to the 3x3 or 3x3x3
	// neighbourhood.
	Parabolic

	// Gaussian fits a full quadratic surface to the logarithm of the
	// 3x3 or 3x3x3 neighbourhood.
	Gaussian

	// IntegerOnly reports the integer location unrefined.
	IntegerOnly
)

var methodNames = map[string]Method{
	"linear":              Linear,
	"parabolic separable": ParabolicSeparable,
	"gaussian separable":  GaussianSeparable,
	"parabolic":           Parabolic,
	"gaussian":            Gaussian,
	"integer":             IntegerOnly,
}

// ParseMethod resolves a method name for an image of nDims dimensions.
// Names are case-insensitive and accept '_' or '-' in place of the space
// ("parabolic_separable"). For 1-D images Parabolic and Gaussian are
// replaced by their separable forms, which are identical there.
func ParseMethod(s string, nDims int) (Method, error) {
	key := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s)))
	m, ok := methodNames[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown method %q", ErrInvalidParameter, s)
	}
	return m.forDimensionality(nDims), nil
}

func (m Method) forDimensionality(nDims int) Method {
	if nDims == 1 {
		switch m {
		case Parabolic:
			return ParabolicSeparable
		case Gaussian:
			return GaussianSeparable
		}
	}
	return m
}

func (m Method) String() string {
	for name, v := range methodNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

func (m Method) separable() bool {
	return m == ParabolicSeparable || m == GaussianSeparable
}

func (m Method) logDomain() bool {
	return m == Gaussian || m == GaussianSeparable
}

// Polarity selects whether maxima or minima are searched.
type Polarity uint8

const (
	Maximum Polarity = iota
	Minimum
)

// ParsePolarity resolves "maximum" or "minimum".
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "maximum":
		return Maximum, nil
	case "minimum":
		return Minimum, nil
	}
	return 0, fmt.Errorf("%w: unknown polarity %q", ErrInvalidParameter, s)
}

func (p Polarity) check() error {
	if p != Maximum && p != Minimum {
		return fmt.Errorf("%w: unknown polarity %d", ErrInvalidParameter, uint8(p))
	}
	return nil
}

func (p Polarity) String() string {
	if p == Minimum {
		return "minimum"
	}
	return "maximum"
}

// sign maps samples into a space where the extremum is always a maximum.
func (p Polarity) sign() float64 {
	if p == Minimum {
		return -1
	}
	return 1
}
