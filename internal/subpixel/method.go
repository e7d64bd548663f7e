package subpixel

import (
	"fmt"
	"strings"
)

// Method selects the model fitted around each candidate.
type Method uint8

const (
	MethodLinear             Method = iota // Centre of gravity per axis.
	MethodParabolicSeparable               // 1-D parabola per axis.
	MethodGaussianSeparable                // 1-D Gaussian per axis.
	MethodParabolic                        // Joint quadratic over the 3x3 or 3x3x3 stencil.
	MethodGaussian                         // Joint Gaussian over the 3x3 or 3x3x3 stencil.
	MethodInteger                          // No refinement.
)

var methodNames = [...]string{
	MethodLinear:             "linear",
	MethodParabolicSeparable: "parabolic separable",
	MethodGaussianSeparable:  "gaussian separable",
	MethodParabolic:          "parabolic",
	MethodGaussian:           "gaussian",
	MethodInteger:            "integer",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// ParseMethod maps a method name to a Method. Separable names may use a
// space, underscore or hyphen ("parabolic separable", "parabolic_separable").
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	for m, name := range methodNames {
		if key == name {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("%w: method %q", ErrInvalidFlag, s)
}

// resolve validates m and applies the 1-D normalisation: joint and
// separable fits coincide when there is a single axis.
func (m Method) resolve(nDims int) (Method, error) {
	switch m {
	case MethodLinear, MethodParabolicSeparable, MethodGaussianSeparable, MethodInteger:
		return m, nil
	case MethodParabolic, MethodGaussian:
		switch nDims {
		case 1:
			if m == MethodParabolic {
				return MethodParabolicSeparable, nil
			}
			return MethodGaussianSeparable, nil
		case 2, 3:
			return m, nil
		default:
			return 0, fmt.Errorf("%w: %s on %d dimensions", ErrIllegalDimensionality, m, nDims)
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidFlag, m)
}

// Polarity selects whether maxima or minima are refined.
type Polarity uint8

const (
	Maximum Polarity = iota
	Minimum
)

func (p Polarity) String() string {
	switch p {
	case Maximum:
		return "maximum"
	case Minimum:
		return "minimum"
	default:
		return fmt.Sprintf("Polarity(%d)", uint8(p))
	}
}

// ParsePolarity maps "maximum"/"minimum" (also "max"/"min") to a Polarity.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "maximum", "max":
		return Maximum, nil
	case "minimum", "min":
		return Minimum, nil
	}
	return 0, fmt.Errorf("%w: polarity %q", ErrInvalidFlag, s)
}

func (p Polarity) validate() error {
	if p != Maximum && p != Minimum {
		return fmt.Errorf("%w: %s", ErrInvalidFlag, p)
	}
	return nil
}

// sign is the factor applied to samples so fits always look for a maximum.
func (p Polarity) sign() float64 {
	if p == Minimum {
		return -1
	}
	return 1
}
