package subpixel

import "errors"

var (
	ErrNotForged                  = errors.New("subpixel: image not forged")
	ErrNotScalar                  = errors.New("subpixel: image not scalar")
	ErrDataTypeNotSupported       = errors.New("subpixel: data type not supported")
	ErrDimensionalityNotSupported = errors.New("subpixel: dimensionality not supported")
	ErrWrongLength                = errors.New("subpixel: array parameter has the wrong length")
	ErrOutOfBounds                = errors.New("subpixel: initial coordinates out of image bounds")
	ErrInvalidFlag                = errors.New("subpixel: invalid flag")
	ErrIllegalDimensionality      = errors.New("subpixel: method not defined for this dimensionality")
	ErrTensorElementsMismatch     = errors.New("subpixel: number of tensor elements does not match dimensionality")
	ErrParameterOutOfRange        = errors.New("subpixel: parameter out of range")

	// ErrNotConverged is returned by MeanShiftTracker.Track when
	// MaxIterations steps did not reach the requested epsilon. The result
	// still carries the last position.
	ErrNotConverged = errors.New("subpixel: mean shift did not converge")
)
