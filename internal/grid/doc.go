// Package grid owns the N-dimensional sample container shared by the
// detector, the measurement tool, the resampler and the sub-pixel core.
//
// Responsibilities: strided addressing, coordinate/offset conversion and a
// type-erased Image view so callers can dispatch on the element type once.
// Key types: Grid, Image, DataType, Real.
//
// Axis 0 is the fastest-varying axis. Vector grids interleave their tensor
// elements, so Stride(0) equals TensorElements().
package grid
