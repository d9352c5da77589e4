// Package interp provides interpolation primitives for resampling series.
//
// Available methods:
//
//   - [Hermite4]:     4-point cubic Hermite on a uniform grid
//   - [UniformAt]:    Hermite evaluation at a fractional index of a uniform series
//   - [CubicSpline]:  natural cubic spline through arbitrarily spaced knots,
//     with polynomial extrapolation outside the knot range
package interp
