package dataset

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

// Vector is a dataset with exactly the channels 0, 1 and 2.
//
// Arithmetic and smoothing on a Vector return a *Vector; the remaining
// Dataset methods (masking, clamping, interpolation) are promoted unchanged.
type Vector struct {
	*Dataset
}

// NewVector builds a vector dataset from its three components.
func NewVector(axis timeaxis.Axis, x, y, z []float64) (*Vector, error) {
	d, err := FromSlices(axis, x, y, z)
	if err != nil {
		return nil, err
	}

	return &Vector{Dataset: d}, nil
}

// AsVector views d as a vector. d must hold exactly the channels 0, 1 and 2;
// the returned Vector shares d's storage.
func AsVector(d *Dataset) (*Vector, error) {
	if len(d.keys) != len(vectorKeys) {
		return nil, fmt.Errorf("%w: vector needs 3 channels, have %d", ErrShapeMismatch, len(d.keys))
	}

	for _, k := range vectorKeys {
		if !d.Has(k) {
			return nil, fmt.Errorf("%w: vector is missing channel %s", ErrShapeMismatch, k)
		}
	}

	d.keys = vectorKeys[:]

	return &Vector{Dataset: d}, nil
}

// Component returns the i-th component series (aliasing the vector's storage).
func (v *Vector) Component(i int) []float64 {
	return v.data[vectorKeys[i]]
}

func (v *Vector) components() (x, y, z []float64) {
	return v.Component(0), v.Component(1), v.Component(2)
}

// Copy returns a deep copy.
func (v *Vector) Copy() *Vector { return &Vector{Dataset: v.Dataset.Copy()} }

// Neg returns -v.
func (v *Vector) Neg() *Vector { return &Vector{Dataset: v.Dataset.Neg()} }

// Add returns v + other.
func (v *Vector) Add(other *Vector) (*Vector, error) {
	d, err := v.Dataset.Add(other.Dataset)
	if err != nil {
		return nil, err
	}

	return &Vector{Dataset: d}, nil
}

// Sub returns v - other.
func (v *Vector) Sub(other *Vector) (*Vector, error) {
	d, err := v.Dataset.Sub(other.Dataset)
	if err != nil {
		return nil, err
	}

	return &Vector{Dataset: d}, nil
}

// RunningAverage returns a boxcar-smoothed copy; see Dataset.RunningAverage.
func (v *Vector) RunningAverage(opts ...AverageOption) (*Vector, error) {
	d, err := v.Dataset.RunningAverage(opts...)
	if err != nil {
		return nil, err
	}

	return &Vector{Dataset: d}, nil
}

// Cross returns the per-sample cross product v × other.
func (v *Vector) Cross(other *Vector) (*Vector, error) {
	if err := v.SameAxis(other.Dataset); err != nil {
		return nil, err
	}

	ax, ay, az := v.components()
	bx, by, bz := other.components()

	n := v.Len()
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)

	for i := range n {
		x[i] = ay[i]*bz[i] - az[i]*by[i]
		y[i] = az[i]*bx[i] - ax[i]*bz[i]
		z[i] = ax[i]*by[i] - ay[i]*bx[i]
	}

	return NewVector(v.axis, x, y, z)
}

// Dot returns the per-sample scalar product v · other as a single-channel
// dataset keyed Index(0).
func (v *Vector) Dot(other *Vector) (*Dataset, error) {
	if err := v.SameAxis(other.Dataset); err != nil {
		return nil, err
	}

	return FromSlices(v.axis, dot(v, other))
}

func dot(a, b *Vector) []float64 {
	n := a.Len()
	out := make([]float64, n)
	tmp := make([]float64, n)

	for i := range vectorKeys {
		vecmath.MulBlock(tmp, a.Component(i), b.Component(i))
		for k, p := range tmp {
			out[k] += p
		}
	}

	return out
}

// Magnitude returns the per-sample Euclidean norm as a single-channel dataset.
func (v *Vector) Magnitude() *Dataset {
	mag := v.magnitude()
	d, _ := FromSlices(v.axis, mag)

	return d
}

func (v *Vector) magnitude() []float64 {
	x, y, z := v.components()
	mag := make([]float64, v.Len())

	vecmath.Magnitude(mag, x, y)
	vecmath.Magnitude(mag, mag, z)

	return mag
}

// MakeUnitVector divides every sample by its magnitude in place. A zero
// magnitude propagates NaN/Inf rather than failing; callers mask such samples.
func (v *Vector) MakeUnitVector() {
	inv := v.magnitude()
	for i, m := range inv {
		inv[i] = 1 / m
	}

	for i := range vectorKeys {
		vecmath.MulBlockInPlace(v.Component(i), inv)
	}
}

// CoordinateTransform projects v onto three basis vectors: channel i of the
// result is v · b_i. Orthonormality of the basis is not checked.
func (v *Vector) CoordinateTransform(b0, b1, b2 *Vector) (*Vector, error) {
	bases := [3]*Vector{b0, b1, b2}

	var comps [3][]float64
	for i, b := range bases {
		if err := v.SameAxis(b.Dataset); err != nil {
			return nil, fmt.Errorf("basis %d: %w", i, err)
		}

		comps[i] = dot(v, b)
	}

	return NewVector(v.axis, comps[0], comps[1], comps[2])
}
