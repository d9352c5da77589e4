// Package timeaxis provides the immutable, strictly ordered time base shared by
// every channel of a dataset.
//
// An [Axis] stores its instants as floating offsets expressed in a unit
// (a [time.Duration]) relative to an optional reference origin. Offsets are
// either explicit or implied by a uniform spacing. Two axes are equal when
// their realized instants, normalized to nanoseconds, are identical; how the
// instants are represented does not matter.
//
// Axes are values. Every transform returns a new Axis and never mutates the
// receiver, so an Axis can be shared between datasets without copying.
package timeaxis
