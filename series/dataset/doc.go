// Package dataset implements channel algebra over a shared time axis.
//
// A [Dataset] is an ordered collection of equal-length numeric series, each
// aligned 1:1 with one [timeaxis.Axis]. A [Vector] is the fixed-arity
// specialization holding exactly the channels 0, 1 and 2, interpreted as
// orthogonal spatial components.
//
// Every binary operation checks that both operands share an equal time axis
// and fails with [ErrTimeAxisMismatch] otherwise; nothing is broadcast or
// truncated. Derived datasets always own independent copies of their series.
package dataset
