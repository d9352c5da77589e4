package timeaxis

import "errors"

var (
	// ErrInvalidRange reports a degenerate time range, spacing, unit or factor.
	ErrInvalidRange = errors.New("timeaxis: invalid range")

	// ErrUnordered reports instants that do not strictly increase.
	ErrUnordered = errors.New("timeaxis: instants are not strictly increasing")

	// ErrIncompatibleOrigin reports that exactly one of two axes carries a
	// reference origin, so their offsets cannot be related.
	ErrIncompatibleOrigin = errors.New("timeaxis: incompatible origins")
)
