package dataset

import (
	"errors"

	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

var (
	// ErrShapeMismatch reports series, masks or key sets that do not line up.
	ErrShapeMismatch = errors.New("dataset: shape mismatch")

	// ErrTimeAxisMismatch reports an operation on datasets with unequal time axes.
	ErrTimeAxisMismatch = errors.New("dataset: time axis mismatch")

	// ErrConfiguration reports missing or mutually exclusive parameters.
	ErrConfiguration = errors.New("dataset: invalid configuration")

	// ErrUnknownKey reports a channel key that is not present.
	ErrUnknownKey = errors.New("dataset: unknown channel key")

	// ErrInvalidRange reports a degenerate range or window.
	ErrInvalidRange = timeaxis.ErrInvalidRange
)
