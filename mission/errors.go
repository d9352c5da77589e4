package mission

import "errors"

var (
	// ErrMissingField reports a pipeline step whose input has not been
	// acquired or derived yet, or an acquired series lacking a column.
	ErrMissingField = errors.New("mission: missing field")

	// ErrInvalidRequest reports an unusable acquisition request.
	ErrInvalidRequest = errors.New("mission: invalid request")
)
