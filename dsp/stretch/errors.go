package stretch

import "errors"

// ErrInvalidConfig reports an unusable stretch configuration: empty input,
// a non-positive or non-finite factor, or a hop that resolves to less than
// one sample.
var ErrInvalidConfig = errors.New("stretch: invalid configuration")
