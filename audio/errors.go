package audio

import "errors"

var (
	// ErrOutOfRange reports a sample outside [-1, 1] or a non-finite sample.
	ErrOutOfRange = errors.New("audio: sample out of range")
	// ErrInvalidLayout reports a channel layout the renderer cannot write:
	// no channels, more than two, or channels of unequal length.
	ErrInvalidLayout = errors.New("audio: invalid channel layout")

	errSampleRate = errors.New("audio: sample rate must be a positive integer")
	errBitDepth   = errors.New("audio: bit depth must be 16 or 24")
)
