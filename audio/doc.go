// Package audio renders normalized sample sequences to PCM WAV files.
//
// Samples are quantized with TPDF dither by default. Mono and stereo layouts
// are supported; three-component vector signals are folded to stereo with a
// StereoMix.
package audio
