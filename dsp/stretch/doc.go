// Package stretch dilates signals in time without changing their frequency
// content.
//
// Two methods are provided. PhaseVocoder is an STFT phase vocoder with
// optional identity phase locking. Wavelet decomposes the signal into
// Morlet sub-bands, stretches each band's amplitude and phase envelope
// independently and resynthesises them.
//
// Both satisfy Stretcher and return round(len(input)*factor) samples.
package stretch
