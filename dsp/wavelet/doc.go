// Package wavelet implements a continuous wavelet transform with the Morlet
// mother wavelet (omega0 = 6), computed in the Fourier domain following
// Torrence & Compo, "A Practical Guide to Wavelet Analysis" (1998).
//
// Scales are spaced geometrically by ScaleSpacing octaves starting at
// SmallestScale samples. Transform.Reconstruct uses the delta-function
// synthesis, which is approximate: with the default half-octave spacing the
// passband gain ripples by a few percent.
package wavelet
