// Package spectrum provides spectrum-domain helpers: magnitude and phase
// extraction from complex bins, phase unwrapping, and windowed periodograms
// for locating the dominant tone of a signal.
package spectrum
