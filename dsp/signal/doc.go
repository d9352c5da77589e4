// Package signal generates deterministic test signals: sample-rate tones and
// noise for audio work, and time-axis waveforms that mimic field
// oscillations, together with the output a pitch-preserving stretch of them
// should produce.
package signal
