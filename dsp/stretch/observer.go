package stretch

import "github.com/cwbudde/algo-magsonify/dsp/spectrum"

// Frame is one analysis frame reported to an Observer.
//
// Spectrum and Window alias the vocoder's work buffers and are only valid
// during the callback.
type Frame struct {
	Index          int
	AnalysisStart  int
	SynthesisStart int
	// Spectrum holds bins 0..N/2 of the windowed analysis frame.
	Spectrum []complex128
	Window   []float64
}

// Observer receives every analysis frame of a phase-vocoder run.
type Observer interface {
	ObserveFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

// ObserveFrame calls fn(f).
func (fn ObserverFunc) ObserveFrame(f Frame) { fn(f) }

// Recorder is an Observer that keeps the STFT magnitudes, frame offsets and
// analysis window of a run for plotting.
type Recorder struct {
	Magnitudes      [][]float64
	AnalysisStarts  []int
	SynthesisStarts []int
	Window          []float64
}

// ObserveFrame implements Observer.
func (r *Recorder) ObserveFrame(f Frame) {
	if r.Window == nil {
		r.Window = append([]float64(nil), f.Window...)
	}

	r.Magnitudes = append(r.Magnitudes, spectrum.Magnitude(f.Spectrum))
	r.AnalysisStarts = append(r.AnalysisStarts, f.AnalysisStart)
	r.SynthesisStarts = append(r.SynthesisStarts, f.SynthesisStart)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	*r = Recorder{}
}
