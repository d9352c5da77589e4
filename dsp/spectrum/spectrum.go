package spectrum

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

func split(in []complex128, re, im []float64) {
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
}

// Magnitude returns |X[k]| for each complex spectrum bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	split(in, re, im)

	vecmath.Magnitude(out, re, im)
	putScratch(buf)
	return out
}

// Power returns |X[k]|^2 for each complex spectrum bin.
func Power(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	split(in, re, im)

	vecmath.Power(out, re, im)
	putScratch(buf)
	return out
}

// MagnitudePhaseInto writes |X[k]| and arg(X[k]) for every bin of in.
// mag and phase must be at least len(in) long.
func MagnitudePhaseInto(mag, phase []float64, in []complex128) {
	re, im, buf := getScratch(len(in))
	split(in, re, im)

	vecmath.Magnitude(mag[:len(in)], re, im)
	for k := range in {
		phase[k] = math.Atan2(im[k], re[k])
	}

	putScratch(buf)
}

// Phase returns arg(X[k]) for each complex spectrum bin in radians.
func Phase(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	for i, c := range in {
		out[i] = cmplx.Phase(c)
	}
	return out
}

// UnwrapPhase returns a new phase slice with +/-2*pi discontinuities removed.
func UnwrapPhase(phase []float64) []float64 {
	if len(phase) == 0 {
		return nil
	}
	out := make([]float64, len(phase))
	copy(out, phase)
	UnwrapPhaseInPlace(out)
	return out
}

// UnwrapPhaseInPlace removes +/-2*pi discontinuities from phase.
func UnwrapPhaseInPlace(phase []float64) {
	offset := 0.0
	prev := 0.0
	for i, p := range phase {
		if i > 0 {
			d := p - prev
			switch {
			case d > math.Pi:
				offset -= 2 * math.Pi * math.Round(d/(2*math.Pi))
			case d < -math.Pi:
				offset += 2 * math.Pi * math.Round(-d/(2*math.Pi))
			}
		}
		prev = p
		phase[i] = p + offset
	}
}

// WrapPhase maps x into (-pi, pi].
func WrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}
