package window

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// zeroPadFactor sets the spectral grid density of Analyze relative to the
// window's own bin spacing.
const zeroPadFactor = 32

// Analysis holds numerically computed spectral properties of a window.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// Bandwidth3dB is the 3 dB (half-power) main lobe width in bins.
	Bandwidth3dB float64
	// HighestSidelobedB is the highest sidelobe level relative to DC in dB.
	HighestSidelobedB float64
	// FirstMinimumBins is the first null (minimum) position in bins.
	FirstMinimumBins float64
	// ScallopLossdB is the worst-case amplitude error for an off-bin signal.
	ScallopLossdB float64
}

// Analyze computes spectral properties of the given window coefficients from
// a zero-padded FFT of the window.
func Analyze(coeffs []float64) (Analysis, error) {
	n := len(coeffs)
	if n == 0 {
		return Analysis{}, errEmptyCoeffs
	}

	enbw, err := EquivalentNoiseBandwidth(coeffs)
	if err != nil {
		return Analysis{}, err
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	power, err := paddedPower(coeffs)
	if err != nil {
		return Analysis{}, err
	}

	dc := power[0]
	binsPerStep := float64(n) / float64(2*(len(power)-1))

	a := Analysis{
		CoherentGain:  sum / float64(n),
		ENBW:          enbw,
		ScallopLossdB: 10 * math.Log10(dftMagSq(coeffs, 0.5/float64(n))/dc),
	}

	// half-power point, linearly interpolated between grid steps
	for k := 1; k < len(power); k++ {
		if power[k] <= 0.5*dc {
			frac := (power[k-1] - 0.5*dc) / (power[k-1] - power[k])
			a.Bandwidth3dB = 2 * (float64(k-1) + frac) * binsPerStep

			break
		}
	}

	// Flat-top windows have a wide plateau; only accept a turn-around once the
	// main lobe has dropped below 10% of DC.
	first := len(power) - 1
	for k := 1; k < len(power)-1; k++ {
		if power[k] < 0.1*dc && power[k+1] > power[k] {
			first = k
			break
		}
	}

	a.FirstMinimumBins = (float64(first) + parabolicOffset(power, first)) * binsPerStep

	peak := 0.0
	for _, p := range power[first:] {
		peak = max(peak, p)
	}

	a.HighestSidelobedB = math.Inf(-1)
	if peak > 0 {
		a.HighestSidelobedB = 10 * math.Log10(peak/dc)
	}

	return a, nil
}

// paddedPower returns |W(f)|^2 on zeroPadFactor times the native grid,
// for frequencies 0 through Nyquist.
func paddedPower(coeffs []float64) ([]float64, error) {
	size := 1
	for size < len(coeffs)*zeroPadFactor {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("window: analysis plan: %w", err)
	}

	in := make([]complex128, size)
	for i, c := range coeffs {
		in[i] = complex(c, 0)
	}

	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		return nil, fmt.Errorf("window: analysis transform: %w", err)
	}

	half := size/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for k := range half {
		re[k] = real(spec[k])
		im[k] = imag(spec[k])
	}

	out := make([]float64, half)
	vecmath.Power(out, re, im)

	return out, nil
}

// parabolicOffset refines the extremum at k by fitting a parabola through
// its neighbours. It returns a fractional offset in [-0.5, 0.5].
func parabolicOffset(v []float64, k int) float64 {
	if k <= 0 || k >= len(v)-1 {
		return 0
	}

	den := v[k-1] - 2*v[k] + v[k+1]
	if den == 0 {
		return 0
	}

	return min(max(0.5*(v[k-1]-v[k+1])/den, -0.5), 0.5)
}

// dftMagSq evaluates |DFT(freq)|^2 at a normalised frequency [0,1).
func dftMagSq(coeffs []float64, freq float64) float64 {
	re, im := 0.0, 0.0
	w := 2 * math.Pi * freq

	for k, c := range coeffs {
		phase := w * float64(k)
		re += c * math.Cos(phase)
		im -= c * math.Sin(phase)
	}

	return re*re + im*im
}
