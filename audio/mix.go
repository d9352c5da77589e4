package audio

import "fmt"

// StereoMix weights the three components of a vector signal into a left and
// a right channel.
type StereoMix struct {
	Left  [3]float64
	Right [3]float64
}

// DefaultStereoMix puts the first component left, the third right and half
// of the second in both.
var DefaultStereoMix = StereoMix{
	Left:  [3]float64{1, 0.5, 0},
	Right: [3]float64{0, 0.5, 1},
}

// Apply returns the left and right channels for components x, y and z. The
// result is not normalized and may exceed [-1, 1].
func (m StereoMix) Apply(x, y, z []float64) (left, right []float64, err error) {
	if len(x) != len(y) || len(x) != len(z) {
		return nil, nil, fmt.Errorf("%w: component lengths %d/%d/%d", ErrInvalidLayout, len(x), len(y), len(z))
	}

	comps := [3][]float64{x, y, z}

	return weighted(m.Left, comps), weighted(m.Right, comps), nil
}

func weighted(w [3]float64, comps [3][]float64) []float64 {
	out := make([]float64, len(comps[0]))

	for c, wc := range w {
		if wc == 0 {
			continue
		}

		for i, v := range comps[c] {
			out[i] += wc * v
		}
	}

	return out
}
