package audio

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DitherType selects the noise added before rounding to integer PCM.
type DitherType int

const (
	// DitherNone rounds without noise.
	DitherNone DitherType = iota
	// DitherRectangular adds uniform noise of one LSB peak.
	DitherRectangular
	// DitherTriangular adds triangular (TPDF) noise of one LSB peak, the default.
	DitherTriangular

	ditherTypeCount
)

var ditherTypeNames = [ditherTypeCount]string{"none", "rectangular", "triangular"}

// String returns the lowercase name of the dither type.
func (dt DitherType) String() string {
	if dt >= 0 && dt < ditherTypeCount {
		return ditherTypeNames[dt]
	}

	return fmt.Sprintf("DitherType(%d)", int(dt))
}

// ParseDither resolves a dither name as printed by String.
func ParseDither(name string) (DitherType, error) {
	for i, n := range ditherTypeNames {
		if n == name {
			return DitherType(i), nil
		}
	}

	return DitherNone, fmt.Errorf("audio: unknown dither type %q", name)
}

// quantizer maps [-1, 1] floats to signed integers of a given bit depth.
type quantizer struct {
	dither DitherType
	rng    *rand.Rand

	scale   float64
	limitLo int
	limitHi int
}

func newQuantizer(bitDepth int, dither DitherType, seed uint64) *quantizer {
	full := math.Exp2(float64(bitDepth - 1))

	return &quantizer{
		dither:  dither,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		scale:   full - 1,
		limitLo: -int(full),
		limitHi: int(full) - 1,
	}
}

// quantize scales x and rounds it with dither, clipping to the integer range.
func (q *quantizer) quantize(x float64) int {
	scaled := x * q.scale

	switch q.dither {
	case DitherRectangular:
		scaled += q.rng.Float64() - 0.5
	case DitherTriangular:
		scaled += q.rng.Float64() - q.rng.Float64()
	}

	return max(q.limitLo, min(q.limitHi, int(math.Round(scaled))))
}
