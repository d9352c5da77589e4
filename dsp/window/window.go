package window

import (
	"math"
	"sort"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
	TypeKaiser
	TypeTukey
	TypeTriangle
	TypeGauss
)

// Metadata holds spectral properties of a window type.
type Metadata struct {
	Name            string
	ENBW            float64
	HighestSidelobe float64
	CoherentGain    float64
	// DefaultAlpha is the shape parameter used when none is configured.
	// Zero for windows without one.
	DefaultAlpha float64
}

var (
	hannCoeffs            = []float64{0.5, -0.5}
	hammingCoeffs         = []float64{0.54, -0.46}
	blackmanCoeffs        = []float64{0.42, -0.5, 0.08}
	blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
	flatTopCoeffs         = []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}
)

var metadataByType = map[Type]Metadata{
	TypeRectangular:         {Name: "Rectangular", ENBW: 1, HighestSidelobe: -13.3, CoherentGain: 1},
	TypeHann:                {Name: "Hann", ENBW: 1.5, HighestSidelobe: -31.5, CoherentGain: 0.5},
	TypeHamming:             {Name: "Hamming", ENBW: 1.36, HighestSidelobe: -42.7, CoherentGain: 0.54},
	TypeBlackman:            {Name: "Blackman", ENBW: 1.73, HighestSidelobe: -58.1, CoherentGain: 0.42},
	TypeBlackmanHarris4Term: {Name: "Blackman-Harris 4-term", ENBW: 2.0, HighestSidelobe: -92, CoherentGain: 0.36},
	TypeFlatTop:             {Name: "Flat top", ENBW: 3.77, HighestSidelobe: -93.6, CoherentGain: 0.22},
	TypeKaiser:              {Name: "Kaiser", ENBW: 1.8, HighestSidelobe: -69.6, CoherentGain: 0.4, DefaultAlpha: 8.6},
	TypeTukey:               {Name: "Tukey", ENBW: 1.22, HighestSidelobe: -15.1, CoherentGain: 0.75, DefaultAlpha: 0.5},
	TypeTriangle:            {Name: "Triangle", ENBW: 1.33, HighestSidelobe: -26.5, CoherentGain: 0.5},
	TypeGauss:               {Name: "Gauss", ENBW: 1.64, HighestSidelobe: -42, CoherentGain: 0.43, DefaultAlpha: 2.5},
}

var typeByName = map[string]Type{
	"rectangular":        TypeRectangular,
	"hann":               TypeHann,
	"hamming":            TypeHamming,
	"blackman":           TypeBlackman,
	"blackman-harris-4t": TypeBlackmanHarris4Term,
	"flat-top":           TypeFlatTop,
	"kaiser":             TypeKaiser,
	"tukey":              TypeTukey,
	"triangle":           TypeTriangle,
	"gauss":              TypeGauss,
}

// Parse resolves a window name such as "hann" or "blackman-harris-4t".
func Parse(name string) (Type, error) {
	t, ok := typeByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, &UnknownNameError{Name: name}
	}

	return t, nil
}

// Names returns every name accepted by Parse, sorted.
func Names() []string {
	names := make([]string, 0, len(typeByName))
	for n := range typeByName {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// String returns the short name accepted by Parse.
func (t Type) String() string {
	for n, v := range typeByName {
		if v == t {
			return n
		}
	}

	return "unknown"
}

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha    float64
	hasAlpha bool
	periodic bool
}

// WithAlpha configures the shape parameter of Kaiser (beta), Tukey (taper
// ratio) and Gauss windows. Negative values are ignored.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
			c.hasAlpha = true
		}
	}
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !cfg.hasAlpha {
		cfg.alpha = Info(t).DefaultAlpha
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic), cfg.alpha)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	return metadataByType[t]
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	if err := validateShape(TypeHann, size, 0); err != nil {
		return nil, err
	}

	return Generate(TypeHann, size, opts...), nil
}

// Kaiser returns Kaiser window coefficients.
func Kaiser(size int, beta float64, opts ...Option) ([]float64, error) {
	if err := validateShape(TypeKaiser, size, beta); err != nil {
		return nil, err
	}

	return Generate(TypeKaiser, size, append(opts, WithAlpha(beta))...), nil
}

// Tukey returns Tukey window coefficients.
func Tukey(size int, alpha float64, opts ...Option) ([]float64, error) {
	if err := validateShape(TypeTukey, size, alpha); err != nil {
		return nil, err
	}

	return Generate(TypeTukey, size, append(opts, WithAlpha(alpha))...), nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	sumSquares := 0.0

	for _, c := range coeffs {
		sum += c
		sumSquares += c * c
	}

	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * sumSquares / (sum * sum), nil
}

// ApplyCoefficients multiplies samples with coefficients into dst.
func ApplyCoefficients(dst, samples, coeffs []float64) error {
	if len(samples) != len(coeffs) || len(dst) != len(samples) {
		return errMismatchedLength
	}

	vecmath.MulBlock(dst, samples, coeffs)

	return nil
}

func evalWindow(t Type, x, alpha float64) float64 {
	x = min(max(x, 0), 1)

	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeBlackmanHarris4Term:
		return cosineFromCoeffs(x, blackmanHarris4Coeffs)
	case TypeFlatTop:
		return cosineFromCoeffs(x, flatTopCoeffs)
	case TypeKaiser:
		return kaiserAt(x, alpha)
	case TypeTukey:
		return tukeyAt(x, alpha)
	case TypeTriangle:
		return 1 - math.Abs(2*x-1)
	case TypeGauss:
		v := (2*x - 1) * alpha
		return math.Exp(-math.Ln2 * v * v)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0.5
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}

func kaiserAt(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}

	r := 2*x - 1
	term := math.Sqrt(math.Max(0, 1-r*r))

	return besselI0(beta*term) / besselI0(beta)
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return cosineFromCoeffs(x, hannCoeffs)
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}

// besselI0 returns a numerical approximation of the modified Bessel function I0.
func besselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		y := x / 3.75
		y *= y

		return 1.0 + y*(3.5156229+y*(3.0899424+y*(1.2067492+y*(0.2659732+y*(0.0360768+y*0.0045813)))))
	}

	y := 3.75 / ax

	return (math.Exp(ax) / math.Sqrt(ax)) *
		(0.39894228 + y*(0.01328592+y*(0.00225319+y*(-0.00157565+y*(0.00916281+y*(-0.02057706+y*(0.02635537+y*(-0.01647633+y*0.00392377))))))))
}
