package window

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateAllTypes(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			typ, err := Parse(name)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", name, err)
			}

			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}

			if typ.String() != name {
				t.Fatalf("String() = %q, want %q", typ.String(), name)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("bartlett-hann")

	var unknown *UnknownNameError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNameError, got %v", err)
	}

	if unknown.Name != "bartlett-hann" {
		t.Fatalf("Name = %q", unknown.Name)
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	a := Generate(TypeHann, 16)
	b := Generate(TypeHann, 16, WithPeriodic())

	if almostEqual(a[15], b[15], 1e-12) {
		t.Fatal("expected different end coefficient for periodic form")
	}

	// periodic Hann at 75% overlap sums to a constant
	const hop = 4
	sum := make([]float64, hop)
	for i, v := range b {
		sum[i%hop] += v
	}

	for i := 1; i < hop; i++ {
		if !almostEqual(sum[i], sum[0], 1e-12) {
			t.Fatalf("overlap sum[%d]=%v, want %v", i, sum[i], sum[0])
		}
	}
}

func TestApplyInPlaceByType(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	Apply(TypeRectangular, buf)

	for i, v := range buf {
		if v != float64(i+1) {
			t.Fatalf("rectangular should be passthrough at %d: %v", i, v)
		}
	}

	Apply(TypeHann, buf)

	if buf[0] != 0 {
		t.Fatalf("hann first sample should be 0, got %v", buf[0])
	}
}

func TestMetadataAndENBW(t *testing.T) {
	for _, tc := range []struct {
		typ  Type
		enbw float64
	}{
		{TypeRectangular, 1},
		{TypeHann, 1.5},
		{TypeHamming, 1.36},
		{TypeBlackmanHarris4Term, 2.0},
	} {
		m := Info(tc.typ)
		if !almostEqual(m.ENBW, tc.enbw, 0.01) {
			t.Fatalf("%s: ENBW metadata=%v", m.Name, m.ENBW)
		}

		enbw, err := EquivalentNoiseBandwidth(Generate(tc.typ, 2048))
		if err != nil {
			t.Fatalf("EquivalentNoiseBandwidth error: %v", err)
		}

		if !almostEqual(enbw, tc.enbw, 0.01) {
			t.Fatalf("%s: ENBW=%v, want ~%v", m.Name, enbw, tc.enbw)
		}
	}
}

func TestDefaultAlpha(t *testing.T) {
	def := Generate(TypeKaiser, 32)
	explicit := Generate(TypeKaiser, 32, WithAlpha(Info(TypeKaiser).DefaultAlpha))

	checkGolden(t, def, explicit, 0)
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		typ       Type
		bw3dB     float64
		firstMin  float64
		sidelobe  float64
		scallopdB float64
	}{
		{TypeRectangular, 0.886, 1, -13.26, -3.92},
		{TypeHann, 1.44, 2, -31.47, -1.42},
	}

	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			a, err := Analyze(Generate(tc.typ, 1024, WithPeriodic()))
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			if !almostEqual(a.Bandwidth3dB, tc.bw3dB, 0.02) {
				t.Errorf("Bandwidth3dB=%v, want ~%v", a.Bandwidth3dB, tc.bw3dB)
			}

			if !almostEqual(a.FirstMinimumBins, tc.firstMin, 0.05) {
				t.Errorf("FirstMinimumBins=%v, want ~%v", a.FirstMinimumBins, tc.firstMin)
			}

			if !almostEqual(a.HighestSidelobedB, tc.sidelobe, 0.3) {
				t.Errorf("HighestSidelobedB=%v, want ~%v", a.HighestSidelobedB, tc.sidelobe)
			}

			if !almostEqual(a.ScallopLossdB, tc.scallopdB, 0.05) {
				t.Errorf("ScallopLossdB=%v, want ~%v", a.ScallopLossdB, tc.scallopdB)
			}
		})
	}
}

func TestApplyCoefficients(t *testing.T) {
	samples := []float64{1, 2, 3}
	coeffs := []float64{0.5, 0.5, 0.5}
	out := make([]float64, 3)

	if err := ApplyCoefficients(out, samples, coeffs); err != nil {
		t.Fatal(err)
	}

	if !almostEqual(out[2], 1.5, 1e-12) {
		t.Fatalf("out[2]=%v", out[2])
	}

	if err := ApplyCoefficients(out, samples[:2], coeffs); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGoldenVectors(t *testing.T) {
	hannExpected := []float64{
		0.0, 0.1882550990706332, 0.6112604669781572, 0.9504844339512095,
		0.9504844339512095, 0.6112604669781573, 0.1882550990706333, 0.0,
	}
	hammingExpected := []float64{
		0.08, 0.25319469114498255, 0.6423596296199047, 0.9544456792351128,
		0.9544456792351128, 0.6423596296199048, 0.25319469114498266, 0.08,
	}
	bh4Expected := []float64{
		0.00006, 0.03339172347815117, 0.332833504298565,
		0.8893697722232837, 0.8893697722232838, 0.3328335042985652,
		0.0333917234781512, 0.00006,
	}
	kaiserExpected := []float64{
		0.002338830460264423, 0.1091958100155291, 0.4871186737556569, 0.9261577358777303,
		0.9261577358777303, 0.4871186737556569, 0.1091958100155291, 0.002338830460264423,
	}

	checkGolden(t, Generate(TypeHann, 8), hannExpected, 1e-10)
	checkGolden(t, Generate(TypeHamming, 8), hammingExpected, 1e-10)
	checkGolden(t, Generate(TypeBlackmanHarris4Term, 8), bh4Expected, 1e-10)
	checkGolden(t, Generate(TypeKaiser, 8, WithAlpha(8)), kaiserExpected, 1e-10)
}

func TestValidationAndEdgeCases(t *testing.T) {
	if got := Generate(TypeHann, 0); got != nil {
		t.Fatalf("expected nil for zero length, got %v", got)
	}

	if _, err := Hann(0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Hann(0) error = %v, want ErrInvalidParameter", err)
	}

	if _, err := Kaiser(16, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Kaiser beta error = %v, want ErrInvalidParameter", err)
	}

	if _, err := Tukey(16, 2); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Tukey alpha error = %v, want ErrInvalidParameter", err)
	}

	if w, err := Tukey(16, 0.25); err != nil || len(w) != 16 {
		t.Fatalf("Tukey(16, 0.25) = %d coefficients, error %v", len(w), err)
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Fatal("expected empty coeffs error")
	}

	if _, err := EquivalentNoiseBandwidth([]float64{0, 0, 0}); err == nil {
		t.Fatal("expected zero coherent gain error")
	}

	if _, err := Analyze(nil); err == nil {
		t.Fatal("expected empty coeffs error from Analyze")
	}
}

func checkGolden(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("len mismatch got=%d want=%d", len(got), len(want))
	}

	for i := range got {
		if !almostEqual(got[i], want[i], tol) {
			t.Fatalf("index %d: got=%.16f want=%.16f", i, got[i], want[i])
		}
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
