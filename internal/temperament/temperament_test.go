package temperament

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/tuner"
)

func meantoneMap() [][]int {
	return [][]int{{1, 0, -4}, {0, 1, 4}}
}

func eqRows(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func TestNewCanonicalizes(t *testing.T) {
	want := meantoneMap()
	cases := []struct {
		name string
		in   [][]int
	}{
		{"already canonical", [][]int{{1, 0, -4}, {0, 1, 4}}},
		{"12&19 vals", [][]int{{12, 19, 28}, {19, 30, 44}}},
		{"doubled rows", [][]int{{2, 0, -8}, {0, 2, 8}}},
		{"contorted row", [][]int{{1, 0, -4}, {0, 2, 8}}},
	}
	for _, tt := range cases {
		tp, err := New(tt.in, nil, Options{})
		if err != nil {
			t.Fatalf("%s: New: %v", tt.name, err)
		}
		if got := tp.Mapping(); !eqRows(got, want) {
			t.Errorf("%s: canonical mapping = %v, want %v", tt.name, got, want)
		}
	}
}

func TestNewRejectsBadMappings(t *testing.T) {
	if _, err := New([][]int{{1, 0, -4}, {2, 0, -8}}, nil, Options{}); !errors.Is(err, ErrRankDeficient) {
		t.Errorf("dependent rows: err = %v, want ErrRankDeficient", err)
	}
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Error("nil mapping: want error")
	}
	if _, err := New([][]int{{1, 0, -4}, {0, 1}}, nil, Options{}); err == nil {
		t.Error("ragged rows: want error")
	}
}

func TestNewSkipFlags(t *testing.T) {
	in := [][]int{{2, 0, -8}, {0, 2, 8}}

	tp, err := New(in, nil, Options{SkipSaturation: true, SkipNormalization: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tp.Mapping(); !eqRows(got, in) {
		t.Errorf("both skips: mapping = %v, want input %v", got, in)
	}

	// normalization alone keeps the common factor; saturation removes it
	tp, err = New(in, nil, Options{SkipSaturation: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tp.Mapping(); got[0][0] != 2 {
		t.Errorf("skip saturation: mapping = %v, want common factor kept", got)
	}
	tp, err = New(in, nil, Options{SkipNormalization: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := exact.HermiteRow(tp.Mapping()); !eqRows(got, meantoneMap()) {
		t.Errorf("skip normalization: rows %v do not span saturated meantone", tp.Mapping())
	}
}

func TestAccessors(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tp.Rank() != 2 || tp.Dim() != 3 {
		t.Fatalf("rank/dim = %d/%d, want 2/3", tp.Rank(), tp.Dim())
	}
	if got := tp.Subgroup().String(); got != "2.3.5" {
		t.Errorf("subgroup = %q, want 2.3.5", got)
	}
	m := tp.Mapping()
	m[0][0] = 99
	if tp.Mapping()[0][0] != 1 {
		t.Error("Mapping must return a copy")
	}
}

func TestDimensionFit(t *testing.T) {
	sg, err := subgroup.Parse("2.3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tp, err := New(meantoneMap(), sg, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tp.Dim() != 2 {
		t.Fatalf("dim = %d, want 2 after cast", tp.Dim())
	}
	if len(tp.Warnings()) == 0 {
		t.Error("want a dimension mismatch warning")
	}
	res, err := tp.Tune(TuneOptions{})
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if math.Abs(res.Gen[0]-1200) > 1e-9 {
		t.Errorf("gen[0] = %.6f, want 1200 for the identity mapping", res.Gen[0])
	}
}

func TestWedgieMeantone(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, err := tp.Wedgie(norm.Profile{Weighting: norm.Equilateral})
	if err != nil {
		t.Fatalf("Wedgie: %v", err)
	}
	want := []float64{1, 4, 4}
	if len(w) != len(want) {
		t.Fatalf("wedgie length = %d, want %d", len(w), len(want))
	}
	for i, x := range want {
		if math.Abs(w[i]-x) > 1e-9 {
			t.Errorf("wedgie[%d] = %.12f, want %g", i, w[i], x)
		}
	}
}

func TestWedgieSign(t *testing.T) {
	// negated first row, kept as given so the raw minors come out negative
	tp, err := New([][]int{{-1, 0, 4}, {0, 1, 4}}, nil, Options{SkipSaturation: true, SkipNormalization: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, err := tp.Wedgie(norm.Profile{Weighting: norm.Equilateral})
	if err != nil {
		t.Fatalf("Wedgie: %v", err)
	}
	want := []float64{1, 4, 4}
	for i, x := range want {
		if math.Abs(w[i]-x) > 1e-9 {
			t.Errorf("wedgie[%d] = %.12f, want %g", i, w[i], x)
		}
	}
}

func TestWedgieNormMatchesComplexity(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, err := tp.Wedgie(norm.Profile{})
	if err != nil {
		t.Fatalf("Wedgie: %v", err)
	}
	sumsq := 0.0
	for _, x := range w {
		sumsq += x * x
	}
	c, err := tp.Complexity(NTypeNone, norm.Profile{})
	if err != nil {
		t.Fatalf("Complexity: %v", err)
	}
	if math.Abs(math.Sqrt(sumsq)-c) > 1e-9 {
		t.Errorf("|wedgie| = %.12f, complexity = %.12f", math.Sqrt(sumsq), c)
	}
}

func TestComplexityMeantone(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		ntype NType
		want  float64
		tol   float64
	}{
		{NTypeBreed, 0.710801, 1e-3},
		{NTypeNone, 2.132402, 1e-3},
		{NTypeSmith, 1.231143, 1e-3},
	}
	for _, tt := range cases {
		c, err := tp.Complexity(tt.ntype, norm.Profile{})
		if err != nil {
			t.Fatalf("Complexity(%s): %v", tt.ntype, err)
		}
		if math.Abs(c-tt.want) > tt.tol {
			t.Errorf("complexity(%s) = %.6f, want %.6f", tt.ntype, c, tt.want)
		}
	}

	// the normalizers only rescale the same volume
	none, _ := tp.Complexity(NTypeNone, norm.Profile{})
	breed, _ := tp.Complexity(NTypeBreed, norm.Profile{})
	smith, _ := tp.Complexity(NTypeSmith, norm.Profile{})
	if math.Abs(breed-none/3) > 1e-12 {
		t.Errorf("breed = %.12f, want none/3 = %.12f", breed, none/3)
	}
	if math.Abs(smith-none/math.Sqrt(3)) > 1e-12 {
		t.Errorf("smith = %.12f, want none/sqrt3 = %.12f", smith, none/math.Sqrt(3))
	}
}

func TestErrorMeantone(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	breed, err := tp.Error(NTypeBreed, norm.Profile{})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if math.Abs(breed-1.58216) > 5e-3 {
		t.Errorf("error(breed) = %.5f, want about 1.58216", breed)
	}

	// the breed error is exactly the tuning optimizer's optimum
	res, err := tp.Tune(TuneOptions{})
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if math.Abs(breed-res.Error) > 1e-6 {
		t.Errorf("error(breed) = %.9f, tuned optimum = %.9f", breed, res.Error)
	}

	none, _ := tp.Error(NTypeNone, norm.Profile{})
	smith, _ := tp.Error(NTypeSmith, norm.Profile{})
	if math.Abs(breed-none/math.Sqrt(3)) > 1e-12 {
		t.Errorf("breed = %.12f, want none/sqrt3 = %.12f", breed, none/math.Sqrt(3))
	}
	if math.Abs(smith-none*math.Sqrt(3)) > 1e-12 {
		t.Errorf("smith = %.12f, want none*sqrt3 = %.12f", smith, none*math.Sqrt(3))
	}
}

func TestFullRankMeasures(t *testing.T) {
	tp, err := New([][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e, err := tp.Error(NTypeBreed, norm.Profile{})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if math.Abs(e) > 1e-9 {
		t.Errorf("just intonation error = %g, want 0", e)
	}
	smith, err := tp.Error(NTypeSmith, norm.Profile{})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if !math.IsNaN(smith) {
		t.Errorf("smith error at full rank = %g, want NaN", smith)
	}
	m, err := tp.Measures(NTypeBreed, norm.Profile{})
	if err != nil {
		t.Fatalf("Measures: %v", err)
	}
	if !math.IsNaN(m.BadnessLogflat) {
		t.Errorf("logflat badness at full rank = %g, want NaN", m.BadnessLogflat)
	}
}

func TestMeasuresMeantone(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := tp.Measures(NTypeBreed, norm.Profile{})
	if err != nil {
		t.Fatalf("Measures: %v", err)
	}
	if math.Abs(m.Badness-0.000937) > 1e-5 {
		t.Errorf("badness = %.6f, want about 0.000937", m.Badness)
	}
	if math.Abs(m.BadnessLogflat-0.000473) > 1e-5 {
		t.Errorf("logflat badness = %.6f, want about 0.000473", m.BadnessLogflat)
	}
	if len(m.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", m.Warnings)
	}
}

func TestMeasuresUnknownNType(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := tp.Measures(NType("boo"), norm.Profile{})
	if err != nil {
		t.Fatalf("Measures: %v", err)
	}
	if len(m.Warnings) == 0 {
		t.Fatal("want an unknown normalizer warning")
	}
	breed, err := tp.Measures(NTypeBreed, norm.Profile{})
	if err != nil {
		t.Fatalf("Measures: %v", err)
	}
	if math.Abs(m.Badness-breed.Badness) > 1e-12 {
		t.Errorf("unknown ntype badness = %g, want breed fallback %g", m.Badness, breed.Badness)
	}
}

func TestMeasuresOrderGate(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tp.Measures(NTypeBreed, norm.Profile{Order: math.Inf(1)}); !errors.Is(err, ErrNonEuclidean) {
		t.Errorf("order inf: err = %v, want ErrNonEuclidean", err)
	}
	if _, err := tp.Complexity(NTypeBreed, norm.Profile{Order: 1}); !errors.Is(err, ErrNonEuclidean) {
		t.Errorf("order 1: err = %v, want ErrNonEuclidean", err)
	}
	if _, err := tp.Wedgie(norm.Profile{Skew: 1, Order: math.Inf(1)}); !errors.Is(err, norm.ErrSkewOrder) {
		t.Errorf("skewed chebyshev wedgie: err = %v, want ErrSkewOrder", err)
	}
}

func TestCommaBasisMeantone(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	commas := tp.CommaBasis()
	if len(commas) != 1 {
		t.Fatalf("comma count = %d, want 1", len(commas))
	}
	if want := (interval.Monzo{-4, 4, -1}); !commas[0].Equal(want) {
		t.Errorf("comma = %v, want %v", commas[0], want)
	}
	ratios := tp.Commas()
	if ratios[0].Cmp(big.NewRat(81, 80)) != 0 {
		t.Errorf("comma ratio = %s, want 81/80", ratios[0].RatString())
	}
}

func TestCommaBasisTwelve(t *testing.T) {
	tp, err := New([][]int{{12, 19, 28}}, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	commas := tp.CommaBasis()
	if len(commas) != 2 {
		t.Fatalf("comma count = %d, want 2", len(commas))
	}
	one := big.NewRat(1, 1)
	val := tp.Mapping()[0]
	basis := tp.Subgroup().Ratios()
	for _, m := range commas {
		sum := 0
		for j, e := range m {
			sum += val[j] * e
		}
		if sum != 0 {
			t.Errorf("comma %v is not tempered out", m)
		}
		if interval.Value(m, basis).Cmp(one) <= 0 {
			t.Errorf("comma %v names a ratio at or below unity", m)
		}
	}
}

func TestTuneSymbolicMatchesNumeric(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	num, err := tp.Tune(TuneOptions{})
	if err != nil {
		t.Fatalf("numeric: %v", err)
	}
	sym, err := tp.Tune(TuneOptions{Optimizer: OptimizerSymbolic})
	if err != nil {
		t.Fatalf("symbolic: %v", err)
	}
	for i := range num.Gen {
		if math.Abs(num.Gen[i]-sym.Gen[i]) > 1e-6 {
			t.Errorf("gen[%d]: numeric %.9f vs symbolic %.9f", i, num.Gen[i], sym.Gen[i])
		}
	}
	if sym.TuningProjection == nil {
		t.Error("symbolic result lacks a tuning projection")
	}
}

func TestTuneFallbackWhenUnavailable(t *testing.T) {
	tuner.SetExactAvailable(false)
	defer tuner.SetExactAvailable(true)

	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := tp.Tune(TuneOptions{Optimizer: OptimizerSymbolic})
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("want a fallback warning")
	}
	if res.TuningProjection != nil {
		t.Error("fallback result should come from the numeric engine")
	}
	if math.Abs(res.TuningMap[0]-1201.3969) > 1e-2 {
		t.Errorf("tuning map[0] = %.4f, want about 1201.3969", res.TuningMap[0])
	}
}

func TestTuneFallbackOnOrder(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := tp.Tune(TuneOptions{
		Optimizer: OptimizerSymbolic,
		Profile:   norm.Profile{Order: math.Inf(1)},
	})
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("want a fallback warning")
	}
	if math.Abs(res.TuningMap[0]-1201.6985) > 2e-2 {
		t.Errorf("tuning map[0] = %.4f, want about 1201.6985", res.TuningMap[0])
	}
}

func TestTuneUnknownOptimizer(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tp.Tune(TuneOptions{Optimizer: "slsqp"}); err == nil {
		t.Error("want an error for an unknown optimizer")
	}
}

func TestTuneEnforce(t *testing.T) {
	tp, err := New(meantoneMap(), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := tp.Tune(TuneOptions{Enforce: "c1"})
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if math.Abs(res.Gen[0]-1200) > 1e-9 {
		t.Errorf("gen[0] = %.9f, want a pure octave", res.Gen[0])
	}
	if _, err := tp.Tune(TuneOptions{Enforce: "c7"}); err == nil {
		t.Error("want an error for an out-of-range enforcement index")
	}
}
