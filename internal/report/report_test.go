package report

import (
	"math"
	"strings"
	"testing"

	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/spectrum"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
	"github.com/tuneforge/regtemp/internal/tuner"
)

func TestValAndMonzo(t *testing.T) {
	if got := Val([]int{12, 19, 28}); got != "⟨12 19 28]" {
		t.Errorf("Val = %q", got)
	}
	if got := Val([]int{1, 0, -4}); got != "⟨1 0 -4]" {
		t.Errorf("Val = %q", got)
	}
	if got := Monzo(interval.Monzo{-4, 4, -1}); got != "[-4 4 -1⟩" {
		t.Errorf("Monzo = %q", got)
	}
}

func TestMapping(t *testing.T) {
	got := Mapping([][]int{{1, 0, -4}, {0, 1, 4}})
	want := "⟨1 0 -4]\n⟨0 1 4]"
	if got != want {
		t.Errorf("Mapping = %q, want %q", got, want)
	}
}

func TestCentsVector(t *testing.T) {
	got := CentsVector([]float64{1201.39690243, 1898.44620972})
	want := "[1201.3969 1898.4462]"
	if got != want {
		t.Errorf("CentsVector = %q, want %q", got, want)
	}
}

func TestNormNames(t *testing.T) {
	tests := []struct {
		p    norm.Profile
		want string
	}{
		{norm.Profile{}, "tenney-euclidean"},
		{norm.Profile{Weighting: norm.Wilson, Order: 2}, "wilson-euclidean"},
		{norm.Profile{Amount: 0.5, Order: 2}, "tenney[0.5]-euclidean"},
		{norm.Profile{Skew: 1, Order: 2}, "tenney-weil-euclidean"},
		{norm.Profile{Skew: 2, Order: 2}, "tenney-weil[2]-euclidean"},
		{norm.Profile{Weighting: norm.Equilateral, Order: math.Inf(1)}, "equilateral-chebyshevian"},
		{norm.Profile{Order: 1}, "tenney-manhattan"},
		{norm.Profile{Order: 4}, "tenney-L4"},
	}
	for _, tt := range tests {
		if got := Norm(tt.p); got != tt.want {
			t.Errorf("Norm(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestEnforce(t *testing.T) {
	sg := subgroup.Default(3)
	tests := []struct {
		spec string
		want string
	}{
		{"", "none"},
		{"xyz", "none"},
		{"c", "2-constrained"},
		{"c1", "2-constrained"},
		{"d", "2-destretched"},
		{"c0", "Xj-constrained"},
		{"c1c3", "2.5-constrained"},
		{"c1d2", "2-constrained 3-destretched"},
		{"c7", "none"},
	}
	for _, tt := range tests {
		if got := Enforce(tt.spec, sg); got != tt.want {
			t.Errorf("Enforce(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tp, err := temperament.New([][]int{{1, 0, -4}, {0, 1, 4}}, nil, temperament.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := Describe(tp)
	want := "Subgroup: 2.3.5\nMapping:\n⟨1 0 -4]\n⟨0 1 4]"
	if got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}

func TestTuning(t *testing.T) {
	sg := subgroup.Default(3)
	res := &tuner.Result{
		Gen:       []float64{1201.3969, 697.0491},
		TuningMap: []float64{1201.3969, 1898.4462, 2788.6248},
		ErrorMap:  []float64{1.3969, -3.5088, 2.3110},
		Error:     1.582160,
		Bias:      0.269715,
	}
	got := Tuning(res, sg)
	for _, want := range []string{
		"Generators: [1201.3969 697.0491] (¢)",
		"Tuning map: [1201.3969 1898.4462 2788.6248] (¢)",
		"Error map: [1.3969 -3.5088 2.3110] (¢)",
		"Tuning error: 1.582160 (¢)",
		"Tuning bias: 0.269715 (¢)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Tuning missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Unchanged") {
		t.Errorf("Tuning shows unchanged intervals without any:\n%s", got)
	}

	res.Unchanged = []interval.Monzo{{1, 0, 0}, {-2, 0, 1}}
	got = Tuning(res, sg)
	if !strings.Contains(got, "Unchanged intervals: 2 5/4") {
		t.Errorf("Tuning missing unchanged intervals in:\n%s", got)
	}
}

func TestMeasuresTable(t *testing.T) {
	m := &temperament.Measures{
		Complexity:     2,
		Error:          1.5,
		Badness:        0.001,
		BadnessLogflat: 0.0005,
	}
	got := Measures(m, 1000)
	want := "Complexity: 2.000000\n" +
		"Error: 1.500000 (¢)\n" +
		"Badness (simple): 1.000000 (oct/1000)\n" +
		"Badness (logflat): 0.500000 (oct/1000)"
	if got != want {
		t.Errorf("Measures = %q, want %q", got, want)
	}
}

func TestWedgie(t *testing.T) {
	if got := Wedgie([]float64{1, 4, 4}); got != "[1 4 4]" {
		t.Errorf("Wedgie = %q", got)
	}
	if got := Wedgie([]float64{0.6309, 2.5237, 2.5237}); got != "[0.6309 2.5237 2.5237]" {
		t.Errorf("Wedgie = %q", got)
	}
}

func TestCommas(t *testing.T) {
	sg := subgroup.Default(3)
	got := Commas([]interval.Monzo{{-4, 4, -1}}, sg)
	want := "[-4 4 -1⟩\t81/80"
	if got != want {
		t.Errorf("Commas = %q, want %q", got, want)
	}
}

func TestSpectrumLines(t *testing.T) {
	sg := subgroup.Default(3)
	entries := []spectrum.Entry{
		{Monzo: interval.Monzo{-1, 1, 0}, Norm: 0.5451},
		{Monzo: interval.Monzo{-2, 0, 1}, Norm: 1.0902},
	}
	got := Spectrum(entries, sg)
	want := "3/2\t0.5451\n5/4\t1.0902"
	if got != want {
		t.Errorf("Spectrum = %q, want %q", got, want)
	}
}
