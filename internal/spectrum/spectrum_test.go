package spectrum

import (
	"math"
	"math/big"
	"testing"

	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
)

func meantone(t *testing.T) *temperament.Temperament {
	t.Helper()
	tp, err := temperament.New([][]int{{1, 0, -4}, {0, 1, 4}}, nil, temperament.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tp
}

func TestTemperamentalNormComma(t *testing.T) {
	tp := meantone(t)
	cases := []struct {
		name  string
		monzo interval.Monzo
	}{
		{"comma", interval.Monzo{-4, 4, -1}},
		{"comma squared", interval.Monzo{-8, 8, -2}},
	}
	for _, tt := range cases {
		n, err := TemperamentalNorm(tp, tt.monzo, norm.Profile{}, false)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if n > 1e-9 {
			t.Errorf("%s: norm = %g, want 0 for a tempered-out interval", tt.name, n)
		}
	}
}

func TestTemperamentalNormOctaveEquivalence(t *testing.T) {
	tp := meantone(t)
	octave := interval.Monzo{1, 0, 0}

	with, err := TemperamentalNorm(tp, octave, norm.Profile{}, true)
	if err != nil {
		t.Fatalf("oe: %v", err)
	}
	if with > 1e-9 {
		t.Errorf("octave norm under octave equivalence = %g, want 0", with)
	}
	without, err := TemperamentalNorm(tp, octave, norm.Profile{}, false)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if without < 0.1 {
		t.Errorf("octave norm without octave equivalence = %g, want it to count", without)
	}
}

func TestTemperamentalNormScalesWithGenerators(t *testing.T) {
	tp := meantone(t)
	fifth, err := TemperamentalNorm(tp, interval.Monzo{-1, 1, 0}, norm.Profile{}, true)
	if err != nil {
		t.Fatalf("3/2: %v", err)
	}
	if math.Abs(fifth-0.5451) > 1e-3 {
		t.Errorf("norm(3/2) = %.4f, want about 0.5451", fifth)
	}

	// octave-equivalent meantone is rank one, so the norm counts
	// generator steps: 9/8 takes two fifths, 5/4 takes four
	tone, err := TemperamentalNorm(tp, interval.Monzo{-3, 2, 0}, norm.Profile{}, true)
	if err != nil {
		t.Fatalf("9/8: %v", err)
	}
	third, err := TemperamentalNorm(tp, interval.Monzo{-2, 0, 1}, norm.Profile{}, true)
	if err != nil {
		t.Fatalf("5/4: %v", err)
	}
	if math.Abs(tone/fifth-2) > 1e-6 {
		t.Errorf("norm(9/8)/norm(3/2) = %.9f, want 2", tone/fifth)
	}
	if math.Abs(third/fifth-4) > 1e-6 {
		t.Errorf("norm(5/4)/norm(3/2) = %.9f, want 4", third/fifth)
	}
}

func TestComplexitySorts(t *testing.T) {
	tp := meantone(t)
	in := []interval.Monzo{
		{-2, 0, 1},  // 5/4, four generators
		{-1, 1, 0},  // 3/2, one generator
		{-4, 4, -1}, // 81/80, tempered out
		{-3, 2, 0},  // 9/8, two generators
	}
	entries, err := Complexity(tp, in, norm.Profile{}, true)
	if err != nil {
		t.Fatalf("Complexity: %v", err)
	}
	want := []interval.Monzo{
		{-4, 4, -1},
		{-1, 1, 0},
		{-3, 2, 0},
		{-2, 0, 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if !e.Monzo.Equal(want[i]) {
			t.Errorf("position %d: monzo = %v, want %v", i, e.Monzo, want[i])
		}
		if i > 0 && entries[i-1].Norm > e.Norm {
			t.Errorf("spectrum not ascending at %d: %g > %g", i, entries[i-1].Norm, e.Norm)
		}
	}
}

func TestOddLimit(t *testing.T) {
	cases := []struct {
		limit   int
		exclude []int
		want    int
	}{
		{9, nil, 19},
		{9, []int{9}, 13},
		{1, nil, 1},
	}
	one := big.NewRat(1, 1)
	two := big.NewRat(2, 1)
	for _, tt := range cases {
		got := OddLimit(tt.limit, tt.exclude)
		if len(got) != tt.want {
			t.Errorf("OddLimit(%d, %v): %d ratios, want %d", tt.limit, tt.exclude, len(got), tt.want)
		}
		for _, q := range got {
			if q.Cmp(one) < 0 || q.Cmp(two) >= 0 {
				t.Errorf("OddLimit(%d, %v): %s not octave reduced", tt.limit, tt.exclude, q.RatString())
			}
		}
	}
}

func TestMonzosFactorsAndSkips(t *testing.T) {
	sg := subgroup.Default(3)
	ratios := []*big.Rat{
		big.NewRat(3, 2),
		big.NewRat(81, 80),
		big.NewRat(7, 4),
	}
	monzos, skipped, err := Monzos(ratios, sg)
	if err != nil {
		t.Fatalf("Monzos: %v", err)
	}
	if len(monzos) != 2 || len(skipped) != 1 {
		t.Fatalf("monzos/skipped = %d/%d, want 2/1", len(monzos), len(skipped))
	}
	if !monzos[0].Equal(interval.Monzo{-1, 1, 0}) {
		t.Errorf("3/2 monzo = %v", monzos[0])
	}
	if !monzos[1].Equal(interval.Monzo{-4, 4, -1}) {
		t.Errorf("81/80 monzo = %v", monzos[1])
	}
	if skipped[0].Cmp(big.NewRat(7, 4)) != 0 {
		t.Errorf("skipped = %s, want 7/4", skipped[0].RatString())
	}
}

func TestMonzosOutsideLattice(t *testing.T) {
	sg, err := subgroup.Parse("4.3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	monzos, skipped, err := Monzos([]*big.Rat{big.NewRat(2, 1), big.NewRat(16, 9)}, sg)
	if err != nil {
		t.Fatalf("Monzos: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Cmp(big.NewRat(2, 1)) != 0 {
		t.Fatalf("skipped = %v, want just 2/1", skipped)
	}
	if len(monzos) != 1 || !monzos[0].Equal(interval.Monzo{2, -2}) {
		t.Fatalf("16/9 over 4.3 = %v, want [2 -2]", monzos)
	}
}

func TestMonzosAmbiguousBasis(t *testing.T) {
	sg, err := subgroup.Parse("2.3.9")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := Monzos([]*big.Rat{big.NewRat(3, 2)}, sg); err == nil {
		t.Error("want an error for a dependent basis")
	}
}
