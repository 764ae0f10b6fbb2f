package interval

import (
	"math"
	"math/big"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3/2", "3/2", false},
		{"2", "2", false},
		{" 81/80 ", "81/80", false},
		{"0", "", true},
		{"-3/2", "", true},
		{"banana", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if Format(got) != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, Format(got), tt.want)
		}
	}
}

func TestCents(t *testing.T) {
	fifth, _ := Parse("3/2")
	if got := Cents(fifth); math.Abs(got-701.9550008653874) > 1e-9 {
		t.Errorf("Cents(3/2) = %v, want about 701.955", got)
	}
	octave, _ := Parse("2")
	if got := Cents(octave); math.Abs(got-1200) > 1e-12 {
		t.Errorf("Cents(2) = %v, want 1200", got)
	}
}

func TestOctaveReduce(t *testing.T) {
	tests := []struct{ in, want string }{
		{"3", "3/2"},
		{"1/3", "4/3"},
		{"5", "5/4"},
		{"1", "1"},
		{"7/5", "7/5"},
	}
	for _, tt := range tests {
		q, _ := Parse(tt.in)
		if got := Format(OctaveReduce(q)); got != tt.want {
			t.Errorf("OctaveReduce(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFactor(t *testing.T) {
	primes := []int64{2, 3, 5}
	q, _ := Parse("81/80")
	m, err := Factor(q, primes)
	if err != nil {
		t.Fatalf("Factor(81/80): %v", err)
	}
	want := Monzo{-4, 4, -1}
	for i := range want {
		if m[i] != want[i] {
			t.Fatalf("Factor(81/80) = %v, want %v", m, want)
		}
	}

	seven, _ := Parse("7/4")
	if _, err := Factor(seven, primes); err == nil {
		t.Error("Factor(7/4) over 5-limit primes: expected error")
	}
}

func TestValueRoundTrip(t *testing.T) {
	basis := []*big.Rat{big.NewRat(2, 1), big.NewRat(3, 1), big.NewRat(5, 1)}
	q, _ := Parse("45/32")
	m, err := Factor(q, []int64{2, 3, 5})
	if err != nil {
		t.Fatalf("Factor(45/32): %v", err)
	}
	if back := Value(m, basis); back.Cmp(q) != 0 {
		t.Errorf("Value(Factor(45/32)) = %s, want 45/32", Format(back))
	}
}

func TestPrimes(t *testing.T) {
	got := Primes(7)
	want := []int64{2, 3, 5, 7, 11, 13, 17}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Primes(7) = %v, want %v", got, want)
		}
	}
	through := PrimesThrough(13)
	if len(through) != 6 || through[5] != 13 {
		t.Errorf("PrimesThrough(13) = %v", through)
	}
}

func TestMaxPrimeFactor(t *testing.T) {
	q, _ := Parse("81/80")
	p, err := MaxPrimeFactor(q)
	if err != nil {
		t.Fatalf("MaxPrimeFactor: %v", err)
	}
	if p != 5 {
		t.Errorf("MaxPrimeFactor(81/80) = %d, want 5", p)
	}
	one := big.NewRat(1, 1)
	if p, _ := MaxPrimeFactor(one); p != 1 {
		t.Errorf("MaxPrimeFactor(1) = %d, want 1", p)
	}
}
