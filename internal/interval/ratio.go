// Package interval provides exact ratio and monzo arithmetic for just
// intonation intervals.
package interval

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// CentsPerOctave is the size of the octave in cents.
const CentsPerOctave = 1200

// Parse reads a positive rational like "2", "3/2" or "81/80".
func Parse(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("interval: cannot parse ratio %q", s)
	}
	if r.Sign() <= 0 {
		return nil, fmt.Errorf("interval: ratio %q is not positive", s)
	}
	return r, nil
}

// Cents returns the logarithmic size of q in cents.
func Cents(q *big.Rat) float64 {
	f, _ := q.Float64()
	return CentsPerOctave * math.Log2(f)
}

// Format renders q as "n" for integers and "n/d" otherwise.
func Format(q *big.Rat) string {
	if q.IsInt() {
		return q.Num().String()
	}
	return q.RatString()
}

// OctaveReduce scales q by powers of two into [1, 2).
func OctaveReduce(q *big.Rat) *big.Rat {
	one := big.NewRat(1, 1)
	two := big.NewRat(2, 1)
	r := new(big.Rat).Set(q)
	for r.Cmp(two) >= 0 {
		r.Quo(r, two)
	}
	for r.Cmp(one) < 0 {
		r.Mul(r, two)
	}
	return r
}
