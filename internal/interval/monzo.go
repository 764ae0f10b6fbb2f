package interval

import (
	"fmt"
	"math/big"
)

var bigOne = big.NewInt(1)

// Monzo is a vector of exponents over a subgroup basis, so that the
// interval it names is the product of the basis elements raised to the
// entries.
type Monzo []int

// Copy returns an independent copy of m.
func (m Monzo) Copy() Monzo {
	out := make(Monzo, len(m))
	copy(out, m)
	return out
}

// Equal reports whether two monzos have the same entries.
func (m Monzo) Equal(o Monzo) bool {
	if len(m) != len(o) {
		return false
	}
	for i, e := range m {
		if e != o[i] {
			return false
		}
	}
	return true
}

// Unit returns the monzo of length n selecting basis element i.
func Unit(n, i int) Monzo {
	m := make(Monzo, n)
	m[i] = 1
	return m
}

// Factor expresses q as exponents over the given primes. It fails if q
// has a prime factor outside the list.
func Factor(q *big.Rat, primes []int64) (Monzo, error) {
	m := make(Monzo, len(primes))
	num := new(big.Int).Set(q.Num())
	den := new(big.Int).Set(q.Denom())
	rem := new(big.Int)
	for i, p := range primes {
		bp := big.NewInt(p)
		for rem.Mod(num, bp).Sign() == 0 {
			num.Quo(num, bp)
			m[i]++
		}
		for rem.Mod(den, bp).Sign() == 0 {
			den.Quo(den, bp)
			m[i]--
		}
	}
	if num.Cmp(bigOne) != 0 || den.Cmp(bigOne) != 0 {
		return nil, fmt.Errorf("interval: %s has a prime factor outside the basis", Format(q))
	}
	return m, nil
}

// Value multiplies out the exponents of m over the basis ratios.
// The basis must be at least as long as m.
func Value(m Monzo, basis []*big.Rat) *big.Rat {
	v := big.NewRat(1, 1)
	for i, e := range m {
		if e == 0 {
			continue
		}
		v.Mul(v, ratPow(basis[i], e))
	}
	return v
}

func ratPow(q *big.Rat, e int) *big.Rat {
	base := new(big.Rat).Set(q)
	if e < 0 {
		base.Inv(base)
		e = -e
	}
	out := big.NewRat(1, 1)
	for i := 0; i < e; i++ {
		out.Mul(out, base)
	}
	return out
}
