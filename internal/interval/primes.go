package interval

import (
	"fmt"
	"math/big"
)

// Primes returns the first n primes.
func Primes(n int) []int64 {
	if n <= 0 {
		return nil
	}
	out := make([]int64, 0, n)
	for c := int64(2); len(out) < n; c++ {
		if isPrime(c) {
			out = append(out, c)
		}
	}
	return out
}

// PrimesThrough returns all primes up to and including p.
func PrimesThrough(p int64) []int64 {
	var out []int64
	for c := int64(2); c <= p; c++ {
		if isPrime(c) {
			out = append(out, c)
		}
	}
	return out
}

func isPrime(n int64) bool {
	if n < 2 {
		return false
	}
	for d := int64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// MaxPrimeFactor returns the largest prime factor across the numerator
// and denominator of q. The factor of 1 is 1.
func MaxPrimeFactor(q *big.Rat) (int64, error) {
	n := new(big.Int).Mul(q.Num(), q.Denom())
	if !n.IsInt64() {
		return 0, fmt.Errorf("interval: ratio %s is too large to factor", Format(q))
	}
	v := n.Int64()
	if v < 0 {
		v = -v
	}
	max := int64(1)
	for d := int64(2); d*d <= v; d++ {
		for v%d == 0 {
			v /= d
			max = d
		}
	}
	if v > 1 {
		max = v
	}
	return max, nil
}
