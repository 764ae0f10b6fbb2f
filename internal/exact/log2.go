package exact

import (
	"math"
	"math/big"
)

// Log2Prec is the precision, in bits, at which transcendental values
// are pinned down before entering rational algebra. Everything after
// the pinning is exact, so the choice only bounds how far the closed
// forms can drift from their real-valued ideals.
const Log2Prec = 192

// Log2Rat returns log2(q) as a rational carrying roughly prec bits of
// precision. q must be positive.
func Log2Rat(q *big.Rat, prec uint) *big.Rat {
	if q.Sign() <= 0 {
		panic("exact: log2 of a nonpositive value")
	}
	work := prec + 32
	x := new(big.Float).SetPrec(work).SetRat(q)

	// x = mant · 2^exp with mant in [1/2, 1), so
	// log2 x = exp − 1 + log2(2·mant) with 2·mant in [1, 2).
	mant := new(big.Float).SetPrec(work)
	exp := x.MantExp(mant)
	y := mant.SetMantExp(mant, 1)
	ipart := int64(exp - 1)

	// Shift-and-square digit extraction of log2 y.
	frac := new(big.Rat)
	two := new(big.Float).SetPrec(work).SetInt64(2)
	for i := uint(1); i <= prec; i++ {
		y.Mul(y, y)
		if y.Cmp(two) >= 0 {
			y.Quo(y, two)
			frac.Add(frac, pow2Exp(-int(i)))
		}
	}
	return frac.Add(frac, new(big.Rat).SetInt64(ipart))
}

// Pow2Rat returns 2**x as a rational carrying roughly prec bits of
// precision.
func Pow2Rat(x *big.Rat, prec uint) *big.Rat {
	work := prec + 32

	// Split off the integer part so the fractional exponent lies in [0, 1).
	num := new(big.Int).Set(x.Num())
	den := x.Denom()
	ip := new(big.Int)
	rem := new(big.Int)
	ip.DivMod(num, den, rem) // floor division, rem >= 0
	frac := new(big.Rat).SetFrac(rem, den)

	// 2^frac as a product of repeated square roots of two, one per
	// binary digit of frac.
	res := new(big.Float).SetPrec(work).SetInt64(1)
	root := new(big.Float).SetPrec(work).SetInt64(2)
	one := new(big.Rat).SetInt64(1)
	two := new(big.Rat).SetInt64(2)
	for i := uint(0); i < prec && frac.Sign() != 0; i++ {
		root.Sqrt(root)
		frac.Mul(frac, two)
		if frac.Cmp(one) >= 0 {
			frac.Sub(frac, one)
			res.Mul(res, root)
		}
	}
	out, _ := res.Rat(nil)
	if !ip.IsInt64() {
		panic("exact: pow2 exponent out of range")
	}
	return out.Mul(out, pow2Exp(int(ip.Int64())))
}

// RatPow returns base**amount. Integral amounts are computed exactly;
// fractional ones go through a high-precision 2^(amount·log2 base).
func RatPow(base *big.Rat, amount float64, prec uint) *big.Rat {
	if base.Sign() <= 0 {
		panic("exact: power of a nonpositive base")
	}
	if amount == math.Trunc(amount) && math.Abs(amount) <= 1<<20 {
		return ratPowInt(base, int64(amount))
	}
	amt := new(big.Rat).SetFloat64(amount)
	if amt == nil {
		panic("exact: non-finite exponent")
	}
	e := Log2Rat(base, prec)
	return Pow2Rat(e.Mul(e, amt), prec)
}

func ratPowInt(base *big.Rat, n int64) *big.Rat {
	out := new(big.Rat).SetInt64(1)
	b := new(big.Rat).Set(base)
	if n < 0 {
		b.Inv(b)
		n = -n
	}
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			out.Mul(out, b)
		}
		b.Mul(b, b)
	}
	return out
}

// pow2Exp returns 2^e as a rational for any integer e.
func pow2Exp(e int) *big.Rat {
	one := big.NewInt(1)
	if e >= 0 {
		return new(big.Rat).SetInt(new(big.Int).Lsh(one, uint(e)))
	}
	return new(big.Rat).SetFrac(one, new(big.Int).Lsh(one, uint(-e)))
}
