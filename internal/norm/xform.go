package norm

import (
	"math"
	"math/big"

	"gonum.org/v1/gonum/mat"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/subgroup"
)

// Weights returns the diagonal tuning-space weights for the subgroup:
// base^(-amount) per axis, where the base depends on the weighting kind.
func (p Profile) Weights(sg *subgroup.Subgroup) []float64 {
	p, _ = p.Resolve()
	w := make([]float64, sg.Len())
	for i, f := range sg.Floats() {
		var base float64
		switch p.Weighting {
		case Wilson, Benedetti:
			base = f
		case Equilateral:
			base = 1
		default:
			base = math.Log2(f)
		}
		w[i] = math.Pow(base, -p.Amount)
	}
	return w
}

// TuningXRow carries a covector (a tuning map, or one row of a mapping)
// into the weight-skewed space.
func (p Profile) TuningXRow(v []float64, sg *subgroup.Subgroup) []float64 {
	p, _ = p.Resolve()
	w := p.Weights(sg)
	n := len(v)
	kr, r := p.skewCoef(n)
	sum := 0.0
	scaled := make([]float64, n)
	for j := range v {
		scaled[j] = v[j] * w[j]
		sum += scaled[j]
	}
	out := make([]float64, p.Dim(n))
	for j := range scaled {
		out[j] = scaled[j] - kr*sum
	}
	if p.Skew != 0 {
		out[n] = r * sum
	}
	return out
}

// TuningX carries every row of a mapping into the weight-skewed space.
func (p Profile) TuningX(m *mat.Dense, sg *subgroup.Subgroup) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, p.Dim(cols), nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, p.TuningXRow(m.RawRowView(i), sg))
	}
	return out
}

// IntervalX carries an interval vector (a monzo, possibly fractional)
// into the weight-skewed space. The transform is the pseudoinverse of
// the tuning-side one, so weighted mappings and weighted intervals pair
// up consistently.
func (p Profile) IntervalX(v []float64, sg *subgroup.Subgroup) []float64 {
	p, _ = p.Resolve()
	w := p.Weights(sg)
	n := len(v)
	out := make([]float64, p.Dim(n))
	sum := 0.0
	for j := range v {
		out[j] = v[j] / w[j]
		sum += out[j]
	}
	if p.Skew == 0 {
		return out
	}
	if math.IsInf(p.Skew, 0) {
		// limit of [I; k·1ᵀ] as the dual of [I − J/n | 0]
		mean := sum / float64(n)
		for j := 0; j < n; j++ {
			out[j] -= mean
		}
		out[n] = 0
		return out
	}
	out[n] = p.Skew * sum
	return out
}

// skewCoef returns the two coefficients of the tuning-side skew
// transform [I − kr·J | r·1] over n axes.
func (p Profile) skewCoef(n int) (kr, r float64) {
	k := p.Skew
	if k == 0 {
		return 0, 0
	}
	if math.IsInf(k, 0) {
		return 1 / float64(n), 0
	}
	r = k / (float64(n)*k*k + 1)
	return k * r, r
}

// Algebraic reports whether the weights are rational as given, without
// pinning a transcendental base. Exact projections only have readable
// unchanged intervals in that case.
func (p Profile) Algebraic() bool {
	p, _ = p.Resolve()
	switch p.Weighting {
	case Wilson, Benedetti, Equilateral:
		return true
	}
	return false
}

// ExactWeights returns the tuning weights as rationals, with
// transcendental bases pinned at prec bits.
func (p Profile) ExactWeights(sg *subgroup.Subgroup, prec uint) []*big.Rat {
	p, _ = p.Resolve()
	out := make([]*big.Rat, sg.Len())
	for i, q := range sg.Ratios() {
		var base *big.Rat
		switch p.Weighting {
		case Wilson, Benedetti:
			base = q
		case Equilateral:
			base = big.NewRat(1, 1)
		default:
			base = exact.Log2Rat(q, prec)
		}
		out[i] = exact.RatPow(base, -p.Amount, prec)
	}
	return out
}

// ExactWeightSkew returns the combined weight and skew transform W·S as
// an exact n×Dim(n) matrix, the rational mirror of TuningXRow.
func (p Profile) ExactWeightSkew(sg *subgroup.Subgroup, prec uint) *exact.Matrix {
	w := exact.Diag(p.ExactWeights(sg, prec))
	if p.Skew == 0 {
		return w
	}
	n := sg.Len()
	kr := new(big.Rat)
	r := new(big.Rat)
	if math.IsInf(p.Skew, 0) {
		kr.SetFrac64(1, int64(n))
	} else {
		k := new(big.Rat).SetFloat64(p.Skew)
		den := new(big.Rat).Mul(k, k)
		den.Mul(den, new(big.Rat).SetInt64(int64(n)))
		den.Add(den, big.NewRat(1, 1))
		r.Quo(k, den)
		kr.Mul(k, r)
	}
	x := exact.New(n, n+1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := new(big.Rat).Neg(kr)
			if i == j {
				v.Add(v, big.NewRat(1, 1))
			}
			x.Set(i, j, v)
		}
		x.Set(i, n, r)
	}
	return w.Mul(x)
}
