// Package spectrum ranks intervals by their size under a temperament's
// induced projection. Simple intervals of the temperament come out
// small, tempered-out commas come out at zero, and the sorted list
// orders an interval set from most to least native.
package spectrum

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
	"github.com/tuneforge/regtemp/internal/temperament"
)

// Entry pairs an interval with its temperamental complexity.
type Entry struct {
	Monzo interval.Monzo
	Norm  float64
}

// TemperamentalNorm returns the Euclidean length of the weighted
// interval's component inside the temperament's weighted row space.
// With oe set, the first mapping row is dropped first, so anything an
// octave shift can absorb counts for nothing.
func TemperamentalNorm(t *temperament.Temperament, m interval.Monzo, p norm.Profile, oe bool) (float64, error) {
	p, _ = p.Resolve()
	if err := p.Validate(); err != nil {
		return 0, err
	}
	rows := t.Mapping()
	if oe {
		rows = rows[1:]
	}
	sg := t.Subgroup()
	fit, err := fitMonzo(m, sg.Len())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	mx := p.TuningX(denseRows(rows), sg)
	v := p.IntervalX(fit, sg)
	_, dim := mx.Dims()

	var sol mat.Dense
	if err := sol.Solve(mx.T(), mat.NewDense(dim, 1, v)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return 0, fmt.Errorf("spectrum: %w", err)
		}
	}
	var proj mat.Dense
	proj.Mul(mx.T(), &sol)
	col := make([]float64, dim)
	mat.Col(col, 0, &proj)
	return floats.Norm(col, 2), nil
}

// Complexity computes the temperamental norm of every monzo and sorts
// ascending. The sort is stable, so equally complex intervals keep
// their input order.
func Complexity(t *temperament.Temperament, monzos []interval.Monzo, p norm.Profile, oe bool) ([]Entry, error) {
	out := make([]Entry, 0, len(monzos))
	for _, m := range monzos {
		tn, err := TemperamentalNorm(t, m, p, oe)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Monzo: m.Copy(), Norm: tn})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Norm < out[j].Norm })
	return out, nil
}

// OddLimit lists the octave-reduced ratios of the odd limit: every
// pair of coprime odd numbers through limit, with excluded numbers
// struck from both sides of the fraction.
func OddLimit(limit int, exclude []int) []*big.Rat {
	excl := make(map[int]bool, len(exclude))
	for _, e := range exclude {
		excl[e] = true
	}
	var out []*big.Rat
	for num := 1; num <= limit; num += 2 {
		if excl[num] {
			continue
		}
		for den := 1; den <= limit; den += 2 {
			if excl[den] || gcd(num, den) != 1 {
				continue
			}
			out = append(out, interval.OctaveReduce(big.NewRat(int64(num), int64(den))))
		}
	}
	return out
}

// Monzos factors ratios onto the subgroup basis. Ratios the basis
// cannot reach with integer exponents are returned in the second list
// instead of corrupting the spectrum. The basis must be simple, since
// a dependent one factors nothing uniquely; pass monzos directly in
// that case.
func Monzos(ratios []*big.Rat, sg *subgroup.Subgroup) ([]interval.Monzo, []*big.Rat, error) {
	simple, err := sg.IsSimple()
	if err != nil {
		return nil, nil, err
	}
	if !simple {
		return nil, nil, fmt.Errorf("spectrum: basis %s is ambiguous, factor intervals yourself", sg)
	}
	basis, primes, err := sg.BasisMatrix()
	if err != nil {
		return nil, nil, err
	}
	b := exact.FromInt(basis)
	pinv := b.Pinv()

	var monzos []interval.Monzo
	var skipped []*big.Rat
	for _, q := range ratios {
		pm, err := interval.Factor(q, primes)
		if err != nil {
			skipped = append(skipped, q)
			continue
		}
		col := exact.New(len(pm), 1)
		for i, e := range pm {
			col.SetInt(i, 0, int64(e))
		}
		x := pinv.Mul(col)
		if !b.Mul(x).Equal(col) {
			skipped = append(skipped, q)
			continue
		}
		m := make(interval.Monzo, sg.Len())
		ok := true
		for i := range m {
			e := x.At(i, 0)
			if !e.IsInt() {
				ok = false
				break
			}
			m[i] = int(e.Num().Int64())
		}
		if !ok {
			skipped = append(skipped, q)
			continue
		}
		monzos = append(monzos, m)
	}
	return monzos, skipped, nil
}

// fitMonzo pads a short monzo with zeros and rejects one reaching past
// the subgroup.
func fitMonzo(m interval.Monzo, n int) ([]float64, error) {
	out := make([]float64, n)
	for i, e := range m {
		if i >= n {
			if e != 0 {
				return nil, fmt.Errorf("spectrum: monzo %v reaches past the %d subgroup axes", m, n)
			}
			continue
		}
		out[i] = float64(e)
	}
	return out, nil
}

func denseRows(rows [][]int) *mat.Dense {
	d := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		for j, v := range row {
			d.Set(i, j, float64(v))
		}
	}
	return d
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
