package tuner

import (
	"fmt"
	"math/big"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
)

// Exact solves the tuning optimization over rationals, order two only
// (ErrExactOrder otherwise). Transcendental weights are pinned to
// high-precision rationals, so results carry no iteration error and
// the tuning and error projection matrices come out exactly.
//
// A multiplicatively dependent subgroup is reduced to its parent, the
// primes underlying the basis: the same commas are tempered there and
// the solution is pulled back through the basis matrix. Opts.Inharmonic
// skips the reduction and treats the basis as formal primes.
func Exact(mapping [][]int, sg *subgroup.Subgroup, opts Options) (*Result, error) {
	p, warning := opts.Profile.Resolve()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Order != 2 {
		return nil, ErrExactOrder
	}
	if len(opts.Destretch) > 1 {
		return nil, ErrMultipleTargets
	}
	if len(mapping) == 0 || len(mapping[0]) == 0 {
		return nil, fmt.Errorf("%w: empty mapping", ErrInfeasible)
	}
	mapping, sg, refitted := subgroup.Fit(mapping, sg)

	res := &Result{}
	if warning != "" {
		res.warn(opts.Logger, warning)
	}
	if refitted {
		res.warn(opts.Logger, "dimension mismatch, casting to the smaller dimension")
	}

	simple, err := sg.IsSimple()
	if err != nil {
		return nil, err
	}

	if simple || opts.Inharmonic {
		sol, err := exactSolve(mapping, sg, p, opts.Constraints, opts.Destretch)
		if err != nil {
			return nil, err
		}
		res.Gen = sol.gen
		res.TuningMap = sol.tempered
		res.ErrorMap = sol.errorMap
		res.TuningProjection = sol.projection
		res.ErrorProjection = sol.errProjection
		res.grade(p, sol.errorMap, sg)
	} else if err := exactParent(mapping, sg, p, opts, res); err != nil {
		return nil, err
	}

	if p.Algebraic() && len(opts.Destretch) == 0 {
		res.Unchanged = unchangedIntervals(res.TuningProjection)
	}
	return res, nil
}

type exactSolution struct {
	gen, tempered, errorMap   []float64
	projection, errProjection *exact.Matrix
}

// exactSolve optimizes directly over the given subgroup, treating its
// basis entries as formal primes.
func exactSolve(mapping [][]int, sg *subgroup.Subgroup, p norm.Profile, cons, des []Constraint) (*exactSolution, error) {
	n := sg.Len()
	jtm := exactJustTuningMap(sg)
	ws := p.ExactWeightSkew(sg, exact.Log2Prec)
	m := exact.FromInt(mapping)
	mx := m.Mul(ws)

	var proj *exact.Matrix
	if len(cons) == 0 {
		proj = ws.Mul(mx.Pinv()).Mul(mx).Mul(ws.Pinv())
	} else {
		c, err := exactConstraintCols(cons, ws, n)
		if err != nil {
			return nil, err
		}
		if c.Rank() < c.Cols() {
			return nil, ErrDependentConstraints
		}
		proj, err = constrainedProjection(m, mx, ws, c)
		if err != nil {
			return nil, err
		}
	}

	if len(des) == 1 {
		d, err := exactConstraintCol(des[0], ws, n)
		if err != nil {
			return nil, err
		}
		temperedSize := jtm.Mul(proj).Mul(d).At(0, 0)
		if temperedSize.Sign() == 0 {
			return nil, ErrSingularTarget
		}
		scale := new(big.Rat).Quo(jtm.Mul(d).At(0, 0), temperedSize)
		proj = proj.Scale(scale)
	}

	errProj := proj.Sub(exact.Identity(n))
	return &exactSolution{
		gen:           rowFloats(jtm.Mul(proj).Mul(m.Pinv())),
		tempered:      rowFloats(jtm.Mul(proj)),
		errorMap:      rowFloats(jtm.Mul(errProj)),
		projection:    proj,
		errProjection: errProj,
	}, nil
}

// constrainedProjection builds the tuning projection that keeps the
// columns of c pure while minimizing the weighted error elsewhere. The
// generator solution splits into a particular part satisfying the
// constraint system plus its free directions; the free coefficients
// come from the normal equations of the remaining least squares.
func constrainedProjection(m, mx, ws, c *exact.Matrix) (*exact.Matrix, error) {
	d := m.Mul(c)
	dtdInv, err := d.T().Mul(d).Inverse()
	if err != nil {
		// some constraint direction is tempered out, so no generator
		// tuning can hold it pure
		return nil, fmt.Errorf("%w: constraints collapse under the mapping", ErrInfeasible)
	}
	gp := d.Mul(dtdInv).Mul(c.T())

	free := d.T().Nullspace()
	ghat := gp
	if free.Cols() > 0 {
		b := free.T().Mul(mx)
		bbtInv, err := b.Mul(b.T()).Inverse()
		if err != nil {
			return nil, fmt.Errorf("%w: mapping rows are dependent", ErrInfeasible)
		}
		rhs := ws.T().Sub(mx.T().Mul(gp))
		ghat = gp.Add(free.Mul(bbtInv.Mul(b).Mul(rhs)))
	}
	return ghat.T().Mul(m), nil
}

// exactParent reduces a dependent subgroup to the primes underlying
// its basis, solves there, and pulls the solution back. Error and bias
// are graded in parent space, where the weights are meaningful.
func exactParent(mapping [][]int, sg *subgroup.Subgroup, p norm.Profile, opts Options, res *Result) error {
	basis, primes, err := sg.BasisMatrix()
	if err != nil {
		return err
	}
	parentMapping := exact.Antinullspace(intMul(basis, exact.KernelZ(mapping)))
	parentSG, err := subgroup.New(ratsFromPrimes(primes))
	if err != nil {
		return err
	}
	n := sg.Len()
	parentCons, err := liftConstraints(opts.Constraints, basis, n)
	if err != nil {
		return err
	}
	parentDes, err := liftConstraints(opts.Destretch, basis, n)
	if err != nil {
		return err
	}

	sol, err := exactSolve(parentMapping, parentSG, p, parentCons, parentDes)
	if err != nil {
		return err
	}
	res.grade(p, sol.errorMap, parentSG)

	bRat := exact.FromInt(basis)
	bPinv := bRat.Pinv()
	res.TuningProjection = bPinv.Mul(sol.projection).Mul(bRat)
	res.ErrorProjection = bPinv.Mul(sol.errProjection).Mul(bRat)

	res.TuningMap = make([]float64, n)
	for j := 0; j < n; j++ {
		for i := range primes {
			res.TuningMap[j] += sol.tempered[i] * float64(basis[i][j])
		}
	}
	jtm := sg.JustTuningMap()
	res.ErrorMap = make([]float64, n)
	for j := range res.ErrorMap {
		res.ErrorMap[j] = res.TuningMap[j] - jtm[j]
	}
	mPinv := exact.FromInt(mapping).Pinv().Float64()
	res.Gen = make([]float64, len(mapping))
	for g := range res.Gen {
		for j := 0; j < n; j++ {
			res.Gen[g] += res.TuningMap[j] * mPinv[j][g]
		}
	}
	return nil
}

// liftConstraints re-expresses constraint monzos over the parent
// subgroup through the basis matrix. Equivalence constraints pass
// through untouched; they name a direction, not an interval.
func liftConstraints(cons []Constraint, basis [][]int, n int) ([]Constraint, error) {
	out := make([]Constraint, 0, len(cons))
	for _, c := range cons {
		if c.Equivalence {
			out = append(out, c)
			continue
		}
		if len(c.Monzo) != n {
			return nil, fmt.Errorf("tuner: constraint monzo has %d entries, mapping has %d columns", len(c.Monzo), n)
		}
		lifted := make(interval.Monzo, len(basis))
		for i, brow := range basis {
			for j, e := range brow {
				lifted[i] += e * c.Monzo[j]
			}
		}
		out = append(out, Constraint{Monzo: lifted})
	}
	return out, nil
}

func exactConstraintCols(cons []Constraint, ws *exact.Matrix, n int) (*exact.Matrix, error) {
	cols, err := exactConstraintCol(cons[0], ws, n)
	if err != nil {
		return nil, err
	}
	for _, c := range cons[1:] {
		col, err := exactConstraintCol(c, ws, n)
		if err != nil {
			return nil, err
		}
		cols = cols.HStack(col)
	}
	return cols, nil
}

func exactConstraintCol(c Constraint, ws *exact.Matrix, n int) (*exact.Matrix, error) {
	if c.Equivalence {
		return ws.Mul(exact.Ones(ws.Cols(), 1)), nil
	}
	if len(c.Monzo) != n {
		return nil, fmt.Errorf("tuner: constraint monzo has %d entries, mapping has %d columns", len(c.Monzo), n)
	}
	col := exact.New(n, 1)
	for i, e := range c.Monzo {
		col.SetInt(i, 0, int64(e))
	}
	return col, nil
}

// exactJustTuningMap is the just tuning map as a rational row, log2
// pinned at the package precision.
func exactJustTuningMap(sg *subgroup.Subgroup) *exact.Matrix {
	row := exact.New(1, sg.Len())
	cents := new(big.Rat).SetInt64(interval.CentsPerOctave)
	for i, q := range sg.Ratios() {
		row.Set(0, i, new(big.Rat).Mul(cents, exact.Log2Rat(q, exact.Log2Prec)))
	}
	return row
}

// unchangedIntervals extracts the unit-eigenvalue eigenmonzos of the
// tuning projection: the rational kernel of P - I, integerized to
// primitive monzos with positive leading entry.
func unchangedIntervals(p *exact.Matrix) []interval.Monzo {
	kernel := p.Sub(exact.Identity(p.Rows())).Nullspace()
	monzos := make([]interval.Monzo, 0, kernel.Cols())
	for j := 0; j < kernel.Cols(); j++ {
		monzos = append(monzos, integerizeColumn(kernel, j))
	}
	return monzos
}

func integerizeColumn(m *exact.Matrix, j int) interval.Monzo {
	n := m.Rows()
	lcm := big.NewInt(1)
	for i := 0; i < n; i++ {
		den := m.At(i, j).Denom()
		g := new(big.Int).GCD(nil, nil, lcm, den)
		lcm = lcm.Div(new(big.Int).Mul(lcm, den), g)
	}
	ints := make([]*big.Int, n)
	gcd := new(big.Int)
	for i := 0; i < n; i++ {
		v := new(big.Rat).Mul(m.At(i, j), new(big.Rat).SetInt(lcm))
		ints[i] = new(big.Int).Set(v.Num())
		gcd.GCD(nil, nil, gcd, new(big.Int).Abs(ints[i]))
	}
	sign := 0
	for _, v := range ints {
		if s := v.Sign(); s != 0 {
			sign = s
			break
		}
	}
	monzo := make(interval.Monzo, n)
	for i, v := range ints {
		if gcd.Sign() > 0 {
			v.Quo(v, gcd)
		}
		monzo[i] = int(v.Int64())
		if sign < 0 {
			monzo[i] = -monzo[i]
		}
	}
	return monzo
}

func ratsFromPrimes(primes []int64) []*big.Rat {
	out := make([]*big.Rat, len(primes))
	for i, q := range primes {
		out[i] = big.NewRat(q, 1)
	}
	return out
}

func intMul(a, b [][]int) [][]int {
	out := make([][]int, len(a))
	for i := range a {
		cols := 0
		if len(b) > 0 {
			cols = len(b[0])
		}
		out[i] = make([]int, cols)
		for j := 0; j < cols; j++ {
			for t, v := range a[i] {
				out[i][j] += v * b[t][j]
			}
		}
	}
	return out
}

func rowFloats(m *exact.Matrix) []float64 {
	return m.Float64()[0]
}
