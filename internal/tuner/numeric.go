package tuner

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
)

// Numeric solves for the generator tuning map of mapping over sg in
// floating point. A nil subgroup defaults to the first primes; a
// mismatched one is truncated along with the mapping, with a warning
// on the Result. Mapping rows must be independent (canonicalized
// mappings always are).
//
// Order two without constraints solves in closed form. Every other
// profile reduces the constraints away and minimizes the remaining
// Lp objective iteratively from a 1200-cent start.
func Numeric(mapping [][]int, sg *subgroup.Subgroup, opts Options) (*Result, error) {
	p, warning := opts.Profile.Resolve()
	if err := p.Validate(); err != nil {
		return nil, err
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

	n := sg.Len()
	jtm := sg.JustTuningMap()
	mx := p.TuningX(denseFromInt(mapping), sg)
	jx := p.TuningXRow(jtm, sg)

	var gen []float64
	var err error
	if p.Order == 2 && len(opts.Constraints) == 0 {
		gen, err = solveLeastSquares(mx, jx, res, opts.Logger)
	} else {
		var cols [][]float64
		cols, err = constraintCols(opts.Constraints, p, sg, n)
		if err == nil {
			gen, err = minimizeConstrained(mapping, mx, jx, jtm, cols, p.Order)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(opts.Destretch) == 1 {
		if err := destretchNumeric(gen, mapping, jtm, opts.Destretch[0], p, sg); err != nil {
			return nil, err
		}
	}

	res.Gen = gen
	res.TuningMap = rowTimesIntMat(gen, mapping)
	res.ErrorMap = make([]float64, n)
	floats.SubTo(res.ErrorMap, res.TuningMap, jtm)
	res.grade(p, res.ErrorMap, sg)
	return res, nil
}

// solveLeastSquares finds gen minimizing |gen·Mx - Jx| over the
// weight-skewed axes, the closed-form Euclidean optimum.
func solveLeastSquares(mx *mat.Dense, jx []float64, res *Result, logger *slog.Logger) ([]float64, error) {
	r, dim := mx.Dims()
	var sol mat.Dense
	if err := sol.Solve(mx.T(), mat.NewDense(dim, 1, jx)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		res.warn(logger, "least squares system is ill-conditioned")
	}
	gen := make([]float64, r)
	for i := range gen {
		gen[i] = sol.At(i, 0)
	}
	return gen, nil
}

// minimizeConstrained eliminates the equality constraints by splitting
// gen into a particular solution plus the free directions of the
// constraint system, then minimizes the Lp error over the free part.
func minimizeConstrained(mapping [][]int, mx *mat.Dense, jx, jtm []float64, cols [][]float64, order float64) ([]float64, error) {
	r, dim := mx.Dims()
	k := len(cols)

	gp := make([]float64, r)
	basis := mat.NewDense(r, r, nil)
	rank := 0
	if k == 0 {
		for i := 0; i < r; i++ {
			basis.Set(i, i, 1)
		}
	} else {
		// gen·(M·C) = just·C, one equation per constraint column
		d := mat.NewDense(r, k, nil)
		b := make([]float64, k)
		for j, col := range cols {
			for i, mrow := range mapping {
				s := 0.0
				for t, v := range mrow {
					s += float64(v) * col[t]
				}
				d.Set(i, j, s)
			}
			b[j] = floats.Dot(jtm, col)
		}

		var svd mat.SVD
		if !svd.Factorize(d, mat.SVDFull) {
			return nil, fmt.Errorf("%w: constraint factorization failed", ErrInfeasible)
		}
		var v mat.Dense
		svd.UTo(basis)
		svd.VTo(&v)
		sv := svd.Values(nil)
		if len(sv) > 0 && sv[0] > 0 {
			tol := 1e-10 * sv[0]
			for _, s := range sv {
				if s > tol {
					rank++
				}
			}
		}

		// coordinates of the target past the rank must vanish, or no
		// gen satisfies the constraints
		vb := make([]float64, k)
		resid := 0.0
		for i := 0; i < k; i++ {
			vb[i] = floats.Dot(mat.Col(nil, i, &v), b)
			if i >= rank {
				resid += vb[i] * vb[i]
			}
		}
		if math.Sqrt(resid) > 1e-6*(1+floats.Norm(b, 2)) {
			return nil, fmt.Errorf("%w: inconsistent constraints", ErrInfeasible)
		}
		for i := 0; i < rank; i++ {
			floats.AddScaled(gp, vb[i]/sv[i], mat.Col(nil, i, basis))
		}
	}

	nfree := r - rank
	if nfree == 0 {
		return gp, nil
	}

	objective := func(z []float64) float64 {
		gen := genAt(gp, basis, rank, z)
		diff := make([]float64, dim)
		for j := 0; j < dim; j++ {
			s := 0.0
			for i := 0; i < r; i++ {
				s += gen[i] * mx.At(i, j)
			}
			diff[j] = s - jx[j]
		}
		return floats.Norm(diff, order)
	}

	gen0 := make([]float64, r)
	for i := range gen0 {
		gen0[i] = interval.CentsPerOctave
	}
	delta := make([]float64, r)
	floats.SubTo(delta, gen0, gp)
	z0 := make([]float64, nfree)
	for i := range z0 {
		z0[i] = floats.Dot(mat.Col(nil, rank+i, basis), delta)
	}

	problem := optimize.Problem{Func: objective}
	settings := optimize.Settings{
		MajorIterations:   2000,
		GradientThreshold: 1e-9,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(problem, z0, &settings, nil)
	if err != nil || result == nil {
		result, err = optimize.Minimize(problem, z0, &settings, &optimize.BFGS{})
	}
	if err != nil || result == nil {
		result, err = optimize.Minimize(problem, z0, &settings, &optimize.NelderMead{})
	}
	if err != nil || result == nil {
		return nil, fmt.Errorf("%w: minimization failed: %v", ErrInfeasible, err)
	}
	return genAt(gp, basis, rank, result.X), nil
}

func genAt(gp []float64, basis *mat.Dense, rank int, z []float64) []float64 {
	gen := make([]float64, len(gp))
	copy(gen, gp)
	for i, zi := range z {
		floats.AddScaled(gen, zi, mat.Col(nil, rank+i, basis))
	}
	return gen
}

// destretchNumeric rescales gen in place so the target interval tunes
// pure. Monzo targets get an exact integer nullspace test before any
// float division.
func destretchNumeric(gen []float64, mapping [][]int, jtm []float64, target Constraint, p norm.Profile, sg *subgroup.Subgroup) error {
	var tempered, just float64
	if target.Equivalence {
		dir := equivalenceDirection(p, sg)
		tempered = floats.Dot(rowTimesIntMat(gen, mapping), dir)
		just = floats.Dot(jtm, dir)
	} else {
		if len(target.Monzo) != len(jtm) {
			return fmt.Errorf("tuner: destretch monzo has %d entries, mapping has %d columns", len(target.Monzo), len(jtm))
		}
		md := make([]int, len(mapping))
		zero := true
		for i, row := range mapping {
			for j, v := range row {
				md[i] += v * target.Monzo[j]
			}
			if md[i] != 0 {
				zero = false
			}
		}
		if zero {
			return ErrSingularTarget
		}
		for i, v := range md {
			tempered += gen[i] * float64(v)
		}
		for j, e := range target.Monzo {
			just += jtm[j] * float64(e)
		}
	}
	if tempered == 0 {
		return ErrSingularTarget
	}
	floats.Scale(just/tempered, gen)
	return nil
}

func constraintCols(cons []Constraint, p norm.Profile, sg *subgroup.Subgroup, n int) ([][]float64, error) {
	cols := make([][]float64, 0, len(cons))
	for _, c := range cons {
		if c.Equivalence {
			cols = append(cols, equivalenceDirection(p, sg))
			continue
		}
		if len(c.Monzo) != n {
			return nil, fmt.Errorf("tuner: constraint monzo has %d entries, mapping has %d columns", len(c.Monzo), n)
		}
		col := make([]float64, n)
		for i, e := range c.Monzo {
			col[i] = float64(e)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// equivalenceDirection is the weight-skew image of the all-ones
// vector: the direction along which every axis stretches together.
func equivalenceDirection(p norm.Profile, sg *subgroup.Subgroup) []float64 {
	n := sg.Len()
	dir := make([]float64, n)
	for i := 0; i < n; i++ {
		unit := make([]float64, n)
		unit[i] = 1
		for _, v := range p.TuningXRow(unit, sg) {
			dir[i] += v
		}
	}
	return dir
}

func denseFromInt(a [][]int) *mat.Dense {
	m := mat.NewDense(len(a), len(a[0]), nil)
	for i, row := range a {
		for j, v := range row {
			m.Set(i, j, float64(v))
		}
	}
	return m
}

func rowTimesIntMat(gen []float64, mapping [][]int) []float64 {
	out := make([]float64, len(mapping[0]))
	for i, row := range mapping {
		for j, v := range row {
			out[j] += gen[i] * float64(v)
		}
	}
	return out
}
