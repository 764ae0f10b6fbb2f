package temperament

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
)

// ErrNonEuclidean is returned when a measure is requested under a norm
// of order other than two. Complexity and error only have the product
// form below in the Euclidean case.
var ErrNonEuclidean = errors.New("temperament: measures need a norm of order two")

// NType selects how complexity and error are normalized for the
// dimensions of the temperament, so measures compare across ranks and
// subgroup sizes.
type NType string

const (
	// NTypeBreed divides complexity by sqrt(n^r) and error by sqrt(n).
	NTypeBreed NType = "breed"
	// NTypeSmith divides complexity by sqrt(C(n,r)) and scales error
	// by sqrt((r+1)/(n-r)).
	NTypeSmith NType = "smith"
	// NTypeNone applies no normalization.
	NTypeNone NType = "none"
)

// resolve maps the empty normalizer to breed and degrades unknown ones
// to breed with a warning message.
func (nt NType) resolve() (NType, string) {
	switch nt {
	case "", NTypeBreed:
		return NTypeBreed, ""
	case NTypeSmith, NTypeNone:
		return nt, ""
	}
	return NTypeBreed, fmt.Sprintf("unknown normalizer %q, using breed", string(nt))
}

// Measures bundles the scalar quality measures of a temperament under
// one norm and normalizer.
type Measures struct {
	// Complexity grades how many notes the temperament needs to reach
	// its subgroup, the volume of the weight-skewed mapping rows.
	Complexity float64
	// Error grades how far the best tuning stays from just, in cents.
	Error float64
	// Badness is error times complexity, in octaves.
	Badness float64
	// BadnessLogflat weights complexity by n/(n-r) before multiplying,
	// flattening the records across complexity. NaN when n equals r.
	BadnessLogflat float64

	// Warnings lists diagnostics raised while computing.
	Warnings []string
}

// Measures computes all scalar measures under ntype and p. Only
// order-two profiles are measurable.
func (t *Temperament) Measures(ntype NType, p norm.Profile) (*Measures, error) {
	p, pwarn, err := resolveEuclidean(p)
	if err != nil {
		return nil, err
	}
	nt, nwarn := ntype.resolve()

	m := &Measures{}
	for _, w := range []string{pwarn, nwarn} {
		if w != "" {
			m.Warnings = append(m.Warnings, w)
			if t.logger != nil {
				t.logger.Warn(w)
			}
		}
	}

	m.Complexity, err = t.complexity(nt, p)
	if err != nil {
		return nil, err
	}
	m.Error, err = t.relativeError(nt, p)
	if err != nil {
		return nil, err
	}
	m.Badness = m.Error * m.Complexity / interval.CentsPerOctave
	n, r := t.Dim(), t.Rank()
	if n == r {
		m.BadnessLogflat = math.NaN()
	} else {
		exp := float64(n) / float64(n-r)
		m.BadnessLogflat = m.Error * math.Pow(m.Complexity, exp) / interval.CentsPerOctave
	}
	return m, nil
}

// Complexity returns the normalized complexity under p. Unknown
// normalizers degrade to breed with a logged warning.
func (t *Temperament) Complexity(ntype NType, p norm.Profile) (float64, error) {
	p, _, err := resolveEuclidean(p)
	if err != nil {
		return 0, err
	}
	nt, warn := ntype.resolve()
	if warn != "" && t.logger != nil {
		t.logger.Warn(warn)
	}
	return t.complexity(nt, p)
}

// Error returns the normalized tuning error under p, in cents.
func (t *Temperament) Error(ntype NType, p norm.Profile) (float64, error) {
	p, _, err := resolveEuclidean(p)
	if err != nil {
		return 0, err
	}
	nt, warn := ntype.resolve()
	if warn != "" && t.logger != nil {
		t.logger.Warn(warn)
	}
	return t.relativeError(nt, p)
}

// Badness returns error times complexity in octaves.
func (t *Temperament) Badness(ntype NType, p norm.Profile) (float64, error) {
	m, err := t.Measures(ntype, p)
	if err != nil {
		return 0, err
	}
	return m.Badness, nil
}

// BadnessLogflat returns the logflat badness in octaves, NaN for a
// full-rank mapping.
func (t *Temperament) BadnessLogflat(ntype NType, p norm.Profile) (float64, error) {
	m, err := t.Measures(ntype, p)
	if err != nil {
		return 0, err
	}
	return m.BadnessLogflat, nil
}

// Wedgie returns the exterior product of the weight-skewed mapping
// rows: one determinant per r-subset of the subgroup axes, in
// lexicographic order, signed so the first entry is nonnegative. Its
// Euclidean length equals the unnormalized complexity.
func (t *Temperament) Wedgie(p norm.Profile) ([]float64, error) {
	p, warn := p.Resolve()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if warn != "" && t.logger != nil {
		t.logger.Warn(warn)
	}
	mx := p.TuningX(t.dense(), t.sg)
	n, r := t.Dim(), t.Rank()
	combos := combin.Combinations(n, r)
	w := make([]float64, len(combos))
	sub := mat.NewDense(r, r, nil)
	for i, combo := range combos {
		for bi := 0; bi < r; bi++ {
			for bj, cj := range combo {
				sub.Set(bi, bj, mx.At(bi, cj))
			}
		}
		w[i] = mat.Det(sub)
	}
	if w[0] < 0 {
		floats.Scale(-1, w)
	}
	return w, nil
}

// complexity is sqrt of the Gram determinant of the weight-skewed
// mapping rows, scaled by the normalizer.
func (t *Temperament) complexity(nt NType, p norm.Profile) (float64, error) {
	mx := p.TuningX(t.dense(), t.sg)
	var gram mat.Dense
	gram.Mul(mx, mx.T())
	c := math.Sqrt(mat.Det(&gram))
	n, r := float64(t.Dim()), float64(t.Rank())
	switch nt {
	case NTypeSmith:
		c /= math.Sqrt(float64(combin.Binomial(t.Dim(), t.Rank())))
	case NTypeNone:
	default:
		c /= math.Sqrt(math.Pow(n, r))
	}
	return c, nil
}

// relativeError is the Euclidean distance from the weight-skewed just
// tuning map to the row space of the weight-skewed mapping, scaled by
// the normalizer. It equals the optimum residual of the unconstrained
// order-two tuning.
func (t *Temperament) relativeError(nt NType, p norm.Profile) (float64, error) {
	mx := p.TuningX(t.dense(), t.sg)
	jx := p.TuningXRow(t.sg.JustTuningMap(), t.sg)
	_, dim := mx.Dims()

	var sol mat.Dense
	if err := sol.Solve(mx.T(), mat.NewDense(dim, 1, jx)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return 0, fmt.Errorf("temperament: error measure: %w", err)
		}
		if t.logger != nil {
			t.logger.Warn("least squares system is ill-conditioned")
		}
	}
	var proj mat.Dense
	proj.Mul(sol.T(), mx)
	diff := make([]float64, dim)
	floats.SubTo(diff, proj.RawRowView(0), jx)
	e := floats.Norm(diff, 2)

	n, r := t.Dim(), t.Rank()
	switch nt {
	case NTypeSmith:
		if n == r {
			return math.NaN(), nil
		}
		e *= math.Sqrt(float64(r+1) / float64(n-r))
	case NTypeNone:
	default:
		e /= math.Sqrt(float64(n))
	}
	return e, nil
}

// resolveEuclidean resolves p and gates measures to order two.
func resolveEuclidean(p norm.Profile) (norm.Profile, string, error) {
	p, warn := p.Resolve()
	if err := p.Validate(); err != nil {
		return p, "", err
	}
	if p.Order != 2 {
		return p, "", ErrNonEuclidean
	}
	return p, warn, nil
}

func (t *Temperament) dense() *mat.Dense {
	r, n := t.Rank(), t.Dim()
	d := mat.NewDense(r, n, nil)
	for i, row := range t.mapping {
		for j, v := range row {
			d.Set(i, j, float64(v))
		}
	}
	return d
}
