// Package subgroup models just intonation subgroups: ordered lists of
// positive rationals whose products and quotients span every interval a
// temperament can map.
package subgroup

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/interval"
)

// ErrEmpty is returned when a subgroup has no basis entries.
var ErrEmpty = errors.New("subgroup: empty basis")

// Subgroup is an ordered basis of formal primes. Entries need not be
// prime, or even multiplicatively independent; see IsSimple.
type Subgroup struct {
	ratios []*big.Rat
}

// New builds a subgroup from basis ratios. Every entry must be a
// positive rational other than one.
func New(ratios []*big.Rat) (*Subgroup, error) {
	if len(ratios) == 0 {
		return nil, ErrEmpty
	}
	out := make([]*big.Rat, len(ratios))
	one := big.NewRat(1, 1)
	for i, q := range ratios {
		if q.Sign() <= 0 {
			return nil, fmt.Errorf("subgroup: basis entry %s is not positive", interval.Format(q))
		}
		if q.Cmp(one) == 0 {
			return nil, errors.New("subgroup: basis entry 1 carries no interval")
		}
		out[i] = new(big.Rat).Set(q)
	}
	return &Subgroup{ratios: out}, nil
}

// Parse reads a dotted basis string like "2.3.5" or "2.9.13/5".
func Parse(s string) (*Subgroup, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	ratios := make([]*big.Rat, 0, len(parts))
	for _, p := range parts {
		q, err := interval.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("subgroup: bad basis string %q: %w", s, err)
		}
		ratios = append(ratios, q)
	}
	return New(ratios)
}

// Default returns the subgroup of the first n primes.
func Default(n int) *Subgroup {
	primes := interval.Primes(n)
	ratios := make([]*big.Rat, len(primes))
	for i, p := range primes {
		ratios[i] = big.NewRat(p, 1)
	}
	return &Subgroup{ratios: ratios}
}

// Len returns the number of basis entries.
func (s *Subgroup) Len() int { return len(s.ratios) }

// Ratio returns basis entry i. Treat the result as read-only.
func (s *Subgroup) Ratio(i int) *big.Rat { return s.ratios[i] }

// Ratios returns a copy of the basis.
func (s *Subgroup) Ratios() []*big.Rat {
	out := make([]*big.Rat, len(s.ratios))
	for i, q := range s.ratios {
		out[i] = new(big.Rat).Set(q)
	}
	return out
}

// String renders the basis in dotted form.
func (s *Subgroup) String() string {
	parts := make([]string, len(s.ratios))
	for i, q := range s.ratios {
		parts[i] = interval.Format(q)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two subgroups have the same basis.
func (s *Subgroup) Equal(o *Subgroup) bool {
	if len(s.ratios) != len(o.ratios) {
		return false
	}
	for i, q := range s.ratios {
		if q.Cmp(o.ratios[i]) != 0 {
			return false
		}
	}
	return true
}

// JustTuningMap returns the sizes of the basis entries in cents.
func (s *Subgroup) JustTuningMap() []float64 {
	out := make([]float64, len(s.ratios))
	for i, q := range s.ratios {
		out[i] = interval.Cents(q)
	}
	return out
}

// Floats returns the basis entries as float64 values.
func (s *Subgroup) Floats() []float64 {
	out := make([]float64, len(s.ratios))
	for i, q := range s.ratios {
		out[i], _ = q.Float64()
	}
	return out
}

// Truncate returns the subgroup of the first n basis entries.
func (s *Subgroup) Truncate(n int) *Subgroup {
	if n >= len(s.ratios) {
		return s
	}
	return &Subgroup{ratios: s.ratios[:n]}
}

// Primes returns all primes through the largest prime factor appearing
// anywhere in the basis.
func (s *Subgroup) Primes() ([]int64, error) {
	max := int64(2)
	for _, q := range s.ratios {
		p, err := interval.MaxPrimeFactor(q)
		if err != nil {
			return nil, err
		}
		if p > max {
			max = p
		}
	}
	return interval.PrimesThrough(max), nil
}

// BasisMatrix factors the basis over actual primes. Entry columns are
// the prime-exponent monzos of the basis ratios; the prime list covers
// every factor that occurs.
func (s *Subgroup) BasisMatrix() ([][]int, []int64, error) {
	primes, err := s.Primes()
	if err != nil {
		return nil, nil, err
	}
	out := make([][]int, len(primes))
	for i := range out {
		out[i] = make([]int, len(s.ratios))
	}
	for j, q := range s.ratios {
		m, err := interval.Factor(q, primes)
		if err != nil {
			return nil, nil, err
		}
		for i, e := range m {
			out[i][j] = e
		}
	}
	return out, primes, nil
}

// IsSimple reports whether the basis entries are multiplicatively
// independent, so that monzos over the subgroup are unambiguous.
func (s *Subgroup) IsSimple() (bool, error) {
	basis, _, err := s.BasisMatrix()
	if err != nil {
		return false, err
	}
	return exact.FromInt(basis).Rank() == len(s.ratios), nil
}

// PatentVal returns the val of the given equal division: each basis
// entry mapped to its nearest whole number of steps.
func (s *Subgroup) PatentVal(divisions int) []int {
	out := make([]int, len(s.ratios))
	for i, q := range s.ratios {
		f, _ := q.Float64()
		out[i] = int(math.Round(float64(divisions) * math.Log2(f)))
	}
	return out
}

// Fit reconciles a mapping with a subgroup. A nil subgroup defaults to
// the first primes; mismatched dimensions are cast down to the smaller
// one, reported through the returned flag so callers can warn.
func Fit(mapping [][]int, s *Subgroup) ([][]int, *Subgroup, bool) {
	cols := 0
	if len(mapping) > 0 {
		cols = len(mapping[0])
	}
	if s == nil {
		return mapping, Default(cols), false
	}
	if s.Len() == cols {
		return mapping, s, false
	}
	dim := cols
	if s.Len() < dim {
		dim = s.Len()
	}
	cut := make([][]int, len(mapping))
	for i, row := range mapping {
		cut[i] = append([]int(nil), row[:dim]...)
	}
	return cut, s.Truncate(dim), true
}
