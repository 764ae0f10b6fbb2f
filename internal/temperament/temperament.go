// Package temperament models regular temperaments: integer mappings
// from subgroup axes to generator counts. Constructing a Temperament
// canonicalizes the mapping, so two inputs spanning the same row
// lattice compare equal, and every measure is well defined.
package temperament

import (
	"errors"
	"log/slog"
	"math/big"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/subgroup"
)

// ErrRankDeficient is returned when the mapping rows are linearly
// dependent, so the input does not describe a rank-r temperament.
var ErrRankDeficient = errors.New("temperament: mapping rows are dependent")

// Options configures construction. The zero value gives the canonical
// form: saturated, then Hermite-normalized.
type Options struct {
	// SkipSaturation keeps any common factors and torsion in the
	// row lattice instead of reducing them away.
	SkipSaturation bool
	// SkipNormalization keeps the (saturated) rows as given instead
	// of rewriting them to the Hermite normal basis.
	SkipNormalization bool
	// Logger receives recoverable diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Temperament is a canonicalized regular temperament over a subgroup.
// The zero value is not usable; construct with New.
type Temperament struct {
	mapping  [][]int
	sg       *subgroup.Subgroup
	logger   *slog.Logger
	warnings []string
}

// New builds a temperament from mapping rows over sg. A nil subgroup
// defaults to the first primes; a mismatched one is truncated along
// with the mapping, recorded as a warning. Rows must be rectangular
// and linearly independent.
func New(mapping [][]int, sg *subgroup.Subgroup, opts Options) (*Temperament, error) {
	if len(mapping) == 0 || len(mapping[0]) == 0 {
		return nil, errors.New("temperament: empty mapping")
	}
	for _, row := range mapping {
		if len(row) != len(mapping[0]) {
			return nil, errors.New("temperament: ragged mapping rows")
		}
	}
	mapping, sg, refitted := subgroup.Fit(mapping, sg)
	if exact.FromInt(mapping).Rank() < len(mapping) {
		return nil, ErrRankDeficient
	}

	canon := make([][]int, len(mapping))
	for i, row := range mapping {
		canon[i] = append([]int(nil), row...)
	}
	if !opts.SkipSaturation {
		canon = exact.Saturate(canon)
	}
	if !opts.SkipNormalization {
		canon = exact.HermiteRow(canon)
	}

	t := &Temperament{mapping: canon, sg: sg, logger: opts.Logger}
	if refitted {
		t.warn("dimension mismatch, casting to the smaller dimension")
	}
	return t, nil
}

// Mapping returns a copy of the canonical mapping rows.
func (t *Temperament) Mapping() [][]int {
	out := make([][]int, len(t.mapping))
	for i, row := range t.mapping {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Rank returns the number of generators.
func (t *Temperament) Rank() int { return len(t.mapping) }

// Dim returns the number of subgroup axes.
func (t *Temperament) Dim() int { return len(t.mapping[0]) }

// Subgroup returns the subgroup the mapping runs over.
func (t *Temperament) Subgroup() *subgroup.Subgroup { return t.sg }

// Warnings lists diagnostics raised while constructing and measuring.
func (t *Temperament) Warnings() []string { return t.warnings }

func (t *Temperament) warn(msg string) {
	t.warnings = append(t.warnings, msg)
	if t.logger != nil {
		t.logger.Warn(msg)
	}
}

// CommaBasis returns one monzo per independent comma of the
// temperament: a saturated basis of the mapping's kernel, each comma
// oriented to name a ratio above unity.
func (t *Temperament) CommaBasis() []interval.Monzo {
	kernel := exact.KernelZ(t.mapping)
	k := 0
	if len(kernel) > 0 {
		k = len(kernel[0])
	}
	one := big.NewRat(1, 1)
	basis := t.sg.Ratios()
	out := make([]interval.Monzo, 0, k)
	for j := 0; j < k; j++ {
		m := make(interval.Monzo, len(kernel))
		for i := range kernel {
			m[i] = kernel[i][j]
		}
		if interval.Value(m, basis).Cmp(one) < 0 {
			for i := range m {
				m[i] = -m[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// Commas renders the comma basis as ratios. Commas too large to fit a
// rational are skipped; with int exponents this cannot happen through
// CommaBasis, but callers may hold monzos from other sources.
func (t *Temperament) Commas() []*big.Rat {
	basis := t.sg.Ratios()
	commas := t.CommaBasis()
	out := make([]*big.Rat, 0, len(commas))
	for _, m := range commas {
		out = append(out, interval.Value(m, basis))
	}
	return out
}

