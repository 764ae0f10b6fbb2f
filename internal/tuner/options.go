package tuner

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
)

// Constraint names one direction the optimizer must keep pure. A plain
// constraint pins the interval given by Monzo; an Equivalence
// constraint pins the octave-equivalence direction instead, the image
// of the all-ones vector under the weight-skew transform.
type Constraint struct {
	Monzo       interval.Monzo
	Equivalence bool
}

// Options configures one optimization call.
type Options struct {
	// Profile selects the weighting, skew and order of the norm.
	// Zero fields resolve to tenney weighting, amount 1, order 2.
	Profile norm.Profile

	// Constraints are enforced exactly during optimization.
	Constraints []Constraint

	// Destretch rescales the finished solution so its single target
	// tunes pure. More than one entry is ErrMultipleTargets.
	Destretch []Constraint

	// Inharmonic makes the exact engine treat a multiplicatively
	// dependent subgroup as formal primes instead of reducing to the
	// parent subgroup. The numeric engine always works formally.
	Inharmonic bool

	// Logger receives recoverable diagnostics. Nil discards them;
	// they are recorded on the Result either way.
	Logger *slog.Logger
}

var enforceRe = regexp.MustCompile(`[cd]\d+`)

// ParseEnforce interprets an enforcement shorthand against a subgroup
// of n axes. Tokens are c<i> (constrain) and d<i> (destretch), where
// index 0 names the octave-equivalence direction and index i >= 1
// names the i-th subgroup axis. Bare "c" and "d" mean c1 and d1. Text
// with no tokens enforces nothing.
func ParseEnforce(spec string, n int) (constraints, destretch []Constraint, err error) {
	switch spec {
	case "c":
		spec = "c1"
	case "d":
		spec = "d1"
	}
	for _, tok := range enforceRe.FindAllString(spec, -1) {
		idx, err := strconv.Atoi(tok[1:])
		if err != nil {
			return nil, nil, fmt.Errorf("tuner: bad enforcement token %q: %w", tok, err)
		}
		if idx > n {
			return nil, nil, fmt.Errorf("tuner: enforcement index %d exceeds %d subgroup axes", idx, n)
		}
		var c Constraint
		if idx == 0 {
			c.Equivalence = true
		} else {
			c.Monzo = interval.Unit(n, idx-1)
		}
		if tok[0] == 'c' {
			constraints = append(constraints, c)
		} else {
			destretch = append(destretch, c)
		}
	}
	return constraints, destretch, nil
}

// LegacyEnforcement translates the deprecated raw-monzo constraint and
// destretch arguments into Constraint lists. New callers should build
// Constraint values or use ParseEnforce.
func LegacyEnforcement(consMonzos []interval.Monzo, desMonzo interval.Monzo) (constraints, destretch []Constraint) {
	for _, m := range consMonzos {
		constraints = append(constraints, Constraint{Monzo: m.Copy()})
	}
	if desMonzo != nil {
		destretch = append(destretch, Constraint{Monzo: desMonzo.Copy()})
	}
	return constraints, destretch
}
