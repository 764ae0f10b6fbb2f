package temperament

import (
	"fmt"

	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/tuner"
)

// Optimizer names accepted by Tune.
const (
	OptimizerNumeric  = "numeric"
	OptimizerSymbolic = "symbolic"
)

// TuneOptions configures one call to Tune.
type TuneOptions struct {
	// Optimizer picks the engine: numeric (default) or symbolic.
	Optimizer string
	// Profile selects the norm. Zero fields resolve to the defaults.
	Profile norm.Profile
	// Enforce holds constraint and destretch shorthand, e.g. "c1" or
	// "d2". Empty enforces nothing.
	Enforce string
	// Inharmonic treats a dependent subgroup as formal primes instead
	// of reducing to its parent. Symbolic engine only.
	Inharmonic bool
}

// Tune solves for the optimal generator tuning under opts. Asking for
// the symbolic engine when it cannot serve, because the backend is
// switched off or the norm order is not two, degrades to the numeric
// engine with a warning rather than failing.
func (t *Temperament) Tune(opts TuneOptions) (*tuner.Result, error) {
	optimizer := opts.Optimizer
	if optimizer == "" {
		optimizer = OptimizerNumeric
	}
	if optimizer != OptimizerNumeric && optimizer != OptimizerSymbolic {
		return nil, fmt.Errorf("temperament: unknown optimizer %q", optimizer)
	}

	var fallback string
	if optimizer == OptimizerSymbolic {
		if !tuner.ExactAvailable() {
			fallback = "symbolic backend unavailable, using the numeric optimizer"
		} else if p, _ := opts.Profile.Resolve(); p.Order != 2 {
			fallback = "condition for a symbolic solution not met, using the numeric optimizer"
		}
		if fallback != "" {
			optimizer = OptimizerNumeric
			if t.logger != nil {
				t.logger.Warn(fallback)
			}
		}
	}

	constraints, destretch, err := tuner.ParseEnforce(opts.Enforce, t.sg.Len())
	if err != nil {
		return nil, err
	}
	topts := tuner.Options{
		Profile:     opts.Profile,
		Constraints: constraints,
		Destretch:   destretch,
		Inharmonic:  opts.Inharmonic,
		Logger:      t.logger,
	}

	var res *tuner.Result
	if optimizer == OptimizerSymbolic {
		res, err = tuner.Exact(t.mapping, t.sg, topts)
	} else {
		res, err = tuner.Numeric(t.mapping, t.sg, topts)
	}
	if err != nil {
		return nil, err
	}
	if fallback != "" {
		res.Warnings = append([]string{fallback}, res.Warnings...)
	}
	return res, nil
}
