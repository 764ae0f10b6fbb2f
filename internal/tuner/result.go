package tuner

import (
	"log/slog"

	"github.com/tuneforge/regtemp/internal/exact"
	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/subgroup"
)

// Result holds one solved tuning. All cent-valued vectors run over the
// fitted subgroup axes except Gen, which runs over the generators.
type Result struct {
	// Gen is the generator tuning map in cents.
	Gen []float64
	// TuningMap is gen times the mapping: the tempered size of each
	// subgroup axis in cents.
	TuningMap []float64
	// ErrorMap is TuningMap minus the just tuning map.
	ErrorMap []float64

	// Error is the power-mean size of the weighted error map, and
	// Bias its mean, both in cents.
	Error float64
	Bias  float64

	// Warnings lists recoverable diagnostics raised while solving.
	Warnings []string

	// TuningProjection and ErrorProjection are only set by the exact
	// engine: rational matrices P and P - I with TuningMap = just·P
	// and ErrorMap = just·(P - I).
	TuningProjection *exact.Matrix
	ErrorProjection  *exact.Matrix

	// Unchanged lists intervals fixed by the tuning projection, the
	// unit-eigenvalue eigenmonzos. Exact engine, algebraic weights,
	// no destretch only.
	Unchanged []interval.Monzo
}

func (r *Result) warn(logger *slog.Logger, msg string) {
	r.Warnings = append(r.Warnings, msg)
	if logger != nil {
		logger.Warn(msg)
	}
}

// grade fills Error and Bias from the weighted error map. The mean
// counts the plain subgroup axes so an appended skew axis does not
// dilute it.
func (r *Result) grade(p norm.Profile, errorMap []float64, sg *subgroup.Subgroup) {
	ex := p.TuningXRow(errorMap, sg)
	r.Error = norm.PowerMeanNorm(ex, sg.Len(), p.Order)
	r.Bias = norm.Mean(ex, sg.Len())
}
