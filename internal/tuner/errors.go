package tuner

import "errors"

// Domain errors for tuning optimization.
var (
	// ErrInfeasible indicates the solver could not satisfy the
	// constraints, or the minimization failed to converge.
	ErrInfeasible = errors.New("tuner: infeasible optimization problem")

	// ErrSingularTarget indicates a destretch target whose tempered
	// size is zero (the target lies in the tempered-out nullspace).
	ErrSingularTarget = errors.New("tuner: destretch target is in the nullspace")

	// ErrMultipleTargets indicates more than one destretch target.
	ErrMultipleTargets = errors.New("tuner: only one destretch target is allowed")

	// ErrDependentConstraints indicates linearly dependent constraint
	// directions.
	ErrDependentConstraints = errors.New("tuner: constraints are linearly dependent")

	// ErrExactOrder indicates the exact solver was asked for a norm
	// order other than two.
	ErrExactOrder = errors.New("tuner: exact solver requires order two")
)
