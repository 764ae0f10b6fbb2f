// Package exact implements dense linear algebra over the rationals and
// integer lattice reductions.
//
// It backs the closed-form tuning solver, where results must come out as
// exact fractions rather than floats: matrix products, inverses, reduced
// row echelon forms, pseudoinverses and kernels are all computed over
// math/big rationals. Integer matrices get Hermite normal forms, kernel
// bases and saturation, which the temperament layer uses to canonicalize
// mappings and extract comma bases.
package exact
