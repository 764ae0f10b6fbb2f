// Package tuner solves for optimal generator tunings of a regular
// temperament mapping under a weighted, skewed Lp norm.
//
// Two engines share one contract:
//
//   - [Numeric]: floating-point least squares for the Euclidean
//     unconstrained case, nonlinear minimization otherwise
//   - [Exact]: rational projection algebra, Euclidean order only,
//     which also yields the tuning and error projection matrices
//
// Both take the mapping rows as given and return the generator map in
// cents along with the tempered tuning map and the error map against
// just intonation. Constraints pin chosen intervals pure during the
// optimization; a destretch target rescales the finished solution
// instead.
//
// # Purity
//
// Solving allocates all working matrices per call and mutates no
// package state, so independent calls may run concurrently.
package tuner
