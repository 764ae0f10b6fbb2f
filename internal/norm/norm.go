// Package norm defines the weighted, skewed Lp norms that grade tuning
// error, along with the transforms that carry mappings and intervals
// into the normed space.
package norm

import (
	"errors"
	"fmt"
	"math"
)

// Weighting selects the diagonal weight applied to each subgroup axis.
type Weighting string

const (
	// Tenney weights each axis by the log size of its basis entry.
	Tenney Weighting = "tenney"
	// Wilson weights each axis by the basis entry itself.
	Wilson Weighting = "wilson"
	// Benedetti is the traditional name for Wilson weighting.
	Benedetti Weighting = "benedetti"
	// Equilateral leaves all axes unweighted.
	Equilateral Weighting = "equilateral"
)

// ErrSkewOrder is returned when a skewed norm is combined with an order
// other than two. The skew transform is only defined against the
// Euclidean inner product.
var ErrSkewOrder = errors.New("norm: skew requires order two")

// Profile describes a tuning norm: weighting kind and exponent, Weil
// skew factor, and Lp order. Skew may be +Inf for the fully skewed
// limit; Order may be +Inf for the Chebyshev norm.
type Profile struct {
	Weighting Weighting
	Amount    float64
	Skew      float64
	Order     float64
}

// Euclidean returns the default profile: Tenney-weighted, unskewed,
// order two.
func Euclidean() Profile {
	return Profile{Weighting: Tenney, Amount: 1, Skew: 0, Order: 2}
}

// Resolve fills unset fields with their defaults and degrades unknown
// weightings to Tenney. The second return value carries a warning
// message when a degrade happened, and is empty otherwise.
func (p Profile) Resolve() (Profile, string) {
	warning := ""
	switch p.Weighting {
	case Tenney, Wilson, Benedetti, Equilateral:
	case "":
		p.Weighting = Tenney
	default:
		warning = fmt.Sprintf("unknown weighting %q, using tenney", p.Weighting)
		p.Weighting = Tenney
	}
	if p.Amount == 0 {
		p.Amount = 1
	}
	if p.Order == 0 {
		p.Order = 2
	}
	return p, warning
}

// Validate rejects profiles whose fields cannot be combined.
func (p Profile) Validate() error {
	if p.Skew != 0 && p.Order != 2 {
		return ErrSkewOrder
	}
	return nil
}

// Dim returns the dimension of the weight-skewed space over n axes.
// Skewed profiles append one axis.
func (p Profile) Dim(n int) int {
	if p.Skew != 0 {
		return n + 1
	}
	return n
}

// PowerMeanNorm returns the order-p power mean of v, averaging over
// count entries. Skewed spaces pass the unskewed dimension as count so
// the appended axis does not dilute the mean. Order +Inf gives the
// maximum magnitude.
func PowerMeanNorm(v []float64, count int, order float64) float64 {
	if math.IsInf(order, 1) {
		max := 0.0
		for _, x := range v {
			if a := math.Abs(x); a > max {
				max = a
			}
		}
		return max
	}
	sum := 0.0
	for _, x := range v {
		sum += math.Pow(math.Abs(x), order)
	}
	return math.Pow(sum/float64(count), 1/order)
}

// Mean returns the average of v over count entries.
func Mean(v []float64, count int) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(count)
}
