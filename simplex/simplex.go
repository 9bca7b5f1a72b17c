// Package simplex projects arbitrary real vectors onto the standard
// probability simplex.  The optimizer funnels every candidate position
// through a Projector before evaluation, the same way a mesh-constrained
// solver snaps points onto its grid.
package simplex

import (
	"math"
	"sort"
)

// Projector maps an arbitrary point to the nearest feasible one.
type Projector interface {
	Project(x []float64) []float64
}

// Unit is the standard probability simplex: components >= 0, summing to 1.
type Unit struct{}

func (Unit) Project(x []float64) []float64 { return Project(x) }

// Project returns the Euclidean projection of x onto the probability
// simplex using the closed-form sort-and-threshold algorithm: sort
// descending, find the largest index rho whose entry still exceeds the
// running threshold (cumsum-1)/(rho+1), subtract that threshold and clamp
// at zero.  Taking the largest qualifying index is load-bearing - a
// different tie-break moves the projected point at boundary
// configurations.
//
// Non-finite input projects to the uniform point 1/dim.  An all-zero
// vector also yields uniform, which falls straight out of the algorithm.
// Empty input returns nil.
func Project(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return uniform(n)
		}
	}

	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	lambda := 0.0
	cssum := 0.0
	for i, v := range sorted {
		cssum += v
		if th := (cssum - 1) / float64(i+1); v-th > 0 {
			lambda = th
		}
	}

	out := make([]float64, n)
	for i, v := range x {
		out[i] = math.Max(v-lambda, 0)
	}
	return out
}

func uniform(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = 1 / float64(n)
	}
	return u
}
