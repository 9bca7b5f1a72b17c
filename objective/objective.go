// Package objective implements the stochastic tie-margin estimators the
// optimizer minimizes.  Both objectives score a weight vector on the
// simplex by Monte Carlo sampling of random permutations and counting how
// many aggregate outcomes land within a tolerance band of the minimum -
// fewer near-ties means sharper separation, so lower is better.
package objective

import (
	"fmt"
	"math"

	"github.com/davidefabbrico/OMRank"
)

// Params fixes the Monte Carlo configuration for one objective.  It is
// passed explicitly alongside the weight vector so an objective is a pure
// function of (vector, params, rng) with no captured mutable state.
type Params struct {
	// N is the number of permutations sampled per round.
	N int
	// MCIterations is the number of Monte Carlo rounds averaged over.
	MCIterations int
	// Eps is the tolerance fraction defining the near-tie band around the
	// minimum accumulator value.
	Eps float64
}

func DefaultParams() Params {
	return Params{N: 500, MCIterations: 100, Eps: 0.05}
}

func (p Params) Validate() error {
	if p.N < 1 {
		return fmt.Errorf("objective: n must be >= 1, got %v", p.N)
	}
	if p.MCIterations < 1 {
		return fmt.Errorf("objective: MCiterations must be >= 1, got %v", p.MCIterations)
	}
	if p.Eps < 0 {
		return fmt.Errorf("objective: eps must be >= 0, got %v", p.Eps)
	}
	return nil
}

// bandCount returns how many entries of sums fall inside the inclusive
// tolerance band [min-eps*|min|, min+eps*|min|] around their own minimum.
func bandCount(sums []float64, eps float64) int {
	min := sums[0]
	for _, s := range sums[1:] {
		if s < min {
			min = s
		}
	}
	return countNear(sums, min, eps)
}

// countNear counts the entries of sums inside the inclusive band
// [min-eps*|min|, min+eps*|min|].
func countNear(sums []float64, min, eps float64) int {
	lo := min - eps*math.Abs(min)
	hi := min + eps*math.Abs(min)
	count := 0
	for _, s := range sums {
		if s >= lo && s <= hi {
			count++
		}
	}
	return count
}

var _ omrank.Objectiver = &Choice{}

// Choice scores a vector of k-1 positional weights.  Position 0 of the
// augmented weight vector is anchored at zero, so the search only varies
// the remaining k-1 coordinates.
type Choice struct {
	K      int
	Params Params
	Rng    omrank.Rng
}

func NewChoice(k int, params Params, rng omrank.Rng) (*Choice, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: choice objective needs k >= 2, got %v", omrank.ErrInvalidDimension, k)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Choice{K: k, Params: params, Rng: rng}, nil
}

// Objective draws Params.N uniform permutations per round, accumulates the
// permuted augmented weights per output position, and counts accumulator
// entries inside the tolerance band around the minimum.  The returned
// score is the mean count over Params.MCIterations rounds.
func (c *Choice) Objective(v []float64) (float64, error) {
	if len(v) != c.K-1 {
		return math.Inf(1), fmt.Errorf("%w: got vector of length %v, want %v", omrank.ErrInvalidDimension, len(v), c.K-1)
	}

	weights := make([]float64, c.K)
	copy(weights[1:], v)

	total := 0.0
	sums := make([]float64, c.K)
	for it := 0; it < c.Params.MCIterations; it++ {
		for y := range sums {
			sums[y] = 0
		}
		for s := 0; s < c.Params.N; s++ {
			p := c.Rng.Perm(c.K)
			for y := 0; y < c.K; y++ {
				sums[y] += weights[p[y]]
			}
		}
		total += float64(bandCount(sums, c.Params.Eps))
	}
	return total / float64(c.Params.MCIterations), nil
}
