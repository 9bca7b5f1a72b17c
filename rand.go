package omrank

import "golang.org/x/exp/rand"

// Rng is the random source consumed by the objectives and the optimizer.
// *rand.Rand from golang.org/x/exp/rand satisfies it, which lets the same
// seeded stream also drive gonum's distmv samplers.
type Rng interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
}

// NewRand returns a seeded generator.  Everything in a run - Dirichlet
// initialization, the per-particle velocity draws, and the Monte Carlo
// sampling inside the objectives - should be served from one stream so
// that a fixed seed reproduces the run.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
