// Package swarm implements the simplex-constrained particle swarm
// optimizer.  Particles roam unconstrained velocity space; every proposed
// position is projected back onto the probability simplex before it is
// evaluated, so the objective only ever sees feasible points.
package swarm

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/davidefabbrico/OMRank"
	"github.com/davidefabbrico/OMRank/simplex"
)

const (
	DefaultInertia   = 0.9
	DefaultCognition = 2.0
	DefaultSocial    = 2.0
	// DefaultDecay is applied to the inertia once per iteration, shared
	// across the swarm.
	DefaultDecay = 0.99
)

type Particle struct {
	Id int
	omrank.Point
	Vel  []float64
	Best omrank.Point
}

// Update adopts newp as the particle's position unconditionally - the
// particle moves even on non-improving steps; only the best-seen
// bookkeeping is conditional.
func (p *Particle) Update(newp omrank.Point) {
	p.Point = newp
	if newp.Val < p.Best.Val {
		p.Best = newp
	}
}

type Population []*Particle

// Best returns the best personal-best point in the population.
func (pop Population) Best() omrank.Point {
	best := pop[0].Best
	for _, p := range pop[1:] {
		if p.Best.Val < best.Val {
			best = p.Best
		}
	}
	return best
}

func (pop Population) Points() []omrank.Point {
	points := make([]omrank.Point, len(pop))
	for i, p := range pop {
		points[i] = p.Point
	}
	return points
}

// NewPopulation creates n particles with positions drawn from the
// symmetric Dirichlet(1,...,1) distribution of the given dimension, which
// lands every initial position on the simplex with no projection needed.
// Velocities start at zero and values at +Inf until the iterator seeds
// them.
func NewPopulation(n, dim int, src rand.Source) (Population, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: population size must be >= 1, got %v", omrank.ErrInvalidDimension, n)
	}
	if dim < 1 {
		return nil, fmt.Errorf("%w: dimension must be >= 1, got %v", omrank.ErrInvalidDimension, dim)
	}

	alpha := make([]float64, dim)
	for i := range alpha {
		alpha[i] = 1
	}
	dir := distmv.NewDirichlet(alpha, src)

	pop := make(Population, n)
	for i := range pop {
		pos := dir.Rand(nil)
		pt := omrank.NewPoint(pos, math.Inf(1))
		pop[i] = &Particle{
			Id:    i,
			Point: pt,
			Best:  pt,
			Vel:   make([]float64, dim),
		}
	}
	return pop, nil
}

type Option func(*Iterator)

func Cognition(c float64) Option { return func(it *Iterator) { it.Cognition = c } }

func Social(s float64) Option { return func(it *Iterator) { it.Social = s } }

func Inertia(w float64) Option { return func(it *Iterator) { it.Inertia = w } }

func Decay(d float64) Option { return func(it *Iterator) { it.Decay = d } }

func Eval(ev omrank.Evaler) Option { return func(it *Iterator) { it.Evaler = ev } }

func Project(pr simplex.Projector) Option { return func(it *Iterator) { it.Projector = pr } }

func Rng(rng omrank.Rng) Option { return func(it *Iterator) { it.Rng = rng } }

// Iterator runs the swarm against one objective.  It owns the population,
// the decaying inertia, and the global best for the run.
type Iterator struct {
	Pop Population
	omrank.Evaler
	Projector simplex.Projector
	Rng       omrank.Rng
	Cognition float64
	Social    float64
	Inertia   float64
	Decay     float64

	obj   omrank.Objectiver
	best  omrank.Point
	neval int
}

func NewIterator(obj omrank.Objectiver, pop Population, opts ...Option) (*Iterator, error) {
	if obj == nil {
		return nil, fmt.Errorf("swarm: nil objective")
	}
	if len(pop) == 0 {
		return nil, fmt.Errorf("%w: empty population", omrank.ErrInvalidDimension)
	}
	dim := pop[0].Len()
	for _, p := range pop {
		if p.Len() != dim || len(p.Vel) != dim {
			return nil, fmt.Errorf("%w: particle %v has mismatched position/velocity length", omrank.ErrInvalidDimension, p.Id)
		}
	}

	it := &Iterator{
		Pop:       pop,
		Evaler:    omrank.SerialEvaler{},
		Projector: simplex.Unit{},
		Rng:       omrank.NewRand(0),
		Cognition: DefaultCognition,
		Social:    DefaultSocial,
		Inertia:   DefaultInertia,
		Decay:     DefaultDecay,
		obj:       obj,
		best:      omrank.Point{Val: math.Inf(1)},
	}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// Neval reports the number of objective evaluations performed so far.
func (it *Iterator) Neval() int { return it.neval }

// Best returns the global best point seen so far.
func (it *Iterator) Best() omrank.Point { return it.best }

// Run seeds the swarm by evaluating every initial position once, then
// performs maxIter iterations and returns the global best point together
// with the convergence trace (one global-best value per iteration, length
// exactly maxIter, non-increasing).  With maxIter == 0 the seeded best is
// returned untouched.
//
// There is no early-stopping criterion; termination is purely
// iteration-count based.  An error from the objective aborts the run and
// propagates.
func (it *Iterator) Run(maxIter int) (best omrank.Point, trace []float64, err error) {
	if maxIter < 0 {
		return omrank.Point{Val: math.Inf(1)}, nil, fmt.Errorf("swarm: maxIter must be >= 0, got %v", maxIter)
	}

	results, n, err := it.Evaler.Eval(it.obj, it.Pop.Points()...)
	it.neval += n
	if err != nil {
		return omrank.Point{Val: math.Inf(1)}, nil, err
	}
	for i := range results {
		it.Pop[i].Point = results[i]
		it.Pop[i].Best = results[i]
	}
	it.best = it.Pop.Best()

	trace = make([]float64, 0, maxIter)
	for iter := 0; iter < maxIter; iter++ {
		if err := it.iterate(); err != nil {
			return omrank.Point{Val: math.Inf(1)}, trace, err
		}
		it.Inertia *= it.Decay
		trace = append(trace, it.best.Val)
	}
	return it.best, trace, nil
}

// iterate advances every particle once.  Particles are processed
// sequentially in population order and the global best advances as soon
// as a particle improves it, so particles later in the same iteration see
// the newer best.  The drift is deliberate (see DESIGN.md) and affects
// reproducibility of seeded runs.
func (it *Iterator) iterate() error {
	for _, p := range it.Pop {
		// r1 and r2 are drawn once per particle and shared across
		// dimensions.
		r1 := it.Rng.Float64()
		r2 := it.Rng.Float64()

		cand := make([]float64, p.Len())
		for i := range p.Vel {
			p.Vel[i] = it.Inertia*p.Vel[i] +
				it.Cognition*r1*(p.Best.At(i)-p.At(i)) +
				it.Social*r2*(it.best.At(i)-p.At(i))
			cand[i] = p.At(i) + p.Vel[i]
		}

		// Always project, even when the candidate is already feasible.
		cand = it.Projector.Project(cand)

		results, n, err := it.Evaler.Eval(it.obj, omrank.NewPoint(cand, math.Inf(1)))
		it.neval += n
		if err != nil {
			return err
		}

		p.Update(results[0])
		if p.Best.Val < it.best.Val {
			it.best = p.Best
		}
	}
	return nil
}
