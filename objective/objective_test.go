package objective

import (
	"errors"
	"math"
	"testing"

	"github.com/davidefabbrico/OMRank"
)

// scriptRng serves pre-scripted draws so stochastic scores can be checked
// against hand-computed values.
type scriptRng struct {
	perms [][]int
	ints  []int
	pi    int
	ii    int
}

func (r *scriptRng) Float64() float64 { return 0.5 }

func (r *scriptRng) Intn(n int) int {
	v := r.ints[r.ii%len(r.ints)]
	r.ii++
	return v % n
}

func (r *scriptRng) Perm(n int) []int {
	p := r.perms[r.pi%len(r.perms)]
	r.pi++
	if len(p) != n {
		panic("scripted perm has wrong length")
	}
	out := make([]int, n)
	copy(out, p)
	return out
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("default params failed validation: %v", err)
	}

	bad := []Params{
		{N: 0, MCIterations: 1, Eps: 0.05},
		{N: 1, MCIterations: 0, Eps: 0.05},
		{N: 1, MCIterations: 1, Eps: -0.1},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("params %+v passed validation", p)
		}
	}
}

func TestChoiceHandComputed(t *testing.T) {
	// k=2, v=[1] so the augmented weights are [0, 1].  Three identity
	// draws and one swap give accumulators [1, 3]; the band around the
	// minimum 1 with eps=0.1 is [0.9, 1.1], so exactly one entry counts.
	rng := &scriptRng{perms: [][]int{
		{0, 1},
		{0, 1},
		{1, 0},
		{0, 1},
	}}
	c, err := NewChoice(2, Params{N: 4, MCIterations: 1, Eps: 0.1}, rng)
	if err != nil {
		t.Fatal(err)
	}
	score, err := c.Objective([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if score != 1 {
		t.Errorf("score = %v, want 1", score)
	}
}

func TestChoiceAllTied(t *testing.T) {
	// Two identity draws and two swaps balance the accumulators at
	// [2, 2]: both entries sit on the minimum, so the count is 2.
	rng := &scriptRng{perms: [][]int{
		{0, 1},
		{1, 0},
		{0, 1},
		{1, 0},
	}}
	c, err := NewChoice(2, Params{N: 4, MCIterations: 1, Eps: 0.1}, rng)
	if err != nil {
		t.Fatal(err)
	}
	score, err := c.Objective([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if score != 2 {
		t.Errorf("score = %v, want 2", score)
	}
}

func TestChoiceMeanOverRounds(t *testing.T) {
	// Round one counts 1 (sums [1, 3]), round two counts 2 (sums [2, 2]);
	// the score is their mean.
	rng := &scriptRng{perms: [][]int{
		{0, 1}, {0, 1}, {1, 0}, {0, 1},
		{0, 1}, {1, 0}, {0, 1}, {1, 0},
	}}
	c, err := NewChoice(2, Params{N: 4, MCIterations: 2, Eps: 0.1}, rng)
	if err != nil {
		t.Fatal(err)
	}
	score, err := c.Objective([]float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.5 {
		t.Errorf("score = %v, want 1.5", score)
	}
}

func TestChoiceValidation(t *testing.T) {
	if _, err := NewChoice(1, DefaultParams(), &scriptRng{}); !errors.Is(err, omrank.ErrInvalidDimension) {
		t.Errorf("NewChoice(1): expected ErrInvalidDimension, got %v", err)
	}
	if _, err := NewChoice(3, Params{N: -1, MCIterations: 1}, &scriptRng{}); err == nil {
		t.Errorf("NewChoice with bad params: expected error")
	}

	c, err := NewChoice(3, Params{N: 1, MCIterations: 1, Eps: 0.05}, &scriptRng{perms: [][]int{{0, 1, 2}}})
	if err != nil {
		t.Fatal(err)
	}
	score, err := c.Objective([]float64{0.5, 0.5, 0})
	if !errors.Is(err, omrank.ErrInvalidDimension) {
		t.Errorf("wrong-length vector: expected ErrInvalidDimension, got %v", err)
	}
	if !math.IsInf(score, 1) {
		t.Errorf("failed evaluation returned %v, want +Inf", score)
	}
}
