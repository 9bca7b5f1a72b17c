package objective

import (
	"fmt"
	"math"

	"github.com/davidefabbrico/OMRank"
	"github.com/davidefabbrico/OMRank/perm"
)

// chunkSize bounds how many row sums are held in memory at once while a
// round walks the full k! rank space.  Tuning constant, not a semantic
// parameter.
const chunkSize = 512

var _ omrank.Objectiver = &Preference{}

// Preference scores a vector of k!-1 weights indexed by non-identity
// permutation ranks.  The identity (rank 0) is anchored at weight zero,
// mirroring the choice objective's anchored first coordinate.  Evaluation
// cost scales with k! x n per round, so this is only tractable for small
// k; the permutation index's product cache is what keeps it affordable at
// all.
type Preference struct {
	Index  *perm.Index
	Params Params
	Rng    omrank.Rng
}

func NewPreference(idx *perm.Index, params Params, rng omrank.Rng) (*Preference, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Preference{Index: idx, Params: params, Rng: rng}, nil
}

// Objective draws Params.N permutation ranks with replacement per round
// and computes, for every rank in [0, k!), the sum of pairwise weights
// against the sampled ranks.  The rank space is walked in fixed-size
// chunks to bound peak memory.  The round minimum is global across all
// chunks, but only the final chunk's rows enter the tolerance-band count
// - kept deliberately, see DESIGN.md.  The score is the total count over
// all rounds divided by (MCIterations x number of chunks).
func (pr *Preference) Objective(v []float64) (float64, error) {
	fact := pr.Index.Fact()
	if len(v) != fact-1 {
		return math.Inf(1), fmt.Errorf("%w: got vector of length %v, want %v", omrank.ErrInvalidDimension, len(v), fact-1)
	}

	nchunks := (fact + chunkSize - 1) / chunkSize
	samples := make([]int, pr.Params.N)

	total := 0.0
	for it := 0; it < pr.Params.MCIterations; it++ {
		for i := range samples {
			samples[i] = pr.Rng.Intn(fact)
		}

		currentMin := math.Inf(1)
		var lastSums []float64
		for start := 0; start < fact; start += chunkSize {
			end := start + chunkSize
			if end > fact {
				end = fact
			}
			sums := make([]float64, end-start)
			for idx := start; idx < end; idx++ {
				row := 0.0
				for _, j := range samples {
					pv, err := pr.pairValue(idx, j, v)
					if err != nil {
						return math.Inf(1), err
					}
					row += pv
				}
				sums[idx-start] = row
				if row < currentMin {
					currentMin = row
				}
			}
			lastSums = sums
		}

		total += float64(countNear(lastSums, currentMin, pr.Params.Eps))
	}

	return total / float64(pr.Params.MCIterations*nchunks), nil
}

// pairValue looks up the weight contributed by the pair (idx, j).  When
// either rank is the identity the composed rank is just the other rank,
// so the product table is bypassed with a plain offset lookup.
func (pr *Preference) pairValue(idx, j int, v []float64) (float64, error) {
	if idx == 0 || j == 0 {
		d := idx - j
		if d < 0 {
			d = -d
		}
		if d == 0 {
			return 0, nil
		}
		return v[d-1], nil
	}
	product, err := pr.Index.Product(idx, j)
	if err != nil {
		return 0, err
	}
	if product == 0 {
		return 0, nil
	}
	return v[product-1], nil
}
