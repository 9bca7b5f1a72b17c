// Package perm maps ranks to permutations and back, and caches permutation
// composition.  The preference objective hammers the composition table with
// the same rank pairs over and over, so Product memoizes results for the
// lifetime of the index.
package perm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/davidefabbrico/OMRank"
)

var (
	// ErrOutOfRange is returned for ranks outside [0, k!).
	ErrOutOfRange = errors.New("rank out of range")
	// ErrNotFound is returned when a tuple is not a permutation of
	// {0,...,k-1}.
	ErrNotFound = errors.New("not a permutation")
)

// Index enumerates all k! permutations of {0,...,k-1} in lexicographic
// order and assigns each its position as a 0-based rank.  Rank 0 is always
// the identity.  The enumeration and reverse lookup are immutable after
// construction; only the product cache grows.
type Index struct {
	k     int
	fact  int
	perms [][]int
	ranks map[string]int

	mu       sync.RWMutex
	products map[uint64]int
}

// New builds the index for permutations of size k.  The enumeration holds
// all k! tuples in memory and the product cache can grow to (k!)^2 entries,
// so this is only meant for small k (<= 8).
func New(k int) (*Index, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %v", omrank.ErrInvalidDimension, k)
	}

	fact := 1
	for i := 2; i <= k; i++ {
		fact *= i
	}

	idx := &Index{
		k:        k,
		fact:     fact,
		perms:    make([][]int, 0, fact),
		ranks:    make(map[string]int, fact),
		products: map[uint64]int{},
	}

	p := make([]int, k)
	for i := range p {
		p[i] = i
	}
	for {
		cp := make([]int, k)
		copy(cp, p)
		idx.ranks[key(cp)] = len(idx.perms)
		idx.perms = append(idx.perms, cp)
		if !nextPerm(p) {
			break
		}
	}
	return idx, nil
}

func (idx *Index) K() int { return idx.k }

// Fact returns k!.
func (idx *Index) Fact() int { return idx.fact }

// At returns a copy of the permutation with the given rank.
func (idx *Index) At(rank int) ([]int, error) {
	if rank < 0 || rank >= idx.fact {
		return nil, fmt.Errorf("%w: rank %v not in [0, %v)", ErrOutOfRange, rank, idx.fact)
	}
	p := make([]int, idx.k)
	copy(p, idx.perms[rank])
	return p, nil
}

// RankOf returns the rank of p in the lexicographic enumeration.
func (idx *Index) RankOf(p []int) (int, error) {
	if len(p) != idx.k {
		return 0, fmt.Errorf("%w: tuple length %v, want %v", ErrNotFound, len(p), idx.k)
	}
	// Range-check before keying: the byte key truncates mod 256, so an
	// out-of-set value could otherwise alias a valid permutation.
	for _, v := range p {
		if v < 0 || v >= idx.k {
			return 0, fmt.Errorf("%w: %v is not a permutation of 0..%v", ErrNotFound, p, idx.k-1)
		}
	}
	rank, ok := idx.ranks[key(p)]
	if !ok {
		return 0, fmt.Errorf("%w: %v is not a permutation of 0..%v", ErrNotFound, p, idx.k-1)
	}
	return rank, nil
}

// Product returns the rank of the composition of perm i with perm j, where
// the composed permutation maps x to perm_i[perm_j[x]] (apply j, then i).
// The convention is fixed; everything downstream only needs it to be
// self-consistent.  Results are memoized and never evicted for the
// lifetime of the index.
func (idx *Index) Product(i, j int) (int, error) {
	if i < 0 || i >= idx.fact {
		return 0, fmt.Errorf("%w: rank %v not in [0, %v)", ErrOutOfRange, i, idx.fact)
	}
	if j < 0 || j >= idx.fact {
		return 0, fmt.Errorf("%w: rank %v not in [0, %v)", ErrOutOfRange, j, idx.fact)
	}

	ck := uint64(i)*uint64(idx.fact) + uint64(j)
	idx.mu.RLock()
	rank, ok := idx.products[ck]
	idx.mu.RUnlock()
	if ok {
		return rank, nil
	}

	pi, pj := idx.perms[i], idx.perms[j]
	composed := make([]int, idx.k)
	for x := range composed {
		composed[x] = pi[pj[x]]
	}
	rank = idx.ranks[key(composed)]

	idx.mu.Lock()
	idx.products[ck] = rank
	idx.mu.Unlock()
	return rank, nil
}

func key(p []int) string {
	// k <= 8 in practice, so single bytes are plenty.
	b := make([]byte, len(p))
	for i, v := range p {
		b[i] = byte(v)
	}
	return string(b)
}

// nextPerm advances p to its lexicographic successor in place, returning
// false once p is the final (descending) permutation.
func nextPerm(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, len(p)-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}
