package sweep

import (
	"github.com/petar/GoLLRB/llrb"

	"github.com/davidefabbrico/OMRank"
)

// Entry records one completed optimizer run.
type Entry struct {
	K       int
	N       int
	Eps     float64
	Rep     int
	Best    omrank.Point
	Seconds float64
}

func (e Entry) Less(than llrb.Item) bool {
	return e.Best.Val < than.(Entry).Best.Val
}

// Leaderboard keeps the best size runs of a sweep ordered by score.
// Worse entries are evicted as better ones arrive.
type Leaderboard struct {
	size int
	tree *llrb.LLRB
}

func NewLeaderboard(size int) *Leaderboard {
	if size < 1 {
		size = 1
	}
	return &Leaderboard{size: size, tree: llrb.New()}
}

func (l *Leaderboard) Push(e Entry) {
	l.tree.InsertNoReplace(e)
	for l.tree.Len() > l.size {
		l.tree.DeleteMax()
	}
}

func (l *Leaderboard) Len() int { return l.tree.Len() }

// Top returns the retained entries, best first.
func (l *Leaderboard) Top() []Entry {
	if l.tree.Len() == 0 {
		return nil
	}
	entries := make([]Entry, 0, l.tree.Len())
	l.tree.AscendGreaterOrEqual(l.tree.Min(), func(item llrb.Item) bool {
		entries = append(entries, item.(Entry))
		return true
	})
	return entries
}
