// Package sweep drives experiment grids over the simplex optimizer: for
// every (k, n, eps) combination and repeat it builds the permutation
// index, the objective, and a fresh swarm, runs the optimizer, and
// persists results to sqlite.  The optimizer core knows nothing about any
// of this.
package sweep

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/davidefabbrico/OMRank"
	"github.com/davidefabbrico/OMRank/objective"
	"github.com/davidefabbrico/OMRank/perm"
	"github.com/davidefabbrico/OMRank/swarm"
)

const (
	// TblRuns is the sql table holding one row per completed run: grid
	// coordinates, best score, best vector, and wall-clock seconds.
	TblRuns = "runs"
	// TblTrace is the sql table holding the per-iteration global-best
	// trace for each run.
	TblTrace = "trace"
)

// LeaderboardSize is how many of the best runs a Runner retains for the
// final report.
const LeaderboardSize = 10

// Runner executes the sweep described by Config.  Db may be nil, in which
// case nothing is persisted.
type Runner struct {
	Config *Config
	Db     *sql.DB
	Log    *slog.Logger
	Board  *Leaderboard
}

func NewRunner(cfg *Config, db *sql.DB, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		Config: cfg,
		Db:     db,
		Log:    log,
		Board:  NewLeaderboard(LeaderboardSize),
	}
}

// Run walks the full grid.  Each run gets its own rand stream derived
// from the base seed and the run id, so repeats are independent but the
// whole sweep reproduces from one seed.  A failed run aborts the sweep;
// resuming is the caller's business.
func (r *Runner) Run() error {
	if err := r.initdb(); err != nil {
		return err
	}

	runid := 0
	for _, k := range r.Config.Ks {
		idx, dim, err := r.setup(k)
		if err != nil {
			return err
		}
		for _, n := range r.Config.Ns {
			for _, eps := range r.Config.Eps {
				for rep := 0; rep < r.Config.Repeats; rep++ {
					if err := r.one(runid, k, dim, n, eps, rep, idx); err != nil {
						return err
					}
					runid++
				}
			}
		}
	}

	return nil
}

// setup builds the shared per-k state: the permutation index (preference
// only) and the search dimension.  One index serves all repeats for a k,
// so the product cache warms up across the whole grid row.
func (r *Runner) setup(k int) (*perm.Index, int, error) {
	if r.Config.Objective == ObjChoice {
		return nil, k - 1, nil
	}
	idx, err := perm.New(k)
	if err != nil {
		return nil, 0, err
	}
	return idx, idx.Fact() - 1, nil
}

func (r *Runner) one(runid, k, dim, n int, eps float64, rep int, idx *perm.Index) error {
	rng := omrank.NewRand(r.Config.Seed + uint64(runid))
	params := objective.Params{N: n, MCIterations: r.Config.MCIterations, Eps: eps}

	var obj omrank.Objectiver
	var err error
	if r.Config.Objective == ObjChoice {
		obj, err = objective.NewChoice(k, params, rng)
	} else {
		obj, err = objective.NewPreference(idx, params, rng)
	}
	if err != nil {
		return err
	}

	pop, err := swarm.NewPopulation(r.Config.Particles, dim, rng)
	if err != nil {
		return err
	}
	it, err := swarm.NewIterator(obj, pop, swarm.Rng(rng))
	if err != nil {
		return err
	}

	start := time.Now()
	best, trace, err := it.Run(r.Config.MaxIter)
	if err != nil {
		return fmt.Errorf("sweep: run %v (k=%v n=%v eps=%v rep=%v): %w", runid, k, n, eps, rep, err)
	}
	secs := time.Since(start).Seconds()

	r.Board.Push(Entry{K: k, N: n, Eps: eps, Rep: rep, Best: best, Seconds: secs})
	r.Log.Info("run complete",
		"run", runid, "k", k, "n", n, "eps", eps, "rep", rep,
		"best", best.Val, "evals", it.Neval(), "seconds", secs)

	return r.record(runid, k, n, eps, rep, best, trace, secs)
}

func (r *Runner) initdb() error {
	if r.Db == nil {
		return nil
	}
	_, err := r.Db.Exec("CREATE TABLE IF NOT EXISTS " + TblRuns +
		" (run INTEGER, k INTEGER, n INTEGER, eps REAL, rep INTEGER, best REAL, vec TEXT, seconds REAL);")
	if err != nil {
		return fmt.Errorf("sweep: creating %v table: %w", TblRuns, err)
	}
	_, err = r.Db.Exec("CREATE TABLE IF NOT EXISTS " + TblTrace +
		" (run INTEGER, iter INTEGER, best REAL);")
	if err != nil {
		return fmt.Errorf("sweep: creating %v table: %w", TblTrace, err)
	}
	return nil
}

func (r *Runner) record(runid, k, n int, eps float64, rep int, best omrank.Point, trace []float64, secs float64) error {
	if r.Db == nil {
		return nil
	}

	tx, err := r.Db.Begin()
	if err != nil {
		return fmt.Errorf("sweep: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT INTO "+TblRuns+" (run,k,n,eps,rep,best,vec,seconds) VALUES (?,?,?,?,?,?,?,?);",
		runid, k, n, eps, rep, best.Val, formatVec(best.Pos()), secs)
	if err != nil {
		return fmt.Errorf("sweep: recording run %v: %w", runid, err)
	}
	for i, v := range trace {
		_, err = tx.Exec("INSERT INTO "+TblTrace+" (run,iter,best) VALUES (?,?,?);", runid, i, v)
		if err != nil {
			return fmt.Errorf("sweep: recording trace for run %v: %w", runid, err)
		}
	}
	return tx.Commit()
}

func formatVec(pos []float64) string {
	parts := make([]string, len(pos))
	for i, v := range pos {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
