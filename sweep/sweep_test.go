package sweep

import (
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/davidefabbrico/OMRank"
	"github.com/davidefabbrico/OMRank/logger"
)

func TestParse(t *testing.T) {
	data := []byte(`
objective: choice
ks: [2, 3]
ns: [100, 500]
eps: [0.05]
repeats: 3
particles: 20
max_iter: 50
mc_iterations: 10
seed: 42
log_level: debug
`)
	got, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Objective:    ObjChoice,
		Ks:           []int{2, 3},
		Ns:           []int{100, 500},
		Eps:          []float64{0.05},
		Repeats:      3,
		Particles:    20,
		MaxIter:      50,
		MCIterations: 10,
		Seed:         42,
		LogLevel:     "debug",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsed config mismatch (-want +got):\n%v", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	got, err := Parse([]byte("ks: [3]\nns: [10]\neps: [0.1]\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if got.Repeats != def.Repeats || got.Particles != def.Particles ||
		got.MaxIter != def.MaxIter || got.MCIterations != def.MCIterations ||
		got.Objective != def.Objective {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	bad := []string{
		"objective: banana\nks: [3]\nns: [10]\neps: [0.1]\n",
		"ks: []\nns: [10]\neps: [0.1]\n",
		"ks: [1]\nns: [10]\neps: [0.1]\n",
		"ks: [3]\nns: [0]\neps: [0.1]\n",
		"ks: [3]\nns: [10]\neps: [-0.1]\n",
		"ks: [3]\nns: [10]\neps: [0.1]\nrepeats: 0\n",
		"objective: preference\nks: [9]\nns: [10]\neps: [0.1]\n",
		"ks: [3]\nns: [10]\neps: [0.1]\nmax_iter: -1\n",
	}
	for _, data := range bad {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("config %q passed validation", strings.ReplaceAll(data, "\n", "; "))
		}
	}
}

func TestLeaderboard(t *testing.T) {
	b := NewLeaderboard(3)
	for _, val := range []float64{5, 1, 4, 2, 3} {
		b.Push(Entry{Best: omrank.NewPoint([]float64{1}, val)})
	}
	if b.Len() != 3 {
		t.Fatalf("leaderboard holds %v entries, want 3", b.Len())
	}
	top := b.Top()
	want := []float64{1, 2, 3}
	for i, e := range top {
		if e.Best.Val != want[i] {
			t.Errorf("top[%v].Best.Val = %v, want %v", i, e.Best.Val, want[i])
		}
	}
}

func TestRunnerChoice(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := &Config{
		Objective:    ObjChoice,
		Ks:           []int{2, 3},
		Ns:           []int{5},
		Eps:          []float64{0.1},
		Repeats:      2,
		Particles:    4,
		MaxIter:      3,
		MCIterations: 2,
		Seed:         7,
		LogLevel:     "error",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(cfg, db, logger.NewText("error", io.Discard))
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}

	// 2 ks x 1 n x 1 eps x 2 repeats.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + TblRuns).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("%v run rows, want 4", count)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM " + TblTrace).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4*cfg.MaxIter {
		t.Errorf("%v trace rows, want %v", count, 4*cfg.MaxIter)
	}

	var vec string
	if err := db.QueryRow("SELECT vec FROM " + TblRuns + " WHERE run = 0").Scan(&vec); err != nil {
		t.Fatal(err)
	}
	if vec == "" {
		t.Errorf("run 0 persisted an empty best vector")
	}

	if r.Board.Len() != 4 {
		t.Errorf("leaderboard holds %v entries, want 4", r.Board.Len())
	}
}

func TestRunnerPreference(t *testing.T) {
	cfg := &Config{
		Objective:    ObjPreference,
		Ks:           []int{3},
		Ns:           []int{4},
		Eps:          []float64{0.1},
		Repeats:      1,
		Particles:    3,
		MaxIter:      2,
		MCIterations: 2,
		Seed:         13,
		LogLevel:     "error",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	// nil db: nothing persisted, the run itself must still work.
	r := NewRunner(cfg, nil, logger.NewText("error", io.Discard))
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Board.Len() != 1 {
		t.Fatalf("leaderboard holds %v entries, want 1", r.Board.Len())
	}
	e := r.Board.Top()[0]
	// Preference search space for k=3 has 3!-1 = 5 coordinates.
	if got := len(e.Best.Pos()); got != 5 {
		t.Errorf("best vector has %v coordinates, want 5", got)
	}
}
