// Command omrank runs an experiment sweep from a YAML config and prints
// the leaderboard of best scoring vectors found.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/davidefabbrico/OMRank/logger"
	"github.com/davidefabbrico/OMRank/sweep"
)

var (
	configPath = flag.String("config", "sweep.yaml", "path to the sweep config file")
	dbPath     = flag.String("db", "", "sqlite file for results (empty disables persistence)")
	seed       = flag.Uint64("seed", 0, "override the config seed")
	jsonLog    = flag.Bool("jsonlog", false, "emit JSON logs instead of text")
)

func main() {
	flag.Parse()

	cfg, err := sweep.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	var db *sql.DB
	if *dbPath != "" {
		db, err = sql.Open("sqlite3", *dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
	}

	lg := logger.NewText(cfg.LogLevel, os.Stderr)
	if *jsonLog {
		lg = logger.New(cfg.LogLevel, os.Stderr)
	}

	r := sweep.NewRunner(cfg, db, lg)
	if err := r.Run(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("best runs (%v objective):\n", cfg.Objective)
	for i, e := range r.Board.Top() {
		fmt.Printf("%2d. score=%.6g k=%v n=%v eps=%v rep=%v (%.2fs)\n",
			i+1, e.Best.Val, e.K, e.N, e.Eps, e.Rep, e.Seconds)
		fmt.Printf("    vec=%v\n", e.Best.Pos())
	}
}
