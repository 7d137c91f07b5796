// Command corvid-perft is a debugging and benchmarking tool that walks
// the legal move tree to a given depth and reports the leaf count, with
// optional capture/castle/check breakdown and per-root-move divide output.
// Profiling goes through github.com/pkg/profile instead of raw
// runtime/pprof calls.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/cli"
	"github.com/corvidchess/corvid/internal/perft"
	"github.com/corvidchess/corvid/position"
	"github.com/pkg/profile"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	depth := flag.Int("depth", 2, "perft search depth")
	fen := flag.String("fen", startFEN, "FEN of the position to search from")
	verbose := flag.Bool("verbose", false, "print the capture/castle/check breakdown")
	divide := flag.Bool("divide", false, "print per-root-move subtree counts")
	cpuprofile := flag.String("cpuprofile", "", "directory to write a cpu profile into")
	memprofile := flag.String("memprofile", "", "directory to write a memory profile into")

	flag.Parse()

	attack.Init()

	b, err := position.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("malformed fen %q: %s", *fen, err)
	}

	switch {
	case *cpuprofile != "":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(filepath.Clean(*cpuprofile))).Stop()
	case *memprofile != "":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(filepath.Clean(*memprofile))).Stop()
	}

	log.Printf("\nRoot position:\n%s\n\t%s\n", cli.Position(b), *fen)

	start := time.Now()
	switch {
	case *divide:
		total := perft.Divide(os.Stdout, b, *depth)
		log.Printf("Nodes: %d", total)
	case *verbose:
		c := perft.Verbose(b, *depth)
		log.Printf("Nodes: %d  Captures: %d  EnPassant: %d  Castles: %d  "+
			"Promotions: %d  Checks: %d  DoubleChecks: %d",
			c.Nodes, c.Captures, c.EnPassant, c.Castles, c.Promotions, c.Checks, c.DoubleChecks)
	default:
		nodes := perft.Perft(b, *depth)
		log.Printf("Nodes: %d", nodes)
	}
	log.Printf("Elapsed time: %s", time.Since(start))
}
