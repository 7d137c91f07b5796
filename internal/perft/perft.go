// Package perft implements the standard leaf-counting move generation
// walk used both by cmd/corvid-perft and by this package's own tests to
// validate against https://www.chessprogramming.org/Perft_Results node
// counts. It is an importable package rather than a standalone debugging
// command so cmd/corvid-perft and the test suite share one implementation.
package perft

import (
	"fmt"
	"io"

	"github.com/corvidchess/corvid/move"
	"github.com/corvidchess/corvid/movegen"
	"github.com/corvidchess/corvid/position"
)

// Count is the detailed per-move-type breakdown Verbose accumulates.
type Count struct {
	Nodes        uint64
	Captures     uint64
	EnPassant    uint64
	Castles      uint64
	Promotions   uint64
	Checks       uint64
	DoubleChecks uint64
}

// Perft walks the legal move tree to depth and returns the number of
// leaf nodes reached. depth 0 counts the root position itself as one
// node (the conventional perft(0) = 1 base case).
func Perft(b *position.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := movegen.Generate(b).Slice()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		clone := b.Clone()
		if !clone.MakeMove(m) {
			continue
		}
		nodes += Perft(clone, depth-1)
	}
	return nodes
}

// Divide prints, for each legal root move, the UCI string and the perft
// count of the subtree below it to w — the standard "perft divide" debug
// aid for isolating a move generation bug to one branch.
func Divide(w io.Writer, b *position.Board, depth int) uint64 {
	var total uint64
	for _, m := range movegen.Generate(b).Slice() {
		clone := b.Clone()
		if !clone.MakeMove(m) {
			continue
		}
		n := Perft(clone, depth-1)
		fmt.Fprintf(w, "%s %d\n", m.UCI(), n)
		total += n
	}
	return total
}

// Verbose walks the legal move tree like Perft, additionally classifying
// every move into Count's capture/en-passant/castle/promotion/check
// buckets. It is slower than Perft and meant for debugging a divergence
// against known perft results, not for benchmarking.
func Verbose(b *position.Board, depth int) Count {
	var c Count
	nodes := verbose(b, depth, &c)
	c.Nodes = nodes
	return c
}

func verbose(b *position.Board, depth int, c *Count) uint64 {
	moves := movegen.Generate(b).Slice()
	if depth == 1 {
		for _, m := range moves {
			classify(b, m, c)
		}
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		clone := b.Clone()
		if !clone.MakeMove(m) {
			continue
		}
		nodes += verbose(clone, depth-1, c)
	}
	return nodes
}

func classify(b *position.Board, m move.Move, c *Count) {
	if m.IsCapture() {
		c.Captures++
	}
	if m.IsEnPassant() {
		c.EnPassant++
	}
	if m.IsCastle() {
		c.Castles++
	}
	if m.IsPromotion() {
		c.Promotions++
	}

	clone := b.Clone()
	if !clone.MakeMove(m) {
		return
	}
	if clone.Checkers != 0 {
		c.Checks++
		if clone.Checkers.Count() > 1 {
			c.DoubleChecks++
		}
	}
}
