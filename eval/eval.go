// Package eval scores a position in centipawns from the side-to-move's
// perspective, combining material (Pawn 100 .. Queen 900, King 20000)
// with a small set of positional terms: centrality, pawn advancement,
// king safety/centrality by game phase, bishop pair, and doubled pawns.
package eval

import (
	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/piece"
	"github.com/corvidchess/corvid/position"
)

// Evaluator scores a position from the side-to-move's perspective. It
// exists so a future learned evaluator can be substituted for Classic
// without touching the search package.
type Evaluator interface {
	Evaluate(b *position.Board) int
}

// Piece values in centipawns. King is given a large fictional weight so
// ordering heuristics that sum piece values never rank it below a real
// piece; mate conditions are handled separately by search, never by this
// weight appearing in a comparison against MATE.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

var pieceValue = [piece.NumPieceTypes]int{
	piece.Pawn:   PawnValue,
	piece.Knight: KnightValue,
	piece.Bishop: BishopValue,
	piece.Rook:   RookValue,
	piece.Queen:  QueenValue,
	piece.King:   KingValue,
}

const (
	bishopPairBonus   = 30
	doubledPawnPenalty = -15
)

// centralityBonus rewards knights/bishops for occupying central squares,
// indexed by a white-relative square; Classic flips the index for Black
// via Square.FlipVertical so the table only needs to be written once.
var centralityBonus = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

// pawnAdvanceBonus rewards a pawn by how far it has advanced past its
// starting rank, indexed by white-relative rank (0 = 1st .. 7 = 8th).
var pawnAdvanceBonus = [8]int{0, 0, 5, 10, 20, 35, 55, 0}

// kingEdgeSafetyBonus rewards the king for staying away from the center
// while queens are on the board; once queens are off, centralityBonus is
// reused for the king to reward the opposite.
var kingEdgeSafetyBonus = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

// Classic is the engine's static evaluator: material plus the minimum
// positional term set spec.md requires.
type Classic struct{}

// Evaluate scores b from the side-to-move's perspective: positive means
// good for whoever is to move. It satisfies the vertical-flip/color-swap
// symmetry contract by construction — every term is computed identically
// for White and Black and then subtracted, with White-relative tables
// read through FlipVertical for Black.
func (Classic) Evaluate(b *position.Board) int {
	score := materialAndPositional(b, piece.White) - materialAndPositional(b, piece.Black)

	if b.SideToMove == piece.Black {
		score = -score
	}
	return score
}

func materialAndPositional(b *position.Board, c piece.Color) int {
	score := 0
	own := b.ColorBB[c]
	hasQueens := b.PieceBB[piece.Queen] != 0

	for pt := piece.Pawn; pt <= piece.King; pt++ {
		bb := b.PieceBB[pt] & own
		score += bb.Count() * pieceValue[pt]

		for bb != 0 {
			sq := bitboard.PopLSB(&bb)
			relative := sq
			if c == piece.Black {
				relative = sq.FlipVertical()
			}

			switch pt {
			case piece.Knight, piece.Bishop:
				score += centralityBonus[relative]
			case piece.Pawn:
				score += pawnAdvanceBonus[relative.Rank()]
			case piece.King:
				if hasQueens {
					score += kingEdgeSafetyBonus[relative]
				} else {
					score += centralityBonus[relative]
				}
			}
		}
	}

	if (b.PieceBB[piece.Bishop] & own).Count() >= 2 {
		score += bishopPairBonus
	}

	for file := 0; file < 8; file++ {
		pawnsOnFile := (b.PieceBB[piece.Pawn] & own & bitboard.FileMask(file)).Count()
		if pawnsOnFile > 1 {
			score += (pawnsOnFile - 1) * doubledPawnPenalty
		}
	}

	return score
}
