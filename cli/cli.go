// Package cli renders a position.Board as text for the UCI adapter's
// debug-only "d" command: a file/rank grid over piece.Piece/position.Board,
// with White's pieces colored so a terminal GUI driving the engine by hand
// can tell the sides apart at a glance.
package cli

import (
	"strings"

	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/piece"
	"github.com/corvidchess/corvid/position"
	"github.com/fatih/color"
)

var pieceSymbols = [piece.NumPieces]rune{
	'P', 'N', 'B', 'R', 'Q', 'K',
	'p', 'n', 'b', 'r', 'q', 'k',
}

var squareString = [64]string{
	"a1", "b1", "c1", "d1", "e1", "f1", "g1", "h1",
	"a2", "b2", "c2", "d2", "e2", "f2", "g2", "h2",
	"a3", "b3", "c3", "d3", "e3", "f3", "g3", "h3",
	"a4", "b4", "c4", "d4", "e4", "f4", "g4", "h4",
	"a5", "b5", "c5", "d5", "e5", "f5", "g5", "h5",
	"a6", "b6", "c6", "d6", "e6", "f6", "g6", "h6",
	"a7", "b7", "c7", "d7", "e7", "f7", "g7", "h7",
	"a8", "b8", "c8", "d8", "e8", "f8", "g8", "h8",
}

var whitePiece = color.New(color.FgWhite, color.Bold)

// Position formats b as an 8x8 grid (rank 8 first) followed by side to
// move, the en-passant target square, castling rights, and the Zobrist
// hash, matching the information a UCI "d" command conventionally
// prints.
func Position(b *position.Board) string {
	var out strings.Builder

	for rank := 7; rank >= 0; rank-- {
		out.WriteByte(byte(rank) + 1 + '0')
		out.WriteString("  ")

		for file := 0; file < 8; file++ {
			sq := bitboard.NewSquare(file, rank)
			p := b.PieceAt(sq)

			symbol := "."
			if p != piece.NoPiece {
				symbol = string(pieceSymbols[p])
				if p.Color() == piece.White {
					symbol = whitePiece.Sprint(symbol)
				}
			}

			out.WriteString(symbol)
			out.WriteString("  ")
		}
		out.WriteByte('\n')
	}
	out.WriteString("   a  b  c  d  e  f  g  h\n\n")

	out.WriteString("Side to move: ")
	if b.SideToMove == piece.White {
		out.WriteString("white\n")
	} else {
		out.WriteString("black\n")
	}

	out.WriteString("En passant: ")
	if b.EnPassant == bitboard.NoSquare {
		out.WriteString("none\n")
	} else {
		out.WriteString(squareString[b.EnPassant])
		out.WriteByte('\n')
	}

	out.WriteString("Castling rights: ")
	out.WriteString(castlingString(b.Castling))
	out.WriteByte('\n')

	out.WriteString("Zobrist hash: ")
	out.WriteString(hashString(b.Hash))
	out.WriteByte('\n')

	return out.String()
}

func castlingString(rights piece.CastlingRights) string {
	var s strings.Builder
	if rights.Has(piece.WhiteKingside) {
		s.WriteByte('K')
	}
	if rights.Has(piece.WhiteQueenside) {
		s.WriteByte('Q')
	}
	if rights.Has(piece.BlackKingside) {
		s.WriteByte('k')
	}
	if rights.Has(piece.BlackQueenside) {
		s.WriteByte('q')
	}
	if s.Len() == 0 {
		return "-"
	}
	return s.String()
}

const hexDigits = "0123456789abcdef"

func hashString(h uint64) string {
	b := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		b[i] = hexDigits[h&0xF]
		h >>= 4
	}
	return string(b)
}
