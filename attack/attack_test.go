package attack

import (
	"testing"

	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/piece"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Init()
	m.Run()
}

func TestKnightAttacksCorner(t *testing.T) {
	// A knight on a1 attacks exactly b3 and c2.
	got := Knight(bitboard.NewSquare(0, 0))
	want := bitboard.FromSquare(bitboard.NewSquare(1, 2)) | bitboard.FromSquare(bitboard.NewSquare(2, 1))
	require.Equal(t, want, got)
}

func TestKnightAttacksCenter(t *testing.T) {
	got := Knight(bitboard.NewSquare(4, 4))
	require.Equal(t, 8, got.Count())
}

func TestKingAttacksCorner(t *testing.T) {
	got := King(bitboard.NewSquare(0, 0))
	require.Equal(t, 3, got.Count())
}

func TestKingAttacksCenter(t *testing.T) {
	got := King(bitboard.NewSquare(4, 4))
	require.Equal(t, 8, got.Count())
}

func TestPawnAttacks(t *testing.T) {
	sq := bitboard.NewSquare(4, 3) // e4
	white := Pawn(piece.White, sq)
	require.Equal(t, 2, white.Count())
	require.True(t, white.Has(bitboard.NewSquare(3, 4)))
	require.True(t, white.Has(bitboard.NewSquare(5, 4)))

	black := Pawn(piece.Black, sq)
	require.True(t, black.Has(bitboard.NewSquare(3, 2)))
	require.True(t, black.Has(bitboard.NewSquare(5, 2)))
}

func TestRookAttacksEmptyBoard(t *testing.T) {
	// A rook on a1 on an empty board attacks the whole a-file and 1st rank
	// (minus its own square).
	got := Rook(bitboard.NewSquare(0, 0), bitboard.Empty)
	want := (bitboard.FileA | bitboard.Rank1) &^ bitboard.FromSquare(bitboard.NewSquare(0, 0))
	require.Equal(t, want, got)
}

func TestRookAttacksBlocked(t *testing.T) {
	// A rook on a1 with a blocker on a4 stops at a4 (inclusive).
	occ := bitboard.FromSquare(bitboard.NewSquare(0, 3))
	got := Rook(bitboard.NewSquare(0, 0), occ)
	require.True(t, got.Has(bitboard.NewSquare(0, 3)))
	require.False(t, got.Has(bitboard.NewSquare(0, 4)))
	require.True(t, got.Has(bitboard.NewSquare(7, 0)))
}

func TestBishopAttacksBlocked(t *testing.T) {
	// A bishop on d4 blocked by a piece on f6 stops there, doesn't see g7/h8.
	occ := bitboard.FromSquare(bitboard.NewSquare(5, 5))
	got := Bishop(bitboard.NewSquare(3, 3), occ)
	require.True(t, got.Has(bitboard.NewSquare(5, 5)))
	require.False(t, got.Has(bitboard.NewSquare(6, 6)))
}

func TestBetweenAndLine(t *testing.T) {
	a1 := bitboard.NewSquare(0, 0)
	a4 := bitboard.NewSquare(0, 3)
	got := Between(a1, a4)
	require.True(t, got.Has(bitboard.NewSquare(0, 1)))
	require.True(t, got.Has(bitboard.NewSquare(0, 2)))
	require.False(t, got.Has(a4))
	require.False(t, got.Has(a1))

	require.True(t, Line(a1, a4).Has(bitboard.NewSquare(0, 7)))
}

func TestBetweenUnaligned(t *testing.T) {
	require.Equal(t, bitboard.Empty, Between(bitboard.NewSquare(0, 0), bitboard.NewSquare(1, 5)))
}

func TestQueenIsUnionOfRookAndBishop(t *testing.T) {
	sq := bitboard.NewSquare(3, 3)
	occ := bitboard.FromSquare(bitboard.NewSquare(3, 6))
	require.Equal(t, Rook(sq, occ)|Bishop(sq, occ), Queen(sq, occ))
}
