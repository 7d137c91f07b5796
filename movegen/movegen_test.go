package movegen

import (
	"testing"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/move"
	"github.com/corvidchess/corvid/position"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	attack.Init()
	m.Run()
}

func perft(b *position.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, mv := range Generate(b).Slice() {
		clone := b.Clone()
		if !clone.MakeMove(mv) {
			continue
		}
		nodes += perft(clone, depth-1)
	}
	return nodes
}

func TestPerftStartpos(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	require.Equal(t, uint64(20), perft(b, 1))
	require.Equal(t, uint64(400), perft(b, 2))
	require.Equal(t, uint64(8902), perft(b, 3))
}

// Kiwipete: the standard perft stress position exercising castling, en
// passant and promotions all at once.
func TestPerftKiwipete(t *testing.T) {
	b, err := position.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	require.Equal(t, uint64(48), perft(b, 1))
	require.Equal(t, uint64(2039), perft(b, 2))
}

func TestPerftPosition3(t *testing.T) {
	b, err := position.ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	require.NoError(t, err)

	require.Equal(t, uint64(14), perft(b, 1))
	require.Equal(t, uint64(191), perft(b, 2))
	require.Equal(t, uint64(2812), perft(b, 3))
}

func TestNoKingLeftInCheckAfterMove(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	for _, mv := range Generate(b).Slice() {
		clone := b.Clone()
		if !clone.MakeMove(mv) {
			continue
		}
		mover := clone.SideToMove.Other()
		require.Equal(t, bitboard.Empty, clone.AttackersTo(clone.KingSquare(mover), clone.SideToMove))
	}
}

func TestPinnedPieceMovesStayOnRay(t *testing.T) {
	// White knight on e2 pinned by a black rook on e8 against the king on e1.
	b, err := position.ParseFEN("4r3/8/8/8/8/8/4N3/4K3 w - - 0 1")
	require.NoError(t, err)

	for _, mv := range Generate(b).Slice() {
		if mv.From() == bitboard.NewSquare(4, 1) {
			t.Fatalf("pinned knight produced a move: %s", mv.UCI())
		}
	}
}

func TestCheckRestrictsToBlockOrCapture(t *testing.T) {
	// Black rook checks the white king from e8; the only legal replies
	// block on the e-file or capture the rook.
	b, err := position.ParseFEN("4r3/8/8/8/8/2B5/8/4K3 w - - 0 1")
	require.NoError(t, err)
	require.NotEqual(t, bitboard.Empty, b.Checkers)

	for _, mv := range Generate(b).Slice() {
		if mv.From() == bitboard.NewSquare(4, 0) {
			continue // king moves are handled separately
		}
		require.Equal(t, 4, mv.To().File(), "non-king move %s does not address the check", mv.UCI())
	}
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// Contrived double-check: both a rook and a knight attack the white king.
	b, err := position.ParseFEN("4r3/8/8/8/8/3n4/8/4K3 w - - 0 1")
	require.NoError(t, err)

	for _, mv := range Generate(b).Slice() {
		require.Equal(t, bitboard.NewSquare(4, 0), mv.From())
	}
}

func TestCastlingBlockedWhenSquaresAttacked(t *testing.T) {
	// Black rook on f8 covers f1, denying white kingside castling.
	b, err := position.ParseFEN("5r1k/8/8/8/8/8/8/4K2R w K - 0 1")
	require.NoError(t, err)

	for _, mv := range Generate(b).Slice() {
		require.NotEqual(t, move.KingCastle, mv.MoveFlag())
	}
}

func TestCastlingAvailableWhenClear(t *testing.T) {
	b, err := position.ParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	require.NoError(t, err)

	found := false
	for _, mv := range Generate(b).Slice() {
		if mv.MoveFlag() == move.KingCastle {
			found = true
		}
	}
	require.True(t, found)
}

func TestEnPassantDiscoveredCheckForbidden(t *testing.T) {
	// White king and a black rook share the 5th rank with the two pawns
	// that would vacate it on an en-passant capture — the classic
	// en-passant pin.
	b, err := position.ParseFEN("8/8/8/K1Pp3r/8/8/8/4k3 w - d6 0 1")
	require.NoError(t, err)

	for _, mv := range Generate(b).Slice() {
		require.NotEqual(t, move.EnPassant, mv.MoveFlag(), "en passant should be forbidden: exposes king to rook")
	}
}

func TestEnPassantAllowedWithoutDiscoveredCheck(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	require.NoError(t, err)

	found := false
	for _, mv := range Generate(b).Slice() {
		if mv.MoveFlag() == move.EnPassant {
			found = true
		}
	}
	require.True(t, found)
}

func TestFindByUCI(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	mv, ok := FindByUCI(b, "e2e4")
	require.True(t, ok)
	require.Equal(t, move.DoublePush, mv.MoveFlag())

	_, ok = FindByUCI(b, "e2e5")
	require.False(t, ok)
}

func TestNullMoveNeverGenerated(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	for _, mv := range Generate(b).Slice() {
		require.False(t, mv.IsNull())
	}
}
