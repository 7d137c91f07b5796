package eval

import (
	"testing"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/piece"
	"github.com/corvidchess/corvid/position"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	attack.Init()
	m.Run()
}

func TestStartposIsRoughlyBalanced(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	score := Classic{}.Evaluate(b)
	require.Less(t, score, 100)
	require.Greater(t, score, -100)
}

func TestWhiteUpAQueenScoresHigh(t *testing.T) {
	b, err := position.ParseFEN("rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	score := Classic{}.Evaluate(b)
	require.Greater(t, score, 500)
}

func TestSymmetryUnderFlipAndColorSwap(t *testing.T) {
	a, err := position.ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	require.NoError(t, err)
	flipped, err := position.ParseFEN("rnbqkb1r/pppp1ppp/5n2/4p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 2 3")
	require.NoError(t, err)

	require.Equal(t, Classic{}.Evaluate(a), Classic{}.Evaluate(flipped))
}

func TestBishopPairBonus(t *testing.T) {
	withPair, err := position.ParseFEN("4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1")
	require.NoError(t, err)
	withoutPair, err := position.ParseFEN("4k3/8/8/8/8/8/8/3BK3 w - - 0 1")
	require.NoError(t, err)

	require.Greater(t, Classic{}.Evaluate(withPair)-materialOnly(withPair),
		Classic{}.Evaluate(withoutPair)-materialOnly(withoutPair))
}

func materialOnly(b *position.Board) int {
	return (b.PieceBB[piece.Bishop] & b.ColorBB[piece.White]).Count()*BishopValue +
		(b.PieceBB[piece.King] & b.ColorBB[piece.White]).Count()*KingValue
}
