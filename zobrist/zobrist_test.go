package zobrist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeterministic(t *testing.T) {
	a := build()
	b := build()
	require.Equal(t, a.Piece, b.Piece)
	require.Equal(t, a.Side, b.Side)
	require.Equal(t, a.Castling, b.Castling)
	require.Equal(t, a.EnPassant, b.EnPassant)
}

func TestKeysAreDistinct(t *testing.T) {
	seen := map[uint64]bool{}
	k := Global
	for p := range k.Piece {
		for sq := range k.Piece[p] {
			require.False(t, seen[k.Piece[p][sq]], "duplicate zobrist key")
			seen[k.Piece[p][sq]] = true
		}
	}
	require.False(t, seen[k.Side])
	seen[k.Side] = true
	for _, c := range k.Castling {
		require.False(t, seen[c])
		seen[c] = true
	}
	for _, e := range k.EnPassant {
		require.False(t, seen[e])
		seen[e] = true
	}
}

func TestXorshiftNoImmediateRepeat(t *testing.T) {
	rng := newXorshift64(1)
	a := rng.next()
	b := rng.next()
	require.NotEqual(t, a, b)
}

func TestXorshiftRejectsZeroSeed(t *testing.T) {
	rng := newXorshift64(0)
	require.NotEqual(t, uint64(0), rng.next())
}
