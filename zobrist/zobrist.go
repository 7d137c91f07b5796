// Package zobrist builds the engine's Zobrist hashing key table: one key
// per (piece, square), one side-to-move key, one key per castling-rights
// combination, and one key per en-passant file.
//
// The table is built once from a fixed seed through a small xorshift64
// stream rather than math/rand, so hash values stay stable across builds
// and machines — required for reproducible perft and search regression
// tests.
package zobrist

import "github.com/corvidchess/corvid/piece"

// seed is the fixed xorshift64 seed. Any nonzero uint64 works; this one
// has no special meaning beyond being nonzero.
const seed uint64 = 0x9E3779B97F4A7C15

type xorshift64 struct {
	state uint64
}

func newXorshift64(seed uint64) *xorshift64 {
	if seed == 0 {
		seed = 1
	}
	return &xorshift64{state: seed}
}

func (x *xorshift64) next() uint64 {
	x.state ^= x.state << 13
	x.state ^= x.state >> 7
	x.state ^= x.state << 17
	return x.state
}

// Keys holds the full Zobrist key table.
type Keys struct {
	// Piece indexed by piece.Piece (0..11), then by square (0..63).
	Piece [piece.NumPieces][64]uint64
	// Side is XORed in when it is Black's move.
	Side uint64
	// Castling is indexed by the raw 4-bit piece.CastlingRights value.
	Castling [16]uint64
	// EnPassant is indexed by file (0..7), hashed in whenever the position
	// has an en-passant target square on that file, whether or not a
	// capture there is available.
	EnPassant [8]uint64
}

// Global is the package-wide singleton key table, built once at package
// init so every position.Board shares identical keys within a process and
// across processes (since the seed is fixed).
var Global = build()

func build() *Keys {
	rng := newXorshift64(seed)
	k := &Keys{}

	for p := 0; p < piece.NumPieces; p++ {
		for sq := 0; sq < 64; sq++ {
			k.Piece[p][sq] = rng.next()
		}
	}
	k.Side = rng.next()
	for i := range k.Castling {
		k.Castling[i] = rng.next()
	}
	for i := range k.EnPassant {
		k.EnPassant[i] = rng.next()
	}
	return k
}
