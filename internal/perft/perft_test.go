package perft

import (
	"bytes"
	"testing"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/position"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	attack.Init()
	m.Run()
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestPerftStartposKnownNodeCounts(t *testing.T) {
	b, err := position.ParseFEN(startFEN)
	require.NoError(t, err)

	require.EqualValues(t, 1, Perft(b, 0))
	require.EqualValues(t, 20, Perft(b, 1))
	require.EqualValues(t, 400, Perft(b, 2))
	require.EqualValues(t, 8902, Perft(b, 3))
}

func TestPerftKnownPositionsMatchExactly(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		depth int
		nodes uint64
	}{
		{"startpos", startFEN, 1, 20},
		{"startpos", startFEN, 2, 400},
		{"startpos", startFEN, 3, 8902},
		{"startpos", startFEN, 4, 197281},
		{"startpos", startFEN, 5, 4865609},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 4, 4085603},
		{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 4, 43238},
		{"position4-white-castle-promo", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 3, 9467},
		{"position5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 3, 62379},
		{"position6", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", 3, 89890},
	}

	for _, c := range cases {
		b, err := position.ParseFEN(c.fen)
		require.NoError(t, err, "fen: %s", c.name)
		require.EqualValues(t, c.nodes, Perft(b, c.depth), "%s at depth %d", c.name, c.depth)
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	b, err := position.ParseFEN(startFEN)
	require.NoError(t, err)

	var out bytes.Buffer
	total := Divide(&out, b, 3)
	require.EqualValues(t, Perft(b, 3), total)
	require.Contains(t, out.String(), "e2e4")
}

func TestVerboseCapturesMatchKiwipeteDepth1(t *testing.T) {
	b, err := position.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	c := Verbose(b, 1)
	require.EqualValues(t, 48, c.Nodes)
	require.EqualValues(t, 8, c.Captures)
	require.EqualValues(t, 2, c.Castles)
	require.EqualValues(t, 0, c.Checks)
}
