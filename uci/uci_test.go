package uci

import (
	"bytes"
	"strings"
	"testing"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/engineconfig"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	attack.Init()
	m.Run()
}

func runLines(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	a := New(&out, engineconfig.Defaults())
	a.Run(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	return out.String()
}

func TestUCIHandshake(t *testing.T) {
	out := runLines(t, "uci")
	require.Contains(t, out, "id name Corvid")
	require.Contains(t, out, "uciok")
}

func TestIsReady(t *testing.T) {
	out := runLines(t, "isready")
	require.Contains(t, out, "readyok")
}

func TestPositionStartposThenGoReturnsBestMove(t *testing.T) {
	out := runLines(t, "position startpos", "go depth 3")
	require.Contains(t, out, "bestmove")
}

func TestPositionWithMovesAppliesThem(t *testing.T) {
	out := runLines(t, "position startpos moves e2e4 e7e5", "d")
	require.Contains(t, out, "Side to move: white")
}

func TestPositionRejectsIllegalMove(t *testing.T) {
	out := runLines(t, "position startpos moves e2e5", "d")
	require.Contains(t, out, "Side to move: white")
}

func TestSetOptionHashChangesTable(t *testing.T) {
	var out bytes.Buffer
	a := New(&out, engineconfig.Defaults())
	before := a.table
	a.Run(strings.NewReader("setoption name Hash value 4\n"))
	require.NotNil(t, a.table)
	require.NotSame(t, before, a.table)
}

func TestDCommandPrintsBoard(t *testing.T) {
	out := runLines(t, "d")
	require.Contains(t, out, "a  b  c  d  e  f  g  h")
}

func TestGoThenStopReturnsPromptly(t *testing.T) {
	out := runLines(t, "position startpos", "go infinite", "stop")
	require.Contains(t, out, "bestmove")
}

func TestUnknownCommandDoesNotCrash(t *testing.T) {
	require.NotPanics(t, func() {
		runLines(t, "notacommand")
	})
}

func TestParseSetOption(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "Hash", "value", "64"})
	require.True(t, ok)
	require.Equal(t, "Hash", name)
	require.Equal(t, "64", value)

	name, value, ok = parseSetOption([]string{"name", "Own", "Book", "value", "true"})
	require.True(t, ok)
	require.Equal(t, "Own Book", name)
	require.Equal(t, "true", value)
}

func TestParseGoLimitsReadsDepthAndMovetime(t *testing.T) {
	limits := parseGoLimits([]string{"depth", "5", "movetime", "200"})
	require.Equal(t, 5, limits.Depth)
	require.Equal(t, 200*1000*1000, int(limits.Movetime))
}
