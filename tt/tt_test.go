package tt

import (
	"testing"

	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/move"
	"github.com/stretchr/testify/require"
)

func TestStoreThenProbe(t *testing.T) {
	table := NewTable(1)
	m := move.New(bitboard.NewSquare(4, 1), bitboard.NewSquare(4, 3), move.DoublePush)
	table.Store(0x1234, m, 5, 37, Exact)

	e, ok := table.Probe(0x1234)
	require.True(t, ok)
	require.Equal(t, m, e.Move)
	require.Equal(t, int8(5), e.Depth)
	require.Equal(t, int16(37), e.Score)
	require.Equal(t, Exact, e.Flag)
}

func TestProbeMissOnDifferentKey(t *testing.T) {
	table := NewTable(1)
	table.Store(0x1234, move.Null, 1, 0, Exact)

	_, ok := table.Probe(0x9999)
	require.False(t, ok)
}

func TestClearEmptiesTable(t *testing.T) {
	table := NewTable(1)
	table.Store(0x1234, move.Null, 1, 0, Exact)
	table.Clear()

	_, ok := table.Probe(0x1234)
	require.False(t, ok)
}

func TestSameAgeReplacementRequiresDeeperOrEqual(t *testing.T) {
	table := NewTable(1)
	table.Store(0x1234, move.Null, 5, 100, Exact)
	table.Store(0x1234, move.Null, 2, 200, Exact)

	e, ok := table.Probe(0x1234)
	require.True(t, ok)
	require.Equal(t, int16(100), e.Score, "shallower same-age store must not overwrite")

	table.Store(0x1234, move.Null, 5, 300, Exact)
	e, ok = table.Probe(0x1234)
	require.True(t, ok)
	require.Equal(t, int16(300), e.Score)
}

func TestStaleAgeAlwaysReplaced(t *testing.T) {
	table := NewTable(1)
	table.Store(0x1234, move.Null, 10, 100, Exact)
	table.NewSearch()
	table.Store(0x1234, move.Null, 1, 999, Exact)

	e, ok := table.Probe(0x1234)
	require.True(t, ok)
	require.Equal(t, int16(999), e.Score)
}

func TestHashfullTracksFillRatio(t *testing.T) {
	table := NewTable(1)
	require.Equal(t, 0, table.Hashfull())
	table.Store(0x12, move.Null, 1, 0, Exact)
	require.Greater(t, table.Hashfull(), 0)
}

func TestNewTableClampsSize(t *testing.T) {
	table := NewTable(0)
	require.NotEmpty(t, table.entries)

	table = NewTable(1 << 20)
	require.LessOrEqual(t, len(table.entries), 1<<31)
}
