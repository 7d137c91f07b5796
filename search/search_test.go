package search

import (
	"context"
	"testing"
	"time"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/eval"
	"github.com/corvidchess/corvid/movegen"
	"github.com/corvidchess/corvid/position"
	"github.com/corvidchess/corvid/tt"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	attack.Init()
	m.Run()
}

func newSearcher() *Searcher {
	return NewSearcher(tt.NewTable(4), eval.Classic{}, nil)
}

func TestStartposReturnsRootMove(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	s := newSearcher()
	result := s.Run(context.Background(), b, Limits{Depth: 4}, nil)
	require.False(t, result.BestMove.IsNull())

	found := false
	for _, m := range movegen.Generate(b).Slice() {
		if m == result.BestMove {
			found = true
		}
	}
	require.True(t, found)
}

func TestFindsMateInOne(t *testing.T) {
	b, err := position.ParseFEN("6k1/5ppp/8/8/8/8/8/4Q2K w - - 0 1")
	require.NoError(t, err)

	s := newSearcher()
	result := s.Run(context.Background(), b, Limits{Depth: 3}, nil)
	require.False(t, result.BestMove.IsNull())

	clone := b.Clone()
	require.True(t, clone.MakeMove(result.BestMove))

	if clone.Checkers != 0 && len(movegen.Generate(clone).Slice()) == 0 {
		return // checkmate delivered
	}
	require.True(t, len(result.Lines) > 0 && IsMateScore(result.Lines[0].Score))
}

func TestAvoidsStalemateWhenCheckmateIsNotForced(t *testing.T) {
	b, err := position.ParseFEN("7k/8/6K1/8/8/8/8/6Q1 w - - 0 1")
	require.NoError(t, err)

	s := newSearcher()
	result := s.Run(context.Background(), b, Limits{Depth: 4}, nil)
	require.False(t, result.BestMove.IsNull())

	clone := b.Clone()
	require.True(t, clone.MakeMove(result.BestMove))

	legal := movegen.Generate(clone).Slice()
	isCheckmate := clone.Checkers != 0 && len(legal) == 0
	isStalemate := clone.Checkers == 0 && len(legal) == 0
	require.False(t, isStalemate)
	_ = isCheckmate
}

func TestMovetimeLimitRespected(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	s := newSearcher()
	start := time.Now()
	s.Run(context.Background(), b, Limits{Movetime: 100 * time.Millisecond}, nil)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNodeLimitRespected(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	s := newSearcher()
	result := s.Run(context.Background(), b, Limits{Nodes: 1000, Depth: MaxDepth}, nil)
	require.LessOrEqual(t, result.Nodes, uint64(2000))
}

func TestStopCancelsSearch(t *testing.T) {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	s := newSearcher()
	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Stop()
	}()

	start := time.Now()
	s.Run(context.Background(), b, Limits{Depth: MaxDepth}, nil)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestTimeForMoveCapsAtHalfRemaining(t *testing.T) {
	budget := timeForMove(10*time.Second, 0, 1)
	require.LessOrEqual(t, budget, 5*time.Second)
}
