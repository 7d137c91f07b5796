// Package search implements iterative-deepening alpha-beta search with
// quiescence, null-move pruning, late-move reductions and a transposition
// table. The Searcher holds per-ply killer move slots, a from/to history
// table, a node counter, and a cooperative stop flag checked periodically
// during the walk.
package search

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/book"
	"github.com/corvidchess/corvid/enginelog"
	"github.com/corvidchess/corvid/eval"
	"github.com/corvidchess/corvid/move"
	"github.com/corvidchess/corvid/movegen"
	"github.com/corvidchess/corvid/piece"
	"github.com/corvidchess/corvid/position"
	"github.com/corvidchess/corvid/tt"
)

const (
	// Mate is the base mate score; a mate found at ply p is reported as
	// Mate - p so that shallower mates score higher than deeper ones.
	Mate = 30000
	// MaxDepth bounds ply-indexed arrays (killers, PV) and the
	// mate-score-classification threshold.
	MaxDepth = 128
	// Draw is returned for insufficient material and stalemate.
	Draw = 0

	infinity = Mate + 1
)

// Limits bounds a single search call. All fields are optional except
// that a caller should set at least one of Depth, Movetime, or the
// per-side clock fields, or Infinite — otherwise the search runs to
// MaxDepth.
type Limits struct {
	Depth      int
	Nodes      uint64
	Movetime   time.Duration
	WTime, BTime time.Duration
	WInc, BInc   time.Duration
	MovesToGo  int
	Infinite   bool
	MultiPV    int
}

// timeForMove converts a clock-based limit into a single search budget,
// per spec: time/movestogo + inc/2, capped at time/2.
func timeForMove(remaining, inc time.Duration, movesToGo int) time.Duration {
	if movesToGo <= 0 {
		movesToGo = 30
	}
	budget := remaining/time.Duration(movesToGo) + inc/2
	if cap := remaining / 2; budget > cap {
		budget = cap
	}
	return budget
}

// Line is one reported principal variation, used for MultiPV output.
type Line struct {
	Score int
	PV    []move.Move
}

// Result is returned by Run once a search concludes (by limit, by a
// completed iteration at Infinite, or by Stop).
type Result struct {
	BestMove move.Move
	Lines    []Line
	Depth    int
	Nodes    uint64
}

// InfoFunc receives one UCI "info"-equivalent report per completed
// iteration/line. The uci package adapts this into protocol text.
type InfoFunc func(depth, multiPVIndex int, line Line, nodes uint64, elapsed time.Duration, hashfull int)

// Searcher owns the mutable state of one search: the transposition
// table, killer/history tables, and node/stop bookkeeping. It is not
// safe for concurrent use — per the engine's single-writer-TT contract,
// exactly one goroutine drives a Searcher at a time.
type Searcher struct {
	TT   *tt.Table
	Eval eval.Evaluator
	Book *book.Book

	killers [MaxDepth][2]move.Move
	history [64][64]int

	rng *rand.Rand

	nodes uint64
	stop  atomic.Bool

	deadline time.Time
	hasDeadline bool
	nodeLimit   uint64
}

// NewSearcher builds a Searcher with the given transposition table and
// evaluator. Passing a nil book disables book probing.
func NewSearcher(table *tt.Table, evaluator eval.Evaluator, b *book.Book) *Searcher {
	return &Searcher{
		TT:   table,
		Eval: evaluator,
		Book: b,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Stop requests cooperative cancellation; the running search observes it
// at the next node entry and unwinds, returning the last fully completed
// iteration's result.
func (s *Searcher) Stop() { s.stop.Store(true) }

// Run performs iterative deepening from board up to limits, invoking
// info for each completed depth/line. It returns the best move found by
// the last depth that finished before cancellation.
func (s *Searcher) Run(ctx context.Context, board *position.Board, limits Limits, info InfoFunc) Result {
	s.stop.Store(false)
	s.nodes = 0
	s.TT.NewSearch()

	if s.Book != nil {
		if m, ok := s.Book.Probe(board, s.rng); ok {
			enginelog.Debugf("book hit for hash %x: %s", board.Hash, m.UCI())
			return Result{BestMove: m, Depth: 0, Nodes: 0}
		}
		enginelog.Debugf("book miss for hash %x", board.Hash)
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	s.nodeLimit = limits.Nodes

	start := time.Now()
	if limits.Movetime > 0 {
		s.deadline = start.Add(limits.Movetime)
		s.hasDeadline = true
	} else if !limits.Infinite && (limits.WTime > 0 || limits.BTime > 0) {
		var remaining, inc time.Duration
		if board.SideToMove == piece.White {
			remaining, inc = limits.WTime, limits.WInc
		} else {
			remaining, inc = limits.BTime, limits.BInc
		}
		s.deadline = start.Add(timeForMove(remaining, inc, limits.MovesToGo))
		s.hasDeadline = true
	} else {
		s.hasDeadline = false
	}

	multiPV := limits.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}

	var result Result
	prevScore := 0

	for depth := 1; depth <= maxDepth; depth++ {
		select {
		case <-ctx.Done():
			s.stop.Store(true)
		default:
		}
		if s.stop.Load() {
			break
		}

		var lines []Line
		if multiPV > 1 {
			lines = s.searchMultiPV(board, depth, multiPV)
			if s.stop.Load() && depth > 1 {
				break
			}
		} else {
			score := s.searchRoot(board, depth, prevScore)
			if s.stop.Load() && depth > 1 {
				break
			}
			pv := s.reconstructPV(board, depth)
			lines = []Line{{Score: score, PV: pv}}
			prevScore = score
		}

		if len(lines) == 0 || len(lines[0].PV) == 0 {
			break
		}

		result = Result{BestMove: lines[0].PV[0], Lines: lines, Depth: depth, Nodes: s.nodes}

		if info != nil {
			elapsed := time.Since(start)
			for i, l := range lines {
				info(depth, i+1, l, s.nodes, elapsed, s.TT.Hashfull())
			}
		}

		if s.timeUp() {
			break
		}
	}

	return result
}

func (s *Searcher) searchMultiPV(board *position.Board, depth, n int) []Line {
	moves := movegen.Generate(board).Slice()
	type scored struct {
		m     move.Move
		score int
	}
	var all []scored
	for _, m := range moves {
		clone := board.Clone()
		if !clone.MakeMove(m) {
			continue
		}
		score := -s.alphaBeta(clone, depth-1, -infinity, infinity, 1, true)
		all = append(all, scored{m, score})
		if s.stop.Load() {
			break
		}
	}
	// Simple descending insertion sort: move counts at the root are small
	// (at most 218), so an O(n^2) sort costs nothing measurable here.
	for i := 1; i < len(all); i++ {
		j := i
		for j > 0 && all[j].score > all[j-1].score {
			all[j], all[j-1] = all[j-1], all[j]
			j--
		}
	}
	if n > len(all) {
		n = len(all)
	}
	lines := make([]Line, n)
	for i := 0; i < n; i++ {
		lines[i] = Line{Score: all[i].score, PV: []move.Move{all[i].m}}
	}
	return lines
}

func (s *Searcher) searchRoot(board *position.Board, depth, prevScore int) int {
	alpha, beta := -infinity, infinity
	if depth >= 4 {
		alpha, beta = prevScore-50, prevScore+50
	}

	for {
		score := s.alphaBeta(board, depth, alpha, beta, 0, true)
		if s.stop.Load() {
			return score
		}
		if score <= alpha {
			alpha = -infinity
			continue
		}
		if score >= beta {
			beta = infinity
			continue
		}
		return score
	}
}

func (s *Searcher) timeUp() bool {
	if s.hasDeadline && time.Now().After(s.deadline) {
		return true
	}
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		return true
	}
	return false
}

// checkStop is called at every node entry, per the cooperative
// cancellation contract: time and node budgets are polled unconditionally,
// not sampled every N nodes.
func (s *Searcher) checkStop() bool {
	if s.stop.Load() {
		return true
	}
	if s.timeUp() {
		s.stop.Store(true)
		return true
	}
	return false
}

// IsMateScore reports whether score represents a forced mate rather than
// a material/positional evaluation.
func IsMateScore(score int) bool {
	if score < 0 {
		score = -score
	}
	return score >= Mate-MaxDepth
}

// MateIn converts a mate-class score into the signed number of full moves
// to mate: positive when the side to move delivers it, negative when it
// is delivered against them.
func MateIn(score int) int {
	n := (Mate - abs(score) + 1) / 2
	if score < 0 {
		return -n
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (s *Searcher) alphaBeta(board *position.Board, depth, alpha, beta, ply int, isPV bool) int {
	if s.checkStop() {
		return 0
	}
	s.nodes++

	if alpha >= Mate-ply {
		return Mate - ply
	}
	if beta <= -(Mate - ply) {
		return -(Mate - ply)
	}

	if ply > 0 && board.InsufficientMaterial() {
		return Draw
	}

	originalAlpha := alpha

	var ttMove move.Move
	if entry, ok := s.TT.Probe(board.Hash); ok {
		ttMove = entry.Move
		if !isPV && int(entry.Depth) >= depth {
			score := int(entry.Score)
			switch entry.Flag {
			case tt.Exact:
				return score
			case tt.LowerBound:
				if score >= beta {
					return score
				}
			case tt.UpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	inCheck := board.Checkers != 0
	if depth <= 0 {
		return s.quiescence(board, alpha, beta, ply)
	}
	if inCheck {
		depth++
	}

	if !isPV && !inCheck && ply > 0 && depth >= 3 && hasNonPawnMaterial(board) {
		clone := board.Clone()
		clone.SideToMove = clone.SideToMove.Other()
		clone.EnPassant = bitboard.NoSquare
		clone.Hash = clone.RecomputeHash()
		clone.Checkers = clone.AttackersTo(clone.KingSquare(clone.SideToMove), clone.SideToMove.Other())
		r := 3 + depth/6
		nullDepth := depth - 1 - r
		if nullDepth < 0 {
			nullDepth = 0
		}
		score := -s.alphaBeta(clone, nullDepth, -beta, -beta+1, ply+1, false)
		if s.stop.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	moves := movegen.Generate(board).Slice()
	if len(moves) == 0 {
		if inCheck {
			return -Mate + ply
		}
		return Draw
	}

	ordered := s.orderMoves(board, moves, ttMove, ply)

	bestScore := -infinity
	var bestMove move.Move

	for i, m := range ordered {
		clone := board.Clone()
		if !clone.MakeMove(m) {
			continue
		}

		var score int
		quiet := !m.IsCapture() && !m.IsPromotion()

		if i == 0 {
			score = -s.alphaBeta(clone, depth-1, -beta, -alpha, ply+1, isPV)
		} else {
			reduced := depth - 1
			if depth >= 3 && i >= 4 && quiet && !inCheck {
				r := 1 + i/8
				reduced = depth - 1 - r
				if reduced < 0 {
					reduced = 0
				}
			}
			score = -s.alphaBeta(clone, reduced, -alpha-1, -alpha, ply+1, false)
			if score > alpha && reduced != depth-1 {
				score = -s.alphaBeta(clone, depth-1, -alpha-1, -alpha, ply+1, false)
			}
			if score > alpha && (isPV || score < beta) {
				score = -s.alphaBeta(clone, depth-1, -beta, -alpha, ply+1, isPV)
			}
		}

		if s.stop.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if quiet {
				s.recordKiller(ply, m)
				s.history[m.From()][m.To()]++
			}
			break
		}
	}

	var flag tt.Flag
	switch {
	case bestScore >= beta:
		flag = tt.LowerBound
	case bestScore <= originalAlpha:
		flag = tt.UpperBound
	default:
		flag = tt.Exact
	}
	s.TT.Store(board.Hash, bestMove, int8(depth), int16(bestScore), flag)

	return bestScore
}

func (s *Searcher) quiescence(board *position.Board, alpha, beta, ply int) int {
	if s.checkStop() {
		return 0
	}
	s.nodes++

	standPat := s.Eval.Evaluate(board)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	for _, m := range movegen.Generate(board).Slice() {
		if !m.IsCapture() && !m.IsPromotion() {
			continue
		}
		if !m.IsPromotion() && standPat+1000 < alpha {
			continue
		}

		clone := board.Clone()
		if !clone.MakeMove(m) {
			continue
		}

		score := -s.quiescence(clone, -beta, -alpha, ply+1)
		if s.stop.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

func hasNonPawnMaterial(board *position.Board) bool {
	us := board.SideToMove
	own := board.ColorBB[us]
	nonPawnKing := own &^ board.PieceBB[piece.Pawn] &^ board.PieceBB[piece.King]
	return nonPawnKing != 0
}

func (s *Searcher) recordKiller(ply int, m move.Move) {
	if ply >= MaxDepth {
		return
	}
	if s.killers[ply][0] == m {
		return
	}
	s.killers[ply][1] = s.killers[ply][0]
	s.killers[ply][0] = m
}

const (
	ttMoveScore   = 1 << 30
	captureBase   = 100000
	killerBonus   = 90000
)

func (s *Searcher) orderMoves(board *position.Board, moves []move.Move, ttMove move.Move, ply int) []move.Move {
	scores := make([]int, len(moves))
	for i, m := range moves {
		switch {
		case m == ttMove && !m.IsNull():
			scores[i] = ttMoveScore
		case m.IsCapture():
			scores[i] = captureBase + mvvLva(board, m)
		case ply < MaxDepth && (m == s.killers[ply][0] || m == s.killers[ply][1]):
			scores[i] = killerBonus
		default:
			scores[i] = s.history[m.From()][m.To()]
		}
	}

	ordered := append([]move.Move(nil), moves...)
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && scores[j] > scores[j-1] {
			scores[j], scores[j-1] = scores[j-1], scores[j]
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
			j--
		}
	}
	return ordered
}

// pieceOrderValue gives each piece type's value for MVV-LVA, indexed by
// piece.PieceType.
var pieceOrderValue = [piece.NumPieceTypes]int{
	piece.Pawn:   eval.PawnValue,
	piece.Knight: eval.KnightValue,
	piece.Bishop: eval.BishopValue,
	piece.Rook:   eval.RookValue,
	piece.Queen:  eval.QueenValue,
	piece.King:   eval.KingValue,
}

func mvvLva(board *position.Board, m move.Move) int {
	victim := pieceOrderValue[piece.Pawn]
	if m.IsEnPassant() {
		victim = pieceOrderValue[piece.Pawn]
	} else if captured := board.PieceAt(m.To()); captured != piece.NoPiece {
		victim = pieceOrderValue[captured.Type()]
	}
	attacker := pieceOrderValue[board.PieceAt(m.From()).Type()]
	return victim*10 - attacker
}

// reconstructPV walks the TT from board, following each entry's best
// move, stopping at cache miss, illegal move, or a depth+1 cap to avoid
// cycling through a repeated position.
func (s *Searcher) reconstructPV(board *position.Board, depth int) []move.Move {
	pv := make([]move.Move, 0, depth+1)
	cur := board.Clone()

	for i := 0; i <= depth; i++ {
		entry, ok := s.TT.Probe(cur.Hash)
		if !ok || entry.Move.IsNull() {
			break
		}
		m := entry.Move
		if !cur.MakeMove(m) {
			break
		}
		pv = append(pv, m)
	}

	return pv
}
