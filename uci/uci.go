// Package uci implements the thin line-oriented protocol adapter
// between a GUI and the engine core. It owns no chess logic: every
// command either mutates a position.Board, forwards to search.Searcher,
// or prints one of engineconfig's options.
//
// The blocking stdin-reader loop runs concurrently with a dispatched
// search through a persistent golang.org/x/sync/errgroup.Group, so a
// "stop" command is read and applied without waiting for the search's
// own time or node limit to expire.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/corvidchess/corvid/book"
	"github.com/corvidchess/corvid/cli"
	"github.com/corvidchess/corvid/enginelog"
	"github.com/corvidchess/corvid/engineconfig"
	"github.com/corvidchess/corvid/eval"
	"github.com/corvidchess/corvid/movegen"
	"github.com/corvidchess/corvid/position"
	"github.com/corvidchess/corvid/search"
	"github.com/corvidchess/corvid/tt"
	"golang.org/x/sync/errgroup"
)

const (
	engineName   = "Corvid"
	engineAuthor = "corvidchess"
)

// Adapter holds the mutable UCI session state: the current position, the
// engine options, and the long-lived search objects that persist across
// "position"/"go" pairs (the transposition table in particular must
// survive a ucinewgame-less sequence of searches to stay useful).
type Adapter struct {
	out io.Writer

	opts   engineconfig.Options
	board  *position.Board
	table  *tt.Table
	book   *book.Book
	search *search.Searcher

	stopSearch context.CancelFunc
	searchDone chan struct{}
	group      errgroup.Group
}

// New builds an Adapter that writes protocol responses to w, seeded with
// opts (normally engineconfig.Defaults() or the result of
// engineconfig.Load).
func New(w io.Writer, opts engineconfig.Options) *Adapter {
	a := &Adapter{
		out:   w,
		opts:  opts.Clamped(),
		board: startposBoard(),
	}
	a.rebuildTable()
	a.loadBookIfEnabled()
	return a
}

func startposBoard() *position.Board {
	b, err := position.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		panic("uci: startpos FEN failed to parse: " + err.Error())
	}
	return b
}

func (a *Adapter) rebuildTable() {
	a.table = tt.NewTable(a.opts.HashMB)
	a.search = search.NewSearcher(a.table, eval.Classic{}, a.book)
}

func (a *Adapter) loadBookIfEnabled() {
	if !a.opts.OwnBook || a.opts.BookFile == "" {
		a.book = nil
		a.search = search.NewSearcher(a.table, eval.Classic{}, nil)
		return
	}
	b, err := book.Load(a.opts.BookFile)
	if err != nil {
		enginelog.Errorf("failed to load book %q: %s", a.opts.BookFile, err)
		a.book = nil
		a.search = search.NewSearcher(a.table, eval.Classic{}, nil)
		return
	}
	a.book = b
	a.search = search.NewSearcher(a.table, eval.Classic{}, a.book)
}

// Run reads UCI commands from r, one per line, until "quit" or EOF, and
// writes protocol responses to the Adapter's configured writer.
func Run(r io.Reader, w io.Writer, opts engineconfig.Options) {
	a := New(w, opts)
	a.Run(r)
}

// Run drives the command loop over an already-constructed Adapter; Run
// (the package function) is a convenience wrapper for the common case.
func (a *Adapter) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !a.dispatch(line) {
			break
		}
	}
	a.handleStop()
	_ = a.group.Wait()
}

func (a *Adapter) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "uci":
		a.handleUCI()
	case "isready":
		a.println("readyok")
	case "ucinewgame":
		a.handleNewGame()
	case "position":
		a.handlePosition(args)
	case "go":
		a.handleGo(args)
	case "stop":
		a.handleStop()
	case "setoption":
		a.handleSetOption(args)
	case "d":
		a.println(cli.Position(a.board))
	case "debug":
		a.handleDebug(args)
	case "quit":
		a.handleStop()
		return false
	default:
		enginelog.Warningf("unrecognized UCI command: %q", line)
	}
	return true
}

func (a *Adapter) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *Adapter) handleUCI() {
	a.println("id name " + engineName)
	a.println("id author " + engineAuthor)
	a.println(fmt.Sprintf("option name Hash type spin default %d min %d max %d",
		engineconfig.Defaults().HashMB, engineconfig.MinHashMB, engineconfig.MaxHashMB))
	a.println("option name OwnBook type check default false")
	a.println("option name BookFile type string default <empty>")
	a.println(fmt.Sprintf("option name MultiPV type spin default %d min %d max %d",
		engineconfig.Defaults().MultiPV, engineconfig.MinMultiPV, engineconfig.MaxMultiPV))
	a.println("option name Threads type spin default 1 min 1 max 1")
	a.println("uciok")
	enginelog.Debugf("engine identified, options advertised")
}

func (a *Adapter) handleNewGame() {
	a.board = startposBoard()
	a.rebuildTable()
	a.loadBookIfEnabled()
}

func (a *Adapter) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	idx := 0
	switch args[0] {
	case "startpos":
		a.board = startposBoard()
		idx = 1
	case "fen":
		end := idx + 1
		for end < len(args) && args[end] != "moves" {
			end++
		}
		fen := strings.Join(args[1:end], " ")
		b, err := position.ParseFEN(fen)
		if err != nil {
			enginelog.Warningf("malformed position fen: %q: %s", fen, err)
			return
		}
		a.board = b
		idx = end
	default:
		enginelog.Warningf("malformed position command: %q", strings.Join(args, " "))
		return
	}

	if idx < len(args) && args[idx] == "moves" {
		for _, uciMove := range args[idx+1:] {
			m, ok := movegen.FindByUCI(a.board, uciMove)
			if !ok || !a.board.MakeMove(m) {
				enginelog.Warningf("illegal move in position command: %q", uciMove)
				return
			}
		}
	}
}

// handleGo dispatches a search on its own goroutine and returns
// immediately, so the command loop stays free to read "stop" off stdin
// while the search runs; a blocking call here would starve that read
// and "stop" would only ever be observed after the search's own time
// or node limit expired.
func (a *Adapter) handleGo(args []string) {
	a.handleStop() // a GUI may send "go" while a previous search is still winding down.

	limits := parseGoLimits(args)

	ctx, cancel := context.WithCancel(context.Background())
	a.stopSearch = cancel
	done := make(chan struct{})
	a.searchDone = done

	board := a.board

	a.group.Go(func() error {
		defer close(done)
		result := a.search.Run(ctx, board, limits, a.reportInfo)
		a.println("bestmove " + result.BestMove.UCI())
		return nil
	})
}

func (a *Adapter) reportInfo(depth, multiPVIndex int, line search.Line, nodes uint64, elapsed time.Duration, hashfull int) {
	var pv strings.Builder
	for i, m := range line.PV {
		if i > 0 {
			pv.WriteByte(' ')
		}
		pv.WriteString(m.UCI())
	}

	nps := uint64(0)
	if elapsed > 0 {
		nps = uint64(float64(nodes) / elapsed.Seconds())
	}

	score := fmt.Sprintf("cp %d", line.Score)
	if search.IsMateScore(line.Score) {
		score = fmt.Sprintf("mate %d", search.MateIn(line.Score))
	}

	a.println(fmt.Sprintf("info depth %d multipv %d score %s nodes %d nps %d hashfull %d time %d pv %s",
		depth, multiPVIndex, score, nodes, nps, hashfull, elapsed.Milliseconds(), pv.String()))
}

func (a *Adapter) handleStop() {
	if a.stopSearch != nil {
		enginelog.Debugf("search cancelled by stop command")
		a.search.Stop()
		a.stopSearch()
	}
	if a.searchDone != nil {
		<-a.searchDone
	}
}

func (a *Adapter) handleDebug(args []string) {
	if len(args) == 1 && args[0] == "on" {
		enginelog.SetLevel(true)
	} else if len(args) == 1 && args[0] == "off" {
		enginelog.SetLevel(false)
	} else {
		enginelog.Warningf("malformed debug command: %q", strings.Join(args, " "))
	}
}

func (a *Adapter) handleSetOption(args []string) {
	name, value, ok := parseSetOption(args)
	if !ok {
		enginelog.Warningf("malformed setoption command: %q", strings.Join(args, " "))
		return
	}

	switch strings.ToLower(name) {
	case "hash":
		n, err := strconv.Atoi(value)
		if err != nil {
			enginelog.Warningf("malformed Hash value: %q", value)
			return
		}
		a.opts.HashMB = n
		a.opts = a.opts.Clamped()
		a.rebuildTable()
	case "ownbook":
		a.opts.OwnBook = strings.EqualFold(value, "true")
		a.loadBookIfEnabled()
	case "bookfile":
		a.opts.BookFile = value
		a.loadBookIfEnabled()
	case "multipv":
		n, err := strconv.Atoi(value)
		if err != nil {
			enginelog.Warningf("malformed MultiPV value: %q", value)
			return
		}
		a.opts.MultiPV = n
		a.opts = a.opts.Clamped()
	case "threads":
		// accepted for protocol compatibility, always pinned to 1.
	default:
		enginelog.Warningf("unrecognized option name: %q", name)
		return
	}
	enginelog.Debugf("option %s set to %q", name, value)
}

// parseSetOption extracts name and value from the tokens following
// "setoption", e.g. ["name", "Hash", "value", "128"].
func parseSetOption(args []string) (name, value string, ok bool) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", false
	}
	valueIdx := -1
	for i, a := range args {
		if a == "value" {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		name = strings.Join(args[1:], " ")
		return name, "", name != ""
	}
	name = strings.Join(args[1:valueIdx], " ")
	value = strings.Join(args[valueIdx+1:], " ")
	return name, value, name != ""
}

// parseGoLimits reads the tokens following "go" into a search.Limits.
// Unrecognized tokens are ignored rather than rejected, matching how GUI
// implementations occasionally send forward-looking keywords engines
// don't yet support.
func parseGoLimits(args []string) search.Limits {
	var limits search.Limits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			i++
			if i < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i])
			}
		case "nodes":
			i++
			if i < len(args) {
				n, _ := strconv.ParseUint(args[i], 10, 64)
				limits.Nodes = n
			}
		case "movetime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.Movetime = time.Duration(ms) * time.Millisecond
			}
		case "wtime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.WTime = time.Duration(ms) * time.Millisecond
			}
		case "btime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.BTime = time.Duration(ms) * time.Millisecond
			}
		case "winc":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.WInc = time.Duration(ms) * time.Millisecond
			}
		case "binc":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.BInc = time.Duration(ms) * time.Millisecond
			}
		case "movestogo":
			i++
			if i < len(args) {
				limits.MovesToGo, _ = strconv.Atoi(args[i])
			}
		case "multipv":
			i++
			if i < len(args) {
				limits.MultiPV, _ = strconv.Atoi(args[i])
			}
		case "infinite":
			limits.Infinite = true
		}
	}
	return limits
}
