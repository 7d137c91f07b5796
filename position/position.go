// Package position implements the mutable board state: piece bitboards,
// the mailbox mirror, FEN I/O, incremental Zobrist-hashed make-move, and
// attacker queries. The Zobrist hash is maintained incrementally inside
// MakeMove rather than recomputed by the caller after the fact, and FEN
// parsing returns typed errors instead of panicking on malformed input.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/move"
	"github.com/corvidchess/corvid/piece"
	"github.com/corvidchess/corvid/zobrist"
)

// Board is the complete mutable position.
type Board struct {
	PieceBB [piece.NumPieceTypes]bitboard.Bitboard
	ColorBB [2]bitboard.Bitboard
	Mailbox [64]piece.Piece

	SideToMove     piece.Color
	Castling       piece.CastlingRights
	EnPassant      bitboard.Square
	HalfmoveClock  int
	FullmoveNumber int

	Hash     uint64
	Checkers bitboard.Bitboard
}

// Occupied returns the union of both colors' pieces.
func (b *Board) Occupied() bitboard.Bitboard { return b.ColorBB[piece.White] | b.ColorBB[piece.Black] }

// PieceAt returns the piece on sq, or piece.NoPiece if empty.
func (b *Board) PieceAt(sq bitboard.Square) piece.Piece { return b.Mailbox[sq] }

// KingSquare returns the square of c's king.
func (b *Board) KingSquare(c piece.Color) bitboard.Square {
	return (b.PieceBB[piece.King] & b.ColorBB[c]).LSB()
}

// Clone returns an independent deep copy. Board contains no pointers or
// slices, so a value copy suffices.
func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

func (b *Board) setPiece(sq bitboard.Square, p piece.Piece) {
	bit := bitboard.FromSquare(sq)
	b.PieceBB[p.Type()] |= bit
	b.ColorBB[p.Color()] |= bit
	b.Mailbox[sq] = p
	b.Hash ^= zobrist.Global.Piece[piece.NewPiece(p.Color(), p.Type())][sq]
}

func (b *Board) clearPiece(sq bitboard.Square) {
	p := b.Mailbox[sq]
	if p == piece.NoPiece {
		return
	}
	bit := bitboard.FromSquare(sq)
	b.PieceBB[p.Type()] &^= bit
	b.ColorBB[p.Color()] &^= bit
	b.Mailbox[sq] = piece.NoPiece
	b.Hash ^= zobrist.Global.Piece[piece.NewPiece(p.Color(), p.Type())][sq]
}

// New returns an empty board: no pieces, White to move, no castling
// rights, no en-passant target.
func New() *Board {
	b := &Board{EnPassant: bitboard.NoSquare}
	for i := range b.Mailbox {
		b.Mailbox[i] = piece.NoPiece
	}
	return b
}

// AttackersTo returns the bitboard of by's pieces attacking sq, given the
// board's current occupancy. Computed by "superpiece" reverse lookup: the
// attacks a hypothetical piece of each type on sq would have, intersected
// with where that type's pieces actually are for by.
func (b *Board) AttackersTo(sq bitboard.Square, by piece.Color) bitboard.Bitboard {
	return b.AttackersToWithOccupancy(sq, by, b.Occupied())
}

// AttackersToWithOccupancy is AttackersTo but against a caller-supplied
// occupancy instead of the board's own — used by king-move legality
// (§4.3a), which must remove the king from the occupancy first so a
// sliding x-ray through the king's own square isn't missed.
func (b *Board) AttackersToWithOccupancy(sq bitboard.Square, by piece.Color, occ bitboard.Bitboard) bitboard.Bitboard {
	byPieces := b.ColorBB[by]

	var attackers bitboard.Bitboard
	attackers |= attack.Pawn(by.Other(), sq) & b.PieceBB[piece.Pawn] & byPieces
	attackers |= attack.Knight(sq) & b.PieceBB[piece.Knight] & byPieces
	attackers |= attack.King(sq) & b.PieceBB[piece.King] & byPieces

	diagonalSliders := (b.PieceBB[piece.Bishop] | b.PieceBB[piece.Queen]) & byPieces
	attackers |= attack.Bishop(sq, occ) & diagonalSliders

	straightSliders := (b.PieceBB[piece.Rook] | b.PieceBB[piece.Queen]) & byPieces
	attackers |= attack.Rook(sq, occ) & straightSliders

	return attackers
}

// InsufficientMaterial reports whether the position is one of the bare
// material cases treated as drawn: no pawns, rooks or queens and at most one
// minor piece on the board, two knights and nothing else, or one bishop per
// side on same-colored squares.
func (b *Board) InsufficientMaterial() bool {
	if b.PieceBB[piece.Pawn] != 0 || b.PieceBB[piece.Rook] != 0 || b.PieceBB[piece.Queen] != 0 {
		return false
	}
	minors := b.PieceBB[piece.Knight] | b.PieceBB[piece.Bishop]
	switch minors.Count() {
	case 0:
		return true
	case 1:
		return true
	case 2:
		// Two knights, or opposite-color bishops, can't force mate against
		// a lone king either, but a bishop pair nominally can in some
		// engines' books; treat only the bare same-color-bishops and
		// two-knight cases as insufficient, matching common engine practice.
		if b.PieceBB[piece.Knight].Count() == 2 {
			return true
		}
		if b.PieceBB[piece.Bishop].Count() == 2 {
			whiteBishops := b.PieceBB[piece.Bishop] & b.ColorBB[piece.White]
			blackBishops := b.PieceBB[piece.Bishop] & b.ColorBB[piece.Black]
			if whiteBishops != 0 && blackBishops != 0 {
				wsq := whiteBishops.LSB()
				bsq := blackBishops.LSB()
				return sameSquareColor(wsq, bsq)
			}
		}
	}
	return false
}

func sameSquareColor(a, c bitboard.Square) bool {
	return (int(a.File())+int(a.Rank()))%2 == (int(c.File())+int(c.Rank()))%2
}

// MakeMove applies m in place and returns whether the resulting position
// is legal (the mover's own king is not left in check). On a false return
// the board is left mutated and must be discarded by the caller, so callers
// apply moves to a copy when the move may be illegal.
func (b *Board) MakeMove(m move.Move) bool {
	from, to := m.From(), m.To()
	movedColor := b.SideToMove

	// 1. clear current en-passant key/state.
	if b.EnPassant != bitboard.NoSquare {
		b.Hash ^= zobrist.Global.EnPassant[b.EnPassant.File()]
		b.EnPassant = bitboard.NoSquare
	}

	// 2. update castling rights.
	oldRights := b.Castling
	newRights := oldRights &^ piece.RightsMask(int(from)) &^ piece.RightsMask(int(to))
	if newRights != oldRights {
		b.Hash ^= zobrist.Global.Castling[oldRights]
		b.Hash ^= zobrist.Global.Castling[newRights]
		b.Castling = newRights
	}

	// 3. remove the mover from its source square.
	mover := b.Mailbox[from]
	b.clearPiece(from)

	// 4/5. captures and halfmove clock.
	if m.IsCapture() {
		capturedSq := to
		if m.IsEnPassant() {
			if movedColor == piece.White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
		}
		b.clearPiece(capturedSq)
		b.HalfmoveClock = 0
	} else if mover.Type() == piece.Pawn {
		b.HalfmoveClock = 0
	} else {
		b.HalfmoveClock++
	}

	// 6. castling rook relocation.
	if m.IsCastle() {
		var rookFrom, rookTo bitboard.Square
		switch to {
		case bitboard.NewSquare(6, 0): // g1
			rookFrom, rookTo = bitboard.NewSquare(7, 0), bitboard.NewSquare(5, 0)
		case bitboard.NewSquare(2, 0): // c1
			rookFrom, rookTo = bitboard.NewSquare(0, 0), bitboard.NewSquare(3, 0)
		case bitboard.NewSquare(6, 7): // g8
			rookFrom, rookTo = bitboard.NewSquare(7, 7), bitboard.NewSquare(5, 7)
		case bitboard.NewSquare(2, 7): // c8
			rookFrom, rookTo = bitboard.NewSquare(0, 7), bitboard.NewSquare(3, 7)
		}
		rook := b.Mailbox[rookFrom]
		b.clearPiece(rookFrom)
		b.setPiece(rookTo, rook)
	}

	// 7. place the mover (or its promoted form) at the destination.
	placed := mover
	if m.IsPromotion() {
		var pt piece.PieceType
		switch m.PromotionPiece() {
		case 0:
			pt = piece.Knight
		case 1:
			pt = piece.Bishop
		case 2:
			pt = piece.Rook
		case 3:
			pt = piece.Queen
		}
		placed = piece.NewPiece(movedColor, pt)
	}
	b.setPiece(to, placed)

	// 8. double pawn push sets a new en-passant target.
	if m.IsDoublePush() {
		var epSq bitboard.Square
		if movedColor == piece.White {
			epSq = from + 8
		} else {
			epSq = from - 8
		}
		b.EnPassant = epSq
		b.Hash ^= zobrist.Global.EnPassant[epSq.File()]
	}

	// 9. flip side to move.
	b.SideToMove = b.SideToMove.Other()
	b.Hash ^= zobrist.Global.Side
	if movedColor == piece.Black {
		b.FullmoveNumber++
	}

	// 10. recompute checkers for the new side to move.
	b.Checkers = b.AttackersTo(b.KingSquare(b.SideToMove), b.SideToMove.Other())

	// 11. fallback legality: the mover's own king must not be attacked.
	if b.AttackersTo(b.KingSquare(movedColor), b.SideToMove) != 0 {
		return false
	}
	return true
}

// recomputeHash rebuilds Hash from scratch; used by ParseFEN and by
// tests asserting the incremental hash never drifts.
func (b *Board) recomputeHash() uint64 {
	var h uint64
	for sq := 0; sq < 64; sq++ {
		p := b.Mailbox[sq]
		if p == piece.NoPiece {
			continue
		}
		h ^= zobrist.Global.Piece[piece.NewPiece(p.Color(), p.Type())][sq]
	}
	if b.SideToMove == piece.Black {
		h ^= zobrist.Global.Side
	}
	h ^= zobrist.Global.Castling[b.Castling]
	if b.EnPassant != bitboard.NoSquare {
		h ^= zobrist.Global.EnPassant[b.EnPassant.File()]
	}
	return h
}

// RecomputeHash returns the Zobrist hash built from scratch from the
// current position, independent of the incrementally-maintained Hash
// field. Tests use it to assert the two never diverge.
func (b *Board) RecomputeHash() uint64 { return b.recomputeHash() }

// ErrMalformedFEN is returned by ParseFEN for any input that isn't a
// well-formed six-field FEN string.
var ErrMalformedFEN = errors.New("position: malformed fen")

// ParseFEN parses a FEN string into a new Board, recomputing its Zobrist
// hash and checkers before returning, per the FEN contract.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrMalformedFEN, len(fields))
	}

	b := New()

	if err := parsePlacement(b, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		b.SideToMove = piece.White
	case "b":
		b.SideToMove = piece.Black
	default:
		return nil, fmt.Errorf("%w: bad side to move %q", ErrMalformedFEN, fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				b.Castling |= piece.WhiteKingside
			case 'Q':
				b.Castling |= piece.WhiteQueenside
			case 'k':
				b.Castling |= piece.BlackKingside
			case 'q':
				b.Castling |= piece.BlackQueenside
			default:
				return nil, fmt.Errorf("%w: bad castling rights %q", ErrMalformedFEN, fields[2])
			}
		}
	}

	if fields[3] == "-" {
		b.EnPassant = bitboard.NoSquare
	} else {
		sq, ok := parseSquareString(fields[3])
		if !ok {
			return nil, fmt.Errorf("%w: bad en passant square %q", ErrMalformedFEN, fields[3])
		}
		b.EnPassant = sq
	}

	halfmove, err := strconv.Atoi(fields[4])
	if err != nil || halfmove < 0 {
		return nil, fmt.Errorf("%w: bad halfmove clock %q", ErrMalformedFEN, fields[4])
	}
	b.HalfmoveClock = halfmove

	fullmove, err := strconv.Atoi(fields[5])
	if err != nil || fullmove < 1 {
		return nil, fmt.Errorf("%w: bad fullmove number %q", ErrMalformedFEN, fields[5])
	}
	b.FullmoveNumber = fullmove

	b.Hash = b.recomputeHash()
	b.Checkers = b.AttackersTo(b.KingSquare(b.SideToMove), b.SideToMove.Other())

	return b, nil
}

func parsePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			p, ok := piece.PieceFromSymbol(c)
			if !ok {
				return fmt.Errorf("%w: bad piece symbol %q", ErrMalformedFEN, string(c))
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows 8 files", ErrMalformedFEN, rank+1)
			}
			b.setPiece(bitboard.NewSquare(file, rank), p)
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files, want 8", ErrMalformedFEN, rank+1, file)
		}
	}
	return nil
}

const fileLetters = "abcdefgh"

func parseSquareString(s string) (bitboard.Square, bool) {
	if len(s) != 2 {
		return bitboard.NoSquare, false
	}
	file := strings.IndexByte(fileLetters, s[0])
	if file < 0 || s[1] < '1' || s[1] > '8' {
		return bitboard.NoSquare, false
	}
	return bitboard.NewSquare(file, int(s[1]-'1')), true
}

// FEN serializes b into a canonical FEN string.
func (b *Board) FEN() string {
	var out strings.Builder
	out.Grow(64)

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.Mailbox[bitboard.NewSquare(file, rank)]
			if p == piece.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				out.WriteByte('0' + byte(empty))
				empty = 0
			}
			out.WriteByte(p.Symbol())
		}
		if empty > 0 {
			out.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			out.WriteByte('/')
		}
	}

	out.WriteByte(' ')
	out.WriteString(b.SideToMove.String())
	out.WriteByte(' ')

	if b.Castling == 0 {
		out.WriteByte('-')
	} else {
		if b.Castling.Has(piece.WhiteKingside) {
			out.WriteByte('K')
		}
		if b.Castling.Has(piece.WhiteQueenside) {
			out.WriteByte('Q')
		}
		if b.Castling.Has(piece.BlackKingside) {
			out.WriteByte('k')
		}
		if b.Castling.Has(piece.BlackQueenside) {
			out.WriteByte('q')
		}
	}
	out.WriteByte(' ')

	if b.EnPassant == bitboard.NoSquare {
		out.WriteByte('-')
	} else {
		out.WriteString(b.EnPassant.String())
	}
	out.WriteByte(' ')

	out.WriteString(strconv.Itoa(b.HalfmoveClock))
	out.WriteByte(' ')
	out.WriteString(strconv.Itoa(b.FullmoveNumber))

	return out.String()
}
