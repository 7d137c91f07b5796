// Package move implements the fixed-width move encoding: a 16-bit value
// carrying origin, destination, and a 4-bit flags field that jointly
// encodes move kind, capture, and promotion piece, plus preallocated move
// lists sized to the worst-case branching factor.
package move

import (
	"errors"
	"strings"

	"github.com/corvidchess/corvid/bitboard"
)

// Flag is the 4-bit move-kind tag. Bit 3 (0x8) marks promotions, bit 2
// (0x4) marks captures — both bits are consistently set across every flag
// value that represents that property, so IsCapture/IsPromotion are plain
// masks rather than per-value switches.
type Flag uint16

const (
	Quiet          Flag = 0x0
	DoublePush     Flag = 0x1
	KingCastle     Flag = 0x2
	QueenCastle    Flag = 0x3
	Capture        Flag = 0x4
	EnPassant      Flag = 0x5
	PromoKnight    Flag = 0x8
	PromoBishop    Flag = 0x9
	PromoRook      Flag = 0xA
	PromoQueen     Flag = 0xB
	PromoKnightCap Flag = 0xC
	PromoBishopCap Flag = 0xD
	PromoRookCap   Flag = 0xE
	PromoQueenCap  Flag = 0xF
)

const (
	captureBit   Flag = 0x4
	promotionBit Flag = 0x8
)

// Move is the 16-bit encoded move: bits 0-5 from, bits 6-11 to, bits 12-15
// flags.
//
// The all-zero value is the reserved null move: a1-a1 is never a legal
// move, so zero never collides with a real one.
type Move uint16

// Null is the reserved "no move" value.
const Null Move = 0

const (
	fromShift = 0
	toShift   = 6
	flagShift = 12

	squareMask = 0x3F
	flagMask   = 0xF
)

// New encodes a move from its squares and flag.
func New(from, to bitboard.Square, f Flag) Move {
	return Move(int(from)<<fromShift | int(to)<<toShift | int(f)<<flagShift)
}

// From returns the origin square.
func (m Move) From() bitboard.Square { return bitboard.Square((m >> fromShift) & squareMask) }

// To returns the destination square.
func (m Move) To() bitboard.Square { return bitboard.Square((m >> toShift) & squareMask) }

// MoveFlag returns the raw flag field.
func (m Move) MoveFlag() Flag { return Flag((m >> flagShift) & flagMask) }

// IsCapture reports whether the move removes an enemy piece (including en
// passant and promotion-captures).
func (m Move) IsCapture() bool { return m.MoveFlag()&captureBit != 0 }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m.MoveFlag()&promotionBit != 0 }

// IsEnPassant reports whether the move is an en-passant capture.
func (m Move) IsEnPassant() bool { return m.MoveFlag() == EnPassant }

// IsCastle reports whether the move is a king- or queen-side castle.
func (m Move) IsCastle() bool { f := m.MoveFlag(); return f == KingCastle || f == QueenCastle }

// IsDoublePush reports whether the move is a two-square pawn advance.
func (m Move) IsDoublePush() bool { return m.MoveFlag() == DoublePush }

// PromotionPiece returns the 2-bit promoted-to piece code (0=knight,
// 1=bishop, 2=rook, 3=queen), the same code PromoFromLetter returns. Only
// meaningful when IsPromotion() is true.
func (m Move) PromotionPiece() int { return int(m.MoveFlag() & 0x3) }

// IsNull reports whether m is the reserved null move.
func (m Move) IsNull() bool { return m == Null }

var promoLetters = [4]byte{'n', 'b', 'r', 'q'}

// UCI renders the move in UCI long-algebraic notation: e2e4, e7e8q, or 0000
// for the null move.
func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	var b strings.Builder
	b.Grow(5)
	b.WriteString(m.From().String())
	b.WriteString(m.To().String())
	if m.IsPromotion() {
		b.WriteByte(promoLetters[m.PromotionPiece()])
	}
	return b.String()
}

// ErrMalformedUCI is returned by ParseUCI when the input isn't a
// well-formed UCI move token.
var ErrMalformedUCI = errors.New("move: malformed uci move")

const fileLetters = "abcdefgh"

func parseSquare(s string) (bitboard.Square, bool) {
	if len(s) != 2 {
		return bitboard.NoSquare, false
	}
	file := strings.IndexByte(fileLetters, s[0])
	if file < 0 || s[1] < '1' || s[1] > '8' {
		return bitboard.NoSquare, false
	}
	return bitboard.NewSquare(file, int(s[1]-'1')), true
}

// PromoFromLetter maps a UCI promotion letter to the 2-bit promotion-piece
// code used by PromotionPiece/ParseUCI.
func PromoFromLetter(c byte) (piece int, ok bool) {
	switch c {
	case 'n':
		return 0, true
	case 'b':
		return 1, true
	case 'r':
		return 2, true
	case 'q':
		return 3, true
	}
	return 0, false
}

// ParseUCI parses a UCI move token into from/to squares and, if present, a
// promotion-piece code (0=knight..3=queen). It has no board context, so it
// cannot tell a quiet move from a capture or classify castling/en passant
// — callers combine this with board state (see movegen.FindByUCI) to
// produce a fully-flagged Move.
func ParseUCI(s string) (from, to bitboard.Square, promo int, hasPromo bool, err error) {
	if s == "0000" {
		return bitboard.NoSquare, bitboard.NoSquare, 0, false, nil
	}
	if len(s) != 4 && len(s) != 5 {
		return 0, 0, 0, false, ErrMalformedUCI
	}
	from, ok := parseSquare(s[0:2])
	if !ok {
		return 0, 0, 0, false, ErrMalformedUCI
	}
	to, ok = parseSquare(s[2:4])
	if !ok {
		return 0, 0, 0, false, ErrMalformedUCI
	}
	if len(s) == 5 {
		promo, ok = PromoFromLetter(s[4])
		if !ok {
			return 0, 0, 0, false, ErrMalformedUCI
		}
		hasPromo = true
	}
	return from, to, promo, hasPromo, nil
}

// MaxMoves is the maximum number of legal moves any chess position can
// have. Preallocating lists to this size avoids per-node heap allocation
// during move generation and search.
//
// See https://www.talkchess.com/forum/viewtopic.php?t=61792
const MaxMoves = 218

// List is a fixed-capacity move buffer.
type List struct {
	Moves [MaxMoves]Move
	Count int
}

// Push appends m to the list.
func (l *List) Push(m Move) {
	l.Moves[l.Count] = m
	l.Count++
}

// Slice returns the populated prefix of the list.
func (l List) Slice() []Move { return l.Moves[:l.Count] }
