// Package movegen generates legal chess moves directly — pins, checkers
// and a target mask constrain generation up front, rather than generating
// pseudo-legal moves and filtering by replaying each one. That avoids a
// make/unmake round trip per candidate move: each king destination is
// tested against the enemy attackers with the king lifted off the board,
// and the leaper/slider move-emission loops read straight off the attack
// tables.
package movegen

import (
	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/move"
	"github.com/corvidchess/corvid/piece"
	"github.com/corvidchess/corvid/position"
)

// Generate returns every legal move available to the side to move in b.
func Generate(b *position.Board) move.List {
	var list move.List

	us := b.SideToMove
	them := us.Other()
	kingSq := b.KingSquare(us)
	occ := b.Occupied()
	own := b.ColorBB[us]

	checkers := b.Checkers
	numCheckers := checkers.Count()

	genKingMoves(b, &list, kingSq, us, them, occ)

	if numCheckers >= 2 {
		return list
	}

	targetMask := bitboard.Full
	var checkerSq bitboard.Square = bitboard.NoSquare
	if numCheckers == 1 {
		checkerSq = checkers.LSB()
		targetMask = attack.Between(kingSq, checkerSq) | bitboard.FromSquare(checkerSq)
	}

	pinRay := computePins(b, kingSq, us, them, occ)

	genKnightMoves(b, &list, us, own, targetMask, pinRay)
	genSliderMoves(b, &list, piece.Bishop, us, own, occ, targetMask, pinRay)
	genSliderMoves(b, &list, piece.Rook, us, own, occ, targetMask, pinRay)
	genSliderMoves(b, &list, piece.Queen, us, own, occ, targetMask, pinRay)
	genPawnMoves(b, &list, us, them, occ, targetMask, pinRay, numCheckers, checkerSq)
	genCastling(b, &list, us, occ)

	return list
}

// pinData records the pinned pieces and, for each pinned square, its
// allowed destination set (the pin ray plus the pinner's own square).
// computePins only writes ray entries for pinned squares; allowed consults
// the pinned set first and returns bitboard.Full for an unpinned square, so
// the Empty zero value of an unwritten ray entry is never used.
type pinData struct {
	pinned bitboard.Bitboard
	ray    [64]bitboard.Bitboard
}

func (p *pinData) allowed(sq bitboard.Square) bitboard.Bitboard {
	if p.pinned.Has(sq) {
		return p.ray[sq]
	}
	return bitboard.Full
}

func computePins(b *position.Board, kingSq bitboard.Square, us, them piece.Color, occ bitboard.Bitboard) *pinData {
	pd := &pinData{}

	diagonalPinners := attack.Bishop(kingSq, bitboard.Empty) &
		(b.PieceBB[piece.Bishop] | b.PieceBB[piece.Queen]) & b.ColorBB[them]
	straightPinners := attack.Rook(kingSq, bitboard.Empty) &
		(b.PieceBB[piece.Rook] | b.PieceBB[piece.Queen]) & b.ColorBB[them]

	potentialPinners := diagonalPinners | straightPinners
	pp := potentialPinners
	for pp != 0 {
		pinnerSq := bitboard.PopLSB(&pp)
		between := attack.Between(kingSq, pinnerSq) & occ
		if between.Count() != 1 {
			continue
		}
		pinnedSq := between.LSB()
		if !b.ColorBB[us].Has(pinnedSq) {
			continue
		}
		pd.pinned = pd.pinned.Set(pinnedSq)
		pd.ray[pinnedSq] = attack.Between(kingSq, pinnerSq) | bitboard.FromSquare(pinnerSq)
	}

	return pd
}

func genKingMoves(b *position.Board, list *move.List, kingSq bitboard.Square, us, them piece.Color, occ bitboard.Bitboard) {
	occWithoutKing := occ &^ bitboard.FromSquare(kingSq)
	dests := attack.King(kingSq) &^ b.ColorBB[us]

	for dests != 0 {
		to := bitboard.PopLSB(&dests)
		if b.AttackersToWithOccupancy(to, them, occWithoutKing) != 0 {
			continue
		}
		flag := move.Quiet
		if b.ColorBB[them].Has(to) {
			flag = move.Capture
		}
		list.Push(move.New(kingSq, to, flag))
	}
}

func genKnightMoves(b *position.Board, list *move.List, us piece.Color, own bitboard.Bitboard, targetMask bitboard.Bitboard, pins *pinData) {
	knights := b.PieceBB[piece.Knight] & own
	for knights != 0 {
		from := bitboard.PopLSB(&knights)
		if pins.pinned.Has(from) {
			// A pinned knight has no legal moves: it can't stay on the pin
			// ray while also satisfying a knight-move shape.
			continue
		}
		dests := attack.Knight(from) &^ own & targetMask
		emitSimpleMoves(b, list, from, dests)
	}
}

func genSliderMoves(b *position.Board, list *move.List, pt piece.PieceType, us piece.Color, own, occ bitboard.Bitboard, targetMask bitboard.Bitboard, pins *pinData) {
	pieces := b.PieceBB[pt] & own
	for pieces != 0 {
		from := bitboard.PopLSB(&pieces)
		var attacks bitboard.Bitboard
		switch pt {
		case piece.Bishop:
			attacks = attack.Bishop(from, occ)
		case piece.Rook:
			attacks = attack.Rook(from, occ)
		case piece.Queen:
			attacks = attack.Queen(from, occ)
		}
		dests := attacks &^ own & targetMask & pins.allowed(from)
		emitSimpleMoves(b, list, from, dests)
	}
}

func emitSimpleMoves(b *position.Board, list *move.List, from bitboard.Square, dests bitboard.Bitboard) {
	for dests != 0 {
		to := bitboard.PopLSB(&dests)
		flag := move.Quiet
		if b.PieceAt(to) != piece.NoPiece {
			flag = move.Capture
		}
		list.Push(move.New(from, to, flag))
	}
}

func genPawnMoves(b *position.Board, list *move.List, us, them piece.Color, occ bitboard.Bitboard, targetMask bitboard.Bitboard, pins *pinData, numCheckers int, checkerSq bitboard.Square) {
	pawns := b.PieceBB[piece.Pawn] & b.ColorBB[us]
	empty := ^occ
	enemies := b.ColorBB[them]
	promoRank := us.PromotionRank()

	for p := pawns; p != 0; {
		from := bitboard.PopLSB(&p)
		allowed := pins.allowed(from)

		fwd := pawnForward(from, us)
		if fwd != bitboard.NoSquare && empty.Has(fwd) {
			if targetMask.Has(fwd) && allowed.Has(fwd) {
				pushPawnMove(list, from, fwd, promoRank)
			}
			if from.Rank() == startRank(us) {
				dbl := pawnForward(fwd, us)
				if dbl != bitboard.NoSquare && empty.Has(dbl) && targetMask.Has(dbl) && allowed.Has(dbl) {
					list.Push(move.New(from, dbl, move.DoublePush))
				}
			}
		}

		capAttacks := attack.Pawn(us, from) & enemies & targetMask & allowed
		for capAttacks != 0 {
			to := bitboard.PopLSB(&capAttacks)
			pushPawnCapture(list, from, to, promoRank)
		}

		if b.EnPassant != bitboard.NoSquare {
			if attack.Pawn(us, from).Has(b.EnPassant) {
				tryEnPassant(b, list, from, b.EnPassant, us, them, occ, allowed, numCheckers, checkerSq, targetMask)
			}
		}
	}
}

func pawnForward(sq bitboard.Square, c piece.Color) bitboard.Square {
	s := int(sq) + c.PawnDirection()
	if s < 0 || s > 63 {
		return bitboard.NoSquare
	}
	return bitboard.Square(s)
}

func startRank(c piece.Color) int {
	if c == piece.White {
		return 1
	}
	return 6
}

func pushPawnMove(list *move.List, from, to bitboard.Square, promoRank int) {
	if to.Rank() == promoRank {
		list.Push(move.New(from, to, move.PromoKnight))
		list.Push(move.New(from, to, move.PromoBishop))
		list.Push(move.New(from, to, move.PromoRook))
		list.Push(move.New(from, to, move.PromoQueen))
		return
	}
	list.Push(move.New(from, to, move.Quiet))
}

func pushPawnCapture(list *move.List, from, to bitboard.Square, promoRank int) {
	if to.Rank() == promoRank {
		list.Push(move.New(from, to, move.PromoKnightCap))
		list.Push(move.New(from, to, move.PromoBishopCap))
		list.Push(move.New(from, to, move.PromoRookCap))
		list.Push(move.New(from, to, move.PromoQueenCap))
		return
	}
	list.Push(move.New(from, to, move.Capture))
}

// tryEnPassant applies the §4.3c discovered-check sub-check before
// emitting an en-passant capture.
func tryEnPassant(b *position.Board, list *move.List, from, to bitboard.Square, us, them piece.Color, occ bitboard.Bitboard, allowed bitboard.Bitboard, numCheckers int, checkerSq bitboard.Square, targetMask bitboard.Bitboard) {
	if !allowed.Has(to) {
		// The capturing pawn is pinned and the landing square is off its
		// pin ray, so the capture is rejected. A rank pin running through
		// both pawns is caught by the discovered-check test below, not
		// here.
		return
	}

	var capturedSq bitboard.Square
	if us == piece.White {
		capturedSq = to - 8
	} else {
		capturedSq = to + 8
	}

	if numCheckers == 1 {
		if checkerSq != capturedSq && !targetMask.Has(to) {
			return
		}
	}

	occAfter := occ &^ bitboard.FromSquare(from) &^ bitboard.FromSquare(capturedSq)
	kingSq := b.KingSquare(us)
	rookAttackers := attack.Rook(kingSq, occAfter) & (b.PieceBB[piece.Rook] | b.PieceBB[piece.Queen]) & b.ColorBB[them]
	if rookAttackers != 0 {
		return
	}

	list.Push(move.New(from, to, move.EnPassant))
}

var (
	whiteKingsideOcc   = bitboard.FromSquare(5) | bitboard.FromSquare(6)
	whiteKingsideAtk   = bitboard.FromSquare(4) | bitboard.FromSquare(5) | bitboard.FromSquare(6)
	whiteQueensideOcc  = bitboard.FromSquare(1) | bitboard.FromSquare(2) | bitboard.FromSquare(3)
	whiteQueensideAtk  = bitboard.FromSquare(4) | bitboard.FromSquare(3) | bitboard.FromSquare(2)
	blackKingsideOcc   = bitboard.FromSquare(61) | bitboard.FromSquare(62)
	blackKingsideAtk   = bitboard.FromSquare(60) | bitboard.FromSquare(61) | bitboard.FromSquare(62)
	blackQueensideOcc  = bitboard.FromSquare(57) | bitboard.FromSquare(58) | bitboard.FromSquare(59)
	blackQueensideAtk  = bitboard.FromSquare(60) | bitboard.FromSquare(59) | bitboard.FromSquare(58)
)

func genCastling(b *position.Board, list *move.List, us piece.Color, occ bitboard.Bitboard) {
	if b.Checkers != 0 {
		return
	}
	them := us.Other()

	if us == piece.White {
		if b.Castling.Has(piece.WhiteKingside) && occ&whiteKingsideOcc == 0 && !anyAttacked(b, whiteKingsideAtk, them) {
			list.Push(move.New(4, 6, move.KingCastle))
		}
		if b.Castling.Has(piece.WhiteQueenside) && occ&whiteQueensideOcc == 0 && !anyAttacked(b, whiteQueensideAtk, them) {
			list.Push(move.New(4, 2, move.QueenCastle))
		}
		return
	}

	if b.Castling.Has(piece.BlackKingside) && occ&blackKingsideOcc == 0 && !anyAttacked(b, blackKingsideAtk, them) {
		list.Push(move.New(60, 62, move.KingCastle))
	}
	if b.Castling.Has(piece.BlackQueenside) && occ&blackQueensideOcc == 0 && !anyAttacked(b, blackQueensideAtk, them) {
		list.Push(move.New(60, 58, move.QueenCastle))
	}
}

func anyAttacked(b *position.Board, squares bitboard.Bitboard, by piece.Color) bool {
	for squares != 0 {
		sq := bitboard.PopLSB(&squares)
		if b.AttackersTo(sq, by) != 0 {
			return true
		}
	}
	return false
}

// FindByUCI generates every legal move in b and returns the one whose UCI
// notation matches s. This is how board-context-dependent UCI decoding
// (distinguishing a quiet e1g1 king move from castling, or an e5d6 pawn
// move from an en-passant capture) is resolved: by asking the generator,
// not by re-deriving move classification from the bare squares.
func FindByUCI(b *position.Board, s string) (move.Move, bool) {
	if s == "0000" {
		return move.Null, true
	}
	for _, m := range Generate(b).Slice() {
		if m.UCI() == s {
			return m, true
		}
	}
	return move.Null, false
}
