// Package attack precomputes and serves every attack-pattern lookup the
// engine needs: leaper tables for pawns, knights and kings, magic-indexed
// sliding tables for bishops and rooks, and the between/line ray tables
// legal move generation uses to detect pins and checks.
//
// The magic numbers and relevant-occupancy bit counts are precomputed
// constants rather than algorithmic code — a magic number for a1 is the
// same magic number in every bitboard engine that found it.
package attack

import (
	"fmt"

	"github.com/corvidchess/corvid/bitboard"
	"github.com/corvidchess/corvid/piece"
)

var (
	pawnAttacks   [2][64]bitboard.Bitboard
	knightAttacks [64]bitboard.Bitboard
	kingAttacks   [64]bitboard.Bitboard

	bishopOccupancy [64]bitboard.Bitboard
	rookOccupancy   [64]bitboard.Bitboard

	bishopAttackTable [64][512]bitboard.Bitboard
	rookAttackTable   [64][4096]bitboard.Bitboard

	between [64][64]bitboard.Bitboard
	line    [64][64]bitboard.Bitboard

	initialized bool
)

// bishopBitCount is the number of relevant-occupancy bits for a bishop on
// each square, used to size the magic index for that square.
var bishopBitCount = [64]int{
	6, 5, 5, 5, 5, 5, 5, 6,
	5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 7, 7, 7, 7, 5, 5,
	5, 5, 7, 9, 9, 7, 5, 5,
	5, 5, 7, 9, 9, 7, 5, 5,
	5, 5, 7, 7, 7, 7, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5,
	6, 5, 5, 5, 5, 5, 5, 6,
}

// rookBitCount is the number of relevant-occupancy bits for a rook on each
// square.
var rookBitCount = [64]int{
	12, 11, 11, 11, 11, 11, 11, 12,
	11, 10, 10, 10, 10, 10, 10, 11,
	11, 10, 10, 10, 10, 10, 10, 11,
	11, 10, 10, 10, 10, 10, 10, 11,
	11, 10, 10, 10, 10, 10, 10, 11,
	11, 10, 10, 10, 10, 10, 10, 11,
	11, 10, 10, 10, 10, 10, 10, 11,
	12, 11, 11, 11, 11, 11, 11, 12,
}

// bishopMagicNumbers is the precalculated magic-number table for bishops.
var bishopMagicNumbers = [64]uint64{
	0x11410121040100, 0x2084820928010, 0xa010208481080040, 0x214240082000610,
	0x4d104000400480, 0x1012010804408, 0x42044101452000c, 0x2844804050104880,
	0x814204290a0a00, 0x10280688224500, 0x1080410101010084, 0x10020a108408004,
	0x2482020210c80080, 0x480104a0040400, 0x411006404200810, 0x1024010908024292,
	0x1004401001011a, 0x810006081220080, 0x1040404206004100, 0x58080000820041ce,
	0x3406000422010890, 0x1a004100520210, 0x202a000048040400, 0x225004441180110,
	0x8064240102240, 0x1424200404010402, 0x1041100041024200, 0x8082002012008200,
	0x1010008104000, 0x8808004000806000, 0x380a000080c400, 0x31040100042d0101,
	0x110109008082220, 0x4010880204201, 0x4006462082100300, 0x4002010040140041,
	0x40090200250880, 0x2010100c40c08040, 0x12800ac01910104, 0x10b20051020100,
	0x210894104828c000, 0x50440220004800, 0x1002011044180800, 0x4220404010410204,
	0x1002204a2020401, 0x21021001000210, 0x4880081009402, 0xc208088c088e0040,
	0x4188464200080, 0x3810440618022200, 0xc020310401040420, 0x2000008208800e0,
	0x4c910240020, 0x425100a8602a0, 0x20c4206a0c030510, 0x4c10010801184000,
	0x200202020a026200, 0x6000004400841080, 0xc14004121082200, 0x400324804208800,
	0x1802200040504100, 0x1820000848488820, 0x8620682a908400, 0x8010600084204240,
}

// rookMagicNumbers is the precalculated magic-number table for rooks.
var rookMagicNumbers = [64]uint64{
	0x2080008040002010, 0x40200010004000, 0x100090010200040, 0x2080080010000480,
	0x880040080080102, 0x8200106200042108, 0x410041000408b200, 0x100009a00402100,
	0x5800800020804000, 0x848404010002000, 0x101001820010041, 0x10a0040100420080,
	0x8a02002006001008, 0x926000844110200, 0x8000800200800100, 0x28060001008c2042,
	0x10818002204000, 0x10004020004001, 0x110002008002400, 0x11a020010082040,
	0x2001010008000410, 0x42010100080400, 0x4004040008020110, 0x820000840041,
	0x400080208000, 0x2080200040005000, 0x8000200080100080, 0x4400080180500080,
	0x4900080080040080, 0x4004004480020080, 0x8006000200040108, 0xc481000100006396,
	0x1000400080800020, 0x201004400040, 0x10008010802000, 0x204012000a00,
	0x800400800802, 0x284000200800480, 0x3000403000200, 0x840a6000514,
	0x4080c000228012, 0x10002000444010, 0x620001000808020, 0xc210010010009,
	0x100c001008010100, 0xc10020004008080, 0x20100802040001, 0x808008305420014,
	0xc010800840043080, 0x208401020890100, 0x10b0081020028280, 0x6087001001220900,
	0xc080011000500, 0x9810200040080, 0x2000010882100400, 0x2000050880540200,
	0x800020104200810a, 0x6220250242008016, 0x9180402202900a, 0x40210500100009,
	0x6000814102026, 0x410100080a040013, 0x10405008022d1184, 0x1000009400410822,
}

// rayWalk walks the four rays from sq over occ, honoring blockers, for the
// given direction-shift functions, and returns the true attack set for that
// occupancy (board edge included). It fills the magic tables; the relevant
// occupancy masks come from relevantOccupancy.
func rayWalk(sq bitboard.Square, occ bitboard.Bitboard, dirs []func(bitboard.Bitboard) bitboard.Bitboard) bitboard.Bitboard {
	var result bitboard.Bitboard
	for _, dir := range dirs {
		b := bitboard.FromSquare(sq)
		for {
			next := dir(b)
			if next == bitboard.Empty {
				break
			}
			b = next
			result |= b
			if b&occ != 0 {
				break
			}
		}
	}
	return result
}

var bishopDirs = []func(bitboard.Bitboard) bitboard.Bitboard{
	bitboard.Bitboard.NorthEast, bitboard.Bitboard.NorthWest,
	bitboard.Bitboard.SouthEast, bitboard.Bitboard.SouthWest,
}

var rookDirs = []func(bitboard.Bitboard) bitboard.Bitboard{
	bitboard.Bitboard.North, bitboard.Bitboard.South,
	bitboard.Bitboard.East, bitboard.Bitboard.West,
}

func genBishopAttacks(sq bitboard.Square, occ bitboard.Bitboard) bitboard.Bitboard {
	return rayWalk(sq, occ, bishopDirs)
}

func genRookAttacks(sq bitboard.Square, occ bitboard.Bitboard) bitboard.Bitboard {
	return rayWalk(sq, occ, rookDirs)
}

// relevantOccupancy computes the "relevant occupancy squares" mask: every
// square reachable on an empty board minus the board edge in that
// direction, since the last square of a ray is attacked whatever occupies
// it.
func relevantOccupancy(sq bitboard.Square, dirs []func(bitboard.Bitboard) bitboard.Bitboard) bitboard.Bitboard {
	var result bitboard.Bitboard
	for _, dir := range dirs {
		b := bitboard.FromSquare(sq)
		for {
			next := dir(b)
			if next == bitboard.Empty || dir(next) == bitboard.Empty {
				break
			}
			b = next
			result |= b
		}
	}
	return result
}

// occupancyForIndex expands the bits of index into a concrete occupancy
// subset of mask, following the standard bishopBitCount/rookBitCount-sized
// enumeration used to populate every magic table slot.
func occupancyForIndex(index, bitCount int, mask bitboard.Bitboard) bitboard.Bitboard {
	var occ bitboard.Bitboard
	for i := 0; i < bitCount; i++ {
		sq := bitboard.PopLSB(&mask)
		if index&(1<<i) != 0 {
			occ = occ.Set(sq)
		}
	}
	return occ
}

func buildSlidingTable(bitCounts *[64]int, magics *[64]uint64, occupancyOf *[64]bitboard.Bitboard,
	gen func(bitboard.Square, bitboard.Bitboard) bitboard.Bitboard, dirs []func(bitboard.Bitboard) bitboard.Bitboard,
	table func(sq int) []bitboard.Bitboard, name string) {

	for sq := 0; sq < 64; sq++ {
		occupancyOf[sq] = relevantOccupancy(bitboard.Square(sq), dirs)
		bitCount := bitCounts[sq]
		filled := make([]bool, 1<<bitCount)
		slot := table(sq)
		for i := 0; i < 1<<bitCount; i++ {
			occ := occupancyForIndex(i, bitCount, occupancyOf[sq])
			key := (uint64(occ) * magics[sq]) >> (64 - bitCount)
			want := gen(bitboard.Square(sq), occ)
			if filled[key] && slot[key] != want {
				panic(fmt.Sprintf("attack: %s magic collision at square %d index %d", name, sq, key))
			}
			slot[key] = want
			filled[key] = true
		}
	}
}

// Init populates every attack table. It must be called once before any
// other function in this package is used; the engine's entry points call
// it during startup. Init panics if the embedded magic numbers map two
// occupancies with different attack sets to the same index for any square,
// which would indicate table corruption rather than a recoverable runtime
// condition.
func Init() {
	if initialized {
		return
	}

	for sq := 0; sq < 64; sq++ {
		s := bitboard.Square(sq)
		pawnAttacks[piece.White][sq] = pawnAttackSet(s, piece.White)
		pawnAttacks[piece.Black][sq] = pawnAttackSet(s, piece.Black)
		knightAttacks[sq] = knightAttackSet(s)
		kingAttacks[sq] = kingAttackSet(s)
	}

	buildSlidingTable(&bishopBitCount, &bishopMagicNumbers, &bishopOccupancy, genBishopAttacks, bishopDirs,
		func(sq int) []bitboard.Bitboard { return bishopAttackTable[sq][:] }, "bishop")
	buildSlidingTable(&rookBitCount, &rookMagicNumbers, &rookOccupancy, genRookAttacks, rookDirs,
		func(sq int) []bitboard.Bitboard { return rookAttackTable[sq][:] }, "rook")

	initBetweenAndLine()

	initialized = true
}

func pawnAttackSet(sq bitboard.Square, c piece.Color) bitboard.Bitboard {
	b := bitboard.FromSquare(sq)
	if c == piece.White {
		return b.NorthEast() | b.NorthWest()
	}
	return b.SouthEast() | b.SouthWest()
}

func knightAttackSet(sq bitboard.Square) bitboard.Bitboard {
	b := bitboard.FromSquare(sq)
	var result bitboard.Bitboard
	// Knight jumps as three single-step shifts (two along one axis, one
	// along the other), masked independently so each step's own wraparound
	// guard applies.
	result |= b.North().North().East()
	result |= b.North().North().West()
	result |= b.South().South().East()
	result |= b.South().South().West()
	result |= b.East().East().North()
	result |= b.East().East().South()
	result |= b.West().West().North()
	result |= b.West().West().South()
	return result
}

func kingAttackSet(sq bitboard.Square) bitboard.Bitboard {
	b := bitboard.FromSquare(sq)
	return b.North() | b.South() | b.East() | b.West() |
		b.NorthEast() | b.NorthWest() | b.SouthEast() | b.SouthWest()
}

// initBetweenAndLine fills the between[from][to] exclusive-ray and
// line[from][to] full-line tables used by check/pin detection: between
// holds the squares strictly in between two aligned squares (empty if not
// aligned), line holds the full infinite line through both (empty if not
// aligned).
func initBetweenAndLine() {
	dirs := append(append([]func(bitboard.Bitboard) bitboard.Bitboard{}, rookDirs...), bishopDirs...)
	for from := 0; from < 64; from++ {
		for _, dir := range dirs {
			ray := bitboard.Empty
			b := bitboard.FromSquare(bitboard.Square(from))
			var squares []bitboard.Square
			for {
				next := dir(b)
				if next == bitboard.Empty {
					break
				}
				b = next
				squares = append(squares, b.LSB())
				ray |= b
			}
			for i, to := range squares {
				between[from][to] = accumulate(squares[:i])
				line[from][to] = ray | bitboard.FromSquare(bitboard.Square(from))
			}
		}
	}
	// Each entry so far covers only the half-line from `from` through `to`;
	// joining it with the reverse half-line gives the full line.
	for from := 0; from < 64; from++ {
		for to := 0; to < 64; to++ {
			line[from][to] |= line[to][from]
		}
	}
}

func accumulate(squares []bitboard.Square) bitboard.Bitboard {
	var b bitboard.Bitboard
	for _, sq := range squares {
		b = b.Set(sq)
	}
	return b
}

func checkInit() {
	if !initialized {
		panic("attack: Init must be called before use")
	}
}

// Pawn returns the squares a pawn of color c on sq attacks.
func Pawn(c piece.Color, sq bitboard.Square) bitboard.Bitboard {
	checkInit()
	return pawnAttacks[c][sq]
}

// Knight returns the squares a knight on sq attacks.
func Knight(sq bitboard.Square) bitboard.Bitboard {
	checkInit()
	return knightAttacks[sq]
}

// King returns the squares a king on sq attacks.
func King(sq bitboard.Square) bitboard.Bitboard {
	checkInit()
	return kingAttacks[sq]
}

// Bishop returns the squares a bishop on sq attacks given blocker set occ.
func Bishop(sq bitboard.Square, occ bitboard.Bitboard) bitboard.Bitboard {
	checkInit()
	masked := occ & bishopOccupancy[sq]
	key := (uint64(masked) * bishopMagicNumbers[sq]) >> (64 - bishopBitCount[sq])
	return bishopAttackTable[sq][key]
}

// Rook returns the squares a rook on sq attacks given blocker set occ.
func Rook(sq bitboard.Square, occ bitboard.Bitboard) bitboard.Bitboard {
	checkInit()
	masked := occ & rookOccupancy[sq]
	key := (uint64(masked) * rookMagicNumbers[sq]) >> (64 - rookBitCount[sq])
	return rookAttackTable[sq][key]
}

// Queen returns the squares a queen on sq attacks given blocker set occ.
func Queen(sq bitboard.Square, occ bitboard.Bitboard) bitboard.Bitboard {
	return Bishop(sq, occ) | Rook(sq, occ)
}

// Between returns the squares strictly between from and to if they share a
// rank, file, or diagonal; otherwise Empty.
func Between(from, to bitboard.Square) bitboard.Bitboard {
	checkInit()
	return between[from][to]
}

// Line returns every square on the rank/file/diagonal line through from and
// to, edge to edge, including both endpoints; Empty if the two squares don't
// share a line.
func Line(from, to bitboard.Square) bitboard.Bitboard {
	checkInit()
	return line[from][to]
}
