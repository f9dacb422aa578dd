/*
 * FrankyGo - UCI chess engine in GO for learning purposes
 *
 * MIT License
 *
 * Copyright (c) 2018-2020 Frank Kopp
 */

package types

import (
	"fmt"
	"strings"

	"github.com/kpkoski/gambitcore/assert"
)

// Move packs a full chess move into a single 32-bit value:
//
//	bit   0 -  5: from square
//	bit   6 - 11: to square
//	bit  12 - 13: promotion piece type (Knight-Queen, 2 bits)
//	bit  14 - 15: move type (Normal/Promotion/EnPassant/Castling)
//	bit  16 - 31: move sort value (search-assigned, not persisted in FEN/UCI)
type Move uint32

// MoveNone is the zero value, never a legal move.
const MoveNone Move = 0

const (
	squareMask    = 0x3F
	fromShift     = 6
	promTypeShift = 12
	typeShift     = 14
	valueShift    = 16
	toMask        = squareMask << fromShift
	fromMask      = squareMask
	promTypeMask  = 0x3 << promTypeShift
	moveTypeMask  = 0x3 << typeShift
	moveMask      = 0xFFFF
	valueMask     = 0xFFFF << valueShift
)

// CreateMove builds a Move with no sort value attached.
func CreateMove(from Square, to Square, t MoveType, promType PieceType) Move {
	if assert.DEBUG {
		assert.Assert(from.IsValid(), "from square invalid: %d", from)
		assert.Assert(to.IsValid(), "to square invalid: %d", to)
	}
	var promBits PieceType
	if t == Promotion {
		promBits = promType - Knight
	}
	return Move(uint32(from) | uint32(to)<<fromShift | uint32(promBits)<<promTypeShift | uint32(t)<<typeShift)
}

// CreateMoveValue builds a Move carrying a search-assigned sort value.
func CreateMoveValue(from Square, to Square, t MoveType, promType PieceType, value Value) Move {
	m := CreateMove(from, to, t, promType)
	return m.SetValue(value)
}

// MoveOf strips the sort value from m, leaving only from/to/type/promotion.
func (m Move) MoveOf() Move {
	return m & moveMask
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & fromMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m & toMask) >> fromShift)
}

// MoveType returns the move's kind.
func (m Move) MoveType() MoveType {
	return MoveType((m & moveTypeMask) >> typeShift)
}

// PromotionType returns the piece type a pawn promotes to. Only meaningful
// when MoveType() == Promotion.
func (m Move) PromotionType() PieceType {
	return PieceType((m&promTypeMask)>>promTypeShift) + Knight
}

// ValueOf returns the search-assigned sort value.
func (m Move) ValueOf() Value {
	return Value(int16((m & valueMask) >> valueShift))
}

// SetValue returns a copy of m carrying the given sort value.
func (m Move) SetValue(v Value) Move {
	return (m & moveMask) | Move(uint32(uint16(v))<<valueShift)
}

// IsValid reports whether m has distinct, in-range from/to squares. It does
// not check legality against any position.
func (m Move) IsValid() bool {
	return m != MoveNone && m.From().IsValid() && m.To().IsValid() && m.From() != m.To()
}

func (m Move) String() string {
	if m == MoveNone {
		return "no move"
	}
	var os strings.Builder
	os.WriteString(m.From().String())
	os.WriteString(m.To().String())
	if m.MoveType() == Promotion {
		os.WriteString(strings.ToLower(m.PromotionType().Char()))
	}
	if m.ValueOf() != ValueNA {
		os.WriteString(fmt.Sprintf(" (%s)", m.ValueOf().String()))
	}
	return os.String()
}

// StringUci renders the move the way the UCI protocol expects it: pure
// from-to coordinates plus a lower-case promotion letter, no sort value.
func (m Move) StringUci() string {
	if m == MoveNone {
		return "no move"
	}
	var os strings.Builder
	os.WriteString(m.From().String())
	os.WriteString(m.To().String())
	if m.MoveType() == Promotion {
		os.WriteString(strings.ToLower(m.PromotionType().Char()))
	}
	return os.String()
}

// StringBits renders m as a binary string, for debugging the encoding.
func (m Move) StringBits() string {
	return fmt.Sprintf("%032b", uint32(m))
}
