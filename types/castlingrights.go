/*
 * FrankyGo - UCI chess engine in GO for learning purposes
 *
 * MIT License
 *
 * Copyright (c) 2018-2020 Frank Kopp
 */

package types

import "strings"

// CastlingRights is a 4-bit mask of which of the four castling rights
// (white/black, king/queen side) are still available. Only this mask is
// kept; rook squares are not tracked, castling always uses the rooks on
// the a- and h-file corner squares.
type CastlingRights uint8

const (
	CastlingNone    CastlingRights = 0
	CastlingWhiteOO CastlingRights = 1
	CastlingWhiteOOO               = CastlingWhiteOO << 1
	CastlingWhite                  = CastlingWhiteOO | CastlingWhiteOOO
	CastlingBlackOO                = CastlingWhiteOO << 2
	CastlingBlackOOO               = CastlingBlackOO << 1
	CastlingBlack                  = CastlingBlackOO | CastlingBlackOOO
	CastlingAny                    = CastlingWhite | CastlingBlack
)

// Has checks if any of the castling rights in rhs is set in cr.
func (cr CastlingRights) Has(rhs CastlingRights) bool {
	return cr&rhs != 0
}

// Remove clears the given castling right(s).
func (cr *CastlingRights) Remove(rhs CastlingRights) CastlingRights {
	*cr = *cr &^ rhs
	return *cr
}

// Add sets the given castling right(s).
func (cr *CastlingRights) Add(rhs CastlingRights) CastlingRights {
	*cr = *cr | rhs
	return *cr
}

// String renders the castling rights the way FEN expects them (e.g. "KQkq").
func (cr CastlingRights) String() string {
	if cr == CastlingNone {
		return "-"
	}
	var os strings.Builder
	if cr.Has(CastlingWhiteOO) {
		os.WriteString("K")
	}
	if cr.Has(CastlingWhiteOOO) {
		os.WriteString("Q")
	}
	if cr.Has(CastlingBlackOO) {
		os.WriteString("k")
	}
	if cr.Has(CastlingBlackOOO) {
		os.WriteString("q")
	}
	return os.String()
}
