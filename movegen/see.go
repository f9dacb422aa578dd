//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

package movegen

import (
	"github.com/kpkoski/gambitcore/attacks"
	"github.com/kpkoski/gambitcore/position"
	. "github.com/kpkoski/gambitcore/types"
)

// seeValue runs a static exchange evaluation for move on p: the net
// material gain of the full capture sequence on move.To(), recapturing
// from least to most valuable attacker on each side in turn. Used to
// split captures into the good (SEE >= 0) and bad (SEE < 0) move
// ordering buckets - search.see runs the identical algorithm for
// quiescence pruning, but movegen can't import search (search already
// imports movegen), so the exchange walk is kept here against the
// attacks package both sides can reach.
// Promotions and en passant are treated as always good: the promoted
// piece value already dominates the sort value, and en passant capture
// sequences are rare enough not to warrant the extra bookkeeping.
func seeValue(p *position.Position, move Move) Value {
	if move.MoveType() == EnPassant || move.MoveType() == Promotion {
		return 100
	}

	gain := make([]Value, 32)

	ply := 0
	toSquare := move.To()
	fromSquare := move.From()
	movedPiece := p.GetPiece(fromSquare)
	nextPlayer := p.NextPlayer()

	occupiedBitboard := p.OccupiedAll()
	remainingAttacks := attacks.AttacksTo(p, toSquare, White) | attacks.AttacksTo(p, toSquare, Black)

	gain[ply] = p.GetPiece(toSquare).ValueOf()

	for {
		ply++
		nextPlayer = nextPlayer.Flip()

		gain[ply] = movedPiece.ValueOf() - gain[ply-1]

		// pruning if defended - will not change final see score
		if max(-gain[ply-1], gain[ply]) < 0 {
			break
		}

		remainingAttacks.PopSquare(fromSquare)
		occupiedBitboard.PopSquare(fromSquare)

		remainingAttacks |= revealedAttacks(p, toSquare, occupiedBitboard, White) |
			revealedAttacks(p, toSquare, occupiedBitboard, Black)

		fromSquare = leastValuableAttacker(p, remainingAttacks, nextPlayer)
		if fromSquare == SqNone {
			break
		}
		movedPiece = p.GetPiece(fromSquare)
	}

	ply--
	for ply > 0 {
		gain[ply-1] = -max(-gain[ply-1], gain[ply])
		ply--
	}

	return gain[0]
}

// seeGe reports whether move's static exchange evaluation is at least
// threshold.
func seeGe(p *position.Position, move Move, threshold Value) bool {
	return seeValue(p, move) >= threshold
}

// revealedAttacks returns sliding attacks to square after a piece has
// been removed from occupied, revealing any slider behind it.
func revealedAttacks(p *position.Position, square Square, occupied Bitboard, color Color) Bitboard {
	return (GetAttacksBb(Rook, square, occupied) & (p.PiecesBb(color, Rook) | p.PiecesBb(color, Queen)) & occupied) |
		(GetAttacksBb(Bishop, square, occupied) & (p.PiecesBb(color, Bishop) | p.PiecesBb(color, Queen)) & occupied)
}

// leastValuableAttacker returns the square of color's cheapest attacker
// in bitboard, or SqNone if there isn't one. A king is only returned if
// the opponent has no other attacker left in bitboard - otherwise the
// king would be recapturing into check, which is illegal, and the
// exchange must stop here.
func leastValuableAttacker(p *position.Position, bitboard Bitboard, color Color) Square {
	switch {
	case (bitboard & p.PiecesBb(color, Pawn)) != 0:
		return (bitboard & p.PiecesBb(color, Pawn)).Lsb()
	case (bitboard & p.PiecesBb(color, Knight)) != 0:
		return (bitboard & p.PiecesBb(color, Knight)).Lsb()
	case (bitboard & p.PiecesBb(color, Bishop)) != 0:
		return (bitboard & p.PiecesBb(color, Bishop)).Lsb()
	case (bitboard & p.PiecesBb(color, Rook)) != 0:
		return (bitboard & p.PiecesBb(color, Rook)).Lsb()
	case (bitboard & p.PiecesBb(color, Queen)) != 0:
		return (bitboard & p.PiecesBb(color, Queen)).Lsb()
	case (bitboard & p.PiecesBb(color, King)) != 0:
		if bitboard&p.OccupiedBb(color.Flip()) != 0 {
			return SqNone
		}
		return (bitboard & p.PiecesBb(color, King)).Lsb()
	default:
		return SqNone
	}
}

func max(x, y Value) Value {
	if x > y {
		return x
	}
	return y
}
