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

package position

import (
	. "github.com/kpkoski/gambitcore/types"
)

// cuckoo/cuckooMove implement the upper-cycle detector used by HasGameCycle:
// a cuckoo hash table mapping "the zobrist key difference between two
// positions connected by a single reversible move" to that move. Any
// non-pawn piece move is reversible (the same piece can move back), so the
// table covers every (piece, s1, s2) pair where the piece pseudo-attacks s2
// from s1.
const cuckooSize = 8192

var cuckoo [cuckooSize]Key
var cuckooMove [cuckooSize]Move

func cuckooH1(key Key) int {
	return int(key) & (cuckooSize - 1)
}

func cuckooH2(key Key) int {
	return int(key>>16) & (cuckooSize - 1)
}

// initCuckoo populates the cuckoo table using the standard two-hash cuckoo
// insertion scheme: on a collision the existing entry is evicted to its
// alternate slot, which is retried until an empty slot absorbs the chain.
func initCuckoo() {
	for _, pt := range [...]PieceType{King, Knight, Bishop, Rook, Queen} {
		for c := White; c <= Black; c++ {
			pc := MakePiece(c, pt)
			for s1 := SqA1; s1 <= SqH8; s1++ {
				for s2 := s1 + 1; s2 <= SqH8; s2++ {
					if !GetPseudoAttacks(pt, s1).Has(s2) {
						continue
					}
					move := CreateMove(s1, s2, Normal, PtNone)
					key := zobristBase.pieces[pc][s1] ^ zobristBase.pieces[pc][s2] ^ zobristBase.nextPlayer
					i := cuckooH1(key)
					for {
						cuckoo[i], key = key, cuckoo[i]
						cuckooMove[i], move = move, cuckooMove[i]
						if move == MoveNone {
							break
						}
						if i == cuckooH1(key) {
							i = cuckooH2(key)
						} else {
							i = cuckooH1(key)
						}
					}
				}
			}
		}
	}
}

// HasGameCycle detects whether the opponent has an alternative tempo that
// reaches the current position again - i.e. whether the position at ply
// steps back up the StateInfo chain (in twos, so the side to move matches)
// differs from the current one by exactly one reversible move that is
// still playable unblocked. Search callers use this to tighten draw
// handling: finding a cycle means the position "may draw" (the opponent
// can shuffle back into a repetition), so alpha should be lifted toward
// the draw score rather than treating it as an outright cutoff, per the
// upper-cycle heuristic's documented caveat.
func (p *Position) HasGameCycle(ply int) bool {
	end := p.halfMoveClock
	if p.historyCounter < end {
		end = p.historyCounter
	}
	if end < 3 {
		return false
	}

	originalKey := p.zobristKey
	occupied := p.OccupiedAll()

	for i := 3; i <= end; i += 2 {
		idx := p.historyCounter - i
		if idx < 0 {
			break
		}
		moveKey := originalKey ^ p.history[idx].zobristKey

		j := cuckooH1(moveKey)
		if cuckoo[j] != moveKey {
			j = cuckooH2(moveKey)
			if cuckoo[j] != moveKey {
				continue
			}
		}

		mv := cuckooMove[j]
		s1 := mv.From()
		s2 := mv.To()
		if occupied&Intermediate(s1, s2) != 0 {
			continue
		}

		if ply > i {
			return true
		}

		// At or before the search root the cuckoo match may describe a move
		// into the current position rather than a repetition of it; the
		// cuckoo table stores both directions of a move in the same slot,
		// so check which square is actually occupied to pick the right one.
		checkSq := s1
		if p.board[s1] == PieceNone {
			checkSq = s2
		}
		if p.board[checkSq] == PieceNone || p.board[checkSq].ColorOf() != p.nextPlayer {
			continue
		}
		return true
	}
	return false
}
