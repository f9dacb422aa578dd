/*
 * FrankyGo - UCI chess engine in GO for learning purposes
 *
 * MIT License
 *
 * Copyright (c) 2018-2020 Frank Kopp
 */

package position

import (
	. "github.com/kpkoski/gambitcore/types"
)

// zobristSeed is an arbitrary fixed seed so that keys are reproducible
// across runs and across threads sharing the same transposition table.
const zobristSeed uint64 = 1070372

// zobristKeys holds one random 64-bit number per distinguishable state
// fact (piece-on-square, castling rights, en passant file, side to move).
// A position's zobrist key is the XOR of the facts that are true for it.
type zobristKeys struct {
	pieces         [PieceLength][SqLength]Key
	castlingRights [CastlingAny + 1]Key
	enPassantFile  [FileLength]Key
	nextPlayer     Key
}

var zobristBase zobristKeys

// initZobrist fills zobristBase with pseudo-random numbers drawn from the
// same xorshift64star generator the teacher uses for magic-bitboard seeds.
func initZobrist() {
	r := NewRandom(zobristSeed)
	for pc := Piece(0); pc < PieceLength; pc++ {
		for sq := 0; sq < SqLength; sq++ {
			zobristBase.pieces[pc][sq] = Key(r.Rand64())
		}
	}
	for cr := 0; cr <= int(CastlingAny); cr++ {
		zobristBase.castlingRights[cr] = Key(r.Rand64())
	}
	for f := 0; f < FileLength; f++ {
		zobristBase.enPassantFile[f] = Key(r.Rand64())
	}
	zobristBase.nextPlayer = Key(r.Rand64())
}
