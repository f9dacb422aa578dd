package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/kpkoski/gambitcore/types"
)

func TestButterflySaturates(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 10_000; i++ {
		h.UpdateButterfly(White, SqE2, SqE4, 10)
	}
	assert.LessOrEqual(t, h.HistoryCount[White][SqE2][SqE4], int64(historyLimit))

	h.PenalizeButterfly(White, SqE2, SqE4, 10)
	assert.Less(t, h.HistoryCount[White][SqE2][SqE4], int64(historyLimit))
}

func TestCaptureHistory(t *testing.T) {
	h := NewHistory()
	h.UpdateCaptureHistory(WhiteKnight, SqF6, Pawn, 4, true)
	assert.Greater(t, h.CaptureHistory[WhiteKnight][SqF6][Pawn], int16(0))

	h.UpdateCaptureHistory(WhiteKnight, SqF6, Pawn, 4, false)
	assert.Less(t, h.CaptureHistory[WhiteKnight][SqF6][Pawn], int16(h.CaptureHistory[WhiteKnight][SqF6][Pawn]+1))
}

func TestContinuationHistory(t *testing.T) {
	h := NewHistory()
	prev1 := PrevMove{Piece: BlackKnight, To: SqF6}
	none := PrevMove{Piece: PieceNone}

	h.UpdateContinuation(WhiteBishop, SqG5, 6, true, prev1, none, none, none)
	score := h.ContinuationScore(WhiteBishop, SqG5, prev1, none, none, none)
	assert.Greater(t, score, int32(0))

	// a lookup with no matching previous move never contributes.
	otherPrev := PrevMove{Piece: BlackPawn, To: SqD5}
	assert.EqualValues(t, 0, h.ContinuationScore(WhiteBishop, SqG5, otherPrev, none, none, none))
}

func TestPawnHistory(t *testing.T) {
	h := NewHistory()
	key := Key(12345)
	h.UpdatePawnHistory(key, WhiteRook, SqD1, 5, true)
	assert.Greater(t, h.PawnHistoryScore(key, WhiteRook, SqD1), int16(0))
}

func TestCorrectionHistory(t *testing.T) {
	h := NewHistory()
	key := Key(98765)
	raw := Value(50)

	// before any correction is recorded, eval passes through unchanged.
	assert.EqualValues(t, raw, h.CorrectedEval(White, key, raw))

	for i := 0; i < 50; i++ {
		h.UpdateCorrectionHistory(White, key, 8, Value(200))
	}
	corrected := h.CorrectedEval(White, key, raw)
	assert.Greater(t, corrected, raw)
}

func TestNewHistoryIsZeroed(t *testing.T) {
	h := NewHistory()
	assert.EqualValues(t, 0, h.HistoryCount[White][SqA1][SqA2])
	assert.Equal(t, MoveNone, h.CounterMoves[SqA1][SqA2])
}
