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

// Package history provides data structures and functionality to manage
// history driven move tables (butterfly, counter moves, capture history,
// continuation history, pawn-structure history and correction history).
// One History belongs to exactly one search worker; the thread pool gives
// every worker its own instance so nothing in this package needs locking.
// Per-ply killer moves are not kept here - they live on the per-ply move
// generator (movegen.Movegen.killerMoves) since that structure is already
// allocated one-per-ply and is the table's only consumer during ordering.
package history

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kpkoski/gambitcore/position"
	. "github.com/kpkoski/gambitcore/types"
)

var out = message.NewPrinter(language.German)

// historyLimit bounds every saturating accumulator in this package. All
// tables share one update rule: v += bonus - v*|bonus|/historyLimit. The
// term subtracted grows with |v|, so repeated bonuses of the same sign
// flatten out near the limit instead of growing without bound, and a
// single bonus of the opposite sign pulls v back quickly.
const historyLimit = 16_384

// pawnHistorySize and correctionHistorySize are bucket counts for the
// two tables addressed by a position's pawn structure. Both are powers
// of two so addressing is a mask rather than a modulo.
const (
	pawnHistorySize       = 8192
	correctionHistorySize = 16384
)

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt16(v int32) int16 {
	if v > historyLimit {
		return historyLimit
	}
	if v < -historyLimit {
		return -historyLimit
	}
	return int16(v)
}

func updateSaturating(v *int16, bonus int32) {
	cur := int32(*v)
	cur += bonus - cur*abs32(bonus)/historyLimit
	*v = clampInt16(cur)
}

// bonusForDepth turns a fail-high/fail-low depth into the magnitude of
// bonus handed to updateSaturating - deeper cutoffs move the table more.
func bonusForDepth(depth int) int32 {
	b := int32(depth * depth)
	if b > historyLimit {
		b = historyLimit
	}
	return b
}

// PrevMove identifies the piece and destination square of a move played
// some fixed number of plies before the move a continuation-history
// lookup is scoring. PieceNone marks a ply that does not exist (too
// close to the root, or on the far side of a null move).
type PrevMove struct {
	Piece Piece
	To    Square
}

// ContinuationTable holds the bonus earned by playing (piece, to) given
// that an earlier move in the line was (prevPiece, prevTo). History
// keeps four of these, for the moves 1, 2, 4 and 6 plies back, since a
// quiet move's value is often tied to a specific recent reply rather
// than to the position as a whole.
type ContinuationTable [PieceLength][SqLength][PieceLength][SqLength]int16

func (c *ContinuationTable) update(prev PrevMove, piece Piece, to Square, bonus int32) {
	if prev.Piece == PieceNone {
		return
	}
	updateSaturating(&c[prev.Piece][prev.To][piece][to], bonus)
}

// Get returns the stored bonus for (piece, to) conditioned on prev, or 0
// if prev names no move (see PrevMove).
func (c *ContinuationTable) Get(prev PrevMove, piece Piece, to Square) int16 {
	if prev.Piece == PieceNone {
		return 0
	}
	return c[prev.Piece][prev.To][piece][to]
}

// History is a data structure updated during search to provide the move
// generator with valuable information for move sorting.
type History struct {
	// HistoryCount is the classic butterfly table: [color][from][to].
	HistoryCount [2][64][64]int64
	// CounterMoves remembers, for each (from, to) of the move just
	// played, the quiet reply that has most often refuted it.
	CounterMoves [64][64]Move

	// CaptureHistory is indexed by the moving piece, its destination
	// square and the captured piece's type, and orders capturing moves
	// independently of a plain SEE/MVV-LVA comparison.
	CaptureHistory [PieceLength][SqLength][PtLength]int16

	// Continuation1/2/4/6 are the continuation-history planes for the
	// move played 1, 2, 4 and 6 plies before the move being scored.
	Continuation1 ContinuationTable
	Continuation2 ContinuationTable
	Continuation4 ContinuationTable
	Continuation6 ContinuationTable

	// PawnHistory is indexed by a hash of the pawn structure (both
	// colors) and the (piece, to) of the quiet move being scored - a
	// move that has worked well in similar pawn structures before is
	// preferred even when its plain butterfly score is unremarkable.
	PawnHistory [pawnHistorySize][PieceLength][SqLength]int16

	// CorrectionHistory tracks, per color and pawn structure, a running
	// average of the gap between a node's static evaluation and the
	// search value it eventually produced. It is added back onto a raw
	// static eval before that eval drives a pruning decision, correcting
	// for the evaluator's blind spots in that pawn structure.
	CorrectionHistory [2][correctionHistorySize]int16
}

// NewHistory returns a zeroed History ready for one search worker.
func NewHistory() *History {
	return &History{}
}

func pawnHistoryIndex(pawnKey position.Key) uint64 {
	return uint64(pawnKey) & (pawnHistorySize - 1)
}

func correctionHistoryIndex(pawnKey position.Key) uint64 {
	return uint64(pawnKey) & (correctionHistorySize - 1)
}

func (h *History) updateButterfly(c Color, from Square, to Square, bonus int32) {
	cur := h.HistoryCount[c][from][to]
	cur += int64(bonus) - cur*int64(abs32(bonus))/historyLimit
	if cur > historyLimit {
		cur = historyLimit
	} else if cur < -historyLimit {
		cur = -historyLimit
	}
	h.HistoryCount[c][from][to] = cur
}

// UpdateButterfly applies a fail-high bonus to the plain butterfly table
// for a quiet move made by side c that caused the cutoff.
func (h *History) UpdateButterfly(c Color, from Square, to Square, depth int) {
	h.updateButterfly(c, from, to, bonusForDepth(depth))
}

// PenalizeButterfly applies the matching malus to a quiet move that was
// tried at this node but did not cause the cutoff, so the successful
// move's relative ranking improves even when nothing raised alpha.
func (h *History) PenalizeButterfly(c Color, from Square, to Square, depth int) {
	h.updateButterfly(c, from, to, -bonusForDepth(depth))
}

// UpdateCaptureHistory rewards (good=true) or penalizes (good=false) a
// capturing move identified by the moving piece, destination square and
// captured piece type.
func (h *History) UpdateCaptureHistory(piece Piece, to Square, captured PieceType, depth int, good bool) {
	bonus := bonusForDepth(depth)
	if !good {
		bonus = -bonus
	}
	updateSaturating(&h.CaptureHistory[piece][to][captured], bonus)
}

// CaptureHistoryScore returns the stored bonus for a capturing move
// identified by the moving piece, destination square and captured piece
// type, for use as a move-ordering term alongside MVV-LVA/SEE.
func (h *History) CaptureHistoryScore(piece Piece, to Square, captured PieceType) int16 {
	return h.CaptureHistory[piece][to][captured]
}

// UpdateContinuation applies a bonus (good=true) or malus (good=false)
// to all four continuation-history planes for (piece, to), given the
// moves played 1, 2, 4 and 6 plies earlier in the search line.
func (h *History) UpdateContinuation(piece Piece, to Square, depth int, good bool, prev1, prev2, prev4, prev6 PrevMove) {
	bonus := bonusForDepth(depth)
	if !good {
		bonus = -bonus
	}
	h.Continuation1.update(prev1, piece, to, bonus)
	h.Continuation2.update(prev2, piece, to, bonus)
	h.Continuation4.update(prev4, piece, to, bonus)
	h.Continuation6.update(prev6, piece, to, bonus)
}

// ContinuationScore sums the four continuation-history planes for
// (piece, to) given the recent line, for use as a move-ordering term.
func (h *History) ContinuationScore(piece Piece, to Square, prev1, prev2, prev4, prev6 PrevMove) int32 {
	return int32(h.Continuation1.Get(prev1, piece, to)) +
		int32(h.Continuation2.Get(prev2, piece, to)) +
		int32(h.Continuation4.Get(prev4, piece, to)) +
		int32(h.Continuation6.Get(prev6, piece, to))
}

// UpdatePawnHistory rewards or penalizes a quiet move in the pawn
// structure identified by pawnKey.
func (h *History) UpdatePawnHistory(pawnKey position.Key, piece Piece, to Square, depth int, good bool) {
	bonus := bonusForDepth(depth)
	if !good {
		bonus = -bonus
	}
	idx := pawnHistoryIndex(pawnKey)
	updateSaturating(&h.PawnHistory[idx][piece][to], bonus)
}

// PawnHistoryScore returns the stored bonus for a quiet move in the
// pawn structure identified by pawnKey.
func (h *History) PawnHistoryScore(pawnKey position.Key, piece Piece, to Square) int16 {
	return h.PawnHistory[pawnHistoryIndex(pawnKey)][piece][to]
}

// UpdateCorrectionHistory nudges the running static-eval correction for
// (c, pawnKey) toward residual, the gap between a node's search value
// and its static evaluation.
func (h *History) UpdateCorrectionHistory(c Color, pawnKey position.Key, depth int, residual Value) {
	bonus := int32(residual) * int32(depth) / 8
	if bonus > historyLimit {
		bonus = historyLimit
	} else if bonus < -historyLimit {
		bonus = -historyLimit
	}
	idx := correctionHistoryIndex(pawnKey)
	updateSaturating(&h.CorrectionHistory[c][idx], bonus)
}

// CorrectedEval applies the stored correction for (c, pawnKey) to a raw
// static evaluation, scaled down so that a single outlier residual can
// only shift the eval by a modest amount.
func (h *History) CorrectedEval(c Color, pawnKey position.Key, staticEval Value) Value {
	idx := correctionHistoryIndex(pawnKey)
	correction := int32(h.CorrectionHistory[c][idx]) / 4
	corrected := int32(staticEval) + correction
	if corrected > int32(ValueMax) {
		corrected = int32(ValueMax)
	} else if corrected < int32(ValueMin) {
		corrected = int32(ValueMin)
	}
	return Value(corrected)
}

func (h History) String() string {
	sb := strings.Builder{}
	for sf := SqA1; sf < SqNone; sf++ {
		for st := SqA1; st < SqNone; st++ {
			sb.WriteString(out.Sprintf("Move=%s%s: ", sf.String(), st.String()))
			for c := White; c <= 1; c++ {
				count := h.HistoryCount[c][sf][st]
				sb.WriteString(out.Sprintf("%s=%-7d ", c.String(), count))
			}
			m := h.CounterMoves[sf][st]
			sb.WriteString(out.Sprintf("cm=%s\n", m.StringUci()))
		}
	}
	return sb.String()
}
