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

package search

import (
	. "github.com/kpkoski/gambitcore/config"
	"github.com/kpkoski/gambitcore/position"
	. "github.com/kpkoski/gambitcore/types"
)

// aspirationSearch re-searches the root with a window centered on the
// previous iteration's value instead of [-inf,+inf]. A narrow window
// cuts more nodes when it holds; a fail-low or fail-high forces a
// re-search with the window widened to the next step of aspirationSteps.
// https://www.chessprogramming.org/Aspiration_Windows
func (s *Search) aspirationSearch(position *position.Position, depth int, prevValue Value) Value {
	step := 0
	margin := aspirationSteps[step]
	alpha := prevValue - margin
	beta := prevValue + margin
	if alpha < ValueMin {
		alpha = ValueMin
	}
	if beta > ValueMax {
		beta = ValueMax
	}

	value := s.rootSearch(position, depth, alpha, beta)

	for !s.stopConditions() && (value <= alpha || value >= beta) {
		s.statistics.AspirationResearches++
		if step < len(aspirationSteps)-1 {
			step++
		}
		margin = aspirationSteps[step]
		if value <= alpha {
			s.sendAspirationResearchInfo("lowerbound")
			alpha = prevValue - margin
			if alpha < ValueMin {
				alpha = ValueMin
			}
		} else {
			s.sendAspirationResearchInfo("upperbound")
			beta = prevValue + margin
			if beta > ValueMax {
				beta = ValueMax
			}
		}
		value = s.rootSearch(position, depth, alpha, beta)
	}

	return value
}

// mtdf finds the minimax value of the root position through a sequence
// of increasingly accurate null-window searches (MTD(f), Plaat 1994),
// using firstGuess - typically the previous iteration's value - as the
// starting point.
// https://www.chessprogramming.org/MTD(f)
func (s *Search) mtdf(position *position.Position, depth int, firstGuess Value) Value {
	g := firstGuess
	lowerBound := ValueMin
	upperBound := ValueMax

	for lowerBound < upperBound && !s.stopConditions() {
		beta := g
		if g == lowerBound {
			beta = g + Settings.Search.MTDfMargin
		}
		g = s.rootSearch(position, depth, beta-1, beta)
		if g < beta {
			upperBound = g
		} else {
			lowerBound = g
		}
	}

	return g
}
