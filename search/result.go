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
	"time"

	"github.com/kpkoski/gambitcore/moveslice"
	. "github.com/kpkoski/gambitcore/types"
)

// Result holds everything the rest of the engine needs to know about a
// finished (or stopped) search.
type Result struct {
	BestMove    Move
	BestValue   Value
	PonderMove  Move
	Pv          moveslice.MoveSlice
	SearchTime  time.Duration
	SearchDepth int
	ExtraDepth  int
	BookMove    bool

	// MultiPV holds one Result per requested root line, ordered best
	// first. Empty unless Settings.Search.MultiPV > 1.
	MultiPV []Result
}

func (r *Result) String() string {
	return out.Sprintf("Best Move: %s (%s) Ponder Move: %s Depth: %d/%d Time: %s",
		r.BestMove.StringUci(), r.BestValue.String(), r.PonderMove.StringUci(),
		r.SearchDepth, r.ExtraDepth, r.SearchTime)
}
