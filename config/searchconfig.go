/*
 * FrankyGo - UCI chess engine in GO for learning purposes
 *
 * MIT License
 *
 * Copyright (c) 2018-2020 Frank Kopp
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package config

import (
	. "github.com/kpkoski/gambitcore/types"
)

// searchConfiguration is a data structure to hold the configuration of an
// instance of a search.
type searchConfiguration struct {
	// Opening book
	UseBook    bool
	BookPath   string
	BookFile   string
	BookFormat string

	// Ponder
	UsePonder bool

	// Quiescence search
	UseQuiescence bool
	UseQSStandpat bool
	UseSEE        bool

	// Move ordering
	UsePVS       bool
	UseKiller    bool
	UseIID       bool
	IIDDepth     int
	IIDReduction int

	// history driven move ordering, beyond the plain butterfly table
	UseHistoryCounter    bool
	UseCounterMoves      bool
	UseCaptureHistory    bool
	UseContinuationHist  bool
	UsePawnHistory       bool
	UseCorrectionHistory bool

	// internal iterative reduction: shrink the draft of a PV/cut node
	// with no usable TT move instead of running a separate reduced
	// search the way Internal Iterative Deepening above does
	UseIIR       bool
	IIRDepth     int
	IIRReduction int

	// singular extensions
	UseSingular      bool
	SingularDepth    int
	SingularMargin   Value
	DoubleExtMargin  Value
	MaxDoubleExtends int

	// ProbCut
	UseProbCut    bool
	ProbCutDepth  int
	ProbCutMargin Value

	// MultiPV: number of root lines searched and reported independently
	MultiPV int

	// root search driver: narrow the window around the previous
	// iteration's value (aspiration, widened per aspirationSteps on
	// fail-low/fail-high) or zoom in with repeated null-window searches
	// (MTD(f)) instead of a full-window root search
	UseAspiration bool
	UseMTDf       bool
	MTDfMargin    Value

	// Transposition Table
	UseTT      bool
	TTSize     int
	UseTTMove  bool
	UseTTValue bool
	UseQSTT    bool
	UseEvalTT  bool

	// Threads: number of parallel lazy-SMP worker searches sharing the
	// transposition table. Only a single-threaded search is required to
	// be deterministic; this just sizes the worker pool.
	Threads int

	// Prunings pre move gen
	UseMDP       bool
	UseRFP       bool
	UseNullMove  bool
	NmpDepth     int
	NmpReduction int

	// extensions of search depth
	UseExt         bool
	UseExtAddDepth bool
	UseCheckExt    bool
	UseThreatExt   bool

	// prunings after move generation but before making move
	UseFP            bool
	UseLmp           bool
	UseLmr           bool
	LmrDepth         int
	LmrMovesSearched int
}

// sets defaults which might be overwritten by config file
func init() {
	Settings.Search.UseBook = true
	Settings.Search.BookPath = "./assets/books"
	Settings.Search.BookFile = "book.txt"
	Settings.Search.BookFormat = "Simple"

	Settings.Search.UsePonder = true

	Settings.Search.UseQuiescence = true
	Settings.Search.UseQSStandpat = true
	Settings.Search.UseSEE = true

	Settings.Search.UsePVS = true
	Settings.Search.UseKiller = true
	Settings.Search.UseIID = true
	Settings.Search.IIDDepth = 6
	Settings.Search.IIDReduction = 2

	Settings.Search.UseHistoryCounter = true
	Settings.Search.UseCounterMoves = true
	Settings.Search.UseCaptureHistory = true
	Settings.Search.UseContinuationHist = true
	Settings.Search.UsePawnHistory = true
	Settings.Search.UseCorrectionHistory = true

	Settings.Search.UseIIR = true
	Settings.Search.IIRDepth = 4
	Settings.Search.IIRReduction = 2

	Settings.Search.UseSingular = true
	Settings.Search.SingularDepth = 7
	Settings.Search.SingularMargin = 1
	Settings.Search.DoubleExtMargin = 20
	Settings.Search.MaxDoubleExtends = 6

	Settings.Search.UseProbCut = true
	Settings.Search.ProbCutDepth = 5
	Settings.Search.ProbCutMargin = 180

	Settings.Search.MultiPV = 1

	Settings.Search.UseAspiration = true
	Settings.Search.UseMTDf = false
	Settings.Search.MTDfMargin = 1

	Settings.Search.UseTT = true
	Settings.Search.TTSize = 128
	Settings.Search.UseTTMove = true
	Settings.Search.UseTTValue = true
	Settings.Search.UseQSTT = true
	Settings.Search.UseEvalTT = false

	Settings.Search.Threads = 1

	Settings.Search.UseMDP = true
	Settings.Search.UseRFP = false
	Settings.Search.UseNullMove = true
	Settings.Search.NmpDepth = 3
	Settings.Search.NmpReduction = 2

	Settings.Search.UseExt = true
	Settings.Search.UseExtAddDepth = true
	Settings.Search.UseCheckExt = true
	Settings.Search.UseThreatExt = false

	Settings.Search.UseFP = false
	Settings.Search.UseLmp = true
	Settings.Search.UseLmr = true
	Settings.Search.LmrDepth = 3
	Settings.Search.LmrMovesSearched = 3

}

// set defaults for configurations here in case a configuration
// is not available from the config file
func setupSearch() {

}
