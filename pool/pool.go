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

// Package pool coordinates a set of search.Search workers ("lazy SMP")
// that all search the same root position concurrently while sharing one
// transposition table. Each worker keeps its own Position copy, history
// tables and move generators - the table is the only thing they share -
// so the workers diverge naturally through history content and hash
// table races rather than through any explicit work-splitting scheme.
//
// Exactly one worker (index 0, the "main" thread) owns time management:
// it is started with the caller's real Limits and is the only one that
// can stop the search on its own. The remaining workers ("helpers") are
// started with time control stripped out so they keep deepening until
// the pool stops them, which happens as soon as the main thread's search
// returns. When the pool itself is asked to stop, it stops every worker
// and waits for all of them to return before reporting a result.
package pool

import (
	"sync"

	"github.com/op/go-logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kpkoski/gambitcore/config"
	myLogging "github.com/kpkoski/gambitcore/logging"
	"github.com/kpkoski/gambitcore/position"
	"github.com/kpkoski/gambitcore/search"
	"github.com/kpkoski/gambitcore/tt"
	. "github.com/kpkoski/gambitcore/types"
	"github.com/kpkoski/gambitcore/uciInterface"
)

var out = message.NewPrinter(language.German)

// Pool owns numThreads search.Search workers and the one transposition
// table they all probe and update.
type Pool struct {
	log *logging.Logger

	workers []*search.Search
	ttable  *tt.TtTable

	uciHandlerPtr uciInterface.UciDriver

	mu         sync.Mutex
	running    bool
	doneCh     chan struct{}
	lastResult *search.Result
}

// NewPool creates a pool of numThreads worker searches sharing one
// transposition table sized sizeInMByte. numThreads below 1 is clamped
// to 1 so the pool is always usable as a plain single-thread searcher.
func NewPool(numThreads int, sizeInMByte int) *Pool {
	if numThreads < 1 {
		numThreads = 1
	}
	if sizeInMByte <= 0 {
		sizeInMByte = 64
	}
	p := &Pool{
		log:    myLogging.GetLog(),
		ttable: tt.NewTtTable(sizeInMByte),
	}
	p.workers = newWorkers(numThreads, p.ttable)
	return p
}

func newWorkers(numThreads int, t *tt.TtTable) []*search.Search {
	workers := make([]*search.Search, numThreads)
	for i := range workers {
		workers[i] = search.NewSearch()
		workers[i].SetTT(t)
	}
	return workers
}

// //////////////////////////////////////////////////////
// UCI driver surface - mirrors search.Search so uci.UciHandler can hold
// either a lone Search or a Pool behind the same field.
// //////////////////////////////////////////////////////

// SetUciHandler sets the handler the pool reports the final, best-thread
// result to. Individual workers are never given a handler directly: that
// would let each of them call SendResult independently and send more
// than one "bestmove" per search, which the UCI protocol forbids.
func (p *Pool) SetUciHandler(uciHandler uciInterface.UciDriver) {
	p.uciHandlerPtr = uciHandler
}

// GetUciHandlerPtr returns the currently installed handler, or nil.
func (p *Pool) GetUciHandlerPtr() uciInterface.UciDriver {
	return p.uciHandlerPtr
}

// NewGame stops any running search and resets every worker's state
// (history tables) plus the shared transposition table for a new game.
func (p *Pool) NewGame() {
	p.StopSearch()
	for _, w := range p.workers {
		w.NewGame()
	}
}

// IsReady initializes the main worker (opening book, TT allocation if
// not already sized) and acknowledges readiness to the UCI front end.
func (p *Pool) IsReady() {
	p.workers[0].IsReady()
	if p.uciHandlerPtr != nil {
		p.uciHandlerPtr.SendReadyOk()
	} else {
		p.log.Debug("uci >> readyok")
	}
}

// ClearHash clears the shared transposition table. Safe to call from any
// worker's perspective since they all point at the same table.
func (p *Pool) ClearHash() {
	if p.IsSearching() {
		msg := "Can't clear hash while searching."
		p.sendInfoString(msg)
		p.log.Warning(msg)
		return
	}
	p.ttable.Clear()
	p.sendInfoString("Hash cleared")
}

// ResizeCache rebuilds the shared transposition table at
// config.Settings.Search.TTSize and rewires every worker to it.
func (p *Pool) ResizeCache() {
	if p.IsSearching() {
		msg := "Can't resize hash while searching."
		p.sendInfoString(msg)
		p.log.Warning(msg)
		return
	}
	sizeInMByte := config.Settings.Search.TTSize
	if sizeInMByte <= 0 {
		sizeInMByte = 64
	}
	p.ttable = tt.NewTtTable(sizeInMByte)
	for _, w := range p.workers {
		w.SetTT(p.ttable)
	}
	p.sendInfoString(out.Sprintf("Hash resized: %s", p.ttable.String()))
}

// SetThreads rebuilds the worker slice to hold numThreads workers,
// keeping as many existing workers (and thus their warmed-up history
// state) as still fit. Ignored with a warning while a search is running.
func (p *Pool) SetThreads(numThreads int) {
	if p.IsSearching() {
		p.log.Warning("Can't resize thread pool while searching.")
		return
	}
	if numThreads < 1 {
		numThreads = 1
	}
	if numThreads == len(p.workers) {
		return
	}
	workers := make([]*search.Search, numThreads)
	copy(workers, p.workers)
	for i := len(p.workers); i < numThreads; i++ {
		workers[i] = search.NewSearch()
		workers[i].SetTT(p.ttable)
	}
	p.workers = workers
	p.log.Infof("Search threads resized to %d", numThreads)
}

// Threads reports how many workers are currently in the pool.
func (p *Pool) Threads() int {
	return len(p.workers)
}

// StartSearch starts every worker on a copy of pos. Worker 0 receives sl
// unchanged and drives time management; every other worker receives a
// copy of sl with time control stripped out (infinite, same node/depth
// caps) so it keeps deepening until the pool stops it. Returns once all
// workers have completed their (fast) initialization phase, mirroring
// search.Search.StartSearch's contract.
func (p *Pool) StartSearch(pos position.Position, sl search.Limits) {
	p.mu.Lock()
	p.running = true
	p.doneCh = make(chan struct{})
	doneCh := p.doneCh
	p.mu.Unlock()

	helperLimits := sl
	helperLimits.TimeControl = false
	helperLimits.Infinite = true
	helperLimits.MoveTime = 0
	helperLimits.Ponder = false

	for i, w := range p.workers {
		if i == 0 {
			w.StartSearch(pos, sl)
		} else {
			w.StartSearch(pos, helperLimits)
		}
	}

	go p.finish(doneCh)
}

// finish waits for the main worker to conclude its own time-managed
// search, stops every helper, picks the best-thread result and reports
// it exactly once through the installed UCI handler. An errgroup.Group
// supervises the join: one goroutine waits on the main thread and then
// signals every helper to stop, while one goroutine per helper blocks
// until that helper has actually returned - g.Wait only unblocks once
// every worker has truly finished, not merely been told to.
func (p *Pool) finish(doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	var g errgroup.Group

	g.Go(func() error {
		p.workers[0].WaitWhileSearching()
		for _, w := range p.workers[1:] {
			w.StopSearch()
		}
		return nil
	})
	for _, w := range p.workers[1:] {
		w := w
		g.Go(func() error {
			w.WaitWhileSearching()
			return nil
		})
	}
	_ = g.Wait()

	best := p.bestThread()
	result := best.LastSearchResult()

	p.mu.Lock()
	p.lastResult = &result
	p.mu.Unlock()

	if p.uciHandlerPtr != nil {
		p.uciHandlerPtr.SendResult(result.BestMove, result.PonderMove)
	} else {
		p.log.Infof("Pool search result: %s", result.String())
	}
}

// bestThread implements the "vote" of §4.6: prefer the worker that
// completed the greatest depth, breaking ties on the higher score, and
// otherwise defers to the main thread.
func (p *Pool) bestThread() *search.Search {
	best := p.workers[0]
	bestResult := best.LastSearchResult()
	for _, w := range p.workers[1:] {
		r := w.LastSearchResult()
		if r.BestMove == MoveNone {
			continue
		}
		if r.SearchDepth > bestResult.SearchDepth ||
			(r.SearchDepth == bestResult.SearchDepth && r.BestValue > bestResult.BestValue) {
			best = w
			bestResult = r
		}
	}
	return best
}

// StopSearch stops every worker as quickly as possible and waits for the
// pool to report its result.
func (p *Pool) StopSearch() {
	for _, w := range p.workers {
		w.StopSearch()
	}
	p.WaitWhileSearching()
}

// PonderHit activates time control on the main thread once pondering
// ends; helper threads are never time-controlled so they are unaffected.
func (p *Pool) PonderHit() {
	p.workers[0].PonderHit()
}

// IsSearching reports whether a search is currently in flight.
func (p *Pool) IsSearching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// WaitWhileSearching blocks until the in-flight search (if any) has
// finished and the pool has reported its result.
func (p *Pool) WaitWhileSearching() {
	p.mu.Lock()
	ch := p.doneCh
	p.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

// LastSearchResult returns the result chosen from the best-performing
// worker of the most recently finished search.
func (p *Pool) LastSearchResult() search.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastResult == nil {
		return search.Result{}
	}
	return *p.lastResult
}

// NodesVisited sums the node counts of every worker, matching the
// "aggregated via sum when reporting" rule of §5 for per-thread counters.
func (p *Pool) NodesVisited() uint64 {
	var total uint64
	for _, w := range p.workers {
		total += w.NodesVisited()
	}
	return total
}

// Statistics returns the main thread's statistics; per-thread detail for
// the helpers is available through each worker but not aggregated here,
// matching the UCI info stream which only ever describes one thread's
// view of the search.
func (p *Pool) Statistics() *search.Statistics {
	return p.workers[0].Statistics()
}

func (p *Pool) sendInfoString(msg string) {
	if p.uciHandlerPtr != nil {
		p.uciHandlerPtr.SendInfoString(msg)
	} else {
		p.log.Debug(msg)
	}
}
