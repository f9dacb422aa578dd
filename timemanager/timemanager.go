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

// Package timemanager estimates and enforces a wall-clock budget for one
// iterative-deepening search. It takes the time-control portion of a
// search's limits plus the position's game phase and decides how long
// the current move gets; a running search can then ask for extra or
// reduced time as the position develops.
package timemanager

import (
	"time"

	"github.com/op/go-logging"

	myLogging "github.com/kpkoski/gambitcore/logging"
	"github.com/kpkoski/gambitcore/position"
	"github.com/kpkoski/gambitcore/types"
	"github.com/kpkoski/gambitcore/util"
)

// Params bundles the time-control fields a search's limits carry,
// independent of the search package's own Limits type so this package
// doesn't need to import it.
type Params struct {
	// MoveTime, if set, is a fixed per-move budget; all other fields
	// are ignored.
	MoveTime time.Duration

	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
}

// Manager computes and enforces the time budget for a single search.
// It is not safe for concurrent use by more than one search at a time;
// the lazy-SMP pool gives every worker its own Manager.
type Manager struct {
	log *logging.Logger

	timeLimit time.Duration
	extraTime time.Duration
}

// NewManager creates a Manager with no time budget set.
func NewManager() *Manager {
	return &Manager{log: myLogging.GetNamedLog("timemanager")}
}

// Reset clears any previously computed budget.
func (m *Manager) Reset() {
	m.timeLimit = 0
	m.extraTime = 0
}

// TimeLimit returns the base time budget set by the last Setup call.
func (m *Manager) TimeLimit() time.Duration {
	return m.timeLimit
}

// ExtraTime returns the cumulative extension/reduction applied by
// AddExtraTime since the last Setup call.
func (m *Manager) ExtraTime() time.Duration {
	return m.extraTime
}

// Setup computes a time budget for the current move from p and tc and
// stores it as the new base time limit, resetting any extra time from a
// previous move. Returns the computed budget.
func (m *Manager) Setup(p *position.Position, tc Params) time.Duration {
	m.extraTime = 0
	if tc.MoveTime > 0 { // mode time per move
		// we need a little room for executing the code
		duration := tc.MoveTime - (20 * time.Millisecond)
		if duration < 0 {
			m.log.Warningf("Very short move time: %s. ", tc.MoveTime)
			m.timeLimit = tc.MoveTime
			return m.timeLimit
		}
		m.timeLimit = duration
		return m.timeLimit
	}

	// remaining time - estimated time per move
	movesLeft := int64(tc.MovesToGo)
	if movesLeft == 0 { // default
		// we estimate minimum 15 more moves in final game phases
		// in early game phases this grows up to 40
		movesLeft = int64(15 + (25 * p.GamePhaseFactor()))
	}

	// time left for current player
	var timeLeft time.Duration
	switch p.NextPlayer() {
	case types.White:
		timeLeft = tc.WhiteTime + time.Duration(movesLeft*tc.WhiteInc.Nanoseconds())
	case types.Black:
		timeLeft = tc.BlackTime + time.Duration(movesLeft*tc.BlackInc.Nanoseconds())
	}

	// estimate time per move
	limit := time.Duration(timeLeft.Nanoseconds() / movesLeft)
	// account for runtime of our code
	if limit.Milliseconds() < 100 {
		// limits for very short available time reduced by another 20%
		limit = time.Duration(int64(0.8 * float64(limit.Nanoseconds())))
	} else {
		// reduced by 10%
		limit = time.Duration(int64(0.9 * float64(limit.Nanoseconds())))
	}
	m.timeLimit = limit
	return m.timeLimit
}

// AddExtraTime extends or reduces the current time limit by a portion
// (%) of it and returns the new cumulative extra time.
//
//	f = 1.0 --> no change in search time
//	f = 0.9 --> reduction by 10%
//	f = 1.1 --> extension by 10%
func (m *Manager) AddExtraTime(f float64) time.Duration {
	duration := time.Duration(int64((f - 1.0) * float64(m.timeLimit.Nanoseconds())))
	m.extraTime += duration
	m.log.Debugf("Time added/reduced by %s to %s ", duration, m.timeLimit+m.extraTime)
	return m.extraTime
}

// Start launches a goroutine that polls elapsed wall time against the
// current budget (timeLimit+extraTime) and sets stopFlag to true when
// the budget is exhausted. It also stops quietly if stopFlag is set by
// someone else first (e.g. the search finishing on its own, or a UCI
// stop command). stopFlag is shared with the running search and polled
// under relaxed atomic loads/stores, matching the stop-flag contract
// every worker in the pool observes at its own safe points.
func (m *Manager) Start(stopFlag *util.Bool) {
	go func() {
		timerStart := time.Now()
		m.log.Debugf("Timer started with time limit of %s", m.timeLimit)
		// as timeLimit changes due to extra times we can't set a fixed timeout
		// so we do a relaxed busy wait
		for time.Since(timerStart) < m.timeLimit+m.extraTime && !stopFlag.Load() {
			time.Sleep(5 * time.Millisecond)
		}
		if stopFlag.Load() {
			m.log.Debugf("Timer stopped early after wall time: %s (time limit %s and extra time %s)",
				time.Since(timerStart), m.timeLimit, m.extraTime)
		} else {
			m.log.Debugf("Timer stops search after wall time: %s (time limit %s and extra time %s)",
				time.Since(timerStart), m.timeLimit, m.extraTime)
			stopFlag.Store(true)
		}
	}()
}
