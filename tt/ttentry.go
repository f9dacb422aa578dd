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

package tt

import (
	"sync/atomic"

	. "github.com/kpkoski/gambitcore/types"
)

// TtEntry is a single slot in the transposition table. Every search worker
// in the pool reads and writes slots concurrently with no mutex: the two
// words are each touched with a relaxed atomic load/store, and check is
// written as keyFragment XOR payload so a reader can tell a genuine key
// match from a partially-written (torn) entry without ever storing the
// full 64-bit Zobrist key - only a 16-bit fragment of it ever hits memory.
//
// Write order is payload-then-check; read order is check-then-payload, so
// a torn read (racing with a concurrent Put) recomputes a keyFragment that
// does not match what the prober asked for and is treated as a miss, same
// as a genuine collision. This is the same trick Put/Probe use to avoid a
// reader ever observing half of one entry and half of another.
type TtEntry struct {
	payload uint64
	check   uint64
}

// TtEntrySize is the size in bytes for each TtEntry.
const TtEntrySize = 16

// payload bit layout: move16 | value16 | eval16 | depth8 | vtype2 | pv1 | age5
const (
	moveShift  = 0
	valueShift = 16
	evalShift  = 32
	depthShift = 48
	vtypeShift = 56
	pvShift    = 58
	ageShift   = 59

	word16Mask = uint64(0xFFFF)
	depthMask  = uint64(0xFF)
	vtypeMask  = uint64(0x3)
	pvMask     = uint64(0x1)
	ageMask    = uint64(0x1F)

	// MaxAge is the largest age value the 5-bit age field can hold.
	MaxAge = uint8(ageMask)
)

func packPayload(move Move, value Value, eval Value, depth int8, vtype ValueType, pv bool, age uint8) uint64 {
	var pvBit uint64
	if pv {
		pvBit = 1
	}
	return uint64(uint16(move))<<moveShift |
		uint64(uint16(value))<<valueShift |
		uint64(uint16(eval))<<evalShift |
		uint64(uint8(depth))<<depthShift |
		uint64(vtype)<<vtypeShift |
		pvBit<<pvShift |
		uint64(age&uint8(ageMask))<<ageShift
}

func moveOf(payload uint64) Move       { return Move(uint16(payload >> moveShift & word16Mask)) }
func valueOf(payload uint64) Value     { return Value(int16(uint16(payload >> valueShift & word16Mask))) }
func evalOf(payload uint64) Value      { return Value(int16(uint16(payload >> evalShift & word16Mask))) }
func depthOf(payload uint64) int8      { return int8(uint8(payload >> depthShift & depthMask)) }
func vtypeOf(payload uint64) ValueType { return ValueType(payload >> vtypeShift & vtypeMask) }
func pvOf(payload uint64) bool         { return payload>>pvShift&pvMask != 0 }
func ageOf(payload uint64) uint8       { return uint8(payload >> ageShift & ageMask) }

func withAge(payload uint64, age uint8) uint64 {
	return payload&^(ageMask<<ageShift) | uint64(age&uint8(ageMask))<<ageShift
}

// load does an acquire-ordered read of the slot and reports whether the
// recovered key fragment matches keyFragment - a mismatch means either a
// different key hashed here or a concurrent Put tore the read.
func (e *TtEntry) load(keyFragment uint16) (payload uint64, ok bool) {
	check := atomic.LoadUint64(&e.check)
	payload = atomic.LoadUint64(&e.payload)
	if check^payload != uint64(keyFragment) {
		return 0, false
	}
	return payload, true
}

func (e *TtEntry) store(keyFragment uint16, payload uint64) {
	atomic.StoreUint64(&e.payload, payload)
	atomic.StoreUint64(&e.check, uint64(keyFragment)^payload)
}

func (e *TtEntry) rawPayload() uint64 {
	return atomic.LoadUint64(&e.payload)
}

// ProbeResult is a snapshot copy of one TtEntry handed back by Probe or
// GetEntry. It is never a pointer into the table's own storage: the table
// is mutated by concurrent workers, so callers get a consistent value
// they can hold onto instead of a window onto memory someone else may be
// overwriting mid-read.
type ProbeResult struct {
	Move  Move
	Value Value
	Eval  Value
	Depth int8
	Type  ValueType
	Age   uint8
}
