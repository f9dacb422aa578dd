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

// Package tt implements the shared transposition table for the search
// pool. Unlike the single-threaded cache this package started from, the
// table is now probed and updated by every worker goroutine concurrently
// with no external locking: Probe/Put use relaxed sync/atomic loads and
// stores plus a key/payload XOR check (see TtEntry) instead of a mutex.
// Resize and Clear are still not safe to call while a search is running
// and must be serialized by the pool the same way the teacher required.
package tt

import (
	"math"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	myLogging "github.com/kpkoski/gambitcore/logging"
	"github.com/kpkoski/gambitcore/position"
	. "github.com/kpkoski/gambitcore/types"
	"github.com/kpkoski/gambitcore/util"
)

var out = message.NewPrinter(language.German)

const (
	// MB is the number of bytes in one megabyte, used to translate the
	// configured TT size into a byte count.
	MB = 1024 * 1024
	// MaxSizeInMB maximal memory usage of tt
	MaxSizeInMB = 65_536
	// ClusterSize is the number of entries probed/replaced together for a
	// given key. Grouping entries into small clusters (as opposed to one
	// slot per hash bucket) gives Put somewhere to place a new position
	// without evicting a deeper, still-useful one for an unrelated key
	// that happens to collide on the low hash bits.
	ClusterSize = 3
)

// TtTable is the shared transposition table. Create with NewTtTable().
// Probe/Put/GetEntry are safe for concurrent use by multiple search
// workers; Resize/Clear/AgeEntries are not and must run with no search
// in flight.
type TtTable struct {
	log                *logging.Logger
	data               []TtEntry
	sizeInByte         uint64
	clusterMask        uint64 // mask over cluster index, not entry index
	maxNumberOfEntries uint64
	numberOfEntries    uint64
	generation         uint8
	Stats              TtStats
}

// TtStats holds statistical data on tt usage. All counters are updated
// with atomic.AddUint64 since every search worker shares one TtTable.
type TtStats struct {
	numberOfPuts       uint64
	numberOfCollisions uint64
	numberOfOverwrites uint64
	numberOfUpdates    uint64
	numberOfProbes     uint64
	numberOfHits       uint64
	numberOfMisses     uint64
}

// NewTtTable creates a new TtTable with the given number of bytes
// as a maximum of memory usage. actual size will be determined
// by the number of elements fitting into this size which need
// to be a power of 2 for efficient hashing/addressing via bit
// masks.
func NewTtTable(sizeInMByte int) *TtTable {
	tt := TtTable{
		log: myLogging.GetLog(),
	}
	tt.Resize(sizeInMByte)
	return &tt
}

// Resize resizes the tt table. All entries will be cleared. Not safe to
// call while any search worker may be probing or putting concurrently.
func (tt *TtTable) Resize(sizeInMByte int) {
	if sizeInMByte > MaxSizeInMB {
		tt.log.Error(out.Sprintf("Requested size for TT of %d MB reduced to max of %d MB", sizeInMByte, MaxSizeInMB))
		sizeInMByte = MaxSizeInMB
	}

	sizeInByte := uint64(sizeInMByte) * MB
	numberOfClusters := uint64(0)
	if sizeInByte >= ClusterSize*TtEntrySize {
		numberOfClusters = 1 << uint64(math.Floor(math.Log2(float64(sizeInByte/(ClusterSize*TtEntrySize)))))
	}
	tt.clusterMask = 0
	if numberOfClusters > 0 {
		tt.clusterMask = numberOfClusters - 1
	}
	tt.maxNumberOfEntries = numberOfClusters * ClusterSize
	tt.sizeInByte = tt.maxNumberOfEntries * TtEntrySize

	tt.data = make([]TtEntry, tt.maxNumberOfEntries)
	tt.numberOfEntries = 0
	tt.generation = 0

	tt.log.Info(out.Sprintf("TT Size %d MByte, Capacity %d entries in %d clusters of %d (size=%dByte) (Requested were %d MBytes)",
		tt.sizeInByte/MB, tt.maxNumberOfEntries, numberOfClusters, ClusterSize, unsafe.Sizeof(TtEntry{}), sizeInMByte))
	tt.log.Debug(util.MemStat())
}

// keyFragment is the 16-bit disambiguation fragment stored (XORed into
// check) in each entry - the upper bits of the full Zobrist key, since
// the lower bits already select the cluster.
func keyFragment(key position.Key) uint16 {
	return uint16(key >> 48)
}

// clusterStart returns the slice index of the first entry in the
// cluster that key hashes to.
func (tt *TtTable) clusterStart(key position.Key) uint64 {
	return (uint64(key) & tt.clusterMask) * ClusterSize
}

func toResult(payload uint64) *ProbeResult {
	return &ProbeResult{
		Move:  moveOf(payload),
		Value: valueOf(payload),
		Eval:  evalOf(payload),
		Depth: depthOf(payload),
		Type:  vtypeOf(payload),
		Age:   ageOf(payload),
	}
}

// GetEntry returns a snapshot of the entry matching key, or nil if no
// cluster member currently holds it. Does not change statistics and does
// not touch age, unlike Probe.
func (tt *TtTable) GetEntry(key position.Key) *ProbeResult {
	if tt.maxNumberOfEntries == 0 {
		return nil
	}
	frag := keyFragment(key)
	start := tt.clusterStart(key)
	for i := uint64(0); i < ClusterSize; i++ {
		if payload, ok := tt.data[start+i].load(frag); ok {
			return toResult(payload)
		}
	}
	return nil
}

// Probe returns a snapshot of the entry matching key, or nil if it was
// not found in any member of the cluster. Refreshes the hit entry's age
// to the table's current generation so it survives future replacement
// decisions a little longer.
func (tt *TtTable) Probe(key position.Key) *ProbeResult {
	atomic.AddUint64(&tt.Stats.numberOfProbes, 1)
	if tt.maxNumberOfEntries == 0 {
		atomic.AddUint64(&tt.Stats.numberOfMisses, 1)
		return nil
	}
	frag := keyFragment(key)
	start := tt.clusterStart(key)
	for i := uint64(0); i < ClusterSize; i++ {
		e := &tt.data[start+i]
		payload, ok := e.load(frag)
		if !ok {
			continue
		}
		if ageOf(payload) != tt.generation {
			payload = withAge(payload, tt.generation)
			e.store(frag, payload)
		}
		atomic.AddUint64(&tt.Stats.numberOfHits, 1)
		return toResult(payload)
	}
	atomic.AddUint64(&tt.Stats.numberOfMisses, 1)
	return nil
}

// Put writes a position into the tt, replacing the weakest member of its
// cluster when no slot already holds this key. Replacement priority
// follows (age_gap * depthPenalty) - depth: the older an occupant is
// relative to the table's current generation, and the shallower its
// draft, the more eagerly it is evicted in favor of a new, deeper probe.
func (tt *TtTable) Put(key position.Key, move Move, depth int8, value Value, valueType ValueType, eval Value) {
	if tt.maxNumberOfEntries == 0 {
		return
	}
	atomic.AddUint64(&tt.Stats.numberOfPuts, 1)

	frag := keyFragment(key)
	start := tt.clusterStart(key)

	// 1) an empty slot or one already holding this exact key wins outright
	var victim *TtEntry
	var victimPayload uint64
	worstScore := int32(math.MinInt32)

	for i := uint64(0); i < ClusterSize; i++ {
		e := &tt.data[start+i]
		payload := e.rawPayload()

		if payload == 0 {
			tt.writeEntry(e, frag, move, depth, value, valueType, eval, true)
			atomic.AddUint64(&tt.numberOfEntries, 1)
			return
		}

		if check := atomic.LoadUint64(&e.check); check^payload == uint64(frag) {
			// same key: merge, preferring a deeper or more informative
			// replacement but always accepting a move/eval refresh.
			atomic.AddUint64(&tt.Stats.numberOfUpdates, 1)
			tt.mergeEntry(e, frag, payload, move, depth, value, valueType, eval)
			return
		}

		ageGap := int32(tt.generation) - int32(ageOf(payload))
		if ageGap < 0 {
			ageGap += int32(MaxAge) + 1
		}
		score := ageGap*depthPenalty - int32(depthOf(payload))
		if score > worstScore {
			worstScore = score
			victim = e
			victimPayload = payload
		}
	}

	// 2) no exact match: evict the weakest cluster member
	atomic.AddUint64(&tt.Stats.numberOfCollisions, 1)
	if int32(depth) >= int32(depthOf(victimPayload))-replacementMargin {
		atomic.AddUint64(&tt.Stats.numberOfOverwrites, 1)
		tt.writeEntry(victim, frag, move, depth, value, valueType, eval, true)
	}
}

// depthPenalty and replacementMargin tune how strongly age dominates
// depth in the eviction score; both are small integer weights rather
// than tunable engine options since the table has no UCI-visible knob
// for replacement strategy.
const (
	depthPenalty       = int32(2)
	replacementMargin  = int32(3)
)

func (tt *TtTable) writeEntry(e *TtEntry, frag uint16, move Move, depth int8, value Value, valueType ValueType, eval Value, pv bool) {
	e.store(frag, packPayload(move, value, eval, depth, valueType, pv, tt.generation))
}

func (tt *TtTable) mergeEntry(e *TtEntry, frag uint16, payload uint64, move Move, depth int8, value Value, valueType ValueType, eval Value) {
	newMove := moveOf(payload)
	if move != MoveNone {
		newMove = move
	}
	newEval := evalOf(payload)
	if eval != ValueNA {
		newEval = eval
	}
	newValue := valueOf(payload)
	newDepth := depthOf(payload)
	newType := vtypeOf(payload)
	if value != ValueNA {
		newValue = value
		newDepth = depth
		newType = valueType
	}
	e.store(frag, packPayload(newMove, newValue, newEval, newDepth, newType, pvOf(payload), tt.generation))
}

// Clear clears all entries of the tt. Not safe to call concurrently with
// Probe/Put from a running search.
func (tt *TtTable) Clear() {
	tt.data = make([]TtEntry, tt.maxNumberOfEntries)
	tt.numberOfEntries = 0
	tt.generation = 0
	tt.Stats = TtStats{}
}

// Hashfull returns how full the transposition table is in permill as per UCI
func (tt *TtTable) Hashfull() int {
	if tt.maxNumberOfEntries == 0 {
		return 0
	}
	return int((1000 * atomic.LoadUint64(&tt.numberOfEntries)) / tt.maxNumberOfEntries)
}

// String returns a string representation of this TtTable instance
func (tt *TtTable) String() string {
	hits := atomic.LoadUint64(&tt.Stats.numberOfHits)
	probes := atomic.LoadUint64(&tt.Stats.numberOfProbes)
	misses := atomic.LoadUint64(&tt.Stats.numberOfMisses)
	return out.Sprintf("TT: size %d MB max entries %d of size %d Bytes entries %d (%d%%) puts %d "+
		"updates %d collisions %d overwrites %d probes %d hits %d (%d%%) misses %d (%d%%)",
		tt.sizeInByte/MB, tt.maxNumberOfEntries, unsafe.Sizeof(TtEntry{}), atomic.LoadUint64(&tt.numberOfEntries), tt.Hashfull()/10,
		atomic.LoadUint64(&tt.Stats.numberOfPuts), atomic.LoadUint64(&tt.Stats.numberOfUpdates),
		atomic.LoadUint64(&tt.Stats.numberOfCollisions), atomic.LoadUint64(&tt.Stats.numberOfOverwrites), probes,
		hits, (hits*100)/(1+probes), misses, (misses*100)/(1+probes))
}

// Len returns the number of non empty entries in the tt
func (tt *TtTable) Len() uint64 {
	return atomic.LoadUint64(&tt.numberOfEntries)
}

// NewGeneration advances the table's generation counter. The pool calls
// this once per go-to-move, ageing every entry already in the table
// relative to freshly-stored ones without touching their contents - a
// stale entry just becomes a more attractive Put target.
func (tt *TtTable) NewGeneration() {
	tt.generation = (tt.generation + 1) & uint8(ageMask)
}

// AgeEntries is kept for parity with the teacher's bulk-aging helper used
// by non-pool callers (benchmarks, single-search mode) that never call
// NewGeneration: it walks the table and nudges every occupied entry's
// stored age toward the current generation directly.
func (tt *TtTable) AgeEntries() {
	startTime := time.Now()
	n := atomic.LoadUint64(&tt.numberOfEntries)
	if n > 0 {
		for i := range tt.data {
			e := &tt.data[i]
			payload := e.rawPayload()
			if payload == 0 {
				continue
			}
			check := atomic.LoadUint64(&e.check)
			frag := uint16(check ^ payload)
			e.store(frag, withAge(payload, tt.generation))
		}
	}
	elapsed := time.Since(startTime)
	tt.log.Debug(out.Sprintf("Aged %d entries of %d in %d ms\n", n, len(tt.data), elapsed.Milliseconds()))
}
