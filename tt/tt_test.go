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

package tt

import (
	"os"
	"path"
	"runtime"
	"sync"
	"testing"
	"unsafe"

	logging2 "github.com/op/go-logging"
	"github.com/stretchr/testify/assert"

	"github.com/kpkoski/gambitcore/config"
	"github.com/kpkoski/gambitcore/logging"
	"github.com/kpkoski/gambitcore/position"
	. "github.com/kpkoski/gambitcore/types"
)

var logTest *logging2.Logger

// make tests run in the projects root directory
func init() {
	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..")
	err := os.Chdir(dir)
	if err != nil {
		panic(err)
	}
}

// Setup the tests
func TestMain(m *testing.M) {
	config.Setup()
	logTest = logging.GetTestLog()
	code := m.Run()
	os.Exit(code)
}

func TestEntrySize(t *testing.T) {
	var e TtEntry
	assert.EqualValues(t, TtEntrySize, unsafe.Sizeof(e))
	logTest.Debugf("Size of Entry %d bytes", unsafe.Sizeof(e))
}

func TestNew(t *testing.T) {
	tt := NewTtTable(2)
	assert.Equal(t, uint64(98_304), tt.maxNumberOfEntries)
	assert.Equal(t, 98_304, cap(tt.data))
	logTest.Debug(tt.String())

	tt = NewTtTable(64)
	assert.Equal(t, uint64(3_145_728), tt.maxNumberOfEntries)
	assert.Equal(t, 3_145_728, cap(tt.data))
}

func TestPutAndProbe(t *testing.T) {
	tt := NewTtTable(64)
	move := CreateMove(SqE2, SqE4, Normal, PtNone)
	key := position.Key(0xABCDEF0123456789)

	tt.Put(key, move, 5, Value(111), ValueTypeAlpha, ValueNA)
	assert.EqualValues(t, 1, tt.Len())

	e := tt.Probe(key)
	if assert.NotNil(t, e) {
		assert.Equal(t, move, e.Move)
		assert.EqualValues(t, 111, e.Value)
		assert.EqualValues(t, 5, e.Depth)
		assert.Equal(t, ValueTypeAlpha, e.Type)
	}

	// not in tt
	missKey := key ^ position.Key(1)<<50
	e = tt.Probe(missKey)
	assert.Nil(t, e)
}

func TestPutUpdateSameKey(t *testing.T) {
	tt := NewTtTable(4)
	move := CreateMove(SqE2, SqE4, Normal, PtNone)
	key := position.Key(111)

	tt.Put(key, move, 4, Value(111), ValueTypeAlpha, ValueNA)
	assert.EqualValues(t, 1, tt.Len())
	assert.EqualValues(t, 1, tt.Stats.numberOfPuts)

	tt.Put(key, move, 5, Value(112), ValueTypeBeta, Value(12))
	assert.EqualValues(t, 1, tt.Len())
	assert.EqualValues(t, 2, tt.Stats.numberOfPuts)
	assert.EqualValues(t, 1, tt.Stats.numberOfUpdates)
	assert.EqualValues(t, 0, tt.Stats.numberOfCollisions)

	e := tt.Probe(key)
	if assert.NotNil(t, e) {
		assert.EqualValues(t, 112, e.Value)
		assert.EqualValues(t, 5, e.Depth)
		assert.Equal(t, ValueTypeBeta, e.Type)
		assert.EqualValues(t, 12, e.Eval)
	}
}

func TestClear(t *testing.T) {
	tt := NewTtTable(1)
	move := CreateMove(SqE2, SqE4, Normal, PtNone)
	key := position.Key(4711)

	tt.Put(key, move, 5, Value(1), ValueTypeExact, ValueNA)
	assert.EqualValues(t, 1, tt.Len())

	tt.Clear()

	e := tt.Probe(key)
	assert.Nil(t, e)
	assert.EqualValues(t, 0, tt.Len())
}

// TestConcurrentPutProbe exercises the lock-free Put/Probe path the way
// the search pool does: many goroutines hammering the same small table
// with no external synchronization. go test -race is the point of this
// test, not the assertions themselves - a torn read must show up as a
// miss, never as a garbled hit.
func TestConcurrentPutProbe(t *testing.T) {
	tt := NewTtTable(1)
	move := CreateMove(SqE2, SqE4, Normal, PtNone)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 2_000; i++ {
				key := position.Key(w*100_000 + i)
				tt.Put(key, move, int8(i%64), Value(i), ValueTypeExact, ValueNA)
				if e := tt.Probe(key); e != nil {
					assert.Equal(t, move, e.Move)
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestAgeAndGeneration(t *testing.T) {
	tt := NewTtTable(1)
	move := CreateMove(SqE2, SqE4, Normal, PtNone)
	key := position.Key(9)

	tt.Put(key, move, 3, Value(1), ValueTypeExact, ValueNA)
	e := tt.Probe(key)
	if assert.NotNil(t, e) {
		assert.EqualValues(t, 0, e.Age)
	}

	tt.NewGeneration()
	e = tt.Probe(key)
	if assert.NotNil(t, e) {
		assert.EqualValues(t, 1, e.Age)
	}

	tt.AgeEntries()
	e = tt.GetEntry(key)
	if assert.NotNil(t, e) {
		assert.EqualValues(t, 1, e.Age)
	}
}
