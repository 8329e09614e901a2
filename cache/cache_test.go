package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeMemory is a plain in-memory backing store for testing, decoupled
// from package machine so cache tests don't need a full Machine.
type fakeMemory struct {
	words map[uint16]uint16
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{words: make(map[uint16]uint16)}
}

func (f *fakeMemory) DataWord(addr uint16) uint16 {
	return f.words[addr]
}

func (f *fakeMemory) SetDataWord(addr uint16, value uint16) {
	f.words[addr] = value
}

func TestReadMissThenHit(t *testing.T) {
	assert := assert.New(t)
	mem := newFakeMemory()
	mem.SetDataWord(3, 0x1234)
	c := New(mem, 2, 4, 64)

	v, err := c.Read(3)
	assert.NoError(err)
	assert.EqualValues(0x1234, v)
	assert.EqualValues(1, c.Stats().Misses)
	assert.EqualValues(0, c.Stats().Hits)

	v, err = c.Read(3)
	assert.NoError(err)
	assert.EqualValues(0x1234, v)
	assert.EqualValues(1, c.Stats().Hits)
}

func TestWriteIsDirtyUntilEviction(t *testing.T) {
	assert := assert.New(t)
	mem := newFakeMemory()
	c := New(mem, 1, 4, 64)

	assert.NoError(c.Write(1, 0xAAAA))
	assert.Zero(mem.DataWord(1), "write-back cache should not touch backing memory before eviction/flush")

	// second block forces eviction of the only line, which must flush.
	assert.NoError(c.Write(10, 0xBBBB))
	assert.EqualValues(0xAAAA, mem.DataWord(1))
}

func TestFlushAll(t *testing.T) {
	assert := assert.New(t)
	mem := newFakeMemory()
	c := New(mem, 2, 4, 64)
	c.Write(0, 0x1111)
	c.Write(8, 0x2222)
	c.FlushAll()
	assert.EqualValues(0x1111, mem.DataWord(0))
	assert.EqualValues(0x2222, mem.DataWord(8))
}

func TestLRUEviction(t *testing.T) {
	assert := assert.New(t)
	mem := newFakeMemory()
	c := New(mem, 2, 4, 64)

	c.Read(0) // block 0 -> dict slot 0
	c.Read(4) // block 1 -> dict slot 1
	c.Read(0) // touch block 0 again, bumping its ref count above block 1's

	// both slots full; block 1 (tag 1) is now the LRU and should be evicted.
	mem.SetDataWord(8, 0x9999)
	c.Read(8) // block 2 (tag 2), forces an eviction

	_, found := c.findBlock(1)
	assert.False(found, "expected block with tag 1 (LRU) to have been evicted")
	_, found = c.findBlock(0)
	assert.True(found, "expected recently-touched block with tag 0 to survive eviction")
}

func TestOutOfRange(t *testing.T) {
	assert := assert.New(t)
	mem := newFakeMemory()
	c := New(mem, 1, 4, 16)

	_, err := c.Read(16)
	assert.Error(err)
	assert.Error(c.Write(100, 0))
}

func TestHitRate(t *testing.T) {
	assert := assert.New(t)
	var s Stats
	assert.Zero(s.HitRate())

	s = Stats{Hits: 3, Misses: 1}
	assert.Equal(0.75, s.HitRate())
}
