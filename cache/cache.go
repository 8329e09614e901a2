// Package cache implements the write-back, fully-associative (linear scan),
// LRU data cache sitting in front of main data memory. Block replacement and
// the dirty/hit bookkeeping mirror the reference simulator's dictionary of
// cache entries exactly, including its address-bound quirk (see DataBound in
// package machine).
package cache

import "fmt"

const (
	// DefaultCacheBlocks and DefaultBlockSize are the default cache shape.
	// cmd/sim passes them to New unless its -blocks or -blocksize flag
	// selects a different shape at run time.
	DefaultCacheBlocks = 1
	DefaultBlockSize   = 8
)

// Memory is the backing store a Cache fetches blocks from and writes blocks
// back to. *machine.Machine implements it.
type Memory interface {
	DataWord(addr uint16) uint16
	SetDataWord(addr uint16, value uint16)
}

// entry is one line of the cache dictionary.
type entry struct {
	valid    bool
	dirty    bool
	tag      uint16
	refCount uint64
	payload  []uint16
}

// Stats tallies hits and misses across the lifetime of a Cache.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns hits/(hits+misses), or 0 if there have been no accesses.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a single-level write-back data cache over a Memory.
type Cache struct {
	mem       Memory
	blocks    int
	blockSize int
	bound     uint16 // addresses >= bound are out of range

	dict         []entry
	nextRefCount uint64
	stats        Stats
}

// New builds a cache with the given shape over mem. bound is the exclusive
// upper limit on valid data addresses (machine.DataBound).
func New(mem Memory, blocks, blockSize int, bound uint16) *Cache {
	dict := make([]entry, blocks)
	for i := range dict {
		dict[i].payload = make([]uint16, blockSize)
	}
	return &Cache{
		mem:          mem,
		blocks:       blocks,
		blockSize:    blockSize,
		bound:        bound,
		dict:         dict,
		nextRefCount: 1,
	}
}

func (c *Cache) tagOffset(addr uint16) (tag uint16, offset int) {
	return addr / uint16(c.blockSize), int(addr) % c.blockSize
}

// inRange reports whether addr is a legal data address.
func (c *Cache) inRange(addr uint16) bool {
	return addr < c.bound
}

// findBlock does a linear scan of the dictionary for tag, mirroring
// find_block's "first match wins" semantics.
func (c *Cache) findBlock(tag uint16) (id int, found bool) {
	for i := range c.dict {
		if c.dict[i].valid && c.dict[i].tag == tag {
			return i, true
		}
	}
	return 0, false
}

// writeBlock flushes a dictionary entry back to memory if dirty and marks it
// invalid, mirroring write_block.
func (c *Cache) writeBlock(id int) {
	e := &c.dict[id]
	if !e.valid {
		return
	}
	if e.dirty {
		base := e.tag * uint16(c.blockSize)
		for i := 0; i < c.blockSize; i++ {
			c.mem.SetDataWord(base+uint16(i), e.payload[i])
		}
	}
	e.valid = false
	e.dirty = false
	e.refCount = 0
}

// removeLRU finds the entry with the smallest ref_count, writes it back, and
// returns its block id so the caller can reuse it, mirroring removeLRU.
func (c *Cache) removeLRU() int {
	lru := uint64(1<<64 - 1)
	blockID := 0
	for i := range c.dict {
		if c.dict[i].valid && c.dict[i].refCount < lru {
			lru = c.dict[i].refCount
			blockID = i
		}
	}
	c.writeBlock(blockID)
	return blockID
}

// fetchBlock loads the block containing tag into a free (or LRU-evicted)
// dictionary slot, mirroring fetch_block.
func (c *Cache) fetchBlock(tag uint16) int {
	blockID := 0
	found := false
	for i := range c.dict {
		if !c.dict[i].valid {
			blockID = i
			found = true
			break
		}
	}
	if !found {
		blockID = c.removeLRU()
	}

	base := tag * uint16(c.blockSize)
	e := &c.dict[blockID]
	for i := 0; i < c.blockSize; i++ {
		e.payload[i] = c.mem.DataWord(base + uint16(i))
	}
	e.valid = true
	e.dirty = false
	e.tag = tag
	return blockID
}

// OutOfRangeError reports a data access outside the cache's addressable
// bound.
type OutOfRangeError struct {
	Addr  uint16
	Bound uint16
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("data address %04x out of range (bound %04x)", e.Addr, e.Bound)
}

// Read returns the word at addr, fetching its block into the cache first if
// necessary, mirroring cache_read.
func (c *Cache) Read(addr uint16) (uint16, error) {
	if !c.inRange(addr) {
		return 0, &OutOfRangeError{Addr: addr, Bound: c.bound}
	}
	tag, offset := c.tagOffset(addr)
	blockID, hit := c.findBlock(tag)
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
		blockID = c.fetchBlock(tag)
	}
	c.dict[blockID].refCount = c.nextRefCount
	c.nextRefCount++
	return c.dict[blockID].payload[offset], nil
}

// Write stores value at addr, fetching its block into the cache first if
// necessary and marking the block dirty, mirroring cache_write.
func (c *Cache) Write(addr uint16, value uint16) error {
	if !c.inRange(addr) {
		return &OutOfRangeError{Addr: addr, Bound: c.bound}
	}
	tag, offset := c.tagOffset(addr)
	blockID, hit := c.findBlock(tag)
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
		blockID = c.fetchBlock(tag)
	}
	c.dict[blockID].payload[offset] = value
	c.dict[blockID].refCount = c.nextRefCount
	c.nextRefCount++
	c.dict[blockID].dirty = true
	return nil
}

// FlushAll writes every valid dictionary entry back to memory, run once at
// the end of a simulation to match the reference's final write_block loop.
func (c *Cache) FlushAll() {
	for i := range c.dict {
		c.writeBlock(i)
	}
}

// Stats returns a snapshot of the cache's hit/miss counters.
func (c *Cache) Stats() Stats {
	return c.stats
}
