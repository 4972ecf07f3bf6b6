package postprocess

import (
	"fmt"
	"sync"
)

// BufferPool holds named pools of reusable frame sized byte buffers so
// the per frame scratch allocations (gray levels, overlay pixels, label
// masks) are recycled instead of reallocated every frame
type BufferPool struct {
	mu    sync.Mutex
	pools map[string]*bufferEntry
}

// bufferEntry is a single named pool
type bufferEntry struct {
	pool    sync.Pool
	bufSize int
}

// NewBufferPool returns an empty BufferPool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pools: make(map[string]*bufferEntry),
	}
}

// Create registers a new pool under 'name' producing buffers of bufSize
// bytes, typically width*height*channels of the frame format it backs.
// Calling it twice with the same name returns an error
func (b *BufferPool) Create(name string, bufSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.pools[name]; exists {
		return fmt.Errorf("buffer pool %q already exists", name)
	}

	entry := &bufferEntry{bufSize: bufSize}

	entry.pool.New = func() any {
		return make([]uint8, bufSize)
	}

	b.pools[name] = entry
	return nil
}

// Get returns a zeroed []uint8 of length 'size' from the named pool.
// If size exceeds the pool's buffer size a fresh slice is allocated.
// Panics if the pool name is unknown
func (b *BufferPool) Get(name string, size int) []uint8 {
	b.mu.Lock()
	entry, ok := b.pools[name]
	b.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("buffer pool %q not registered", name))
	}

	buf := entry.pool.Get().([]uint8)

	if cap(buf) < size {
		return make([]uint8, size)
	}

	buf = buf[:size]

	for i := range buf {
		buf[i] = 0
	}

	return buf
}

// Put returns a buffer to its named pool.  Only call Put on a buffer
// previously obtained via Get with the same name, and never on one still
// referenced by a published snapshot
func (b *BufferPool) Put(name string, buf []uint8) {
	b.mu.Lock()
	entry, ok := b.pools[name]
	b.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("buffer pool %q not registered", name))
	}

	// restore to full capacity so it matches entry.New next time
	entry.pool.Put(buf[:entry.bufSize])
}
