package alloc

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// DefaultChunkSize is the chunk size used when NewArena gets a non-positive size.
const DefaultChunkSize = 1 << 16

type chunk struct {
	buf    []byte
	offset uintptr
}

// Arena is a chunked bump allocator. Free only updates accounting; memory is
// reclaimed in bulk with Reset or Release. Not safe for concurrent use.
type Arena struct {
	chunks    []chunk
	current   int
	chunkSize uintptr
	released  bool
	stats     counter
}

// ArenaMetrics is a snapshot of arena occupancy.
type ArenaMetrics struct {
	SizeInUse   uintptr // bytes handed out, including alignment gaps
	Capacity    uintptr // total bytes across chunks
	NumChunks   int
	ChunkSize   uintptr
	Utilization float64 // SizeInUse / Capacity
}

// NewArena creates an arena with one chunk of chunkSize bytes.
func NewArena(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	a := &Arena{chunkSize: uintptr(chunkSize)}
	a.grow(a.chunkSize)
	return a
}

// Alloc bumps size bytes out of the current chunk, opening a new chunk when
// the request does not fit. Blocks are zeroed since chunks are reused after Reset.
func (a *Arena) Alloc(size, align uintptr) ([]byte, error) {
	if a.released {
		return nil, errors.New(errors.ContainerAlloc, errors.KindNotInitialized).
			Op("Arena.Alloc").
			Detail("arena used after Release").
			Build()
	}
	if !layout.IsPowerOfTwo(align) {
		return nil, errors.InvalidArgument(errors.ContainerAlloc, "Arena.Alloc", "alignment is not a power of two")
	}
	if size > layout.MaxBufferSize-(align-1) {
		return nil, errors.Overflow(errors.ContainerAlloc, "Arena.Alloc", size, "requested size exceeds addressable range")
	}
	if size == 0 {
		a.stats.alloc(0)
		return []byte{}, nil
	}

	if b, ok := a.bump(&a.chunks[a.current], size, align); ok {
		a.stats.alloc(size)
		return b, nil
	}

	// Reuse a later chunk left over from before Reset, else open a new one.
	for a.current+1 < len(a.chunks) {
		a.current++
		if b, ok := a.bump(&a.chunks[a.current], size, align); ok {
			a.stats.alloc(size)
			return b, nil
		}
	}
	Logger().Debug("arena growing", zap.Uintptr("size", size), zap.Int("chunks", len(a.chunks)))
	a.grow(max(a.chunkSize, size+align-1))
	b, _ := a.bump(&a.chunks[a.current], size, align)
	a.stats.alloc(size)
	return b, nil
}

// Free records the release. Arena memory is only reclaimed by Reset.
func (a *Arena) Free(block []byte) {
	if block == nil || a.released {
		return
	}
	a.stats.free(uintptr(len(block)))
}

// Reset rewinds every chunk so their memory is reused. Blocks handed out
// before Reset must no longer be used.
func (a *Arena) Reset() error {
	if a.released {
		return errors.New(errors.ContainerAlloc, errors.KindNotInitialized).
			Op("Arena.Reset").
			Detail("arena used after Release").
			Build()
	}
	for i := range a.chunks {
		a.chunks[i].offset = 0
	}
	a.current = 0
	a.stats.reset()
	return nil
}

// Release drops all chunks. Later Alloc and Reset calls fail.
func (a *Arena) Release() {
	a.chunks = nil
	a.current = 0
	a.released = true
}

// Stats returns a snapshot of the arena's block accounting.
func (a *Arena) Stats() rawbuf.AllocatorStats {
	return a.stats.snapshot()
}

// Metrics returns chunk occupancy.
func (a *Arena) Metrics() ArenaMetrics {
	m := ArenaMetrics{NumChunks: len(a.chunks), ChunkSize: a.chunkSize}
	for _, c := range a.chunks {
		m.SizeInUse += c.offset
		m.Capacity += uintptr(len(c.buf))
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	}
	return m
}

func (a *Arena) bump(c *chunk, size, align uintptr) ([]byte, bool) {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
	off := layout.AlignTo(base+c.offset, align) - base
	if off > uintptr(len(c.buf)) || size > uintptr(len(c.buf))-off {
		return nil, false
	}
	c.offset = off + size
	b := c.buf[off : off+size : off+size]
	clear(b)
	return b, true
}

func (a *Arena) grow(size uintptr) {
	a.chunks = append(a.chunks, chunk{buf: make([]byte, size)})
	a.current = len(a.chunks) - 1
}
