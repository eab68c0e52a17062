package alloc

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// Heap allocates blocks from the Go heap. Blocks are over-allocated by
// align-1 bytes and re-sliced so their first byte is aligned.
// Heap is safe for concurrent use.
type Heap struct {
	// Limit caps the number of live bytes. Zero means unlimited.
	Limit uintptr

	stats counter
	mu    sync.Mutex
}

var (
	defaultHeap     *Heap
	defaultHeapOnce sync.Once
)

// Default returns the shared unlimited Heap used by containers created
// without an explicit allocator.
func Default() *Heap {
	defaultHeapOnce.Do(func() {
		defaultHeap = NewHeap(0)
	})
	return defaultHeap
}

// NewHeap creates a Heap with the given live byte limit (0 for none).
func NewHeap(limit uintptr) *Heap {
	return &Heap{Limit: limit}
}

// Alloc returns a zeroed, aligned block of size bytes.
func (h *Heap) Alloc(size, align uintptr) ([]byte, error) {
	if !layout.IsPowerOfTwo(align) {
		return nil, errors.New(errors.ContainerAlloc, errors.KindInvalidArgument).
			Op("Heap.Alloc").
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	if size > layout.MaxBufferSize-(align-1) {
		return nil, errors.Overflow(errors.ContainerAlloc, "Heap.Alloc", size, "requested size exceeds addressable range")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Limit != 0 && h.stats.live()+size > h.Limit {
		Logger().Debug("heap limit reached",
			zap.Uintptr("size", size),
			zap.Uintptr("live", h.stats.live()),
			zap.Uintptr("limit", h.Limit))
		return nil, errors.AllocationFailed(errors.ContainerAlloc, "Heap.Alloc", size, align, nil)
	}

	if size == 0 {
		h.stats.alloc(0)
		return []byte{}, nil
	}

	raw := make([]byte, size+align-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	off := layout.AlignTo(addr, align) - addr
	h.stats.alloc(size)
	return raw[off : off+size : off+size], nil
}

// Free releases block's accounting. The memory itself is reclaimed by the
// garbage collector once no references remain.
func (h *Heap) Free(block []byte) {
	if block == nil {
		return
	}
	h.stats.free(uintptr(len(block)))
}

// Stats returns a snapshot of the heap's accounting.
func (h *Heap) Stats() rawbuf.AllocatorStats {
	return h.stats.snapshot()
}
