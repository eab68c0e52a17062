//go:build !unix

package alloc

import "github.com/wippyai/rawbuf"

// Mmap falls back to the Go heap on platforms without anonymous mappings.
type Mmap struct {
	heap *Heap
}

// NewMmap creates an Mmap allocator backed by a private Heap.
func NewMmap() *Mmap {
	return &Mmap{heap: NewHeap(0)}
}

func (m *Mmap) Alloc(size, align uintptr) ([]byte, error) { return m.heap.Alloc(size, align) }

func (m *Mmap) Free(block []byte) { m.heap.Free(block) }

func (m *Mmap) Stats() rawbuf.AllocatorStats { return m.heap.Stats() }
