//go:build unix

package alloc

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// Mmap serves every block from its own anonymous private mapping. Mappings
// start on a page boundary, so any alignment up to the page size holds.
type Mmap struct {
	stats    counter
	pageSize uintptr
}

// NewMmap creates an Mmap allocator.
func NewMmap() *Mmap {
	return &Mmap{pageSize: uintptr(os.Getpagesize())}
}

// Alloc maps size bytes. Fresh anonymous pages are already zero.
func (m *Mmap) Alloc(size, align uintptr) ([]byte, error) {
	if !layout.IsPowerOfTwo(align) {
		return nil, errors.InvalidArgument(errors.ContainerAlloc, "Mmap.Alloc", "alignment is not a power of two")
	}
	if align > m.pageSize {
		return nil, errors.New(errors.ContainerAlloc, errors.KindInvalidArgument).
			Op("Mmap.Alloc").
			Value(align).
			Detail("alignment %d exceeds page size %d", align, m.pageSize).
			Build()
	}
	if size > layout.MaxBufferSize {
		return nil, errors.Overflow(errors.ContainerAlloc, "Mmap.Alloc", size, "requested size exceeds addressable range")
	}
	if size == 0 {
		m.stats.alloc(0)
		return []byte{}, nil
	}

	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.AllocationFailed(errors.ContainerAlloc, "Mmap.Alloc", size, align, err)
	}
	m.stats.alloc(size)
	return data, nil
}

// Free unmaps block. The block must be the slice returned by Alloc.
func (m *Mmap) Free(block []byte) {
	if cap(block) == 0 {
		if block != nil {
			m.stats.free(0)
		}
		return
	}
	if err := unix.Munmap(block[:cap(block)]); err != nil {
		Logger().Warn("munmap failed", zap.Int("size", cap(block)), zap.Error(err))
		return
	}
	m.stats.free(uintptr(cap(block)))
}

// Stats returns a snapshot of the allocator's accounting.
func (m *Mmap) Stats() rawbuf.AllocatorStats {
	return m.stats.snapshot()
}
