// Package block implements the buffer record shared by the containers: an
// element layout, a capacity in elements and the storage drawn from an
// allocator.
package block

import (
	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/alloc"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// Block owns one contiguous allocation of capacity stride-wide slots.
type Block struct {
	owner    errors.Container
	alloc    rawbuf.Allocator
	elemSize uintptr
	align    uintptr
	stride   uintptr
	capacity uintptr
	data     []byte
}

// Allocator resolves the allocator named by cfg.
func Allocator(cfg *rawbuf.Config) rawbuf.Allocator {
	if cfg == nil || cfg.Allocator == nil {
		return alloc.Default()
	}
	return cfg.Allocator
}

// New validates the layout and allocates capacity zeroed slots. A zero
// capacity defers allocation.
func New(owner errors.Container, op string, a rawbuf.Allocator, elemSize, align, capacity uintptr) (*Block, error) {
	if elemSize == 0 {
		return nil, errors.InvalidArgument(owner, op, "element size must be non-zero")
	}
	stride, err := layout.Stride(elemSize, align)
	if err != nil {
		return nil, errors.Wrap(owner, op, err, "invalid element layout")
	}
	if _, err := layout.BufferSize(stride, 1); err != nil {
		return nil, errors.Wrap(owner, op, err, "element does not fit in one buffer")
	}
	if a == nil {
		a = alloc.Default()
	}

	b := &Block{owner: owner, alloc: a, elemSize: elemSize, align: align, stride: stride}
	data, err := b.allocate(op, capacity)
	if err != nil {
		return nil, err
	}
	b.data = data
	b.capacity = capacity
	return b, nil
}

// Replace reallocates storage for capacity slots and drops the old contents.
// The old storage is kept if the allocation fails.
func (b *Block) Replace(op string, capacity uintptr) error {
	data, err := b.allocate(op, capacity)
	if err != nil {
		return err
	}
	b.free()
	b.data = data
	b.capacity = capacity
	return nil
}

// Grow moves the first keep slots into a fresh allocation of capacity slots.
// The new block is filled before the old one is freed, so on failure the
// block is unchanged.
func (b *Block) Grow(op string, capacity, keep uintptr) error {
	if keep > b.capacity || keep > capacity {
		return errors.Runtime(b.owner, op, "preserved slots exceed capacity")
	}
	data, err := b.allocate(op, capacity)
	if err != nil {
		return err
	}
	n := keep * b.stride
	if copied := copy(data, b.data[:n]); uintptr(copied) != n {
		b.alloc.Free(data)
		return errors.New(b.owner, errors.KindRuntime).
			Op(op).
			Detail("copied %d of %d bytes", copied, n).
			Build()
	}
	b.free()
	b.data = data
	b.capacity = capacity
	return nil
}

// Slot returns the stride-wide view of slot i.
func (b *Block) Slot(i uintptr) []byte {
	off := i * b.stride
	return b.data[off : off+b.stride : off+b.stride]
}

// Elem returns the element-size view of slot i.
func (b *Block) Elem(i uintptr) []byte {
	off := i * b.stride
	return b.data[off : off+b.elemSize : off+b.elemSize]
}

// Bytes returns the whole storage.
func (b *Block) Bytes() []byte { return b.data }

func (b *Block) Cap() uintptr                { return b.capacity }
func (b *Block) ElemSize() uintptr           { return b.elemSize }
func (b *Block) Align() uintptr              { return b.align }
func (b *Block) Stride() uintptr             { return b.stride }
func (b *Block) Allocator() rawbuf.Allocator { return b.alloc }

// Release frees the storage. The block must not be used afterwards.
func (b *Block) Release() {
	b.free()
	b.capacity = 0
}

func (b *Block) free() {
	if b.data != nil {
		b.alloc.Free(b.data)
		b.data = nil
	}
}

func (b *Block) allocate(op string, capacity uintptr) ([]byte, error) {
	size, err := layout.BufferSize(b.stride, capacity)
	if err != nil {
		return nil, errors.Wrap(b.owner, op, err, "buffer size")
	}
	if size == 0 {
		return nil, nil
	}
	data, err := b.alloc.Alloc(size, b.align)
	if err != nil {
		return nil, errors.New(b.owner, errors.KindAllocation).
			Op(op).
			Value(size).
			Cause(err).
			Detail("failed to allocate %d bytes aligned to %d", size, b.align).
			Build()
	}
	if uintptr(len(data)) < size {
		b.alloc.Free(data)
		return nil, errors.New(b.owner, errors.KindRuntime).
			Op(op).
			Detail("allocator returned %d of %d bytes", len(data), size).
			Build()
	}
	return data[:size], nil
}
