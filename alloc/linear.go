package alloc

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

const (
	// PageSize is the WebAssembly page size.
	PageSize = 65536

	// MaxPages is the largest memory whose byte size fits in a uint32.
	MaxPages = 65535

	// linearReserved keeps offset 0 out of the free list so a zero offset
	// never names a live block.
	linearReserved = 8
)

// LinearConfig configures a Linear allocator.
type LinearConfig struct {
	// Pages is the fixed memory size in 64 KiB pages. 0 means 16 (1 MiB).
	Pages uint32

	// Name is the module instance name. Empty means anonymous.
	Name string
}

type span struct {
	off, size uint32
}

// Linear serves blocks out of a fixed-size WebAssembly linear memory. The
// memory never grows, so block views stay valid until Close. Offsets of live
// blocks are readable by guest code through Memory.
type Linear struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	module  api.Module
	mem     api.Memory
	base    uintptr
	free    []span
	live    map[uint32]uint32
	stats   counter
	closed  bool
}

// NewLinear instantiates a memory-only module and returns an allocator over
// its exported memory.
func NewLinear(ctx context.Context, cfg *LinearConfig) (*Linear, error) {
	pages := uint32(16)
	name := ""
	if cfg != nil {
		if cfg.Pages > 0 {
			pages = cfg.Pages
		}
		name = cfg.Name
	}
	if pages > MaxPages {
		return nil, errors.New(errors.ContainerAlloc, errors.KindInvalidArgument).
			Op("NewLinear").
			Value(pages).
			Detail("%d pages exceeds the limit of %d", pages, MaxPages).
			Build()
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(pages))
	compiled, err := rt.CompileModule(ctx, memoryModule(pages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.ContainerAlloc, "NewLinear", err, "compile memory module")
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.ContainerAlloc, "NewLinear", err, "instantiate memory module")
	}

	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.Runtime(errors.ContainerAlloc, "NewLinear", "module exports no memory")
	}
	whole, ok := mem.Read(0, mem.Size())
	if !ok || len(whole) == 0 {
		_ = rt.Close(ctx)
		return nil, errors.Runtime(errors.ContainerAlloc, "NewLinear", "memory is not readable")
	}

	l := &Linear{
		runtime: rt,
		module:  mod,
		mem:     mem,
		base:    uintptr(unsafe.Pointer(&whole[0])),
		free:    []span{{off: linearReserved, size: mem.Size() - linearReserved}},
		live:    make(map[uint32]uint32),
	}
	Logger().Debug("linear memory ready", zap.Uint32("pages", pages), zap.Uint32("bytes", mem.Size()))
	return l, nil
}

// Alloc carves a block from the first free span that fits after alignment.
func (l *Linear) Alloc(size, align uintptr) ([]byte, error) {
	if !layout.IsPowerOfTwo(align) {
		return nil, errors.InvalidArgument(errors.ContainerAlloc, "Linear.Alloc", "alignment is not a power of two")
	}
	if size > math.MaxUint32 || align > math.MaxUint32 {
		return nil, errors.Overflow(errors.ContainerAlloc, "Linear.Alloc", size, "request exceeds 32-bit linear memory")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, errors.NotInitialized(errors.ContainerAlloc, "Linear.Alloc")
	}
	if size == 0 {
		l.stats.alloc(0)
		return []byte{}, nil
	}

	n, a := uint64(size), uint64(align)
	for i, s := range l.free {
		start := (uint64(s.off) + a - 1) &^ (a - 1)
		end := uint64(s.off) + uint64(s.size)
		if start+n > end {
			continue
		}

		var rest []span
		if start > uint64(s.off) {
			rest = append(rest, span{off: s.off, size: uint32(start) - s.off})
		}
		if start+n < end {
			rest = append(rest, span{off: uint32(start + n), size: uint32(end - start - n)})
		}
		l.free = append(l.free[:i], append(rest, l.free[i+1:]...)...)

		view, ok := l.mem.Read(uint32(start), uint32(n))
		if !ok {
			return nil, errors.Runtime(errors.ContainerAlloc, "Linear.Alloc", "carved span outside memory")
		}
		clear(view)
		l.live[uint32(start)] = uint32(n)
		l.stats.alloc(size)
		return view[:n:n], nil
	}

	Logger().Debug("linear memory exhausted", zap.Uintptr("size", size), zap.Int("free_spans", len(l.free)))
	return nil, errors.AllocationFailed(errors.ContainerAlloc, "Linear.Alloc", size, align, nil)
}

// Free returns block to the free list and merges it with adjacent spans.
func (l *Linear) Free(block []byte) {
	if cap(block) == 0 {
		if block != nil {
			l.stats.free(0)
		}
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	off, ok := l.offset(block)
	if !ok {
		Logger().Warn("free of block outside linear memory", zap.Int("size", len(block)))
		return
	}
	size, ok := l.live[off]
	if !ok {
		Logger().Warn("free of unknown linear block", zap.Uint32("offset", off))
		return
	}
	delete(l.live, off)
	l.insert(span{off: off, size: size})
	l.stats.free(uintptr(size))
}

// Offset reports the guest address of a block returned by Alloc.
func (l *Linear) Offset(block []byte) (uint32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, false
	}
	return l.offset(block)
}

// Memory exposes the underlying guest memory.
func (l *Linear) Memory() api.Memory {
	return l.mem
}

// Stats returns a snapshot of the allocator's accounting.
func (l *Linear) Stats() rawbuf.AllocatorStats {
	return l.stats.snapshot()
}

// FreeBytes returns the total size of the free list.
func (l *Linear) FreeBytes() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n uint32
	for _, s := range l.free {
		n += s.size
	}
	return n
}

// Close tears down the runtime. Blocks must not be used afterwards.
func (l *Linear) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.free = nil
	l.live = nil
	if err := l.runtime.Close(ctx); err != nil {
		return fmt.Errorf("close linear runtime: %w", err)
	}
	return nil
}

func (l *Linear) offset(block []byte) (uint32, bool) {
	if cap(block) == 0 {
		return 0, false
	}
	p := uintptr(unsafe.Pointer(unsafe.SliceData(block)))
	if p < l.base || p-l.base >= uintptr(l.mem.Size()) {
		return 0, false
	}
	return uint32(p - l.base), true
}

// insert adds s to the sorted free list, coalescing with its neighbours.
func (l *Linear) insert(s span) {
	i := sort.Search(len(l.free), func(i int) bool { return l.free[i].off > s.off })
	l.free = append(l.free, span{})
	copy(l.free[i+1:], l.free[i:])
	l.free[i] = s

	if i+1 < len(l.free) && l.free[i].off+l.free[i].size == l.free[i+1].off {
		l.free[i].size += l.free[i+1].size
		l.free = append(l.free[:i+1], l.free[i+2:]...)
	}
	if i > 0 && l.free[i-1].off+l.free[i-1].size == l.free[i].off {
		l.free[i-1].size += l.free[i].size
		l.free = append(l.free[:i], l.free[i+1:]...)
	}
}

// memoryModule encodes a module whose only content is an exported memory
// with min == max == pages.
func memoryModule(pages uint32) []byte {
	limits := append([]byte{0x01}, uleb128(pages)...)
	limits = append(limits, uleb128(pages)...)
	memSec := append([]byte{0x01}, limits...)

	out := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}
	out = append(out, 0x05)
	out = append(out, uleb128(uint32(len(memSec)))...)
	out = append(out, memSec...)
	// Export section: "memory" -> memory 0
	out = append(out, 0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00)
	return out
}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}
