// Package alloc provides the raw allocators containers draw their storage
// from.
//
// Every allocator implements rawbuf.Allocator and rawbuf.StatsReporter:
//
//	Heap    Go heap, aligned by over-allocation, optional live byte limit
//	Mmap    one anonymous private mapping per block (unix), heap elsewhere
//	Arena   chunked bump allocator, bulk Reset and Release
//	Linear  fixed WebAssembly linear memory served by a first-fit free list
//
// Blocks returned by Alloc are zeroed and their first byte is aligned to the
// requested power-of-two alignment. Free must receive the exact slice Alloc
// returned.
//
// Default returns the shared Heap that containers use when no allocator is
// supplied.
//
// # Linear memory
//
// Linear instantiates a memory-only module in a wazero runtime:
//
//	lin, err := alloc.NewLinear(ctx, &alloc.LinearConfig{Pages: 4})
//	defer lin.Close(ctx)
//	block, err := lin.Alloc(64, 8)
//	off, _ := lin.Offset(block) // guest address of block
//
// The memory never grows, so blocks remain valid views until Close.
package alloc
