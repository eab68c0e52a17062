package rawbuf

// Allocator hands out raw, zeroed byte blocks for container storage.
// The first byte of every returned block is aligned to align, which must be a
// power of two. Free must only be called with blocks returned by Alloc on the
// same allocator.
type Allocator interface {
	Alloc(size, align uintptr) ([]byte, error)
	Free(block []byte)
}

// StatsReporter is implemented by allocators that account for their blocks.
type StatsReporter interface {
	Stats() AllocatorStats
}

// AllocatorStats is a snapshot of an allocator's accounting.
type AllocatorStats struct {
	Allocs    uint64 // successful Alloc calls
	Frees     uint64 // Free calls with a non-empty block
	LiveBytes uintptr
	PeakBytes uintptr
}

// Zero clears block in place.
func Zero(block []byte) {
	clear(block)
}

// Config configures container creation. A nil *Config, or a nil Allocator,
// selects the shared heap allocator.
type Config struct {
	// Allocator supplies the container's storage for its whole lifetime,
	// including later Reserve and Resize calls.
	Allocator Allocator
}
