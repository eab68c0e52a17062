package alloc

import (
	"sync"

	"github.com/wippyai/rawbuf"
)

// counter tracks block accounting shared by every allocator in this package.
type counter struct {
	mu sync.Mutex
	s  rawbuf.AllocatorStats
}

func (c *counter) alloc(n uintptr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Allocs++
	c.s.LiveBytes += n
	c.s.PeakBytes = max(c.s.PeakBytes, c.s.LiveBytes)
}

func (c *counter) free(n uintptr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.Frees++
	if n > c.s.LiveBytes {
		n = c.s.LiveBytes
	}
	c.s.LiveBytes -= n
}

// reset clears counts and live bytes but keeps the peak.
func (c *counter) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = rawbuf.AllocatorStats{PeakBytes: c.s.PeakBytes}
}

func (c *counter) live() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.LiveBytes
}

func (c *counter) snapshot() rawbuf.AllocatorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
