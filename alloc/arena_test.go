package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rawbuf/errors"
)

func TestNewArena(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		want      uintptr
	}{
		{"default", 0, DefaultChunkSize},
		{"negative", -1, DefaultChunkSize},
		{"custom", 1024, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena(tt.chunkSize)
			m := a.Metrics()
			assert.Equal(t, tt.want, m.ChunkSize)
			assert.Equal(t, 1, m.NumChunks)
			assert.Equal(t, tt.want, m.Capacity)
		})
	}
}

func TestArenaAlloc(t *testing.T) {
	a := NewArena(256)

	b1, err := a.Alloc(3, 1)
	require.NoError(t, err)
	b2, err := a.Alloc(16, 16)
	require.NoError(t, err)
	assert.Zero(t, addr(b2)%16)
	assert.Len(t, b1, 3)
	assert.Len(t, b2, 16)
	assert.Equal(t, 16, cap(b2))

	// Larger than a chunk opens a dedicated chunk.
	big, err := a.Alloc(1000, 8)
	require.NoError(t, err)
	assert.Len(t, big, 1000)
	assert.Equal(t, 2, a.Metrics().NumChunks)

	_, err = a.Alloc(8, 6)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestArenaReset(t *testing.T) {
	a := NewArena(128)

	b, err := a.Alloc(64, 8)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xff
	}
	_, err = a.Alloc(100, 8)
	require.NoError(t, err)
	chunks := a.Metrics().NumChunks

	require.NoError(t, a.Reset())
	assert.Zero(t, a.Metrics().SizeInUse)
	assert.Zero(t, a.Stats().LiveBytes)
	assert.Equal(t, uintptr(164), a.Stats().PeakBytes)

	again, err := a.Alloc(64, 8)
	require.NoError(t, err)
	for _, v := range again {
		require.Zero(t, v, "reused arena memory must be zeroed")
	}
	_, err = a.Alloc(100, 8)
	require.NoError(t, err)
	assert.Equal(t, chunks, a.Metrics().NumChunks, "reset chunks are reused")
}

func TestArenaRelease(t *testing.T) {
	a := NewArena(128)
	b, err := a.Alloc(8, 8)
	require.NoError(t, err)
	a.Free(b)
	assert.Equal(t, uint64(1), a.Stats().Frees)

	a.Release()
	assert.Zero(t, a.Metrics().NumChunks)

	_, err = a.Alloc(8, 8)
	assert.ErrorIs(t, err, errors.ErrNotInitialized)
	assert.ErrorIs(t, a.Reset(), errors.ErrNotInitialized)
}

func TestArenaMetrics(t *testing.T) {
	a := NewArena(100)
	_, err := a.Alloc(50, 1)
	require.NoError(t, err)
	m := a.Metrics()
	assert.Equal(t, uintptr(50), m.SizeInUse)
	assert.InDelta(t, 0.5, m.Utilization, 0.0001)
}
