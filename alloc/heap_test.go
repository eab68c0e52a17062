package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rawbuf/errors"
)

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func TestHeapAlloc(t *testing.T) {
	h := NewHeap(0)
	for _, align := range []uintptr{1, 2, 4, 8, 16, 64, 256, 4096} {
		b, err := h.Alloc(100, align)
		require.NoError(t, err)
		assert.Len(t, b, 100)
		assert.Equal(t, 100, cap(b), "cap must not leak the padding")
		assert.Zero(t, addr(b)%align, "align %d", align)
		for _, v := range b {
			require.Zero(t, v)
		}
		h.Free(b)
	}

	st := h.Stats()
	assert.Equal(t, uint64(8), st.Allocs)
	assert.Equal(t, uint64(8), st.Frees)
	assert.Zero(t, st.LiveBytes)
	assert.Equal(t, uintptr(100), st.PeakBytes)
}

func TestHeapAllocInvalid(t *testing.T) {
	h := NewHeap(0)

	_, err := h.Alloc(8, 3)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = h.Alloc(8, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = h.Alloc(^uintptr(0), 8)
	assert.ErrorIs(t, err, errors.ErrOverflow)
}

func TestHeapZeroSize(t *testing.T) {
	h := NewHeap(0)
	b, err := h.Alloc(0, 8)
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Empty(t, b)
	h.Free(b)
	assert.Equal(t, uint64(1), h.Stats().Frees)
}

func TestHeapLimit(t *testing.T) {
	h := NewHeap(64)

	a, err := h.Alloc(48, 8)
	require.NoError(t, err)

	_, err = h.Alloc(32, 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAllocation)
	assert.Equal(t, errors.KindAllocation, errors.KindOf(err))

	h.Free(a)
	b, err := h.Alloc(64, 8)
	require.NoError(t, err)
	assert.Len(t, b, 64)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.Zero(t, Default().Limit)
}
