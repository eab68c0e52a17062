package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/alloc"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// shortAllocator hands out blocks one byte shorter than requested.
type shortAllocator struct{ freed int }

func (s *shortAllocator) Alloc(size, _ uintptr) ([]byte, error) {
	return make([]byte, size-1), nil
}

func (s *shortAllocator) Free([]byte) { s.freed++ }

func TestAllocator(t *testing.T) {
	h := alloc.NewHeap(0)
	assert.Same(t, alloc.Default(), Allocator(nil))
	assert.Same(t, alloc.Default(), Allocator(&rawbuf.Config{}))
	assert.Same(t, h, Allocator(&rawbuf.Config{Allocator: h}))
}

func TestNew(t *testing.T) {
	b, err := New(errors.ContainerArray, "Create", nil, 7, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, uintptr(8), b.Stride())
	assert.Equal(t, uintptr(3), b.Cap())
	assert.Len(t, b.Bytes(), 24)
	assert.Len(t, b.Slot(2), 8)
	assert.Len(t, b.Elem(2), 7)
	assert.Same(t, alloc.Default(), b.Allocator())
	b.Release()
	assert.Nil(t, b.Bytes())
	assert.Zero(t, b.Cap())
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name     string
		elemSize uintptr
		align    uintptr
		capacity uintptr
		want     error
	}{
		{"zero size", 0, 4, 1, errors.ErrInvalidArgument},
		{"zero align", 4, 0, 1, errors.ErrInvalidArgument},
		{"odd align", 4, 3, 1, errors.ErrInvalidArgument},
		{"overflow", 8, 8, ^uintptr(0) / 4, errors.ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(errors.ContainerStack, "Create", alloc.NewHeap(0), tt.elemSize, tt.align, tt.capacity)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewRejectsElementLargerThanAnyBuffer(t *testing.T) {
	tests := []struct {
		name     string
		elemSize uintptr
		align    uintptr
	}{
		{"max uintptr", ^uintptr(0), 1},
		{"just over limit", layout.MaxBufferSize + 1, 1},
		{"padded over limit", layout.MaxBufferSize, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, capacity := range []uintptr{0, 1} {
				_, err := New(errors.ContainerArray, "Create", alloc.NewHeap(0), tt.elemSize, tt.align, capacity)
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrOverflow)
			}
		})
	}
}

func TestNewZeroCapacityDefers(t *testing.T) {
	h := alloc.NewHeap(0)
	b, err := New(errors.ContainerArray, "Create", h, 4, 4, 0)
	require.NoError(t, err)
	assert.Nil(t, b.Bytes())
	assert.Zero(t, h.Stats().Allocs)
}

func TestGrowPreserves(t *testing.T) {
	h := alloc.NewHeap(0)
	b, err := New(errors.ContainerArray, "Create", h, 4, 4, 2)
	require.NoError(t, err)
	copy(b.Elem(0), []byte{1, 2, 3, 4})
	copy(b.Elem(1), []byte{5, 6, 7, 8})

	require.NoError(t, b.Grow("Resize", 4, 2))
	assert.Equal(t, uintptr(4), b.Cap())
	assert.Equal(t, []byte{1, 2, 3, 4}, b.Elem(0))
	assert.Equal(t, []byte{5, 6, 7, 8}, b.Elem(1))
	assert.Equal(t, []byte{0, 0, 0, 0}, b.Elem(3))
	assert.Equal(t, uint64(1), h.Stats().Frees)
}

func TestGrowFailureLeavesBlockIntact(t *testing.T) {
	h := alloc.NewHeap(16)
	b, err := New(errors.ContainerArray, "Create", h, 4, 4, 2)
	require.NoError(t, err)
	copy(b.Elem(0), []byte{9, 9, 9, 9})

	err = b.Grow("Resize", 8, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAllocation)
	assert.Equal(t, uintptr(2), b.Cap())
	assert.Equal(t, []byte{9, 9, 9, 9}, b.Elem(0))

	err = b.Grow("Resize", 4, 3)
	assert.ErrorIs(t, err, errors.ErrRuntime)
}

func TestReplaceDiscards(t *testing.T) {
	b, err := New(errors.ContainerStack, "Create", alloc.NewHeap(0), 2, 2, 2)
	require.NoError(t, err)
	copy(b.Elem(0), []byte{1, 1})

	require.NoError(t, b.Replace("Reserve", 5))
	assert.Equal(t, uintptr(5), b.Cap())
	assert.Equal(t, []byte{0, 0}, b.Elem(0))
}

func TestShortAllocation(t *testing.T) {
	s := &shortAllocator{}
	_, err := New(errors.ContainerText, "CreateFrom", s, 1, 1, 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRuntime)
	assert.Equal(t, 1, s.freed)
}
