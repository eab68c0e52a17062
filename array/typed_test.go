package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/rawbuf/errors"
)

type point struct {
	X, Y int32
	Tag  byte
}

func TestOf(t *testing.T) {
	pts, err := NewOf[point](2)
	require.NoError(t, err)
	defer pts.Destroy()

	require.NoError(t, pts.Push(point{1, 2, 'a'}))
	require.NoError(t, pts.Push(point{3, 4, 'b'}))
	assert.ErrorIs(t, pts.Push(point{}), errors.ErrFull)

	require.NoError(t, pts.Resize(4))
	require.NoError(t, pts.Set(0, point{5, 6, 'c'}))

	got, err := pts.Get(0)
	require.NoError(t, err)
	assert.Equal(t, point{5, 6, 'c'}, got)
	got, err = pts.Get(1)
	require.NoError(t, err)
	assert.Equal(t, point{3, 4, 'b'}, got)

	n, err := pts.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uintptr(12), pts.Stats().Stride)
	assert.True(t, pts.Untyped().Created())

	require.NoError(t, pts.Reserve(1))
	_, err = pts.Get(0)
	assert.ErrorIs(t, err, errors.ErrOutOfRange)
}

func TestOfRejectsPointerTypes(t *testing.T) {
	_, err := NewOf[string](4)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = NewOf[struct{ P *int }](4)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = NewOf[struct{}](4)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument, "zero-size elements are rejected")
}
