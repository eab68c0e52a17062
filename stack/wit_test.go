package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/rawbuf/errors"
)

func TestCreateFromWIT(t *testing.T) {
	pair := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U64{}}}}
	s, err := NewFromWIT(pair, 3, nil)
	require.NoError(t, err)
	defer s.Destroy()

	st := s.Stats()
	assert.Equal(t, uintptr(16), st.ElemSize)
	assert.Equal(t, uintptr(8), st.Align)
	assert.Equal(t, 3, st.Cap)

	elem := make([]byte, 16)
	elem[0], elem[8] = 1, 2
	require.NoError(t, s.Push(elem))
	top, err := s.PeekRef()
	require.NoError(t, err)
	assert.Equal(t, elem, top)
}

func TestCreateFromWITInvalid(t *testing.T) {
	_, err := NewFromWIT(&wit.TypeDef{Kind: &wit.Tuple{}}, 3, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = NewFromWIT(wit.U32{}, 0, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}
