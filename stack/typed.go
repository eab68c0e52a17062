package stack

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// Of is a Stack of plain Go values of type T.
type Of[T any] struct {
	s Stack
}

// NewOf creates a typed stack holding at most maxCount values.
func NewOf[T any](maxCount int) (*Of[T], error) {
	return NewOfWithConfig[T](maxCount, nil)
}

// NewOfWithConfig creates a typed stack with custom configuration.
func NewOfWithConfig[T any](maxCount int, cfg *rawbuf.Config) (*Of[T], error) {
	if err := layout.CheckPlain(reflect.TypeFor[T]()); err != nil {
		return nil, errors.Wrap(container, "NewOf", err, "element type")
	}
	info := layout.Of[T]()
	o := &Of[T]{}
	if err := o.s.CreateWithConfig(info.Size, info.Align, maxCount, cfg); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Of[T]) Push(v T) error {
	return o.s.Push(unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)))
}

func (o *Of[T]) Pop() (T, error) {
	var v T
	err := o.s.Pop(unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)))
	return v, err
}

// Peek returns a pointer to the top value. It is valid until the next
// mutating call.
func (o *Of[T]) Peek() (*T, error) {
	ref, err := o.s.PeekRef()
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(ref))), nil
}

func (o *Of[T]) DiscardTop() error   { return o.s.DiscardTop() }
func (o *Of[T]) Clear() error        { return o.s.Clear() }
func (o *Of[T]) Reserve(n int) error { return o.s.Reserve(n) }
func (o *Of[T]) Resize(n int) error  { return o.s.Resize(n) }
func (o *Of[T]) Full() bool          { return o.s.Full() }
func (o *Of[T]) Empty() bool         { return o.s.Empty() }
func (o *Of[T]) Len() (int, error)   { return o.s.Len() }
func (o *Of[T]) Cap() (int, error)   { return o.s.Cap() }
func (o *Of[T]) Destroy()            { o.s.Destroy() }
func (o *Of[T]) Untyped() *Stack     { return &o.s }
