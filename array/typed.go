package array

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/layout"
)

// Of is an Array whose element layout is derived from T. T must be plain
// data: no pointers, strings, slices, maps, interfaces, channels or funcs.
type Of[T any] struct {
	arr Array
}

// NewOf creates a typed array with room for capacity values.
func NewOf[T any](capacity int) (*Of[T], error) {
	return NewOfWithConfig[T](capacity, nil)
}

// NewOfWithConfig creates a typed array with custom configuration.
func NewOfWithConfig[T any](capacity int, cfg *rawbuf.Config) (*Of[T], error) {
	if err := layout.CheckPlain(reflect.TypeFor[T]()); err != nil {
		return nil, errors.Wrap(container, "NewOf", err, "element type")
	}
	info := layout.Of[T]()
	o := &Of[T]{}
	if err := o.arr.CreateWithConfig(info.Size, info.Align, capacity, cfg); err != nil {
		return nil, err
	}
	return o, nil
}

// Push appends v.
func (o *Of[T]) Push(v T) error {
	return o.arr.Push(bytesOf(&v))
}

// Get returns element i.
func (o *Of[T]) Get(i int) (T, error) {
	var zero T
	ref, err := o.arr.Ref(i)
	if err != nil {
		return zero, err
	}
	return *(*T)(unsafe.Pointer(unsafe.SliceData(ref))), nil
}

// Set overwrites element i with v.
func (o *Of[T]) Set(i int, v T) error {
	return o.arr.Set(i, bytesOf(&v))
}

func (o *Of[T]) Reserve(n int) error { return o.arr.Reserve(n) }
func (o *Of[T]) Resize(n int) error  { return o.arr.Resize(n) }
func (o *Of[T]) Len() (int, error)   { return o.arr.Len() }
func (o *Of[T]) Cap() (int, error)   { return o.arr.Cap() }
func (o *Of[T]) Stats() Stats        { return o.arr.Stats() }
func (o *Of[T]) Destroy()            { o.arr.Destroy() }

// Untyped exposes the underlying byte-level array.
func (o *Of[T]) Untyped() *Array { return &o.arr }

func bytesOf[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}
