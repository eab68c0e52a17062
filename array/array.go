package array

import (
	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/internal/block"
	"github.com/wippyai/rawbuf/layout"
)

const container = errors.ContainerArray

// Array is a contiguous store of fixed-size, fixed-alignment elements with
// explicit capacity. It never grows on its own and never shrinks.
//
// The zero value is the default state: it owns no storage and every
// operation other than Create reports errors.ErrNotInitialized.
// An Array is not safe for concurrent use.
type Array struct {
	blk    *block.Block
	count  uintptr
	record *layout.Info
}

// Stats describes an array's layout and occupancy.
type Stats struct {
	Len      int
	Cap      int
	ElemSize uintptr
	Align    uintptr
	Stride   uintptr
	Bytes    int
}

// New creates an array on the shared heap allocator.
func New(elemSize, align uintptr, capacity int) (*Array, error) {
	return NewWithConfig(elemSize, align, capacity, nil)
}

// NewWithConfig creates an array with custom configuration.
func NewWithConfig(elemSize, align uintptr, capacity int, cfg *rawbuf.Config) (*Array, error) {
	a := &Array{}
	if err := a.CreateWithConfig(elemSize, align, capacity, cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Create initializes a for capacity elements of elemSize bytes aligned to
// align. Storage owned from an earlier Create is released first. A capacity
// of 0 defers allocation to Reserve.
func (a *Array) Create(elemSize, align uintptr, capacity int) error {
	return a.CreateWithConfig(elemSize, align, capacity, nil)
}

// CreateWithConfig is Create with a custom allocator.
func (a *Array) CreateWithConfig(elemSize, align uintptr, capacity int, cfg *rawbuf.Config) error {
	if a == nil {
		Logger().Error("create on nil array")
		return errors.InvalidArgument(container, "Create", "array is nil")
	}
	if capacity < 0 {
		return errors.New(container, errors.KindInvalidArgument).
			Op("Create").
			Value(capacity).
			Detail("negative capacity %d", capacity).
			Build()
	}

	a.Destroy()
	blk, err := block.New(container, "Create", block.Allocator(cfg), elemSize, align, uintptr(capacity))
	if err != nil {
		Logger().Error("array create failed",
			zap.Uintptr("elem_size", elemSize),
			zap.Uintptr("align", align),
			zap.Int("capacity", capacity),
			zap.Error(err))
		return err
	}
	a.blk = blk
	a.count = 0
	return nil
}

// Destroy releases the storage and returns a to the default state.
func (a *Array) Destroy() {
	if a == nil {
		Logger().Warn("destroy on nil array")
		return
	}
	a.record = nil
	if a.blk == nil {
		return
	}
	a.blk.Release()
	a.blk = nil
	a.count = 0
}

// Reserve reallocates storage for exactly n elements and discards the
// current contents. Reserve(0) is a no-op.
func (a *Array) Reserve(n int) error {
	if err := a.check("Reserve"); err != nil {
		return err
	}
	if n < 0 {
		return errors.InvalidArgument(container, "Reserve", "negative capacity")
	}
	if n == 0 {
		Logger().Debug("reserve of zero elements ignored")
		return nil
	}
	if err := a.blk.Replace("Reserve", uintptr(n)); err != nil {
		Logger().Error("array reserve failed", zap.Int("capacity", n), zap.Error(err))
		return err
	}
	a.count = 0
	return nil
}

// Resize grows capacity to n elements, preserving the contents. n must
// exceed both the current length and the current capacity.
func (a *Array) Resize(n int) error {
	if err := a.check("Resize"); err != nil {
		return err
	}
	if n < 0 || uintptr(n) < a.count {
		return errors.New(container, errors.KindInvalidArgument).
			Op("Resize").
			Value(n).
			Detail("capacity %d is below length %d", n, a.count).
			Build()
	}
	if uintptr(n) <= a.blk.Cap() {
		return errors.New(container, errors.KindInvalidArgument).
			Op("Resize").
			Value(n).
			Detail("capacity %d does not exceed current capacity %d", n, a.blk.Cap()).
			Build()
	}
	if err := a.blk.Grow("Resize", uintptr(n), a.count); err != nil {
		Logger().Error("array resize failed", zap.Int("capacity", n), zap.Error(err))
		return err
	}
	return nil
}

// Push appends the first ElemSize bytes of elem. It fails with
// errors.ErrFull when the array is at capacity.
func (a *Array) Push(elem []byte) error {
	if err := a.check("Push"); err != nil {
		return err
	}
	if err := a.checkElem("Push", elem); err != nil {
		return err
	}
	if a.count == a.blk.Cap() {
		return errors.Full(container, "Push", a.blk.Cap())
	}
	copy(a.blk.Elem(a.count), elem)
	a.count++
	return nil
}

// Get returns a copy of element i.
func (a *Array) Get(i int) ([]byte, error) {
	ref, err := a.ref("Get", i)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ref))
	copy(out, ref)
	return out, nil
}

// Ref returns a read-only view of element i. The view is valid until the
// next mutating call on a.
func (a *Array) Ref(i int) ([]byte, error) {
	return a.ref("Ref", i)
}

// Set overwrites element i with the first ElemSize bytes of elem.
func (a *Array) Set(i int, elem []byte) error {
	dst, err := a.ref("Set", i)
	if err != nil {
		return err
	}
	if err := a.checkElem("Set", elem); err != nil {
		return err
	}
	copy(dst, elem)
	return nil
}

// Len returns the number of elements.
func (a *Array) Len() (int, error) {
	if err := a.check("Len"); err != nil {
		return 0, err
	}
	return int(a.count), nil
}

// Cap returns the capacity in elements.
func (a *Array) Cap() (int, error) {
	if err := a.check("Cap"); err != nil {
		return 0, err
	}
	return int(a.blk.Cap()), nil
}

// Created reports whether a holds storage from Create.
func (a *Array) Created() bool {
	return a != nil && a.blk != nil
}

// Stats returns a snapshot of the layout and occupancy. The zero Stats is
// returned for a nil or default-state array.
func (a *Array) Stats() Stats {
	if !a.Created() {
		return Stats{}
	}
	return Stats{
		Len:      int(a.count),
		Cap:      int(a.blk.Cap()),
		ElemSize: a.blk.ElemSize(),
		Align:    a.blk.Align(),
		Stride:   a.blk.Stride(),
		Bytes:    len(a.blk.Bytes()),
	}
}

func (a *Array) check(op string) error {
	if a == nil {
		Logger().Error("nil array", zap.String("op", op))
		return errors.InvalidArgument(container, op, "array is nil")
	}
	if a.blk == nil {
		Logger().Error("array not initialized", zap.String("op", op))
		return errors.NotInitialized(container, op)
	}
	return nil
}

func (a *Array) checkElem(op string, elem []byte) error {
	if uintptr(len(elem)) < a.blk.ElemSize() {
		return errors.New(container, errors.KindInvalidArgument).
			Op(op).
			Value(len(elem)).
			Detail("element has %d bytes, need %d", len(elem), a.blk.ElemSize()).
			Build()
	}
	return nil
}

func (a *Array) ref(op string, i int) ([]byte, error) {
	if err := a.check(op); err != nil {
		return nil, err
	}
	if i < 0 || uintptr(i) >= a.count {
		return nil, errors.New(container, errors.KindOutOfRange).
			Op(op).
			Value(i).
			Detail("index %d out of range [0, %d)", i, a.count).
			Build()
	}
	return a.blk.Elem(uintptr(i)), nil
}
