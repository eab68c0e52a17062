package stack

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/internal/block"
	"github.com/wippyai/rawbuf/layout"
)

const container = errors.ContainerStack

// flags records which of the three creation facts have been supplied.
type flags uint8

const (
	hasElemSize flags = 1 << iota
	hasMaxCount
	hasAlign

	valid = hasElemSize | hasMaxCount | hasAlign
)

// Stack is a bounded LIFO stack over contiguous storage.
//
// The zero value is the default state. A stack is usable only once Create has
// recorded its element size, alignment and maximum count; an unusable stack
// is distinguished from an empty one by those flags rather than by its top
// index. A Stack is not safe for concurrent use.
type Stack struct {
	flags flags
	blk   *block.Block
	top   uintptr
}

// Stats describes a stack's layout and occupancy.
type Stats struct {
	Len      int
	Cap      int
	ElemSize uintptr
	Align    uintptr
	Stride   uintptr
	Bytes    int
}

// New creates a stack on the shared heap allocator.
func New(elemSize, align uintptr, maxCount int) (*Stack, error) {
	return NewWithConfig(elemSize, align, maxCount, nil)
}

// NewWithConfig creates a stack with custom configuration.
func NewWithConfig(elemSize, align uintptr, maxCount int, cfg *rawbuf.Config) (*Stack, error) {
	s := &Stack{}
	if err := s.CreateWithConfig(elemSize, align, maxCount, cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Create initializes s for up to maxCount elements. Storage owned from an
// earlier Create is released first.
func (s *Stack) Create(elemSize, align uintptr, maxCount int) error {
	return s.CreateWithConfig(elemSize, align, maxCount, nil)
}

// CreateWithConfig is Create with a custom allocator.
func (s *Stack) CreateWithConfig(elemSize, align uintptr, maxCount int, cfg *rawbuf.Config) error {
	if s == nil {
		Logger().Error("create on nil stack")
		return errors.InvalidArgument(container, "Create", "stack is nil")
	}
	s.Destroy()

	if elemSize == 0 || align == 0 || maxCount <= 0 {
		Logger().Error("stack create requires non-zero arguments",
			zap.Uintptr("elem_size", elemSize),
			zap.Uintptr("align", align),
			zap.Int("max_count", maxCount))
		return errors.New(container, errors.KindInvalidArgument).
			Op("Create").
			Detail("element size, alignment and max count must be positive (got %d, %d, %d)", elemSize, align, maxCount).
			Build()
	}
	if !layout.IsPowerOfTwo(align) {
		Logger().Error("stack alignment is not a power of two", zap.Uintptr("align", align))
		return errors.New(container, errors.KindInvalidArgument).
			Op("Create").
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}

	blk, err := block.New(container, "Create", block.Allocator(cfg), elemSize, align, uintptr(maxCount))
	if err != nil {
		Logger().Error("stack create failed", zap.Int("max_count", maxCount), zap.Error(err))
		return err
	}
	s.blk = blk
	s.top = 0
	s.flags |= hasAlign
	s.flags |= hasElemSize
	s.flags |= hasMaxCount
	return nil
}

// Destroy releases the storage and returns s to the default state.
func (s *Stack) Destroy() {
	if s == nil {
		Logger().Warn("destroy on nil stack")
		return
	}
	if s.blk != nil {
		s.blk.Release()
	}
	*s = Stack{}
}

// Push copies the first ElemSize bytes of elem onto the top. The whole
// stride-wide slot is zeroed first so padding bytes never carry stale data.
func (s *Stack) Push(elem []byte) error {
	if err := s.check("Push"); err != nil {
		return err
	}
	if uintptr(len(elem)) < s.blk.ElemSize() {
		return s.shortElem("Push", len(elem))
	}
	if s.Full() {
		Logger().Error("stack is full", zap.Int("capacity", int(s.blk.Cap())))
		return errors.Full(container, "Push", s.blk.Cap())
	}
	slot := s.blk.Slot(s.top)
	rawbuf.Zero(slot)
	copy(slot, elem[:s.blk.ElemSize()])
	s.top++
	return nil
}

// Pop copies the top element into out and removes it.
func (s *Stack) Pop(out []byte) error {
	if err := s.check("Pop"); err != nil {
		return err
	}
	if uintptr(len(out)) < s.blk.ElemSize() {
		return s.shortElem("Pop", len(out))
	}
	if s.Empty() {
		Logger().Error("stack is empty", zap.String("op", "Pop"))
		return errors.Empty(container, "Pop")
	}
	copy(out, s.blk.Elem(s.top-1))
	s.top--
	return nil
}

// PeekRef returns a read-only view of the top element without removing it.
// The view is valid until the next mutating call on s.
func (s *Stack) PeekRef() ([]byte, error) {
	if err := s.check("PeekRef"); err != nil {
		return nil, err
	}
	if s.Empty() {
		Logger().Error("stack is empty", zap.String("op", "PeekRef"))
		return nil, errors.Empty(container, "PeekRef")
	}
	return s.blk.Elem(s.top - 1), nil
}

// DiscardTop removes the top element without copying it out.
func (s *Stack) DiscardTop() error {
	if err := s.check("DiscardTop"); err != nil {
		return err
	}
	if s.Empty() {
		Logger().Error("stack is empty", zap.String("op", "DiscardTop"))
		return errors.Empty(container, "DiscardTop")
	}
	s.top--
	return nil
}

// Clear drops every element but keeps the storage.
func (s *Stack) Clear() error {
	if err := s.check("Clear"); err != nil {
		return err
	}
	s.top = 0
	return nil
}

// Reserve reallocates storage for maxCount elements and empties the stack.
func (s *Stack) Reserve(maxCount int) error {
	if err := s.check("Reserve"); err != nil {
		return err
	}
	if maxCount <= 0 {
		return errors.InvalidArgument(container, "Reserve", "max count must be positive")
	}
	if err := s.blk.Replace("Reserve", uintptr(maxCount)); err != nil {
		Logger().Error("stack reserve failed", zap.Int("max_count", maxCount), zap.Error(err))
		return err
	}
	s.top = 0
	return nil
}

// Resize grows the capacity to maxCount, which must exceed the current
// capacity, and keeps every element.
func (s *Stack) Resize(maxCount int) error {
	if err := s.check("Resize"); err != nil {
		return err
	}
	if maxCount <= 0 || uintptr(maxCount) <= s.blk.Cap() {
		Logger().Error("stack shrink rejected", zap.Int("max_count", maxCount), zap.Uintptr("capacity", s.blk.Cap()))
		return errors.New(container, errors.KindInvalidArgument).
			Op("Resize").
			Value(maxCount).
			Detail("capacity %d does not exceed current capacity %d", maxCount, s.blk.Cap()).
			Build()
	}
	if err := s.blk.Grow("Resize", uintptr(maxCount), s.top); err != nil {
		Logger().Error("stack resize failed", zap.Int("max_count", maxCount), zap.Error(err))
		return err
	}
	return nil
}

// Full reports whether Push would fail for lack of room. It also reports
// true for a nil or unusable stack.
func (s *Stack) Full() bool {
	if !s.valid() {
		Logger().Warn("full on invalid stack")
		return true
	}
	return s.top >= s.blk.Cap()
}

// Empty reports whether the stack holds no elements. It also reports true
// for a nil or unusable stack.
func (s *Stack) Empty() bool {
	if !s.valid() {
		Logger().Warn("empty on invalid stack")
		return true
	}
	return s.top == 0
}

// Len returns the number of elements.
func (s *Stack) Len() (int, error) {
	if err := s.check("Len"); err != nil {
		return 0, err
	}
	return int(s.top), nil
}

// Cap returns the maximum number of elements.
func (s *Stack) Cap() (int, error) {
	if err := s.check("Cap"); err != nil {
		return 0, err
	}
	return int(s.blk.Cap()), nil
}

// Created reports whether s is usable.
func (s *Stack) Created() bool {
	return s.valid()
}

// Stats returns a snapshot of the layout and occupancy. The zero Stats is
// returned for a nil or unusable stack.
func (s *Stack) Stats() Stats {
	if !s.valid() {
		return Stats{}
	}
	return Stats{
		Len:      int(s.top),
		Cap:      int(s.blk.Cap()),
		ElemSize: s.blk.ElemSize(),
		Align:    s.blk.Align(),
		Stride:   s.blk.Stride(),
		Bytes:    len(s.blk.Bytes()),
	}
}

// String renders the stack's bookkeeping for debugging.
func (s *Stack) String() string {
	if s == nil {
		return "stack(nil)"
	}
	if !s.valid() {
		return fmt.Sprintf("stack(invalid flags=%03b)", s.flags)
	}
	return fmt.Sprintf("stack(elem_size=%d align=%d stride=%d max_count=%d top=%d bytes=%d)",
		s.blk.ElemSize(), s.blk.Align(), s.blk.Stride(), s.blk.Cap(), s.top, len(s.blk.Bytes()))
}

// LogState writes String to the package logger at debug level.
func (s *Stack) LogState() {
	Logger().Debug("stack state", zap.Stringer("stack", s))
}

func (s *Stack) valid() bool {
	return s != nil && s.flags&valid == valid && s.blk != nil
}

func (s *Stack) check(op string) error {
	if s == nil {
		Logger().Error("nil stack", zap.String("op", op))
		return errors.InvalidArgument(container, op, "stack is nil")
	}
	if !s.valid() {
		Logger().Error("stack not initialized", zap.String("op", op), zap.Uint8("flags", uint8(s.flags)))
		return errors.NotInitialized(container, op)
	}
	return nil
}

func (s *Stack) shortElem(op string, n int) error {
	return errors.New(container, errors.KindInvalidArgument).
		Op(op).
		Value(n).
		Detail("buffer has %d bytes, need %d", n, s.blk.ElemSize()).
		Build()
}
