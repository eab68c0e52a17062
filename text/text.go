package text

import (
	"bytes"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/rawbuf"
	"github.com/wippyai/rawbuf/errors"
	"github.com/wippyai/rawbuf/internal/block"
)

const container = errors.ContainerText

// Text is a byte string stored with a trailing zero terminator. Capacity is
// counted in bytes and always covers the terminator: Len()+1 <= Cap().
//
// The zero value is the default state and owns no storage. Copy, CopyFrom,
// Reserve and Concat may be called on it directly. A Text is not safe for
// concurrent use.
type Text struct {
	blk    *block.Block
	length uintptr
	alloc  rawbuf.Allocator
}

// New returns a default-state Text that allocates from cfg's allocator.
func New(cfg *rawbuf.Config) *Text {
	return &Text{alloc: block.Allocator(cfg)}
}

// NewFrom creates a Text holding s on the shared heap allocator.
func NewFrom(s string) (*Text, error) {
	t := &Text{}
	if err := t.CreateFrom(s); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateFrom replaces t with a copy of s in exactly len(s)+1 bytes.
func (t *Text) CreateFrom(s string) error {
	return t.CreateFromWithConfig(s, nil)
}

// CreateFromWithConfig is CreateFrom with a custom allocator. A nil cfg keeps
// the allocator t already uses.
func (t *Text) CreateFromWithConfig(s string, cfg *rawbuf.Config) error {
	if t == nil {
		Logger().Error("create on nil text")
		return errors.InvalidArgument(container, "CreateFrom", "text is nil")
	}
	if cfg != nil {
		t.alloc = block.Allocator(cfg)
	}
	t.Destroy()
	if err := t.allocate("CreateFrom", uintptr(len(s))+1); err != nil {
		return err
	}
	t.set(s)
	return nil
}

// Destroy releases the storage and returns t to the default state. The
// allocator choice is kept.
func (t *Text) Destroy() {
	if t == nil {
		Logger().Warn("destroy on nil text")
		return
	}
	if t.blk != nil {
		t.blk.Release()
		t.blk = nil
	}
	t.length = 0
}

// Copy replaces t's content with src's. t's storage is reused when it is
// large enough.
func (t *Text) Copy(src *Text) error {
	if err := t.checkDst("Copy"); err != nil {
		return err
	}
	if err := checkSrc("Copy", src); err != nil {
		return err
	}
	if src == t {
		return nil
	}
	return t.assign("Copy", src.view())
}

// CopyFrom replaces t's content with s.
func (t *Text) CopyFrom(s string) error {
	if err := t.checkDst("CopyFrom"); err != nil {
		return err
	}
	return t.assign("CopyFrom", []byte(s))
}

// Reserve ensures at least n bytes of storage. When it must reallocate the
// content is dropped and t becomes empty.
func (t *Text) Reserve(n int) error {
	if err := t.checkDst("Reserve"); err != nil {
		return err
	}
	if n <= 0 {
		return errors.InvalidArgument(container, "Reserve", "byte size must be positive")
	}
	if t.blk != nil && t.blk.Cap() >= uintptr(n) {
		Logger().Debug("text reserve already satisfied", zap.Int("requested", n), zap.Uintptr("capacity", t.blk.Cap()))
		return nil
	}
	if t.blk == nil {
		return t.allocate("Reserve", uintptr(n))
	}
	if err := t.blk.Replace("Reserve", uintptr(n)); err != nil {
		Logger().Error("text reserve failed", zap.Int("size", n), zap.Error(err))
		return err
	}
	t.length = 0
	return nil
}

// Grow ensures at least n bytes of storage and keeps the content.
func (t *Text) Grow(n int) error {
	if err := t.check("Grow"); err != nil {
		return err
	}
	if n <= 0 {
		return errors.InvalidArgument(container, "Grow", "byte size must be positive")
	}
	return t.grow("Grow", uintptr(n))
}

// Concat appends suffix to t. A default-state t becomes a copy of suffix.
func (t *Text) Concat(suffix *Text) error {
	if err := t.checkDst("Concat"); err != nil {
		return err
	}
	if err := checkSrc("Concat", suffix); err != nil {
		return err
	}
	return t.concat("Concat", suffix.view())
}

// ConcatString appends s to t.
func (t *Text) ConcatString(s string) error {
	if err := t.checkDst("ConcatString"); err != nil {
		return err
	}
	return t.concat("ConcatString", []byte(s))
}

// Substring replaces t with the inclusive byte range [from, to] of src.
func (t *Text) Substring(src *Text, from, to int) error {
	if err := t.checkDst("Substring"); err != nil {
		return err
	}
	if err := checkSrc("Substring", src); err != nil {
		return err
	}
	if from < 0 || from > to {
		return errors.New(container, errors.KindInvalidArgument).
			Op("Substring").
			Detail("invalid range [%d, %d]", from, to).
			Build()
	}
	if uintptr(to) >= src.length {
		return errors.New(container, errors.KindInvalidArgument).
			Op("Substring").
			Value(to).
			Detail("end %d beyond length %d", to, src.length).
			Build()
	}
	return t.assign("Substring", src.view()[from:to+1])
}

// Trim replaces t with src stripped of leading left and trailing right
// bytes. Trimming everything leaves t empty.
func (t *Text) Trim(src *Text, left, right byte) error {
	if err := t.checkDst("Trim"); err != nil {
		return err
	}
	if err := checkSrc("Trim", src); err != nil {
		return err
	}
	b := src.view()
	for len(b) > 0 && b[len(b)-1] == right {
		b = b[:len(b)-1]
	}
	for len(b) > 0 && b[0] == left {
		b = b[1:]
	}
	return t.assign("Trim", b)
}

// ToInt32 parses t as a base-10 integer. Leading whitespace and a sign are
// accepted; anything after the digits is not.
func (t *Text) ToInt32() (int32, error) {
	if err := t.check("ToInt32"); err != nil {
		return 0, err
	}
	if t.length == 0 {
		return 0, errors.InvalidArgument(container, "ToInt32", "text is empty")
	}
	s := strings.TrimLeft(t.String(), " \t\n\v\f\r")
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, errors.Overflow(container, "ToInt32", t.String(), "value out of int32 range")
		}
		return 0, errors.New(container, errors.KindInvalidArgument).
			Op("ToInt32").
			Value(t.String()).
			Cause(err).
			Detail("not a decimal integer").
			Build()
	}
	return int32(v), nil
}

// Equal reports whether t and other hold the same bytes. It is false when
// either is nil or in the default state.
func (t *Text) Equal(other *Text) bool {
	if t == nil || other == nil {
		Logger().Warn("equal with nil text")
		return false
	}
	if t.blk == nil || other.blk == nil {
		Logger().Warn("equal with uninitialized text")
		return false
	}
	return bytes.Equal(t.view(), other.view())
}

// EqualString reports whether t holds exactly s. It is false when t is nil
// or in the default state.
func (t *Text) EqualString(s string) bool {
	if t == nil {
		Logger().Warn("equal with nil text")
		return false
	}
	if t.blk == nil {
		Logger().Warn("equal with uninitialized text")
		return false
	}
	return string(t.view()) == s
}

// Len returns the length in bytes, excluding the terminator.
func (t *Text) Len() int {
	if t == nil {
		Logger().Error("length of nil text")
		return 0
	}
	return int(t.length)
}

// Cap returns the storage size in bytes, including the terminator.
func (t *Text) Cap() int {
	if t == nil || t.blk == nil {
		return 0
	}
	return int(t.blk.Cap())
}

// CStr returns the content followed by its zero terminator. The slice aliases
// t's storage and is valid until the next mutating call. It is nil for a nil
// or default-state Text.
func (t *Text) CStr() []byte {
	if t == nil {
		Logger().Error("cstr of nil text")
		return nil
	}
	if t.blk == nil {
		Logger().Debug("cstr of uninitialized text")
		return nil
	}
	return t.blk.Bytes()[: t.length+1 : t.length+1]
}

// String returns a copy of the content.
func (t *Text) String() string {
	if t == nil || t.blk == nil {
		return ""
	}
	return string(t.view())
}

// IsEmpty reports whether t has no content, including nil and default-state
// texts.
func (t *Text) IsEmpty() bool {
	if t == nil {
		Logger().Warn("is empty on nil text")
		return true
	}
	return t.blk == nil || t.length == 0
}

// Created reports whether t owns storage.
func (t *Text) Created() bool {
	return t != nil && t.blk != nil
}

func (t *Text) view() []byte {
	return t.blk.Bytes()[:t.length]
}

// set writes b and the terminator. The caller guarantees capacity.
func (t *Text) set(s string) {
	data := t.blk.Bytes()
	n := copy(data, s)
	data[n] = 0
	t.length = uintptr(n)
}

// assign replaces the content with b, reusing storage when it fits. b may
// alias t's own storage.
func (t *Text) assign(op string, b []byte) error {
	need := uintptr(len(b)) + 1
	switch {
	case t.blk == nil:
		b = bytes.Clone(b)
		if err := t.allocate(op, need); err != nil {
			return err
		}
	case t.blk.Cap() < need:
		b = bytes.Clone(b)
		if err := t.blk.Replace(op, need); err != nil {
			Logger().Error("text reallocation failed", zap.String("op", op), zap.Error(err))
			return err
		}
	}
	data := t.blk.Bytes()
	copy(data, b)
	clear(data[len(b):])
	t.length = uintptr(len(b))
	return nil
}

func (t *Text) concat(op string, suffix []byte) error {
	if t.blk == nil {
		return t.assign(op, suffix)
	}
	n := uintptr(len(suffix))
	self := n > 0 && &suffix[0] == &t.blk.Bytes()[0]
	if err := t.grow(op, t.length+n+1); err != nil {
		return err
	}
	data := t.blk.Bytes()
	if self {
		// Growing may have moved the storage; the content is preserved.
		suffix = data[:n]
	}
	copy(data[t.length:], suffix)
	t.length += n
	data[t.length] = 0
	return nil
}

func (t *Text) grow(op string, n uintptr) error {
	if t.blk.Cap() >= n {
		Logger().Debug("text grow already satisfied", zap.Uintptr("requested", n), zap.Uintptr("capacity", t.blk.Cap()))
		return nil
	}
	if err := t.blk.Grow(op, n, t.length+1); err != nil {
		Logger().Error("text grow failed", zap.String("op", op), zap.Uintptr("size", n), zap.Error(err))
		return err
	}
	return nil
}

func (t *Text) allocate(op string, n uintptr) error {
	if t.alloc == nil {
		t.alloc = block.Allocator(nil)
	}
	blk, err := block.New(container, op, t.alloc, 1, 1, n)
	if err != nil {
		Logger().Error("text allocation failed", zap.String("op", op), zap.Uintptr("size", n), zap.Error(err))
		return err
	}
	t.blk = blk
	t.length = 0
	return nil
}

func (t *Text) checkDst(op string) error {
	if t == nil {
		Logger().Error("nil destination text", zap.String("op", op))
		return errors.InvalidArgument(container, op, "destination text is nil")
	}
	return nil
}

func (t *Text) check(op string) error {
	if err := t.checkDst(op); err != nil {
		return err
	}
	if t.blk == nil {
		Logger().Error("text not initialized", zap.String("op", op))
		return errors.NotInitialized(container, op)
	}
	return nil
}

func checkSrc(op string, src *Text) error {
	if src == nil {
		Logger().Error("nil source text", zap.String("op", op))
		return errors.InvalidArgument(container, op, "source text is nil")
	}
	if src.blk == nil {
		Logger().Error("source text not initialized", zap.String("op", op))
		return errors.NotInitialized(container, op)
	}
	return nil
}
