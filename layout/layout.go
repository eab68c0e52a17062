package layout

import (
	"math"
	"unsafe"

	"github.com/wippyai/rawbuf/errors"
)

// MaxBufferSize is the largest byte count a single buffer may span.
const MaxBufferSize = uintptr(math.MaxInt)

// Info describes the size and alignment of one element.
type Info struct {
	Size  uintptr
	Align uintptr
	// Fields lists record fields in declaration order when the layout came
	// from a WIT record.
	Fields []Field
}

// Field locates one record field inside an element.
type Field struct {
	Name   string
	Offset uintptr
	Size   uintptr
}

// Field returns the record field called name.
func (i Info) Field(name string) (Field, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Of returns the compiler-derived layout of T.
func Of[T any]() Info {
	var zero T
	return Info{
		Size:  unsafe.Sizeof(zero),
		Align: unsafe.Alignof(zero),
	}
}

// Stride returns the padded per-element span for this layout.
func (i Info) Stride() (uintptr, error) {
	return Stride(i.Size, i.Align)
}

func IsPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignTo rounds offset up to the next multiple of align. align must be a
// power of two; zero leaves offset unchanged.
func AlignTo(offset, align uintptr) uintptr {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Stride rounds elemSize up to the next multiple of align.
//
//	padding = (align - elemSize%align) % align
//	stride  = elemSize + padding
func Stride(elemSize, align uintptr) (uintptr, error) {
	if elemSize == 0 || align == 0 {
		return 0, errors.InvalidArgument(errors.ContainerLayout, "Stride", "element size and alignment must be non-zero")
	}
	if !IsPowerOfTwo(align) {
		return 0, errors.New(errors.ContainerLayout, errors.KindInvalidArgument).
			Op("Stride").
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	padding := (align - elemSize%align) % align
	if padding > ^uintptr(0)-elemSize {
		return 0, errors.Overflow(errors.ContainerLayout, "Stride", elemSize, "element size too large to pad")
	}
	return elemSize + padding, nil
}

// BufferSize returns stride*count, failing instead of wrapping when the
// product exceeds MaxBufferSize.
func BufferSize(stride, count uintptr) (uintptr, error) {
	if count != 0 && stride > MaxBufferSize/count {
		return 0, errors.New(errors.ContainerLayout, errors.KindOverflow).
			Op("BufferSize").
			Value(count).
			Detail("%d elements of stride %d exceed %d bytes", count, stride, MaxBufferSize).
			Build()
	}
	return stride * count, nil
}
