package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Container identifies which component raised the error
type Container string

const (
	ContainerArray  Container = "array"
	ContainerStack  Container = "stack"
	ContainerText   Container = "text"
	ContainerLayout Container = "layout"
	ContainerAlloc  Container = "alloc"
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotInitialized  Kind = "not_initialized"
	KindAllocation      Kind = "allocation"
	KindFull            Kind = "full"
	KindEmpty           Kind = "empty"
	KindOutOfRange      Kind = "out_of_range"
	KindOverflow        Kind = "overflow"
	KindRuntime         Kind = "runtime"
)

// Sentinels for errors.Is. They match any *Error of the same kind,
// regardless of container or operation.
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrNotInitialized  = &Error{Kind: KindNotInitialized}
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrFull            = &Error{Kind: KindFull}
	ErrEmpty           = &Error{Kind: KindEmpty}
	ErrOutOfRange      = &Error{Kind: KindOutOfRange}
	ErrOverflow        = &Error{Kind: KindOverflow}
	ErrRuntime         = &Error{Kind: KindRuntime}
)

// Error is the structured error type returned by every fallible operation
type Error struct {
	Value     any
	Cause     error
	Container Container
	Kind      Kind
	Op        string
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Container != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Container))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. An empty Container or Op on
// the target acts as a wildcard.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	if t.Container != "" && e.Container != t.Container {
		return false
	}
	return t.Op == "" || e.Op == t.Op
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(container Container, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Container: container,
			Kind:      kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidArgument creates an invalid argument error
func InvalidArgument(c Container, op, detail string) *Error {
	return &Error{
		Container: c,
		Kind:      KindInvalidArgument,
		Op:        op,
		Detail:    detail,
	}
}

// NotInitialized creates an error for use of a default-state container
func NotInitialized(c Container, op string) *Error {
	return &Error{
		Container: c,
		Kind:      KindNotInitialized,
		Op:        op,
		Detail:    fmt.Sprintf("%s is not initialized, call Create first", c),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(c Container, op string, size, align uintptr, cause error) *Error {
	return &Error{
		Container: c,
		Kind:      KindAllocation,
		Op:        op,
		Detail:    fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:     cause,
	}
}

// Full creates a capacity exhausted error
func Full(c Container, op string, capacity uintptr) *Error {
	return &Error{
		Container: c,
		Kind:      KindFull,
		Op:        op,
		Detail:    fmt.Sprintf("capacity %d exhausted", capacity),
		Value:     capacity,
	}
}

// Empty creates an error for a removal from an empty container
func Empty(c Container, op string) *Error {
	return &Error{
		Container: c,
		Kind:      KindEmpty,
		Op:        op,
		Detail:    fmt.Sprintf("%s is empty", c),
	}
}

// OutOfRange creates an index out of range error
func OutOfRange(c Container, op string, index, length uintptr) *Error {
	return &Error{
		Container: c,
		Kind:      KindOutOfRange,
		Op:        op,
		Detail:    fmt.Sprintf("index %d out of range (length %d)", index, length),
		Value:     index,
	}
}

// Overflow creates a size overflow error
func Overflow(c Container, op string, value any, detail string) *Error {
	return &Error{
		Container: c,
		Kind:      KindOverflow,
		Op:        op,
		Detail:    detail,
		Value:     value,
	}
}

// Runtime creates an internal postcondition failure error
func Runtime(c Container, op, detail string) *Error {
	return &Error{
		Container: c,
		Kind:      KindRuntime,
		Op:        op,
		Detail:    detail,
	}
}

// Wrap wraps an existing error with additional context. A wrapped *Error
// keeps its kind so errors.Is against the sentinels still matches.
func Wrap(c Container, op string, cause error, detail string) *Error {
	kind := KindOf(cause)
	if kind == "" {
		kind = KindRuntime
	}
	return &Error{
		Container: c,
		Kind:      kind,
		Op:        op,
		Detail:    detail,
		Cause:     cause,
	}
}
