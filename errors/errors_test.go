package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Container: ContainerStack,
				Kind:      KindFull,
				Op:        "Push",
				Detail:    "capacity 4 exhausted",
			},
			contains: []string{"[stack]", "full", "in Push", "capacity 4 exhausted"},
		},
		{
			name: "minimal error",
			err: &Error{
				Kind: KindEmpty,
			},
			contains: []string{"empty"},
		},
		{
			name: "error with cause",
			err: &Error{
				Container: ContainerArray,
				Kind:      KindAllocation,
				Detail:    "memory full",
				Cause:     errors.New("underlying error"),
			},
			contains: []string{"[array]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Container: ContainerText,
		Kind:      KindAllocation,
		Cause:     cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Container: ContainerArray,
		Kind:      KindOutOfRange,
		Op:        "Get",
	}

	if !errors.Is(err, ErrOutOfRange) {
		t.Error("sentinel should match same kind")
	}
	if errors.Is(err, ErrFull) {
		t.Error("sentinel should not match different kind")
	}
	if !errors.Is(err, &Error{Container: ContainerArray, Kind: KindOutOfRange}) {
		t.Error("should match same container and kind")
	}
	if errors.Is(err, &Error{Container: ContainerStack, Kind: KindOutOfRange}) {
		t.Error("should not match different container")
	}
	if errors.Is(err, &Error{Kind: KindOutOfRange, Op: "Set"}) {
		t.Error("should not match different op")
	}
	if err.Is(errors.New("plain")) {
		t.Error("should not match non-structured error")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Empty(ContainerStack, "Pop"))
	if got := KindOf(wrapped); got != KindEmpty {
		t.Errorf("KindOf = %q, want %q", got, KindEmpty)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(ContainerStack, KindInvalidArgument).
		Op("Resize").
		Value(3).
		Cause(cause).
		Detail("new capacity %d must exceed %d", 3, 4).
		Build()

	if err.Container != ContainerStack {
		t.Errorf("Container = %v, want %v", err.Container, ContainerStack)
	}
	if err.Kind != KindInvalidArgument {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidArgument)
	}
	if err.Op != "Resize" {
		t.Errorf("Op = %v, want Resize", err.Op)
	}
	if err.Value != 3 {
		t.Errorf("Value = %v, want 3", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "new capacity 3 must exceed 4" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"InvalidArgument", InvalidArgument(ContainerLayout, "Stride", "zero alignment"), KindInvalidArgument},
		{"NotInitialized", NotInitialized(ContainerArray, "Push"), KindNotInitialized},
		{"AllocationFailed", AllocationFailed(ContainerAlloc, "Alloc", 1024, 8, nil), KindAllocation},
		{"Full", Full(ContainerStack, "Push", 4), KindFull},
		{"Empty", Empty(ContainerStack, "Pop"), KindEmpty},
		{"OutOfRange", OutOfRange(ContainerArray, "Get", 10, 5), KindOutOfRange},
		{"Overflow", Overflow(ContainerText, "ToInt32", "2147483648", "out of int32 range"), KindOverflow},
		{"Runtime", Runtime(ContainerText, "Copy", "short copy"), KindRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
		})
	}

	t.Run("AllocationFailed detail", func(t *testing.T) {
		err := AllocationFailed(ContainerAlloc, "Alloc", 1024, 8, nil)
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("OutOfRange value", func(t *testing.T) {
		err := OutOfRange(ContainerArray, "Get", 10, 5)
		if err.Value != uintptr(10) {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})
}

func TestWrap(t *testing.T) {
	inner := AllocationFailed(ContainerAlloc, "Alloc", 64, 8, nil)
	err := Wrap(ContainerArray, "Resize", inner, "grow storage")
	if err.Kind != KindAllocation {
		t.Errorf("Kind = %v, want kind of cause", err.Kind)
	}
	if !errors.Is(err, ErrAllocation) {
		t.Error("wrapped error should still match ErrAllocation")
	}

	plain := Wrap(ContainerArray, "Resize", errors.New("boom"), "grow storage")
	if plain.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", plain.Kind, KindRuntime)
	}
}
