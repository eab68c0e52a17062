// Package rawbuf provides manually managed, type-erased containers built on
// one shared buffer discipline: alignment-aware element layout, explicit
// capacity and size invariants, and an explicit object lifecycle.
//
// # Architecture Overview
//
//	rawbuf/            Root package with the Allocator contract
//	├── layout/        Stride, padding and overflow-checked size arithmetic
//	├── alloc/         Heap, mmap, arena and wazero linear-memory allocators
//	├── array/         Growable array with explicit capacity management
//	├── stack/         Bounded LIFO stack with reserve/resize duality
//	├── text/          Terminated byte string with length tracking
//	├── errors/        Structured error types
//	└── cmd/bufctl/    Script and TUI driver for the containers
//
// # Quick Start
//
//	var arr array.Array
//	if err := arr.Create(4, 4, 8); err != nil {
//	    log.Fatal(err)
//	}
//	defer arr.Destroy()
//
//	_ = arr.Push([]byte{1, 0, 0, 0})
//	elem, _ := arr.Get(0)
//
// # Lifecycle
//
// Every container starts in the default state: its zero value owns no
// storage and every operation on it reports errors.ErrNotInitialized.
// Create moves it to the initialized state, Destroy releases storage and
// returns it to the default state. Calling Create again on an initialized
// container destroys the previous storage first.
//
// # Growth Policy
//
// Containers never grow implicitly. Push on a full array or stack fails with
// errors.ErrFull. Capacity changes are always explicit and come in two
// flavors:
//
//   - Reserve reallocates and discards the logical contents (cheap).
//   - Resize grows and preserves the contents (copies). It never shrinks.
//
// Resize allocates the new block, copies, swaps, then frees the old block, so
// an allocation failure leaves the container untouched.
//
// # Thread Safety
//
// Containers are NOT safe for concurrent use. Callers sharing a container
// across goroutines must serialize access themselves. Views returned by
// stack.Stack.PeekRef, array.Array.Ref and text.Text.CStr are borrows that
// become invalid at the next mutating call on the same container.
//
// # Diagnostics
//
// Each package logs misuse through a zap logger that is a no-op by default
// (see SetLogger in each package). Logging never alters control flow: every
// diagnostic is paired with a returned error or a documented boolean result.
package rawbuf
