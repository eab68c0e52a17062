// Package layout computes element layouts for raw container storage.
//
// Containers store elements at a fixed stride: the element size rounded up to
// the next multiple of its alignment. Alignment must be a power of two.
//
//	stride, err := layout.Stride(7, 4) // 8
//
// Every size derived from a caller supplied count goes through BufferSize,
// which fails with errors.ErrOverflow instead of wrapping.
//
// # Sources of Layout
//
//   - Of[T] uses the compiler's size and alignment for a Go type.
//   - Calculator.FromWIT applies Canonical ABI rules to a WIT type, for
//     buffers shared with WebAssembly guests.
//   - CheckPlain rejects Go types whose bytes cannot live outside the
//     garbage collector's view.
package layout
