// Package array implements a growable array of fixed-size elements over raw
// storage.
//
// Capacity is explicit. Push fails with errors.ErrFull instead of growing,
// Reserve reallocates and drops the contents, and Resize grows while keeping
// them. Resize never shrinks: the new capacity must exceed the current one.
//
//	var arr array.Array
//	if err := arr.Create(4, 4, 16); err != nil {
//	    return err
//	}
//	defer arr.Destroy()
//
// Of wraps an Array for a plain Go element type, deriving size and alignment
// from the compiler.
package array
