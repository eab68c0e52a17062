// Package text implements a growable byte string that keeps a zero
// terminator after its content.
//
// Len excludes the terminator and Cap includes it, so Len()+1 <= Cap() after
// every successful operation. CStr exposes the content and terminator as a
// view that C-style or WebAssembly consumers can read directly.
//
// Reserve reallocates destructively when it has to grow; Grow and Concat
// preserve the content.
//
// Decode and Encode convert between UTF-8 and single-byte charsets from
// golang.org/x/text/encoding/charmap, looked up by name with Charset.
package text
