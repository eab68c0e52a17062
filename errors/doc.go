// Package errors provides structured error types for the rawbuf containers.
//
// Errors are categorized by Container (which component raised them) and Kind
// (error category). The Error type also records the failing operation, a
// detail message, the offending value and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.ContainerStack, errors.KindFull).
//		Op("Push").
//		Detail("capacity %d exhausted", 16).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(errors.ContainerArray, "Get", 10, 5)
//	err := errors.NotInitialized(errors.ContainerText, "Concat")
//
// Callers branch on the kind with the standard library:
//
//	if errors.Is(err, errors.ErrFull) {
//	    // grow explicitly, then retry
//	}
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
