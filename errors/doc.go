// Package errors provides structured error types for the go-codex bindings.
//
// Errors are categorized by Stage (where in the binding lifecycle the error
// occurred) and Kind (error category). Native failures carry the libcodex
// return code and message losslessly; build failures carry the captured
// toolchain output.
//
// Every native failure crosses the FFI boundary through FromCode, which is
// total: an unrecognized return code still yields a native_failure error
// rather than being dropped.
//
//	if err := node.Start(ctx); err != nil {
//	    if code, ok := errors.NativeCode(err); ok {
//	        log.Printf("libcodex reported %d", code)
//	    }
//	}
//
// All errors implement the standard error interface and support
// errors.Is/As; two structured errors match on Stage and Kind.
package errors
