// Package native is the FFI boundary to libcodex.
//
// It owns three things and nothing else:
//
//   - the cgo declarations for the pinned ABI (include/libcodex.h and
//     the shims in cgo.go);
//   - the callback bridge: one exported callback that routes every
//     native completion into a single-fire Operation slot;
//   - the linking-mode flag files (link_dynamic.go, link_static.go),
//     selected by the codex_static build tag.
//
// # Callback model
//
// libcodex reports completion of asynchronous calls by invoking a C
// callback on a thread it owns. For each call this package registers an
// Operation, a completion slot that can be filled exactly once, and
// hands its cgo.Handle to the native side as user data:
//
//	op := native.NewOperation("start")
//	if err := lib.Start(ctx, op); err != nil {
//	    return err // rejected at issue, slot already released
//	}
//	msg, err := op.Wait(ctx)
//
// Wait suspends the goroutine on a channel; no thread blocks inside
// the native library. Cancelling the context detaches the waiter and
// leaves the slot registered until the native callback eventually
// fires, at which point the result is discarded and the handle freed.
// A second terminal callback for the same slot violates the native
// contract; it is logged and discarded.
//
// # Memory
//
// Every pointer handed to libcodex is C memory copied from Go, freed as
// soon as the call is issued (the ABI copies arguments before
// returning). Every payload received from libcodex is copied into Go
// memory inside the exported callback. Native buffers never escape
// this package.
//
// # Concurrency
//
// The ABI is not documented thread-safe. Callers (the codex package)
// serialize all calls per node; this package additionally serializes
// node construction process-wide because first construction
// initializes the Nim runtime.
package native
