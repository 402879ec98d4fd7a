package native

/*
#include <stddef.h>
#include "libcodex.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"go.uber.org/zap"

	"github.com/codex-storage/go-codex/errors"
)

// goCodexCallback is the single entry point for every libcodex
// callback. It runs on a thread owned by the native library.
//
// userData is the cgo.Handle of the operation's completion slot,
// resolved through the live-handle set rather than the handle itself:
// a duplicate terminal callback finds its token already released and
// is discarded, instead of panicking on a deleted handle inside a
// native thread. The handle is deleted only on the terminal
// invocation; RET_PROGRESS invocations leave it registered because
// more callbacks follow. Payload bytes are copied into Go memory
// here; nothing downstream ever sees the native buffer.
//
//export goCodexCallback
func goCodexCallback(ret C.int, msg *C.char, length C.size_t, userData unsafe.Pointer) {
	if userData == nil {
		Logger().Warn("native callback without user data", zap.Int("code", int(ret)))
		return
	}
	key := uintptr(userData)

	if int(ret) == errors.CodeProgress {
		op, ok := liveHandles.get(key)
		if !ok {
			Logger().Warn("native progress for a released operation", zap.Int("code", int(ret)))
			return
		}
		var chunk []byte
		if msg != nil && length > 0 {
			chunk = C.GoBytes(unsafe.Pointer(msg), C.int(length))
		}
		op.Progress(chunk)
		return
	}

	op, ok := liveHandles.take(key)
	if !ok {
		Logger().Warn("duplicate native callback discarded", zap.Int("code", int(ret)))
		return
	}

	var message string
	if msg != nil && length > 0 {
		message = C.GoStringN(msg, C.int(length))
	}
	op.Complete(int(ret), message)
	cgo.Handle(key).Delete()
}
