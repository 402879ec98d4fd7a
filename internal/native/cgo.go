package native

/*
#cgo CFLAGS: -I${SRCDIR}/include
#include <stdlib.h>
#include "libcodex.h"

// Prototype of the Go-exported callback (defined in callback.go).
extern void goCodexCallback(int ret, char* msg, size_t len, void* userData);

// Shims baking the exported callback into each entry point, so Go code
// never converts function values across the boundary.
static void* cx_new(const char* cfg, void* udata) {
	return codex_new(cfg, (CodexCallback)goCodexCallback, udata);
}
static int cx_start(void* c, void* udata)   { return codex_start(c, (CodexCallback)goCodexCallback, udata); }
static int cx_stop(void* c, void* udata)    { return codex_stop(c, (CodexCallback)goCodexCallback, udata); }
static int cx_close(void* c, void* udata)   { return codex_close(c, (CodexCallback)goCodexCallback, udata); }
static void cx_destroy(void* c)             { codex_destroy(c, NULL, NULL); }
static int cx_version(void* c, void* udata) { return codex_version(c, (CodexCallback)goCodexCallback, udata); }
static int cx_revision(void* c, void* udata){ return codex_revision(c, (CodexCallback)goCodexCallback, udata); }
static int cx_repo(void* c, void* udata)    { return codex_repo(c, (CodexCallback)goCodexCallback, udata); }
static int cx_spr(void* c, void* udata)     { return codex_spr(c, (CodexCallback)goCodexCallback, udata); }
static int cx_peer_id(void* c, void* udata) { return codex_peer_id(c, (CodexCallback)goCodexCallback, udata); }
static int cx_connect(void* c, const char* pid, char** addrs, size_t n, void* udata) {
	return codex_connect(c, pid, addrs, n, (CodexCallback)goCodexCallback, udata);
}
static int cx_storage_fetch(void* c, const char* cid, void* udata) {
	return codex_storage_fetch(c, cid, (CodexCallback)goCodexCallback, udata);
}
static int cx_storage_delete(void* c, const char* cid, void* udata) {
	return codex_storage_delete(c, cid, (CodexCallback)goCodexCallback, udata);
}
static int cx_storage_exists(void* c, const char* cid, void* udata) {
	return codex_storage_exists(c, cid, (CodexCallback)goCodexCallback, udata);
}
static int cx_storage_list(void* c, void* udata) {
	return codex_storage_list(c, (CodexCallback)goCodexCallback, udata);
}
static int cx_download_init(void* c, const char* cid, size_t chunkSize, bool local, void* udata) {
	return codex_download_init(c, cid, chunkSize, local, (CodexCallback)goCodexCallback, udata);
}
static int cx_download_chunk(void* c, const char* cid, void* udata) {
	return codex_download_chunk(c, cid, (CodexCallback)goCodexCallback, udata);
}
static int cx_download_cancel(void* c, const char* cid, void* udata) {
	return codex_download_cancel(c, cid, (CodexCallback)goCodexCallback, udata);
}
static int cx_upload_init(void* c, const char* name, size_t chunkSize, void* udata) {
	return codex_upload_init(c, name, chunkSize, (CodexCallback)goCodexCallback, udata);
}
static int cx_upload_chunk(void* c, const char* sid, const char* data, size_t len, void* udata) {
	return codex_upload_chunk(c, sid, data, len, (CodexCallback)goCodexCallback, udata);
}
static int cx_upload_finalize(void* c, const char* sid, void* udata) {
	return codex_upload_finalize(c, sid, (CodexCallback)goCodexCallback, udata);
}
static int cx_upload_cancel(void* c, const char* sid, void* udata) {
	return codex_upload_cancel(c, sid, (CodexCallback)goCodexCallback, udata);
}
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/codex-storage/go-codex/errors"
)

// codexLib is the cgo-backed implementation of Lib.
type codexLib struct{}

// issue registers op's callback handle, runs the native call, and maps
// the issue-time return code. On rejection the handle is released and
// the slot completed locally, since no callback will ever fire for it.
func issue(op *Operation, fn func(udata unsafe.Pointer) C.int) error {
	h := cgo.NewHandle(op)
	liveHandles.add(uintptr(h), op)
	ret := int(fn(unsafe.Pointer(uintptr(h))))
	if ret != errors.CodeOK {
		liveHandles.take(uintptr(h))
		h.Delete()
		op.abort(ret, "native call rejected at issue")
		return errors.FromCode(op.Name(), ret, "native call rejected at issue")
	}
	return nil
}

func (codexLib) New(configJSON string, op *Operation) (Ctx, error) {
	// libcodex initializes the Nim runtime on first construction;
	// construction must not race with itself.
	initMu.Lock()
	defer initMu.Unlock()

	cfg := C.CString(configJSON)
	defer C.free(unsafe.Pointer(cfg))

	h := cgo.NewHandle(op)
	liveHandles.add(uintptr(h), op)
	ctx := C.cx_new(cfg, unsafe.Pointer(uintptr(h)))
	if ctx == nil {
		liveHandles.take(uintptr(h))
		h.Delete()
		op.abort(errors.CodeErr, "constructor returned a null context")
		return nil, errors.Native("new", "constructor returned a null context")
	}
	return Ctx(ctx), nil
}

func (codexLib) Start(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_start(unsafe.Pointer(c), u) })
}

func (codexLib) Stop(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_stop(unsafe.Pointer(c), u) })
}

func (codexLib) Close(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_close(unsafe.Pointer(c), u) })
}

func (codexLib) Destroy(c Ctx) {
	C.cx_destroy(unsafe.Pointer(c))
}

func (codexLib) Version(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_version(unsafe.Pointer(c), u) })
}

func (codexLib) Revision(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_revision(unsafe.Pointer(c), u) })
}

func (codexLib) Repo(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_repo(unsafe.Pointer(c), u) })
}

func (codexLib) SPR(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_spr(unsafe.Pointer(c), u) })
}

func (codexLib) PeerID(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_peer_id(unsafe.Pointer(c), u) })
}

func (codexLib) Connect(c Ctx, peerID string, addresses []string, op *Operation) error {
	cPeer := C.CString(peerID)
	defer C.free(unsafe.Pointer(cPeer))

	ptrSize := C.size_t(unsafe.Sizeof(uintptr(0)))
	cAddrs := (**C.char)(C.malloc(C.size_t(len(addresses)) * ptrSize))
	defer C.free(unsafe.Pointer(cAddrs))

	slots := unsafe.Slice(cAddrs, len(addresses))
	for i, a := range addresses {
		slots[i] = C.CString(a)
	}
	defer func() {
		for _, s := range slots {
			C.free(unsafe.Pointer(s))
		}
	}()

	return issue(op, func(u unsafe.Pointer) C.int {
		return C.cx_connect(unsafe.Pointer(c), cPeer, cAddrs, C.size_t(len(addresses)), u)
	})
}

func (codexLib) StorageFetch(c Ctx, cid string, op *Operation) error {
	cCid := C.CString(cid)
	defer C.free(unsafe.Pointer(cCid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_storage_fetch(unsafe.Pointer(c), cCid, u) })
}

func (codexLib) StorageDelete(c Ctx, cid string, op *Operation) error {
	cCid := C.CString(cid)
	defer C.free(unsafe.Pointer(cCid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_storage_delete(unsafe.Pointer(c), cCid, u) })
}

func (codexLib) StorageExists(c Ctx, cid string, op *Operation) error {
	cCid := C.CString(cid)
	defer C.free(unsafe.Pointer(cCid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_storage_exists(unsafe.Pointer(c), cCid, u) })
}

func (codexLib) StorageList(c Ctx, op *Operation) error {
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_storage_list(unsafe.Pointer(c), u) })
}

func (codexLib) DownloadInit(c Ctx, cid string, chunkSize uint64, local bool, op *Operation) error {
	cCid := C.CString(cid)
	defer C.free(unsafe.Pointer(cCid))
	return issue(op, func(u unsafe.Pointer) C.int {
		return C.cx_download_init(unsafe.Pointer(c), cCid, C.size_t(chunkSize), C.bool(local), u)
	})
}

func (codexLib) DownloadChunk(c Ctx, cid string, op *Operation) error {
	cCid := C.CString(cid)
	defer C.free(unsafe.Pointer(cCid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_download_chunk(unsafe.Pointer(c), cCid, u) })
}

func (codexLib) DownloadCancel(c Ctx, cid string, op *Operation) error {
	cCid := C.CString(cid)
	defer C.free(unsafe.Pointer(cCid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_download_cancel(unsafe.Pointer(c), cCid, u) })
}

func (codexLib) UploadInit(c Ctx, filename string, chunkSize uint64, op *Operation) error {
	cName := C.CString(filename)
	defer C.free(unsafe.Pointer(cName))
	return issue(op, func(u unsafe.Pointer) C.int {
		return C.cx_upload_init(unsafe.Pointer(c), cName, C.size_t(chunkSize), u)
	})
}

func (codexLib) UploadChunk(c Ctx, sessionID string, data []byte, op *Operation) error {
	cSid := C.CString(sessionID)
	defer C.free(unsafe.Pointer(cSid))

	// libcodex copies the payload before the call returns, so the C
	// buffer lives only for the duration of the issue.
	var cData *C.char
	if len(data) > 0 {
		p := C.CBytes(data)
		defer C.free(p)
		cData = (*C.char)(p)
	}

	return issue(op, func(u unsafe.Pointer) C.int {
		return C.cx_upload_chunk(unsafe.Pointer(c), cSid, cData, C.size_t(len(data)), u)
	})
}

func (codexLib) UploadFinalize(c Ctx, sessionID string, op *Operation) error {
	cSid := C.CString(sessionID)
	defer C.free(unsafe.Pointer(cSid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_upload_finalize(unsafe.Pointer(c), cSid, u) })
}

func (codexLib) UploadCancel(c Ctx, sessionID string, op *Operation) error {
	cSid := C.CString(sessionID)
	defer C.free(unsafe.Pointer(cSid))
	return issue(op, func(u unsafe.Pointer) C.int { return C.cx_upload_cancel(unsafe.Pointer(c), cSid, u) })
}
