package native

import (
	"sync"
	"unsafe"
)

// Ctx is the opaque node context returned by the native constructor.
// It is owned by exactly one wrapper in the codex package; this package
// never retains one.
type Ctx unsafe.Pointer

// Lib is the pinned libcodex ABI surface. Every asynchronous entry
// point takes the completion slot that was registered for the call; a
// nil error means the request was accepted and the slot will be filled
// by the native callback thread. A non-nil error means the call was
// rejected at issue time and the slot has been completed locally.
//
// Implementations other than the cgo-backed default exist only in
// tests.
type Lib interface {
	// New constructs a node from its JSON configuration. The returned
	// context is valid until Destroy.
	New(configJSON string, op *Operation) (Ctx, error)
	Start(c Ctx, op *Operation) error
	Stop(c Ctx, op *Operation) error
	Close(c Ctx, op *Operation) error
	// Destroy releases the native context. Synchronous; the context
	// must not be used afterwards.
	Destroy(c Ctx)

	Version(c Ctx, op *Operation) error
	Revision(c Ctx, op *Operation) error
	Repo(c Ctx, op *Operation) error
	SPR(c Ctx, op *Operation) error
	PeerID(c Ctx, op *Operation) error

	Connect(c Ctx, peerID string, addresses []string, op *Operation) error

	StorageFetch(c Ctx, cid string, op *Operation) error
	StorageDelete(c Ctx, cid string, op *Operation) error
	StorageExists(c Ctx, cid string, op *Operation) error
	StorageList(c Ctx, op *Operation) error

	DownloadInit(c Ctx, cid string, chunkSize uint64, local bool, op *Operation) error
	DownloadChunk(c Ctx, cid string, op *Operation) error
	DownloadCancel(c Ctx, cid string, op *Operation) error

	UploadInit(c Ctx, filename string, chunkSize uint64, op *Operation) error
	UploadChunk(c Ctx, sessionID string, data []byte, op *Operation) error
	UploadFinalize(c Ctx, sessionID string, op *Operation) error
	UploadCancel(c Ctx, sessionID string, op *Operation) error
}

// initMu serializes node construction. libcodex initializes
// process-wide state (the Nim runtime) on first construction and that
// path is not safe to race.
var initMu sync.Mutex

// Default returns the cgo-backed Lib.
func Default() Lib { return codexLib{} }
