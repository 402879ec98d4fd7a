package codex

import (
	"sync"
	"unsafe"

	"github.com/codex-storage/go-codex/internal/native"
)

// scripted is one pre-programmed native result.
type scripted struct {
	code    int
	message string
}

var fakeCtxSentinel byte

// fakeLib implements native.Lib in-process. Every call completes its
// slot synchronously with a scripted result (default success), records
// the operation name, and tracks how often the context was destroyed.
type fakeLib struct {
	mu       sync.Mutex
	calls    []string
	destroys int

	// results overrides the completion per operation name.
	results map[string]scripted

	// hanging operations never complete their slot; waiters must
	// detach via their context. Their slots are parked in pending so
	// tests can fire the late terminal callback.
	hanging map[string]bool
	pending map[string]*native.Operation

	// download chunks served in order, one per DownloadChunk call.
	downloadChunks [][]byte

	// upload state recorded for assertions.
	uploadSession  string
	uploadFilename string
	uploadedChunks [][]byte
}

func newFakeLib() *fakeLib {
	return &fakeLib{
		results: map[string]scripted{},
		hanging: map[string]bool{},
		pending: map[string]*native.Operation{},
	}
}

func (f *fakeLib) script(name string, code int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[name] = scripted{code: code, message: message}
}

func (f *fakeLib) hang(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hanging[name] = true
}

func (f *fakeLib) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLib) callCount(name string) int {
	n := 0
	for _, c := range f.callNames() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeLib) destroyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroys
}

// completePending fires the terminal callback for a hanging operation,
// the way the native thread eventually would. Reports whether one was
// parked under the name.
func (f *fakeLib) completePending(name string, code int, message string) bool {
	f.mu.Lock()
	op := f.pending[name]
	delete(f.pending, name)
	f.mu.Unlock()
	if op == nil {
		return false
	}
	op.Complete(code, message)
	return true
}

func (f *fakeLib) lastUploadFilename() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadFilename
}

// finish records the call and completes the slot unless the operation
// is scripted to hang.
func (f *fakeLib) finish(name string, op *native.Operation, defaultMessage string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	hang := f.hanging[name]
	if hang {
		f.pending[name] = op
	}
	r, scripted := f.results[name]
	f.mu.Unlock()

	if hang {
		return nil
	}
	if scripted {
		op.Complete(r.code, r.message)
		return nil
	}
	op.Complete(0, defaultMessage)
	return nil
}

func (f *fakeLib) New(configJSON string, op *native.Operation) (native.Ctx, error) {
	err := f.finish("new", op, "")
	return native.Ctx(unsafe.Pointer(&fakeCtxSentinel)), err
}

func (f *fakeLib) Start(c native.Ctx, op *native.Operation) error {
	return f.finish("start", op, "")
}

func (f *fakeLib) Stop(c native.Ctx, op *native.Operation) error {
	return f.finish("stop", op, "")
}

func (f *fakeLib) Close(c native.Ctx, op *native.Operation) error {
	return f.finish("close", op, "")
}

func (f *fakeLib) Destroy(c native.Ctx) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroys++
}

func (f *fakeLib) Version(c native.Ctx, op *native.Operation) error {
	return f.finish("version", op, "v0.0.0-fake")
}

func (f *fakeLib) Revision(c native.Ctx, op *native.Operation) error {
	return f.finish("revision", op, "deadbeef")
}

func (f *fakeLib) Repo(c native.Ctx, op *native.Operation) error {
	return f.finish("repo", op, "/tmp/repo")
}

func (f *fakeLib) SPR(c native.Ctx, op *native.Operation) error {
	return f.finish("spr", op, "spr:fake")
}

func (f *fakeLib) PeerID(c native.Ctx, op *native.Operation) error {
	return f.finish("peerId", op, "12D3KooWfake")
}

func (f *fakeLib) Connect(c native.Ctx, peerID string, addresses []string, op *native.Operation) error {
	return f.finish("connect", op, "")
}

func (f *fakeLib) StorageFetch(c native.Ctx, cid string, op *native.Operation) error {
	return f.finish("storage.fetch", op, "{}")
}

func (f *fakeLib) StorageDelete(c native.Ctx, cid string, op *native.Operation) error {
	return f.finish("storage.delete", op, "")
}

func (f *fakeLib) StorageExists(c native.Ctx, cid string, op *native.Operation) error {
	return f.finish("storage.exists", op, "false")
}

func (f *fakeLib) StorageList(c native.Ctx, op *native.Operation) error {
	return f.finish("storage.list", op, "[]")
}

func (f *fakeLib) DownloadInit(c native.Ctx, cid string, chunkSize uint64, local bool, op *native.Operation) error {
	return f.finish("download.init", op, "")
}

func (f *fakeLib) DownloadChunk(c native.Ctx, cid string, op *native.Operation) error {
	f.mu.Lock()
	var chunk []byte
	if len(f.downloadChunks) > 0 {
		chunk = f.downloadChunks[0]
		f.downloadChunks = f.downloadChunks[1:]
	}
	f.calls = append(f.calls, "download.chunk")
	f.mu.Unlock()

	if len(chunk) > 0 {
		op.Progress(chunk)
	}
	op.Complete(0, "")
	return nil
}

func (f *fakeLib) DownloadCancel(c native.Ctx, cid string, op *native.Operation) error {
	return f.finish("download.cancel", op, "")
}

func (f *fakeLib) UploadInit(c native.Ctx, filename string, chunkSize uint64, op *native.Operation) error {
	f.mu.Lock()
	f.uploadFilename = filename
	session := f.uploadSession
	f.mu.Unlock()
	if session == "" {
		session = "session-1"
	}
	return f.finish("upload.init", op, session)
}

func (f *fakeLib) UploadChunk(c native.Ctx, sessionID string, data []byte, op *native.Operation) error {
	f.mu.Lock()
	f.uploadedChunks = append(f.uploadedChunks, append([]byte(nil), data...))
	f.mu.Unlock()
	return f.finish("upload.chunk", op, "")
}

func (f *fakeLib) UploadFinalize(c native.Ctx, sessionID string, op *native.Operation) error {
	return f.finish("upload.finalize", op, "zDvZRwzkvvqSKET5ACv3nUNSJ4XZ")
}

func (f *fakeLib) UploadCancel(c native.Ctx, sessionID string, op *native.Operation) error {
	return f.finish("upload.cancel", op, "")
}
