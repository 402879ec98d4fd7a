package codex

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/codex-storage/go-codex/errors"
	"github.com/codex-storage/go-codex/internal/native"
)

// UploadOptions configures a content upload.
type UploadOptions struct {
	// Filename is recorded in the content manifest.
	Filename string

	// ChunkSize is the transfer chunk size; zero means
	// DefaultChunkSize.
	ChunkSize uint64
}

// Upload stores the contents of r and returns the content id. Chunks
// are written sequentially; the native library requires upload chunks
// against one session in issue order, which the per-node serialization
// guarantees.
//
// If ctx is cancelled or the reader fails mid-stream, the native
// session is cancelled and the partial content discarded.
func (n *Node) Upload(ctx context.Context, r io.Reader, opts UploadOptions) (string, error) {
	if r == nil {
		return "", errors.InvalidParameter("reader", "must not be nil")
	}
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	session, err := n.inner.call(ctx, "upload.init", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.UploadInit(c, opts.Filename, chunkSize, op)
	})
	if err != nil {
		return "", err
	}

	buf := make([]byte, chunkSize)
	for {
		read, readErr := r.Read(buf)
		if read > 0 {
			if _, err := n.inner.call(ctx, "upload.chunk", nil, func(c native.Ctx, op *native.Operation) error {
				return n.inner.lib.UploadChunk(c, session, buf[:read], op)
			}); err != nil {
				n.cancelUpload(session)
				return "", err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			n.cancelUpload(session)
			return "", errors.Wrap(errors.StageRuntime, errors.KindInvalidParameter, readErr, "read upload source")
		}
	}

	cid, err := n.inner.call(ctx, "upload.finalize", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.UploadFinalize(c, session, op)
	})
	if err != nil {
		return "", err
	}

	Logger().Debug("upload complete", zap.String("cid", cid), zap.String("filename", opts.Filename))
	return cid, nil
}

// UploadFile stores a file from disk and returns the content id. The
// file's base name is recorded unless opts.Filename overrides it.
func (n *Node) UploadFile(ctx context.Context, path string, opts UploadOptions) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(errors.StageConfig, errors.KindInvalidParameter, err, "open upload source")
	}
	defer f.Close()

	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}
	return n.Upload(ctx, f, opts)
}

// cancelUpload abandons a native upload session. Best effort: the
// session is native-side state that expires anyway, and the caller
// already has the real error to report.
func (n *Node) cancelUpload(session string) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if _, err := n.inner.call(ctx, "upload.cancel", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.UploadCancel(c, session, op)
	}); err != nil {
		Logger().Debug("upload cancel failed", zap.String("session", session), zap.Error(err))
	}
}
