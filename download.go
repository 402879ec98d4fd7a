package codex

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/codex-storage/go-codex/errors"
	"github.com/codex-storage/go-codex/internal/native"
)

// DownloadOptions configures a content download.
type DownloadOptions struct {
	// ChunkSize is the transfer chunk size; zero means
	// DefaultChunkSize.
	ChunkSize uint64

	// Local restricts the download to locally stored blocks instead
	// of fetching from the network.
	Local bool
}

// Download opens a streaming download session for a content id. The
// returned stream reads the content sequentially; Close releases the
// native session and must be called even after reading to EOF.
func (n *Node) Download(ctx context.Context, cid string, opts DownloadOptions) (*Download, error) {
	if cid == "" {
		return nil, errors.InvalidParameter("cid", "must not be empty")
	}
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	if _, err := n.inner.call(ctx, "download.init", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.DownloadInit(c, cid, chunkSize, opts.Local, op)
	}); err != nil {
		return nil, err
	}

	return &Download{node: n, cid: cid, ctx: ctx}, nil
}

// DownloadBytes fetches the whole content into memory.
func (n *Node) DownloadBytes(ctx context.Context, cid string, opts DownloadOptions) ([]byte, error) {
	d, err := n.Download(ctx, cid, opts)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	data, err := io.ReadAll(d)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Download is a streaming read of one content id. It is not safe for
// concurrent use; chunks of one session must be read sequentially.
type Download struct {
	node *Node
	cid  string

	// ctx is the session context set at Download; it bounds every
	// chunk request of this stream, like a read deadline.
	ctx context.Context

	mu     sync.Mutex
	buf    []byte
	eof    bool
	closed bool
}

// Read implements io.Reader. It requests the next chunk from the
// native session when the buffer is drained; an empty chunk marks the
// end of the stream.
func (d *Download) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, errors.HandleClosed("download.read")
	}

	for len(d.buf) == 0 {
		if d.eof {
			return 0, io.EOF
		}
		if err := d.fetchChunk(); err != nil {
			return 0, err
		}
	}

	copied := copy(p, d.buf)
	d.buf = d.buf[copied:]
	return copied, nil
}

// fetchChunk pulls the next chunk into d.buf. Called with d.mu held.
func (d *Download) fetchChunk() error {
	var chunk []byte
	_, err := d.node.inner.call(d.ctx, "download.chunk", func(op *native.Operation) {
		op.OnProgress(func(b []byte) {
			// The payload was already copied into Go memory by the
			// callback bridge; keep the reference, not a second copy.
			chunk = b
		})
	}, func(c native.Ctx, op *native.Operation) error {
		return d.node.inner.lib.DownloadChunk(c, d.cid, op)
	})
	if err != nil {
		if errors.IsCancelled(err) {
			// The waiter detached; tell the native side to stop
			// producing for this session.
			d.cancelSession()
		}
		return err
	}

	if len(chunk) == 0 {
		d.eof = true
		return nil
	}
	d.buf = chunk
	return nil
}

// Close releases the download session. Closing mid-stream cancels the
// native download; closing after EOF is cheap. Close is idempotent.
func (d *Download) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if !d.eof {
		d.cancelSession()
	}
	return nil
}

// cancelSession issues the native cancel for this cid. Best effort:
// failure leaves the session to expire on the native side.
func (d *Download) cancelSession() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if _, err := d.node.inner.call(ctx, "download.cancel", nil, func(c native.Ctx, op *native.Operation) error {
		return d.node.inner.lib.DownloadCancel(c, d.cid, op)
	}); err != nil {
		Logger().Debug("download cancel failed", zap.String("cid", d.cid), zap.Error(err))
	}
}
