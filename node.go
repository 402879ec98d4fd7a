package codex

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/codex-storage/go-codex/errors"
	"github.com/codex-storage/go-codex/internal/native"
)

// Node owns one native codex node. The native context is reachable
// only through this type; releasing it happens exactly once, on the
// first Close (or, as a backstop, when an abandoned Node is collected).
//
// A Node is safe for concurrent use. The native library is not
// documented thread-safe, so all calls on one node are serialized
// internally; independent nodes do not contend.
type Node struct {
	inner   *nodeInner
	cleanup runtime.Cleanup
}

// nodeInner carries the native context so the cleanup can release it
// without keeping the Node itself reachable.
type nodeInner struct {
	lib native.Lib

	// mu serializes every native call on this node and is held across
	// the completion wait, which also preserves issue order for the
	// operations libcodex documents as sequential (upload chunks).
	mu      sync.Mutex
	ctx     native.Ctx
	started bool

	closed    atomic.Bool
	closeOnce sync.Once
}

// New constructs a node from config without starting it. The returned
// node owns its native context; callers must Close it.
func New(ctx context.Context, cfg Config) (*Node, error) {
	return newNode(ctx, cfg, native.Default())
}

// Open constructs and starts a node. On success the node is running
// and ready for content and peer operations.
func Open(ctx context.Context, cfg Config) (*Node, error) {
	n, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := n.Start(ctx); err != nil {
		// Roll back construction; the caller never saw the handle.
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		_ = n.Close(closeCtx)
		return nil, err
	}
	return n, nil
}

func newNode(ctx context.Context, cfg Config, lib native.Lib) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfgJSON, err := cfg.json()
	if err != nil {
		return nil, err
	}

	op := native.NewOperation("new")
	nctx, err := lib.New(cfgJSON, op)
	if err != nil {
		return nil, err
	}
	if _, err := op.Wait(ctx); err != nil {
		if errors.IsCancelled(err) {
			// The constructor is still running on a native thread
			// against this context; destroying it now would race.
			// Release only after its terminal callback arrives.
			go func() {
				<-op.Done()
				lib.Destroy(nctx)
				Logger().Debug("abandoned constructor context destroyed")
			}()
			return nil, err
		}
		// Construction was accepted but reported failure; the
		// context it returned is released here and never escapes.
		lib.Destroy(nctx)
		return nil, err
	}

	inner := &nodeInner{lib: lib, ctx: nctx}
	n := &Node{inner: inner}
	n.cleanup = runtime.AddCleanup(n, releaseAbandoned, inner)

	Logger().Debug("node constructed", zap.String("dataDir", cfg.DataDir))
	return n, nil
}

// closeTimeout bounds the native stop/close handshake during Close and
// abandoned-node cleanup.
const closeTimeout = 30 * time.Second

// releaseAbandoned is the cleanup for nodes that became unreachable
// without Close. The sync.Once inside close makes this a no-op when
// Close already ran.
func releaseAbandoned(inner *nodeInner) {
	if !inner.closed.Load() {
		Logger().Warn("node abandoned without Close; releasing native context")
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	inner.close(ctx)
}

// Start starts the node and connects it to the network.
func (n *Node) Start(ctx context.Context) error {
	return n.inner.transition(ctx, "start", false, true)
}

// Stop disconnects the node from the network. The node can be started
// again afterwards.
func (n *Node) Stop(ctx context.Context) error {
	return n.inner.transition(ctx, "stop", true, false)
}

// Started reports whether the node is currently running.
func (n *Node) Started() bool {
	n.inner.mu.Lock()
	defer n.inner.mu.Unlock()
	return n.inner.started
}

// Close stops the node if it is running and releases the native
// context. Exactly one native destruction happens no matter how many
// times Close is called; calls after the first are no-ops returning
// nil, so explicit and deferred cleanup paths compose.
//
// If ctx expires before the native shutdown completes, Close returns
// the cancellation but the context is released only once the native
// side reports completion, in the background.
func (n *Node) Close(ctx context.Context) error {
	err := n.inner.close(ctx)
	n.cleanup.Stop()
	return err
}

func (inner *nodeInner) close(ctx context.Context) error {
	var err error
	inner.closeOnce.Do(func() {
		// Fence off new operations before touching the native side.
		inner.closed.Store(true)

		inner.mu.Lock()
		defer inner.mu.Unlock()

		// A cancelled wait leaves the native operation running
		// against the context; destruction then has to wait for its
		// terminal callback.
		var pending *native.Operation

		if inner.started {
			op := native.NewOperation("stop")
			if stopErr := inner.lib.Stop(inner.ctx, op); stopErr != nil {
				err = stopErr
			} else if _, stopErr = op.Wait(ctx); stopErr != nil {
				err = stopErr
				if errors.IsCancelled(stopErr) {
					pending = op
				}
			}
			inner.started = false
		}

		// Issuing the native close while stop is still in flight
		// would race on the native side; skip it and let the
		// deferred destruction clean up.
		if pending == nil {
			op := native.NewOperation("close")
			if closeErr := inner.lib.Close(inner.ctx, op); closeErr != nil {
				if err == nil {
					err = closeErr
				}
			} else if _, closeErr = op.Wait(ctx); closeErr != nil {
				if err == nil {
					err = closeErr
				}
				if errors.IsCancelled(closeErr) {
					pending = op
				}
			}
		}

		nctx := inner.ctx
		inner.ctx = nil
		if pending == nil {
			inner.lib.Destroy(nctx)
			Logger().Debug("node destroyed")
			return
		}
		go func() {
			<-pending.Done()
			inner.lib.Destroy(nctx)
			Logger().Debug("node destroyed after detached shutdown")
		}()
	})
	return err
}

// transition moves the node between stopped and started under the
// node lock.
func (inner *nodeInner) transition(ctx context.Context, name string, wantStarted, to bool) error {
	if inner.closed.Load() {
		return errors.HandleClosed(name)
	}
	inner.mu.Lock()
	defer inner.mu.Unlock()
	if inner.closed.Load() {
		return errors.HandleClosed(name)
	}
	if inner.started != wantStarted {
		if wantStarted {
			return errors.InvalidParameter(name, "node is not started")
		}
		return errors.InvalidParameter(name, "node is already started")
	}

	op := native.NewOperation(name)
	var err error
	if to {
		err = inner.lib.Start(inner.ctx, op)
	} else {
		err = inner.lib.Stop(inner.ctx, op)
	}
	if err != nil {
		return err
	}
	if _, err := op.Wait(ctx); err != nil {
		return err
	}
	inner.started = to
	return nil
}

// call issues one native operation under the node lock and waits for
// its completion. configure, when non-nil, runs on the slot before the
// call is issued (progress sinks).
func (inner *nodeInner) call(ctx context.Context, name string, configure func(*native.Operation), fn func(native.Ctx, *native.Operation) error) (string, error) {
	if inner.closed.Load() {
		return "", errors.HandleClosed(name)
	}
	inner.mu.Lock()
	defer inner.mu.Unlock()
	if inner.closed.Load() {
		return "", errors.HandleClosed(name)
	}

	op := native.NewOperation(name)
	if configure != nil {
		configure(op)
	}
	if err := fn(inner.ctx, op); err != nil {
		return "", err
	}
	return op.Wait(ctx)
}

// Version returns the native library's version string.
func (n *Node) Version(ctx context.Context) (string, error) {
	return n.inner.call(ctx, "version", nil, n.inner.lib.Version)
}

// Revision returns the native library's source revision.
func (n *Node) Revision(ctx context.Context) (string, error) {
	return n.inner.call(ctx, "revision", nil, n.inner.lib.Revision)
}

// Repo returns the node's repository path.
func (n *Node) Repo(ctx context.Context) (string, error) {
	return n.inner.call(ctx, "repo", nil, n.inner.lib.Repo)
}

// SPR returns the node's signed peer record.
func (n *Node) SPR(ctx context.Context) (string, error) {
	return n.inner.call(ctx, "spr", nil, n.inner.lib.SPR)
}

// PeerID returns the node's peer id.
func (n *Node) PeerID(ctx context.Context) (string, error) {
	return n.inner.call(ctx, "peerId", nil, n.inner.lib.PeerID)
}
