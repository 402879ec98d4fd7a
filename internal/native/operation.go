package native

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codex-storage/go-codex/errors"
)

// Operation is the completion slot for one in-flight native call. It is
// created and registered before the call is issued, filled at most once
// by the native callback thread, and awaited by exactly one goroutine.
//
// The slot outlives a detached waiter: cancelling Wait does not
// unregister the operation, because the native side may still fire the
// callback. The terminal callback is the single point that releases the
// slot's registration.
type Operation struct {
	id       uuid.UUID
	name     string
	started  time.Time
	done     chan struct{}
	once     sync.Once
	detached atomic.Bool
	extras   atomic.Int32

	// onProgress receives copied payload bytes from RET_PROGRESS
	// callbacks. Set before the native call is issued, never after.
	onProgress func([]byte)

	// set exactly once, before done is closed
	code    int
	message string
}

// NewOperation registers a fresh completion slot under the given
// operation name and returns it. The slot is tracked in the in-flight
// table until its terminal callback fires.
func NewOperation(name string) *Operation {
	op := &Operation{
		id:      uuid.New(),
		name:    name,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	inflight.insert(op)
	return op
}

// ID returns the operation's unique id.
func (o *Operation) ID() uuid.UUID { return o.id }

// Name returns the operation name, e.g. "start" or "download.chunk".
func (o *Operation) Name() string { return o.name }

// OnProgress installs a sink for RET_PROGRESS payloads. Must be called
// before the native call is issued.
func (o *Operation) OnProgress(fn func([]byte)) { o.onProgress = fn }

// Done returns a channel that is closed once the terminal callback has
// fired. Detached waiters use it to sequence cleanup that must not run
// while the native operation is still in flight.
func (o *Operation) Done() <-chan struct{} { return o.done }

// Complete fills the slot. The first invocation wins; any further
// invocation is a native-contract violation that is logged and
// discarded, never surfaced as a second result.
func (o *Operation) Complete(code int, message string) {
	fired := false
	o.once.Do(func() {
		o.code = code
		o.message = message
		close(o.done)
		inflight.remove(o.id)
		fired = true
	})
	if !fired {
		n := o.extras.Add(1)
		Logger().Warn("discarding extra native callback",
			zap.String("op", o.name),
			zap.String("id", o.id.String()),
			zap.Int("code", code),
			zap.Int32("extra", n))
	}
}

// Progress delivers a payload from a RET_PROGRESS callback. Payloads
// arriving after the waiter detached are discarded: the sink may
// reference state the caller has already abandoned.
func (o *Operation) Progress(chunk []byte) {
	if o.detached.Load() {
		Logger().Debug("discarding progress after detach",
			zap.String("op", o.name),
			zap.Int("bytes", len(chunk)))
		return
	}
	if o.onProgress != nil {
		o.onProgress(chunk)
	}
}

// Wait suspends the calling goroutine until the slot is filled or ctx
// is done. On completion it returns the native message and the mapped
// error for the native code. On cancellation it detaches the waiter and
// returns OperationCancelled; the native operation continues in the
// background and its eventual result is discarded.
func (o *Operation) Wait(ctx context.Context) (string, error) {
	select {
	case <-o.done:
		return o.message, errors.FromCode(o.name, o.code, o.message)
	case <-ctx.Done():
		o.detached.Store(true)
		return "", errors.Cancelled(o.name, ctx.Err())
	}
}

// Detached reports whether the waiter gave up on this operation.
func (o *Operation) Detached() bool { return o.detached.Load() }

// abort completes the slot locally when the native call was never
// accepted (non-zero issue return), so the slot does not linger in the
// in-flight table.
func (o *Operation) abort(code int, message string) {
	o.Complete(code, message)
}
