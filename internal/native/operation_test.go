package native

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codex-storage/go-codex/errors"
)

func TestOperationCompleteOnce(t *testing.T) {
	op := NewOperation("test")
	op.Complete(errors.CodeOK, "first")
	op.Complete(errors.CodeErr, "second")
	op.Complete(errors.CodeErr, "third")

	msg, err := op.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if msg != "first" {
		t.Errorf("msg = %q, want %q (later callbacks must be discarded)", msg, "first")
	}
	if got := op.extras.Load(); got != 2 {
		t.Errorf("extras = %d, want 2", got)
	}
}

func TestOperationWaitMapsNativeError(t *testing.T) {
	op := NewOperation("start")
	op.Complete(7, "disk on fire")

	_, err := op.Wait(context.Background())
	if err == nil {
		t.Fatal("want error for non-zero code")
	}
	code, ok := errors.NativeCode(err)
	if !ok || code != 7 {
		t.Errorf("NativeCode = %d, %v; want 7, true", code, ok)
	}
}

func TestOperationCancelReleasesWaiter(t *testing.T) {
	op := NewOperation("download.chunk")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := op.Wait(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.IsCancelled(err) {
			t.Errorf("Wait after cancel = %v, want cancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled waiter was not released")
	}

	if !op.Detached() {
		t.Error("operation should be marked detached")
	}

	// The native side eventually completes; the late result must be
	// swallowed without disturbing anything.
	op.Complete(errors.CodeOK, "too late")
}

func TestOperationProgressAfterDetachDiscarded(t *testing.T) {
	var (
		mu     sync.Mutex
		chunks [][]byte
	)
	op := NewOperation("download.chunk")
	op.OnProgress(func(b []byte) {
		mu.Lock()
		defer mu.Unlock()
		chunks = append(chunks, b)
	})

	op.Progress([]byte("live"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := op.Wait(ctx); !errors.IsCancelled(err) {
		t.Fatalf("Wait = %v, want cancelled", err)
	}

	// Payloads arriving after detach must not reach the sink: the
	// caller has abandoned whatever the sink writes into.
	op.Progress([]byte("stale"))
	op.Complete(errors.CodeOK, "")

	mu.Lock()
	defer mu.Unlock()
	if len(chunks) != 1 || string(chunks[0]) != "live" {
		t.Errorf("chunks = %q, want only the pre-detach payload", chunks)
	}
}

func TestOperationConcurrentCompletions(t *testing.T) {
	op := NewOperation("race")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(code int) {
			defer wg.Done()
			op.Complete(code, "r")
		}(i)
	}
	wg.Wait()

	// Exactly one completion won; Wait must not hang or panic.
	if _, err := op.Wait(context.Background()); err != nil {
		// Whichever code won is acceptable; only zero maps to nil.
		if _, ok := errors.NativeCode(err); !ok && !errors.IsCancelled(err) {
			t.Errorf("unexpected error type: %v", err)
		}
	}
}

func TestOperationWaitAlreadyDone(t *testing.T) {
	op := NewOperation("noop")
	op.Complete(errors.CodeOK, "ok")

	// A context that is already cancelled must still observe the
	// completed slot or the cancellation; either way it returns
	// promptly.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	_, _ = op.Wait(ctx)
	if time.Since(start) > time.Second {
		t.Error("Wait on a settled operation blocked")
	}
}
