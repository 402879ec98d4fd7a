package codex

import (
	"context"
	"testing"
)

func TestRefObservesWithoutOwning(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)

	ref := n.Ref()
	if !ref.Alive() {
		t.Error("Alive() = false for a live node")
	}
	if ref.Node() != n {
		t.Error("Node() did not return the referenced node")
	}

	if err := n.Close(ctx); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	// The reference observes the close but never triggered it.
	if ref.Alive() {
		t.Error("Alive() = true after Close")
	}
	if got := lib.destroyCount(); got != 1 {
		t.Errorf("destroy count = %d, want 1", got)
	}
}
