package codex

import (
	"time"
	"weak"
)

// Ref is a diagnostic back-reference to a Node. It observes the node
// without owning it: holding a Ref neither keeps the native context
// alive nor ever releases it.
type Ref struct {
	ptr     weak.Pointer[Node]
	created time.Time
}

// Ref returns a weak diagnostic reference to the node.
func (n *Node) Ref() *Ref {
	return &Ref{ptr: weak.Make(n), created: time.Now()}
}

// Alive reports whether the referenced node still exists and has not
// been closed.
func (r *Ref) Alive() bool {
	n := r.ptr.Value()
	return n != nil && !n.inner.closed.Load()
}

// Node returns a strong reference to the node, or nil if it has been
// collected.
func (r *Ref) Node() *Node {
	return r.ptr.Value()
}

// Age returns how long ago the reference was taken.
func (r *Ref) Age() time.Duration {
	return time.Since(r.created)
}
