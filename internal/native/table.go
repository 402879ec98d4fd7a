package native

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// operationTable tracks in-flight operations process-wide. Entries are
// inserted when a slot is registered and removed by the terminal
// callback, so the table's contents are exactly the calls the native
// side still owes a completion for.
type operationTable struct {
	mu  sync.RWMutex
	ops map[uuid.UUID]*Operation
}

var inflight = &operationTable{ops: make(map[uuid.UUID]*Operation)}

func (t *operationTable) insert(op *Operation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops[op.id] = op
}

func (t *operationTable) remove(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ops, id)
}

func (t *operationTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ops)
}

// handleSet tracks the callback tokens currently registered with the
// native side. The contract promises exactly one terminal callback per
// token; a duplicate looks its token up here, finds it gone, and is
// discarded instead of dereferencing a deleted handle.
type handleSet struct {
	mu sync.Mutex
	m  map[uintptr]*Operation
}

var liveHandles = &handleSet{m: make(map[uintptr]*Operation)}

func (s *handleSet) add(key uintptr, op *Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = op
}

// get returns the operation for a token that is still live.
func (s *handleSet) get(key uintptr) (*Operation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.m[key]
	return op, ok
}

// take removes and returns the operation for a token. Removal is
// atomic with the lookup, so racing duplicate terminals resolve to
// exactly one winner.
func (s *handleSet) take(key uintptr) (*Operation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.m[key]
	delete(s.m, key)
	return op, ok
}

// OperationInfo is a diagnostic snapshot of one in-flight operation.
type OperationInfo struct {
	ID       uuid.UUID
	Name     string
	Age      time.Duration
	Detached bool
}

// PendingOperations returns a snapshot of every operation the native
// side has not yet completed. Diagnostic only: the snapshot is stale as
// soon as it is taken.
func PendingOperations() []OperationInfo {
	inflight.mu.RLock()
	defer inflight.mu.RUnlock()

	now := time.Now()
	infos := make([]OperationInfo, 0, len(inflight.ops))
	for _, op := range inflight.ops {
		infos = append(infos, OperationInfo{
			ID:       op.id,
			Name:     op.name,
			Age:      now.Sub(op.started),
			Detached: op.detached.Load(),
		})
	}
	return infos
}
