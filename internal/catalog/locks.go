package catalog

import (
	"sync"

	"github.com/google/uuid"
)

// programLocks serializes curriculum writes per program. Position allocation
// reads the current max and inserts max+1, so concurrent appends to the same
// program must not interleave between the read and the write.
type programLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	sync.Mutex
	refs int
}

func newProgramLocks() *programLocks {
	return &programLocks{locks: make(map[uuid.UUID]*entry)}
}

// lock acquires the per-program lock and returns its release function.
// Entries are reference counted so the map does not grow with every program
// ever written to.
func (l *programLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &entry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
