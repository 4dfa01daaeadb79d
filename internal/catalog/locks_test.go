package catalog

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProgramLocks_MutualExclusion(t *testing.T) {
	locks := newProgramLocks()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(id)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestProgramLocks_EntriesReleased(t *testing.T) {
	locks := newProgramLocks()

	for i := 0; i < 10; i++ {
		unlock := locks.lock(uuid.New())
		unlock()
	}
	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
