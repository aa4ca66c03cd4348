package lock

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// Mutex is a mutual-exclusion lock whose Lock parks the calling goroutine
// and gives up when ctx is done. Acquisition is all-or-nothing: a failed
// Lock leaves the mutex unchanged. It is not re-entrant.
type Mutex struct {
	sem *semaphore.Weighted
}

func NewMutex() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

func (m *Mutex) Lock(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "lock: acquire")
	}
	return nil
}

func (m *Mutex) TryLock() bool {
	return m.sem.TryAcquire(1)
}

// Unlock panics if m is not locked.
func (m *Mutex) Unlock() {
	m.sem.Release(1)
}
