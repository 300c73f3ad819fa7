package syncx

import (
	"context"
	"errors"
)

// ErrNotHeld is returned by Release when the semaphore is not held.
var ErrNotHeld = errors.New("semaphore not held")

// Semaphore is a binary semaphore guarding a single in-flight operation.
// Unlike sync.Mutex, Release may legally be called from a goroutine other
// than the one that acquired it; the movement pipeline relies on this
// hand-off between the command follower and the acknowledgment worker.
type Semaphore struct {
	token chan struct{}
}

// NewSemaphore creates a released semaphore.
func NewSemaphore() *Semaphore {
	return &Semaphore{token: make(chan struct{}, 1)}
}

// Acquire blocks until the semaphore is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.token <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the semaphore. Releasing an unheld semaphore returns
// ErrNotHeld instead of corrupting state.
func (s *Semaphore) Release() error {
	select {
	case <-s.token:
		return nil
	default:
		return ErrNotHeld
	}
}

// Held reports whether the semaphore is currently acquired.
func (s *Semaphore) Held() bool { return len(s.token) == 1 }
