package syncx

import (
	"context"
	"sync"
)

// Gate is a one-shot gate: closed until Open is called, open forever after.
// It is never re-armed; waiters arriving after Open pass through immediately.
type Gate struct {
	once sync.Once
	open chan struct{}
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{open: make(chan struct{})}
}

// Open opens the gate. Subsequent calls are no-ops.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.open) })
}

// Wait blocks until the gate is open or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Opened reports whether the gate has been opened.
func (g *Gate) Opened() bool {
	select {
	case <-g.open:
		return true
	default:
		return false
	}
}
