package lock

import "context"

// Guarded owns a value that is only reachable while its Mutex is held.
// The lock is released on every exit path of the callback, panics included.
type Guarded[T any] struct {
	mu    *Mutex
	value T
}

func NewGuarded[T any](value T) *Guarded[T] {
	return &Guarded[T]{mu: NewMutex(), value: value}
}

// Read runs fn with a copy of the value under the lock.
func (g *Guarded[T]) Read(ctx context.Context, fn func(T) error) error {
	if err := g.mu.Lock(ctx); err != nil {
		return err
	}
	defer g.mu.Unlock()
	return fn(g.value)
}

// Update runs fn with a pointer to the value under the lock.
func (g *Guarded[T]) Update(ctx context.Context, fn func(*T) error) error {
	if err := g.mu.Lock(ctx); err != nil {
		return err
	}
	defer g.mu.Unlock()
	return fn(&g.value)
}
