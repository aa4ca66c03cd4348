package eventqueue

import (
	"context"
	"fmt"
	"sync"
)

var (
	// ErrEmpty is returned by TryRecv when nothing is queued.
	// It is a loop-control condition, not a failure.
	ErrEmpty = fmt.Errorf("eventqueue: empty")

	// ErrDisconnected is returned once the queue is closed and drained.
	// It means the owner is being torn down and must not be retried.
	ErrDisconnected = fmt.Errorf("eventqueue: disconnected")
)

// Queue is an unbounded FIFO queue. Any number of goroutines may Send;
// receivers may race, but each event is delivered exactly once.
type Queue[Ev any] struct {
	mu     sync.Mutex
	items  []Ev
	head   int
	closed bool
	ready  chan struct{}
	done   chan struct{}
}

func New[Ev any]() *Queue[Ev] {
	return &Queue[Ev]{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Send enqueues ev. It never blocks.
func (q *Queue[Ev]) Send(ev Ev) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrDisconnected
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.notify()
	return nil
}

// TryRecv removes and returns the oldest event without waiting.
func (q *Queue[Ev]) TryRecv() (Ev, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero Ev
	if q.lenLocked() == 0 {
		if q.closed {
			return zero, ErrDisconnected
		}
		return zero, ErrEmpty
	}
	ev := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > len(q.items)/2 {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	if q.lenLocked() > 0 {
		// Hand the wake-up over to the next waiting receiver.
		q.notify()
	}
	return ev, nil
}

// Recv removes and returns the oldest event, waiting for one if necessary.
// Events queued before Close are still returned; after that Recv
// returns ErrDisconnected.
func (q *Queue[Ev]) Recv(ctx context.Context) (Ev, error) {
	for {
		ev, err := q.TryRecv()
		if err != ErrEmpty {
			return ev, err
		}
		if err := q.Wait(ctx); err != nil {
			var zero Ev
			return zero, err
		}
	}
}

// Wait blocks until the queue is non-empty or closed, or ctx is done.
// It does not consume anything.
func (q *Queue[Ev]) Wait(ctx context.Context) error {
	for {
		if q.readyOrClosed() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case <-q.ready:
			if q.readyOrClosed() {
				// Pass the token on, another receiver may be parked too.
				q.notify()
				return nil
			}
		}
	}
}

// Close drops the sending half. It is safe to call more than once.
func (q *Queue[Ev]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *Queue[Ev]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue[Ev]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *Queue[Ev]) readyOrClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed || q.lenLocked() > 0
}

func (q *Queue[Ev]) lenLocked() int {
	return len(q.items) - q.head
}

func (q *Queue[Ev]) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
