// Package async wraps the synchronous mediator in a context-aware lock so
// it can be shared between goroutines. Every operation that touches the
// inner mediator first acquires the lock; acquisition honours ctx and is
// all-or-nothing, so a cancelled call leaves no trace.
package async

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/lock"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/mediator"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/observability"
)

// Mediator is a mediator.Mediator shared between goroutines. Publish and
// Next take its lock; Send runs handlers outside it.
type Mediator[Ev any] struct {
	inner    *lock.Guarded[*mediator.Mediator[Ev]]
	basic    *mediator.Mediator[Ev]
	handlers *dispatch.Table[*Mediator[Ev]]
}

func (m *Mediator[Ev]) ID() uuid.UUID {
	return m.basic.ID()
}

func (m *Mediator[Ev]) Logger() *slog.Logger {
	return m.basic.Logger()
}

func (m *Mediator[Ev]) Metrics() observability.MetricsRecorder {
	return m.basic.Metrics()
}

// Publish enqueues event under the lock.
func (m *Mediator[Ev]) Publish(ctx context.Context, event Ev) error {
	return m.inner.Read(ctx, func(inner *mediator.Mediator[Ev]) error {
		inner.Publish(event)
		return nil
	})
}

// Next dispatches the oldest event under the lock. Listeners run while the
// lock is held, so they must not call back into m.
func (m *Mediator[Ev]) Next(ctx context.Context) error {
	return m.inner.Read(ctx, func(inner *mediator.Mediator[Ev]) error {
		return inner.Next()
	})
}

// NextBlocking waits for an event and dispatches it. The lock is released
// while waiting so publishers are never starved.
func (m *Mediator[Ev]) NextBlocking(ctx context.Context) error {
	for {
		err := m.Next(ctx)
		if !errors.Is(err, ErrEmpty) {
			return err
		}
		if err := m.basic.Wait(ctx); err != nil {
			return err
		}
	}
}

// Drain dispatches queued events until the queue is empty. The lock is
// taken once per event.
func (m *Mediator[Ev]) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		err := m.Next(ctx)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrEmpty):
			return n, nil
		default:
			return n, err
		}
	}
}

// Run dispatches events until ctx is done or the mediator is closed and
// drained.
func (m *Mediator[Ev]) Run(ctx context.Context) error {
	return mediator.RunLoop(ctx, m.basic.Logger(), m.NextBlocking)
}

// Close disconnects the queue. It does not wait for the lock, so it also
// interrupts a consumer parked in NextBlocking.
func (m *Mediator[Ev]) Close() error {
	return m.basic.Close()
}

func (m *Mediator[Ev]) Pending() int {
	return m.basic.Pending()
}

func (m *Mediator[Ev]) Closed() bool {
	return m.basic.Closed()
}

// Send hands request to the handler registered for Req. The handler runs
// without the mediator lock; only its Publish calls take it.
func Send[Ev, Req any](ctx context.Context, m *Mediator[Ev], request Req) error {
	return observability.ObserveRequest(ctx, m.basic.Logger(), m.basic.Metrics(), dispatch.TypeName[Req](), func() error {
		return dispatch.Send(ctx, m.handlers, m, request)
	})
}
