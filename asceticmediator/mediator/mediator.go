package mediator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/eventqueue"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/observability"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/signals"
)

// Mediator is the synchronous mediator for events of type Ev.
//
// Requests go in through Send and are processed by the handler registered
// for their type on the Builder. Handlers Publish events into an unbounded
// FIFO queue. Listeners run only when the caller drains the queue with Next,
// NextBlocking, Drain or Run; publishing never calls them directly.
//
// The queue is safe for concurrent use. Listeners and handlers are fixed at
// Build and never change afterwards.
type Mediator[Ev any] struct {
	id        uuid.UUID
	queue     *eventqueue.Queue[Ev]
	listeners signals.Signal[Ev]
	handlers  *dispatch.Table[*Mediator[Ev]]
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

func (m *Mediator[Ev]) ID() uuid.UUID {
	return m.id
}

func (m *Mediator[Ev]) Logger() *slog.Logger {
	return m.logger
}

func (m *Mediator[Ev]) Metrics() observability.MetricsRecorder {
	return m.metrics
}

// Publish enqueues event. It never blocks and never runs listeners.
// After Close the event is dropped.
func (m *Mediator[Ev]) Publish(event Ev) {
	if err := m.queue.Send(event); err != nil {
		observability.LogEventDropped(m.logger, event)
		return
	}
	m.metrics.RecordPublish(context.Background())
}

// Next removes the oldest event and hands it to every listener.
// It returns ErrEmpty without waiting when nothing is queued, and
// ErrDisconnected once the mediator is closed and drained.
func (m *Mediator[Ev]) Next() error {
	event, err := m.queue.TryRecv()
	if err != nil {
		return err
	}
	m.notify(context.Background(), event)
	return nil
}

// NextBlocking is Next that waits for an event instead of returning ErrEmpty.
func (m *Mediator[Ev]) NextBlocking(ctx context.Context) error {
	event, err := m.queue.Recv(ctx)
	if err != nil {
		return err
	}
	m.notify(ctx, event)
	return nil
}

// Drain calls Next until the queue is empty and returns how many events
// were dispatched.
func (m *Mediator[Ev]) Drain() (int, error) {
	n := 0
	for {
		err := m.Next()
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

// Run dispatches events as they arrive until ctx is done or the mediator
// is closed and drained. Closing is a normal stop and returns nil.
func (m *Mediator[Ev]) Run(ctx context.Context) error {
	return RunLoop(ctx, m.logger, m.NextBlocking)
}

// Wait blocks until an event is pending or the mediator is closed.
func (m *Mediator[Ev]) Wait(ctx context.Context) error {
	return m.queue.Wait(ctx)
}

// Close drops the sending half of the queue. Already queued events can
// still be drained; blocked NextBlocking calls wake up.
func (m *Mediator[Ev]) Close() error {
	m.queue.Close()
	return nil
}

func (m *Mediator[Ev]) Pending() int {
	return m.queue.Len()
}

// Closed reports whether Close has been called.
func (m *Mediator[Ev]) Closed() bool {
	return m.queue.Closed()
}

func (m *Mediator[Ev]) Listeners() int {
	return m.listeners.Len()
}

func (m *Mediator[Ev]) notify(ctx context.Context, event Ev) {
	m.listeners.Notify(event)
	m.metrics.RecordDispatch(ctx, m.listeners.Len())
}

// Send hands request to the handler registered for Req on m's builder.
// ErrHandlerNotRegistered is returned when there is none.
func Send[Ev, Req any](m *Mediator[Ev], request Req) error {
	ctx := context.Background()
	return observability.ObserveRequest(ctx, m.logger, m.metrics, dispatch.TypeName[Req](), func() error {
		return dispatch.Send(ctx, m.handlers, m, request)
	})
}

// RunLoop drives next until ctx is done or the queue is disconnected.
// Wrapping mediators reuse it for their own Run.
func RunLoop(ctx context.Context, logger *slog.Logger, next func(context.Context) error) error {
	observability.LogRunStarted(logger)
	n := 0
	for {
		err := next(ctx)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrDisconnected):
			observability.LogRunStopped(logger, n, nil)
			return nil
		default:
			observability.LogRunStopped(logger, n, err)
			return err
		}
	}
}
