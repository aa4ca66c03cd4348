// Package contextual provides a mediator whose request handlers share one
// dependency, for example a repository or a client. Handlers run one at a
// time while holding the dependency lock; events flow through an async
// mediator with its own lock, so listeners and publishers never wait on a
// running handler.
package contextual

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/lock"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/mediator/async"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/observability"
)

// Mediator serializes request handlers around one shared dependency.
// The dependency lock and the event lock are never held in opposite order:
// Send holds the dependency lock and its handler's Publish takes the event
// lock, while Next and listeners take only the event lock.
type Mediator[Dep, Ev any] struct {
	events    *async.Mediator[Ev]
	dep       *lock.Guarded[Dep]
	handlers  *dispatch.Table[scope[Dep, Ev]]
	depClosed bool
}

type scope[Dep, Ev any] struct {
	mediator *Mediator[Dep, Ev]
	dep      Dep
}

func (m *Mediator[Dep, Ev]) ID() uuid.UUID {
	return m.events.ID()
}

func (m *Mediator[Dep, Ev]) Logger() *slog.Logger {
	return m.events.Logger()
}

func (m *Mediator[Dep, Ev]) Publish(ctx context.Context, event Ev) error {
	return m.events.Publish(ctx, event)
}

func (m *Mediator[Dep, Ev]) Next(ctx context.Context) error {
	return m.events.Next(ctx)
}

func (m *Mediator[Dep, Ev]) NextBlocking(ctx context.Context) error {
	return m.events.NextBlocking(ctx)
}

func (m *Mediator[Dep, Ev]) Drain(ctx context.Context) (int, error) {
	return m.events.Drain(ctx)
}

func (m *Mediator[Dep, Ev]) Run(ctx context.Context) error {
	return m.events.Run(ctx)
}

func (m *Mediator[Dep, Ev]) Pending() int {
	return m.events.Pending()
}

// UpdateDependency runs fn with exclusive access to the dependency.
func (m *Mediator[Dep, Ev]) UpdateDependency(ctx context.Context, fn func(*Dep) error) error {
	return m.dep.Update(ctx, fn)
}

// Close disconnects the event queue and, once no handler is running,
// closes the dependency if it is an io.Closer. Only the first call closes
// the dependency.
func (m *Mediator[Dep, Ev]) Close() error {
	var result *multierror.Error
	if err := m.events.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	err := m.dep.Update(context.Background(), func(dep *Dep) error {
		if m.depClosed {
			return nil
		}
		m.depClosed = true
		if closer, ok := any(*dep).(io.Closer); ok {
			return errors.Wrap(closer.Close(), "contextual: close dependency")
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Send runs the handler registered for Req while holding the dependency
// lock. If ctx ends before the lock is acquired nothing runs. After Close
// it returns ErrDisconnected without running the handler.
func Send[Dep, Ev, Req any](ctx context.Context, m *Mediator[Dep, Ev], request Req) error {
	return observability.ObserveRequest(ctx, m.events.Logger(), m.events.Metrics(), dispatch.TypeName[Req](), func() error {
		return m.dep.Read(ctx, func(dep Dep) error {
			if m.events.Closed() {
				return ErrDisconnected
			}
			return dispatch.Send(ctx, m.handlers, scope[Dep, Ev]{mediator: m, dep: dep}, request)
		})
	})
}
