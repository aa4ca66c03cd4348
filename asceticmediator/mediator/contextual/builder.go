package contextual

import (
	"context"
	"log/slog"
	"slices"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/lock"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/mediator/async"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/observability"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/option"
)

// Builder assembles a Mediator around a dependency of type Dep. It is a
// copy-on-write value; the zero value has no dependency and fails to Build.
type Builder[Dep, Ev any] struct {
	events   async.Builder[Ev]
	dep      option.Option[Dep]
	handlers *dispatch.Table[scope[Dep, Ev]]
	replaced []string
}

func NewBuilder[Dep, Ev any]() Builder[Dep, Ev] {
	return Builder[Dep, Ev]{dep: option.Nothing[Dep]()}
}

// AddDependency sets the dependency. Calling it again replaces the value.
func (b Builder[Dep, Ev]) AddDependency(dep Dep) Builder[Dep, Ev] {
	b.dep = option.Some(dep)
	return b
}

func (b Builder[Dep, Ev]) AddListener(listener Listener[Ev]) Builder[Dep, Ev] {
	b.events = b.events.AddListener(listener)
	return b
}

func (b Builder[Dep, Ev]) WithLogger(logger *slog.Logger) Builder[Dep, Ev] {
	b.events = b.events.WithLogger(logger)
	return b
}

func (b Builder[Dep, Ev]) WithMetrics(metrics observability.MetricsRecorder) Builder[Dep, Ev] {
	b.events = b.events.WithMetrics(metrics)
	return b
}

func (b Builder[Dep, Ev]) WithPipeline(pipeline dispatch.Pipeline) Builder[Dep, Ev] {
	b.handlers = b.cloneHandlers()
	b.handlers.AddBroadcastPipeline(pipeline)
	return b
}

// Build fails with ErrMissingDependency if no dependency was added.
func (b Builder[Dep, Ev]) Build() (*Mediator[Dep, Ev], error) {
	dep, err := b.dep.OkOr(ErrMissingDependency)
	if err != nil {
		return nil, err
	}
	events := b.events.Build()
	for _, requestType := range b.replaced {
		observability.LogHandlerReplaced(events.Logger(), requestType)
	}
	return &Mediator[Dep, Ev]{
		events:   events,
		dep:      lock.NewGuarded(dep),
		handlers: b.cloneHandlers(),
	}, nil
}

func (b Builder[Dep, Ev]) cloneHandlers() *dispatch.Table[scope[Dep, Ev]] {
	if b.handlers == nil {
		return dispatch.NewTable[scope[Dep, Ev]]()
	}
	return b.handlers.Clone()
}

// Register binds handler to requests of type Req, replacing any earlier one.
func Register[Dep, Ev, Req any](b Builder[Dep, Ev], handler RequestHandler[Dep, Ev, Req]) Builder[Dep, Ev] {
	b.handlers = b.cloneHandlers()
	replaced := dispatch.Register(b.handlers, func(ctx context.Context, s scope[Dep, Ev], request Req) error {
		return handler(ctx, s.mediator, request, s.dep)
	})
	if replaced {
		b.replaced = append(slices.Clone(b.replaced), dispatch.TypeName[Req]())
	}
	return b
}

func AddRequestPipeline[Dep, Ev, Req any](b Builder[Dep, Ev], pipeline dispatch.RequestPipeline[Req]) Builder[Dep, Ev] {
	b.handlers = b.cloneHandlers()
	dispatch.AddPipeline(b.handlers, pipeline)
	return b
}
