package mediator

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/eventqueue"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/observability"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/signals"
)

// Builder assembles a Mediator. It is a value: every method returns an
// updated copy and never mutates the receiver, so a partially configured
// builder can be branched safely. The zero value is ready to use.
type Builder[Ev any] struct {
	listeners *signals.SignalImp[Ev]
	handlers  *dispatch.Table[*Mediator[Ev]]
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	replaced  []string
}

func NewBuilder[Ev any]() Builder[Ev] {
	return Builder[Ev]{}
}

// AddListener appends listener. Listeners run in the order they were added.
func (b Builder[Ev]) AddListener(listener Listener[Ev]) Builder[Ev] {
	b.listeners = b.cloneListeners()
	b.listeners.Attach(listener)
	return b
}

func (b Builder[Ev]) WithLogger(logger *slog.Logger) Builder[Ev] {
	b.logger = logger
	return b
}

// WithMetrics sets the recorder. Nil disables metrics.
func (b Builder[Ev]) WithMetrics(metrics observability.MetricsRecorder) Builder[Ev] {
	b.metrics = metrics
	return b
}

// WithPipeline wraps every request handler with pipeline.
func (b Builder[Ev]) WithPipeline(pipeline dispatch.Pipeline) Builder[Ev] {
	b.handlers = b.cloneHandlers()
	b.handlers.AddBroadcastPipeline(pipeline)
	return b
}

// Build returns the mediator. It cannot fail.
func (b Builder[Ev]) Build() *Mediator[Ev] {
	logger := b.logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	metrics := b.metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	id := uuid.New()
	logger = observability.EnrichLogger(logger, id)

	m := &Mediator[Ev]{
		id:        id,
		queue:     eventqueue.New[Ev](),
		listeners: b.cloneListeners(),
		handlers:  b.cloneHandlers(),
		logger:    logger,
		metrics:   metrics,
	}
	for _, requestType := range b.replaced {
		observability.LogHandlerReplaced(logger, requestType)
	}
	observability.LogBuilt(logger, m.listeners.Len(), m.handlers.Len())
	return m
}

func (b Builder[Ev]) cloneListeners() *signals.SignalImp[Ev] {
	if b.listeners == nil {
		return signals.NewSignal[Ev]()
	}
	return b.listeners.Clone()
}

func (b Builder[Ev]) cloneHandlers() *dispatch.Table[*Mediator[Ev]] {
	if b.handlers == nil {
		return dispatch.NewTable[*Mediator[Ev]]()
	}
	return b.handlers.Clone()
}

// Register binds handler to requests of type Req. A later registration for
// the same type replaces the earlier one; Build logs a warning for it.
func Register[Ev, Req any](b Builder[Ev], handler RequestHandler[Ev, Req]) Builder[Ev] {
	b.handlers = b.cloneHandlers()
	replaced := dispatch.Register(b.handlers, func(_ context.Context, m *Mediator[Ev], request Req) error {
		return handler(m, request)
	})
	if replaced {
		b.replaced = append(slices.Clone(b.replaced), dispatch.TypeName[Req]())
	}
	return b
}

// AddRequestPipeline wraps the handler for Req with pipeline.
func AddRequestPipeline[Ev, Req any](b Builder[Ev], pipeline dispatch.RequestPipeline[Req]) Builder[Ev] {
	b.handlers = b.cloneHandlers()
	dispatch.AddPipeline(b.handlers, pipeline)
	return b
}
