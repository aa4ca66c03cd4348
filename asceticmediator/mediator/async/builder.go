package async

import (
	"log/slog"
	"slices"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/lock"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/mediator"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/observability"
)

// Builder assembles an async Mediator. Like mediator.Builder it is a value
// with copy-on-write methods and a usable zero value.
type Builder[Ev any] struct {
	basic    mediator.Builder[Ev]
	handlers *dispatch.Table[*Mediator[Ev]]
	replaced []string
}

func NewBuilder[Ev any]() Builder[Ev] {
	return Builder[Ev]{}
}

func (b Builder[Ev]) AddListener(listener Listener[Ev]) Builder[Ev] {
	b.basic = b.basic.AddListener(listener)
	return b
}

func (b Builder[Ev]) WithLogger(logger *slog.Logger) Builder[Ev] {
	b.basic = b.basic.WithLogger(logger)
	return b
}

func (b Builder[Ev]) WithMetrics(metrics observability.MetricsRecorder) Builder[Ev] {
	b.basic = b.basic.WithMetrics(metrics)
	return b
}

func (b Builder[Ev]) WithPipeline(pipeline dispatch.Pipeline) Builder[Ev] {
	b.handlers = b.cloneHandlers()
	b.handlers.AddBroadcastPipeline(pipeline)
	return b
}

func (b Builder[Ev]) Build() *Mediator[Ev] {
	basic := b.basic.Build()
	for _, requestType := range b.replaced {
		observability.LogHandlerReplaced(basic.Logger(), requestType)
	}
	return &Mediator[Ev]{
		inner:    lock.NewGuarded(basic),
		basic:    basic,
		handlers: b.cloneHandlers(),
	}
}

func (b Builder[Ev]) cloneHandlers() *dispatch.Table[*Mediator[Ev]] {
	if b.handlers == nil {
		return dispatch.NewTable[*Mediator[Ev]]()
	}
	return b.handlers.Clone()
}

// Register binds handler to requests of type Req, replacing any earlier one.
func Register[Ev, Req any](b Builder[Ev], handler RequestHandler[Ev, Req]) Builder[Ev] {
	b.handlers = b.cloneHandlers()
	if dispatch.Register(b.handlers, handler) {
		b.replaced = append(slices.Clone(b.replaced), dispatch.TypeName[Req]())
	}
	return b
}

func AddRequestPipeline[Ev, Req any](b Builder[Ev], pipeline dispatch.RequestPipeline[Req]) Builder[Ev] {
	b.handlers = b.cloneHandlers()
	dispatch.AddPipeline(b.handlers, pipeline)
	return b
}
