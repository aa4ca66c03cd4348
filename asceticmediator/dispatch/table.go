package dispatch

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/pkg/errors"
)

var ErrHandlerNotRegistered = fmt.Errorf("mediator: handler not registered")

// Table resolves a request type to its single handler. Builders fill it,
// mediators only read it.
type Table[S any] struct {
	handlers           map[reflect.Type]HandlerFunc[S]
	broadcastPipelines []Pipeline
	pipelines          map[reflect.Type][]Pipeline
}

func NewTable[S any]() *Table[S] {
	return &Table[S]{
		handlers:  make(map[reflect.Type]HandlerFunc[S]),
		pipelines: make(map[reflect.Type][]Pipeline),
	}
}

// Clone returns a copy that shares no mutable state with t.
func (t *Table[S]) Clone() *Table[S] {
	pipelines := make(map[reflect.Type][]Pipeline, len(t.pipelines))
	for k, v := range t.pipelines {
		pipelines[k] = slices.Clone(v)
	}
	return &Table[S]{
		handlers:           maps.Clone(t.handlers),
		broadcastPipelines: slices.Clone(t.broadcastPipelines),
		pipelines:          pipelines,
	}
}

// Set binds handler to reqType and reports whether it replaced another one.
func (t *Table[S]) Set(reqType reflect.Type, handler HandlerFunc[S]) bool {
	_, replaced := t.handlers[reqType]
	t.handlers[reqType] = handler
	return replaced
}

func (t *Table[S]) Len() int {
	return len(t.handlers)
}

func (t *Table[S]) AddPipelineFor(reqType reflect.Type, pipeline Pipeline) {
	t.pipelines[reqType] = append(t.pipelines[reqType], pipeline)
}

// AddBroadcastPipeline adds a pipeline that wraps all request types.
func (t *Table[S]) AddBroadcastPipeline(pipeline Pipeline) {
	t.broadcastPipelines = append(t.broadcastPipelines, pipeline)
}

// Dispatch runs the handler bound to reqType inside its pipelines.
// Broadcast pipelines are outermost; the first added pipeline wraps the rest.
func (t *Table[S]) Dispatch(ctx context.Context, scope S, reqType reflect.Type, request any) error {
	handler, ok := t.handlers[reqType]
	if !ok {
		return errors.Wrapf(ErrHandlerNotRegistered, "request type %v", reqType)
	}

	var current Next = func(ctx context.Context, request any) error {
		return handler(ctx, scope, request)
	}
	typed := t.pipelines[reqType]
	all := make([]Pipeline, 0, len(t.broadcastPipelines)+len(typed))
	all = append(all, t.broadcastPipelines...)
	all = append(all, typed...)
	for i := len(all) - 1; i >= 0; i-- {
		current = wrapPipeline(all[i], current)
	}
	return current(ctx, request)
}

func wrapPipeline(pipeline Pipeline, next Next) Next {
	return func(ctx context.Context, request any) error {
		return pipeline(ctx, request, next)
	}
}

// --- Typed free functions ---

// Register binds a typed handler to requests of type Req.
func Register[S, Req any](t *Table[S], handler RequestHandler[S, Req]) bool {
	return t.Set(reflect.TypeFor[Req](), func(ctx context.Context, scope S, request any) error {
		return handler(ctx, scope, request.(Req))
	})
}

// AddPipeline adds a typed pipeline for requests of type Req.
func AddPipeline[S, Req any](t *Table[S], pipeline RequestPipeline[Req]) {
	t.AddPipelineFor(reflect.TypeFor[Req](), func(ctx context.Context, request any, next Next) error {
		return pipeline(ctx, request.(Req), func(ctx context.Context, r Req) error {
			return next(ctx, r)
		})
	})
}

// Send dispatches request to the handler registered for Req.
func Send[S, Req any](ctx context.Context, t *Table[S], scope S, request Req) error {
	return t.Dispatch(ctx, scope, reflect.TypeFor[Req](), request)
}

// TypeName is the label used for Req in logs and metrics.
func TypeName[Req any]() string {
	return reflect.TypeFor[Req]().String()
}
