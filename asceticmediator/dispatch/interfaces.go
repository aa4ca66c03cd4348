package dispatch

import "context"

// HandlerFunc handles a request already resolved by type. Scope is whatever
// the owning mediator hands to its handlers.
type HandlerFunc[S any] = func(ctx context.Context, scope S, request any) error

// RequestHandler handles a request of type Req.
type RequestHandler[S, Req any] = func(ctx context.Context, scope S, request Req) error

// Next continues a pipeline chain.
type Next = func(ctx context.Context, request any) error

// Pipeline wraps request execution with cross-cutting concerns.
type Pipeline = func(ctx context.Context, request any, next Next) error

// RequestPipeline wraps execution of requests of type Req only.
type RequestPipeline[Req any] = func(ctx context.Context, request Req, next func(context.Context, Req) error) error
