package contextual

import (
	"context"
	"fmt"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/mediator/async"
)

var (
	// ErrMissingDependency is returned by Build when AddDependency was never
	// called.
	ErrMissingDependency = fmt.Errorf("contextual: missing dependency")

	ErrEmpty                = async.ErrEmpty
	ErrDisconnected         = async.ErrDisconnected
	ErrHandlerNotRegistered = async.ErrHandlerNotRegistered
)

type Listener[Ev any] = async.Listener[Ev]

// RequestHandler handles a request of type Req with exclusive access to the
// dependency. dep is a copy taken under the dependency lock; the lock stays
// held until the handler returns, so the handler must not Send through m.
type RequestHandler[Dep, Ev, Req any] = func(ctx context.Context, m *Mediator[Dep, Ev], request Req, dep Dep) error
