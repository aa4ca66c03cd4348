package async

import (
	"context"

	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/mediator"
)

var (
	ErrEmpty                = mediator.ErrEmpty
	ErrDisconnected         = mediator.ErrDisconnected
	ErrHandlerNotRegistered = mediator.ErrHandlerNotRegistered
)

type Listener[Ev any] = mediator.Listener[Ev]

// RequestHandler handles a request of type Req. Calling m.Publish from it
// is safe: Send does not hold the mediator lock while the handler runs.
type RequestHandler[Ev, Req any] = func(ctx context.Context, m *Mediator[Ev], request Req) error
