package mediator

import (
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/dispatch"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/eventqueue"
	"github.com/krew-solutions/ascetic-mediator-go/asceticmediator/signals"
)

var (
	ErrEmpty                = eventqueue.ErrEmpty
	ErrDisconnected         = eventqueue.ErrDisconnected
	ErrHandlerNotRegistered = dispatch.ErrHandlerNotRegistered
)

// Listener is invoked once per drained event with its own copy of it.
type Listener[Ev any] = signals.Observer[Ev]

// RequestHandler handles a request of type Req. It may Publish any number
// of events through m. Its error is returned by Send as is.
type RequestHandler[Ev, Req any] = func(m *Mediator[Ev], request Req) error
