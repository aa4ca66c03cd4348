package signals

type SignalImp[E any] struct {
	observers []Observer[E]
}

func NewSignal[E any](observers ...Observer[E]) *SignalImp[E] {
	s := &SignalImp[E]{}
	for _, o := range observers {
		s.Attach(o)
	}
	return s
}

// Attach appends observer. Attaching the same function twice makes it
// run twice per Notify. A nil observer is ignored.
func (s *SignalImp[E]) Attach(observer Observer[E]) {
	if observer == nil {
		return
	}
	s.observers = append(s.observers, observer)
}

// Notify calls every observer in attach order, each with its own
// duplicate of event. A panicking observer is not recovered.
func (s *SignalImp[E]) Notify(event E) {
	for _, observer := range s.observers {
		observer(duplicate(event))
	}
}

func (s *SignalImp[E]) Len() int {
	return len(s.observers)
}

// Clone returns an independent copy; attaching to it leaves s unchanged.
func (s *SignalImp[E]) Clone() *SignalImp[E] {
	observers := make([]Observer[E], len(s.observers))
	copy(observers, s.observers)
	return &SignalImp[E]{observers: observers}
}

func duplicate[E any](event E) E {
	if c, ok := any(event).(Cloner[E]); ok {
		return c.Clone()
	}
	return event
}
