package signals

// Observer receives a notified event. It has no identity and cannot be
// detached once attached.
type Observer[E any] func(E)

// Cloner is implemented by events that carry reference-typed fields.
// Notify hands every observer its own Clone() so observers never share
// state through an event.
type Cloner[E any] interface {
	Clone() E
}

type Signal[E any] interface {
	Attach(observer Observer[E])
	Notify(event E)
	Len() int
}
