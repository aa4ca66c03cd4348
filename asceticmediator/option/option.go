package option

// Option holds either a value (Some) or nothing (Nothing). Builders use it
// for slots that may legitimately be left empty until Build.
type Option[T any] struct {
	val   T
	valid bool
}

func Some[T any](val T) Option[T] {
	return Option[T]{val: val, valid: true}
}

func Nothing[T any]() Option[T] {
	return Option[T]{}
}

// OkOr returns the contained value, or err when the Option is Nothing.
func (o Option[T]) OkOr(err error) (T, error) {
	if !o.valid {
		var zero T
		return zero, err
	}
	return o.val, nil
}
