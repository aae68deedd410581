package pis

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	V     T
	Valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{V: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.V, o.Valid
}
