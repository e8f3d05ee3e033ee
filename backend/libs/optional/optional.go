// Package optional provides a tagged optional value for partial updates, so that a field
// left out of a request is distinguishable from a field explicitly set to its zero value.
package optional

import (
	"github.com/goccy/go-json"
)

// Value holds T together with a flag recording whether it was supplied.
type Value[T any] struct {
	Set bool
	V   T
}

// Of returns a supplied value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: v}
}

// Get returns the value and whether it was supplied.
func (o Value[T]) Get() (T, bool) {
	return o.V, o.Set
}

// OrElse returns the supplied value or fallback.
func (o Value[T]) OrElse(fallback T) T {
	if o.Set {
		return o.V
	}
	return fallback
}

// UnmarshalJSON marks the value as supplied. A JSON null is treated as supplying the zero value.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.V = zero
		return nil
	}
	return json.Unmarshal(data, &o.V)
}

// MarshalJSON encodes the wrapped value, or null when absent.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.V)
}
