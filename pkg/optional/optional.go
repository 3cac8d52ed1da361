// Package optional provides a JSON-aware wrapper that distinguishes a field
// that was omitted from a field that was explicitly set to null, and both from
// a field carrying a value. Partial-update payloads bind into these so only
// the keys the caller actually sent are persisted.
package optional

import "encoding/json"

// Value holds one of three states: unset (omitted), null, or a concrete value.
type Value[T any] struct {
	set   bool
	null  bool
	value T
}

// Of returns a Value carrying v.
func Of[T any](v T) Value[T] {
	return Value[T]{set: true, value: v}
}

// Null returns a Value that was explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// IsSet reports whether the field was present in the payload at all,
// including an explicit null.
func (v Value[T]) IsSet() bool { return v.set }

// IsNull reports whether the field was explicitly set to null.
func (v Value[T]) IsNull() bool { return v.set && v.null }

// Get returns the carried value and true when the field holds a non-null value.
func (v Value[T]) Get() (T, bool) {
	if !v.set || v.null {
		var zero T
		return zero, false
	}
	return v.value, true
}

// Or returns the carried value, or def when the field is unset or null.
func (v Value[T]) Or(def T) T {
	if got, ok := v.Get(); ok {
		return got
	}
	return def
}

// UnmarshalJSON is only invoked for keys present in the payload, so reaching
// it at all marks the value as set.
func (v *Value[T]) UnmarshalJSON(b []byte) error {
	v.set = true
	if string(b) == "null" {
		v.null = true
		var zero T
		v.value = zero
		return nil
	}
	v.null = false
	return json.Unmarshal(b, &v.value)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set || v.null {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
