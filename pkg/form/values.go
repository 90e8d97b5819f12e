package form

// Map is a string-keyed mapping that remembers insertion order. Setting an
// existing key replaces its value in place, so keys are never duplicated.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores value under key and returns m for chaining.
func (m *Map) Set(key string, value any) *Map {
	if m.values == nil {
		m.values = make(map[string]any)
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value

	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	value, ok := m.values[key]

	return value, ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}

	delete(m.values, key)

	for index, existing := range m.keys {
		if existing == key {
			m.keys = append(m.keys[:index], m.keys[index+1:]...)

			break
		}
	}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)

	return out
}

// OneOf is implemented by tagged unions. Only the payload returned by
// OneOfValue is encoded, at the union's own key.
type OneOf interface {
	OneOfValue() any
}

type nullState uint8

const (
	nullUnset nullState = iota
	nullValue
	nullExplicit
)

// Nullable is an optional value that can also be sent as an explicit null.
// The zero value is unset and encodes to nothing.
type Nullable[T any] struct {
	value T
	state nullState
}

// Value returns a Nullable holding v.
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, state: nullValue}
}

// Null returns a Nullable that encodes as an explicit empty value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{state: nullExplicit}
}

// Set stores v.
func (n *Nullable[T]) Set(v T) {
	n.value = v
	n.state = nullValue
}

// SetNull marks the value as an explicit null.
func (n *Nullable[T]) SetNull() {
	var zero T

	n.value = zero
	n.state = nullExplicit
}

// Get returns the stored value and whether one is present.
func (n Nullable[T]) Get() (T, bool) {
	return n.value, n.state == nullValue
}

// IsNull reports whether an explicit null was chosen.
func (n Nullable[T]) IsNull() bool {
	return n.state == nullExplicit
}

// IsSet reports whether the value is present or explicitly null.
func (n Nullable[T]) IsSet() bool {
	return n.state != nullUnset
}

func (n Nullable[T]) formValue() (any, bool, bool) {
	switch n.state {
	case nullValue:
		return n.value, true, false
	case nullExplicit:
		return nil, true, true
	default:
		return nil, false, false
	}
}

type nullable interface {
	formValue() (value any, present bool, null bool)
}
