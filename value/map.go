package value

import (
	"iter"
	"slices"
	"time"
)

// Map is an insertion-ordered container of Values keyed by string.
// Setting an existing key replaces its value in place. The zero value is an
// empty map ready to use. A Map is not safe for concurrent mutation.
type Map struct {
	keys   []string
	values map[string]Value
}

func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// MapOf returns a map holding a single entry.
func MapOf(key string, v any) *Map {
	return NewMap().Set(key, v)
}

// Set stores v under key, converting it with Of.
func (m *Map) Set(key string, v any) *Map {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = Of(v)
	return m
}

// Get returns a *KeyNotFoundError when key is absent.
func (m *Map) Get(key string) (Value, error) {
	v, ok := m.Lookup(key)
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

func (m *Map) Lookup(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Contains(key string) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Delete reports whether key was present.
func (m *Map) Delete(key string) bool {
	if !m.Contains(key) {
		return false
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

// GetIndex is the index-style form of Get. Exactly one key is accepted.
func (m *Map) GetIndex(keys ...string) (Value, error) {
	key, err := singleKey(keys)
	if err != nil {
		return Value{}, err
	}
	return m.Get(key)
}

// SetIndex is the index-style form of Set. Exactly one key is accepted.
func (m *Map) SetIndex(v any, keys ...string) error {
	key, err := singleKey(keys)
	if err != nil {
		return err
	}
	m.Set(key, v)
	return nil
}

// DeleteIndex is the index-style form of Delete. Exactly one key is accepted.
func (m *Map) DeleteIndex(keys ...string) (bool, error) {
	key, err := singleKey(keys)
	if err != nil {
		return false, err
	}
	return m.Delete(key), nil
}

// Merge copies every entry of other into m, overwriting on collision.
func (m *Map) Merge(other *Map) *Map {
	if other == nil {
		return m
	}
	for _, key := range other.keys {
		m.Set(key, other.values[key])
	}
	return m
}

// Add sets key only when cond holds.
func (m *Map) Add(key string, v any, cond bool) *Map {
	if cond {
		m.Set(key, v)
	}
	return m
}

// AddFunc sets key only when pred accepts the converted value.
func (m *Map) AddFunc(key string, v any, pred func(Value) bool) *Map {
	converted := Of(v)
	if pred(converted) {
		m.Set(key, converted)
	}
	return m
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All yields entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// Clone deep-copies nested maps and lists. Objects and bytes are shared.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		keys:   slices.Clone(m.keys),
		values: make(map[string]Value, len(m.values)),
	}
	for key, v := range m.values {
		out.values[key] = cloneValue(v)
	}
	return out
}

// Equal compares key sets and values, ignoring order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for key, v := range m.All() {
		ov, ok := other.Lookup(key)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func cloneValue(v Value) Value {
	switch v.kind {
	case KindMap:
		return FromMap(v.v.(*Map).Clone())
	case KindList:
		items := v.v.([]Value)
		out := make([]Value, len(items))
		for i, item := range items {
			out[i] = cloneValue(item)
		}
		return List(out...)
	default:
		return v
	}
}

func singleKey(keys []string) (string, error) {
	if len(keys) != 1 {
		return "", &InvalidArgumentError{
			Argument: "keys",
			Reason:   "index access takes exactly one key",
			Count:    len(keys),
		}
	}
	return keys[0], nil
}

// NotNull is an AddFunc predicate rejecting null values.
func NotNull(v Value) bool {
	return !v.IsNull()
}

// NotZero is an AddFunc predicate rejecting null, empty strings, zero numbers,
// false, zero times and empty containers.
func NotZero(v Value) bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.v.(string) != ""
	case KindInt:
		return v.v.(int64) != 0
	case KindFloat:
		return v.v.(float64) != 0
	case KindBool:
		return v.v.(bool)
	case KindTime:
		return !v.v.(time.Time).IsZero()
	case KindBytes:
		return len(v.v.([]byte)) > 0
	case KindMap:
		return v.v.(*Map).Len() > 0
	case KindList:
		return len(v.v.([]Value)) > 0
	default:
		return true
	}
}
