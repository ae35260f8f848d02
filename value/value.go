// Package value holds the loosely-typed JSON values used to build requests
// and to represent decoded documents.
//
// A Value is a tagged variant over the JSON scalar kinds plus timestamps, raw
// bytes, nested maps, lists and opaque Go objects. Map is an insertion-ordered
// string keyed container of Values; Table is its ordered multi-map sibling.
package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/jacoelho/esq/internal/number"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindBytes
	KindMap
	KindList
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindTime:   "time",
	KindBytes:  "bytes",
	KindMap:    "map",
	KindList:   "list",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Scalar reports whether values of this kind are leaves.
func (k Kind) Scalar() bool {
	return k != KindMap && k != KindList && k != KindObject
}

// Value is an immutable tagged value. The zero Value is null.
type Value struct {
	kind Kind
	v    any
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, v: s} }

func Int(i int64) Value { return Value{kind: KindInt, v: i} }

func Float(f float64) Value { return Value{kind: KindFloat, v: f} }

func Bool(b bool) Value { return Value{kind: KindBool, v: b} }

func Time(t time.Time) Value { return Value{kind: KindTime, v: t} }

// Bytes keeps b without copying.
func Bytes(b []byte) Value { return Value{kind: KindBytes, v: b} }

// FromMap wraps m; a nil map is null.
func FromMap(m *Map) Value {
	if m == nil {
		return Null()
	}
	return Value{kind: KindMap, v: m}
}

func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, v: items}
}

// Object wraps an arbitrary Go value that is encoded with encoding/json.
func Object(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindObject, v: v}
}

// Of classifies a Go value into its variant. Maps with Go map type are
// converted with sorted keys so the result is deterministic.
func Of(v any) Value {
	switch current := v.(type) {
	case nil:
		return Null()
	case Value:
		return current
	case *Value:
		if current == nil {
			return Null()
		}
		return *current
	case string:
		return String(current)
	case bool:
		return Bool(current)
	case json.Number:
		i, f, isInt, err := number.Classify(current)
		if err != nil {
			return String(string(current))
		}
		if isInt {
			return Int(i)
		}
		return Float(f)
	case float32:
		return Float(float64(current))
	case float64:
		return Float(current)
	case time.Time:
		return Time(current)
	case []byte:
		return Bytes(current)
	case *Map:
		return FromMap(current)
	case []Value:
		return List(current...)
	case []any:
		items := make([]Value, len(current))
		for i, item := range current {
			items[i] = Of(item)
		}
		return List(items...)
	case []string:
		items := make([]Value, len(current))
		for i, item := range current {
			items[i] = String(item)
		}
		return List(items...)
	case map[string]any:
		m := NewMap()
		keys := make([]string, 0, len(current))
		for key := range current {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			m.Set(key, current[key])
		}
		return FromMap(m)
	}

	if i, ok := number.ToInt64(v); ok {
		return Int(i)
	}
	if f, ok := number.ToFloat64(v); ok {
		return Float(f)
	}

	return Object(v)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the string held by a String value.
func (v Value) Text() (string, bool) {
	s, ok := v.v.(string)
	return s, ok && v.kind == KindString
}

func (v Value) Int() (int64, bool) {
	i, ok := v.v.(int64)
	return i, ok && v.kind == KindInt
}

func (v Value) Float() (float64, bool) {
	f, ok := v.v.(float64)
	return f, ok && v.kind == KindFloat
}

// Number returns Int and Float values as float64.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.v.(int64)), true
	case KindFloat:
		return v.v.(float64), true
	default:
		return 0, false
	}
}

func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok && v.kind == KindBool
}

func (v Value) Time() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok && v.kind == KindTime
}

func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok && v.kind == KindBytes
}

func (v Value) Map() (*Map, bool) {
	m, ok := v.v.(*Map)
	return m, ok && v.kind == KindMap
}

func (v Value) List() ([]Value, bool) {
	l, ok := v.v.([]Value)
	return l, ok && v.kind == KindList
}

func (v Value) Object() (any, bool) {
	return v.v, v.kind == KindObject
}

// Interface unwraps the value into plain Go types: nil, string, int64,
// float64, bool, time.Time, []byte, map[string]any, []any or the wrapped object.
func (v Value) Interface() any {
	switch v.kind {
	case KindMap:
		m := v.v.(*Map)
		out := make(map[string]any, m.Len())
		for key, item := range m.All() {
			out[key] = item.Interface()
		}
		return out
	case KindList:
		items := v.v.([]Value)
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.Interface()
		}
		return out
	default:
		return v.v
	}
}

// String renders scalars as plain text and containers as JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.v.(string)
	case KindInt:
		return strconv.FormatInt(v.v.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.v.(float64), 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.v.(bool))
	case KindTime:
		return v.v.(time.Time).Format(time.RFC3339Nano)
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.v.([]byte))
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return "!" + err.Error()
		}
		return string(data)
	}
}

// Equal compares kinds and contents. Maps compare by key set, not order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindTime:
		return v.v.(time.Time).Equal(other.v.(time.Time))
	case KindBytes:
		return bytes.Equal(v.v.([]byte), other.v.([]byte))
	case KindMap:
		return v.v.(*Map).Equal(other.v.(*Map))
	case KindList:
		return slices.EqualFunc(v.v.([]Value), other.v.([]Value), Value.Equal)
	case KindObject:
		return reflect.DeepEqual(v.v, other.v)
	default:
		return v.v == other.v
	}
}
