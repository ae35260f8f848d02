package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Entry is one Table row.
type Entry struct {
	Key   string
	Value Value
}

// Table preserves insertion order and, unlike Map, allows repeated keys.
type Table []Entry

// TableOf builds a table from alternating key/value arguments.
// A trailing key without a value is paired with null.
func TableOf(pairs ...any) Table {
	t := make(Table, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		var v any
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		t = append(t, Entry{Key: fmt.Sprint(pairs[i]), Value: Of(v)})
	}
	return t
}

func (t *Table) Add(key string, v any) *Table {
	*t = append(*t, Entry{Key: key, Value: Of(v)})
	return t
}

// AddIf appends only when cond holds.
func (t *Table) AddIf(key string, v any, cond bool) *Table {
	if cond {
		t.Add(key, v)
	}
	return t
}

// AddFunc appends only when pred accepts the converted value.
func (t *Table) AddFunc(key string, v any, pred func(Value) bool) *Table {
	converted := Of(v)
	if pred(converted) {
		t.Add(key, converted)
	}
	return t
}

// Get returns the last value for an exact key match.
func (t Table) Get(key string) (Value, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Key == key {
			return t[i].Value, true
		}
	}
	return Value{}, false
}

// Values returns every value recorded under key, in order.
func (t Table) Values(key string) []Value {
	var out []Value
	for _, entry := range t {
		if entry.Key == key {
			out = append(out, entry.Value)
		}
	}
	return out
}

// Encode renders the table as a URL query string without the leading '?'.
func (t Table) Encode() string {
	var b strings.Builder
	for i, entry := range t {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(entry.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(entry.Value.String()))
	}
	return b.String()
}

// MarshalJSON emits an object with the rows in order, duplicates included.
func (t Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := writeValue(&buf, entry.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps every member of the object, including repeated keys.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	out := Table{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("value: %w", unexpectedEOF(err))
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			*t = out
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("value: object key must be string, got %T", tok)
		}
		valueTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("value: %s: %w", key, unexpectedEOF(err))
		}
		item, err := readValue(dec, valueTok)
		if err != nil {
			return err
		}
		out = append(out, Entry{Key: key, Value: item})
	}
}
