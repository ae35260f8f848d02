package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

// MarshalJSON encodes the value as plain JSON. Times use RFC 3339 with
// nanoseconds and bytes use standard base64, as encoding/json does.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON reads any JSON value, keeping object order and the
// integer/float distinction.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	parsed, err := readValue(dec, tok)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON emits the entries as a plain object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := writeMap(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of m with the members of a JSON object,
// read key by key in document order. Repeated keys keep their first position
// and last value.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	parsed, err := readObject(dec)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.v.(int64), 10))
	case KindFloat:
		return writeFloat(buf, v.v.(float64))
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.v.(bool)))
	case KindMap:
		return writeMap(buf, v.v.(*Map))
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.v.([]Value) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindTime:
		buf.WriteString(strconv.Quote(v.v.(time.Time).Format(time.RFC3339Nano)))
	default:
		data, err := json.Marshal(v.v)
		if err != nil {
			return fmt.Errorf("value: encode %s: %w", v.kind, err)
		}
		buf.Write(data)
	}
	return nil
}

// writeFloat keeps a fractional part or exponent so integral floats decode
// back as floats.
func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("value: encode float: unsupported value %v", f)
	}
	start := buf.Len()
	buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), f, 'g', -1, 64))
	if !bytes.ContainsAny(buf.Bytes()[start:], ".eE") {
		buf.WriteString(".0")
	}
	return nil
}

func writeMap(buf *bytes.Buffer, m *Map) error {
	buf.WriteByte('{')
	first := true
	for key, item := range m.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		name, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := writeValue(buf, item); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func readValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch current := tok.(type) {
	case json.Delim:
		switch current {
		case '{':
			m, err := readObject(dec)
			if err != nil {
				return Value{}, err
			}
			return FromMap(m), nil
		case '[':
			return readArray(dec)
		default:
			return Value{}, fmt.Errorf("value: unexpected delimiter %q", current)
		}
	default:
		return Of(current), nil
	}
}

func readObject(dec *json.Decoder) (*Map, error) {
	m := NewMap()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("value: %w", unexpectedEOF(err))
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return m, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("value: object key must be string, got %T", tok)
		}

		valueTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("value: %s: %w", key, unexpectedEOF(err))
		}
		item, err := readValue(dec, valueTok)
		if err != nil {
			return nil, err
		}
		m.Set(key, item)
	}
}

func readArray(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("value: %w", unexpectedEOF(err))
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return List(items...), nil
		}
		item, err := readValue(dec, tok)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
