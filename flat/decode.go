package flat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/esq/value"
)

// Decode flattens the object whose open token was the last token read from
// r. It returns after consuming the matching close token, leaving r
// positioned on whatever follows.
func Decode(r TokenReader, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	return decodeFrom(r, r.Depth(), o.separator)
}

// DecodeObject reads the next token from r, which must open an object, and
// flattens that object.
func DecodeObject(r TokenReader, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	tok, err := r.Next()
	if err != nil {
		return nil, decodeError(r, "", err)
	}
	if tok.Kind != TokenObjectStart {
		return nil, &DecodeError{Offset: offsetOf(r), Err: ErrNotObject}
	}

	return decodeFrom(r, r.Depth(), o.separator)
}

// Unmarshal flattens a JSON object held in data. Anything other than
// whitespace after the object is an error.
func Unmarshal(data []byte, opts ...Option) (*Result, error) {
	r := NewReader(bytes.NewReader(data), opts...)
	result, err := DecodeObject(r, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{
			Offset: offsetOf(r),
			Err:    fmt.Errorf("%w: data after top-level object", ErrMalformed),
		}
	}
	return result, nil
}

// FlattenMap flattens m directly, keeping typed values such as times and
// bytes.
func FlattenMap(m *value.Map, opts ...Option) (*Result, error) {
	if m == nil {
		return nil, &DecodeError{Offset: -1, Err: ErrNotObject}
	}
	return DecodeObject(NewValueReader(value.FromMap(m)), opts...)
}

func decodeFrom(r TokenReader, startDepth int, separator string) (*Result, error) {
	tracker := NewTracker(separator)
	result := newResult()

	for {
		tok, err := r.Next()
		if err != nil {
			return nil, decodeError(r, tracker.Path(), err)
		}

		switch tok.Kind {
		case TokenArrayStart:
			tracker.EnterArray(r.Depth())
		case TokenArrayEnd:
			tracker.ExitArray(r.Depth())
		case TokenName:
			tracker.EnterField(tok.Name)
		case TokenValue:
			path := tracker.Path()
			if !result.insert(path, tok.Value) {
				return nil, &DecodeError{Path: path, Offset: offsetOf(r), Err: ErrDuplicateKey}
			}
			tracker.ValueDone(r.Depth())
		case TokenObjectEnd:
			if r.Depth() == startDepth {
				return result, nil
			}
			tracker.ValueDone(r.Depth())
		case TokenObjectStart:
		default:
			return nil, &DecodeError{
				Path:   tracker.Path(),
				Offset: offsetOf(r),
				Err:    fmt.Errorf("%w: unknown token %s", ErrMalformed, tok.Kind),
			}
		}
	}
}

func decodeError(r TokenReader, path string, err error) error {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		err = ErrUnexpectedEnd
	case errors.As(err, &syntaxErr):
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &DecodeError{Path: path, Offset: offsetOf(r), Err: err}
}

func offsetOf(r TokenReader) int64 {
	if o, ok := r.(offsetReader); ok {
		return o.InputOffset()
	}
	return -1
}
