package flat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jacoelho/esq/internal/stack"
	"github.com/jacoelho/esq/value"
)

type containerFrame struct {
	object  bool
	needKey bool
}

// Reader produces tokens from JSON text using encoding/json.
type Reader struct {
	dec         *json.Decoder
	containers  stack.Stack[containerFrame]
	depth       int
	timeLayouts []string
}

var _ TokenReader = (*Reader)(nil)

// NewReader reads JSON tokens from r. Numbers keep their integer or floating
// point kind; integers that overflow int64 become floats.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := newOptions(opts)

	dec := json.NewDecoder(r)
	dec.UseNumber()

	return &Reader{
		dec:         dec,
		timeLayouts: o.timeLayouts,
	}
}

func (r *Reader) Depth() int {
	return r.depth
}

func (r *Reader) InputOffset() int64 {
	return r.dec.InputOffset()
}

// Next returns io.EOF at the end of input and io.ErrUnexpectedEOF when the
// input ends inside a container.
func (r *Reader) Next() (Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) && !r.containers.IsEmpty() {
			return Token{}, io.ErrUnexpectedEOF
		}
		return Token{}, err
	}

	switch current := tok.(type) {
	case json.Delim:
		return r.delim(current)
	case string:
		if top := r.containers.PeekRef(); top != nil && top.object && top.needKey {
			top.needKey = false
			r.depth = r.containers.Size()
			return Token{Kind: TokenName, Name: current}, nil
		}
		return r.scalar(r.stringValue(current)), nil
	case json.Number:
		v := value.Of(current)
		if v.Kind() == value.KindString {
			return Token{}, fmt.Errorf("%w: invalid number %q", ErrMalformed, current)
		}
		return r.scalar(v), nil
	default:
		return r.scalar(value.Of(current)), nil
	}
}

func (r *Reader) delim(d json.Delim) (Token, error) {
	switch d {
	case '{':
		r.depth = r.containers.Size()
		r.containers.Push(containerFrame{object: true, needKey: true})
		return Token{Kind: TokenObjectStart}, nil
	case '[':
		r.depth = r.containers.Size()
		r.containers.Push(containerFrame{})
		return Token{Kind: TokenArrayStart}, nil
	case '}':
		r.closeContainer()
		return Token{Kind: TokenObjectEnd}, nil
	case ']':
		r.closeContainer()
		return Token{Kind: TokenArrayEnd}, nil
	default:
		return Token{}, fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, d)
	}
}

func (r *Reader) closeContainer() {
	r.containers.Pop()
	r.depth = r.containers.Size()
	r.valueDone()
}

func (r *Reader) scalar(v value.Value) Token {
	r.depth = r.containers.Size()
	r.valueDone()
	return Token{Kind: TokenValue, Value: v}
}

func (r *Reader) valueDone() {
	if top := r.containers.PeekRef(); top != nil && top.object {
		top.needKey = true
	}
}

func (r *Reader) stringValue(s string) value.Value {
	for _, layout := range r.timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return value.Time(t)
		}
	}
	return value.String(s)
}
