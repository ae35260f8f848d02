package flat

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jacoelho/esq/internal/stack"
	"github.com/jacoelho/esq/value"
)

type walkFrame struct {
	object  *value.Map
	keys    []string
	items   []value.Value
	index   int
	named   bool
	isArray bool
}

func (f *walkFrame) remaining() bool {
	if f.isArray {
		return f.index < len(f.items)
	}
	return f.index < len(f.keys)
}

// ValueReader produces tokens by walking an in-memory value tree. Times and
// bytes are yielded as typed values rather than strings.
type ValueReader struct {
	root    value.Value
	started bool
	frames  stack.Stack[walkFrame]
	depth   int
}

var _ TokenReader = (*ValueReader)(nil)

func NewValueReader(root value.Value) *ValueReader {
	return &ValueReader{root: root}
}

func (r *ValueReader) Depth() int {
	return r.depth
}

func (r *ValueReader) Next() (Token, error) {
	if !r.started {
		r.started = true
		return r.open(r.root)
	}

	top := r.frames.PeekRef()
	if top == nil {
		return Token{}, io.EOF
	}

	if !top.remaining() {
		isArray := top.isArray
		r.frames.Pop()
		r.depth = r.frames.Size()
		if isArray {
			return Token{Kind: TokenArrayEnd}, nil
		}
		return Token{Kind: TokenObjectEnd}, nil
	}

	if top.isArray {
		item := top.items[top.index]
		top.index++
		return r.open(item)
	}

	key := top.keys[top.index]
	if !top.named {
		top.named = true
		r.depth = r.frames.Size()
		return Token{Kind: TokenName, Name: key}, nil
	}

	item, _ := top.object.Lookup(key)
	top.index++
	top.named = false
	return r.open(item)
}

// open emits the first token of v and descends into containers.
func (r *ValueReader) open(v value.Value) (Token, error) {
	r.depth = r.frames.Size()

	switch v.Kind() {
	case value.KindMap:
		m, _ := v.Map()
		r.frames.Push(walkFrame{object: m, keys: m.Keys()})
		return Token{Kind: TokenObjectStart}, nil
	case value.KindList:
		items, _ := v.List()
		r.frames.Push(walkFrame{items: items, isArray: true})
		return Token{Kind: TokenArrayStart}, nil
	case value.KindObject:
		expanded, err := expandObject(v)
		if err != nil {
			return Token{}, err
		}
		return r.open(expanded)
	default:
		return Token{Kind: TokenValue, Value: v}, nil
	}
}

// expandObject round-trips an opaque Go value through encoding/json so its
// fields can be walked.
func expandObject(v value.Value) (value.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	var expanded value.Value
	if err := json.Unmarshal(data, &expanded); err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return expanded, nil
}
