package flat

import (
	"bytes"
	"encoding/json"
	"iter"

	"github.com/jacoelho/esq/value"
)

// Entry is a single flattened leaf.
type Entry struct {
	Path  string
	Value value.Value
}

// Result holds flattened leaves in input order. Paths are unique.
// The zero value is an empty result.
type Result struct {
	entries []Entry
	index   map[string]int
}

func newResult() *Result {
	return &Result{index: make(map[string]int)}
}

// insert reports false when path is already present.
func (r *Result) insert(path string, v value.Value) bool {
	if _, exists := r.index[path]; exists {
		return false
	}
	r.index[path] = len(r.entries)
	r.entries = append(r.entries, Entry{Path: path, Value: v})
	return true
}

func (r *Result) Get(path string) (value.Value, bool) {
	if r == nil {
		return value.Value{}, false
	}
	i, ok := r.index[path]
	if !ok {
		return value.Value{}, false
	}
	return r.entries[i].Value, true
}

// String returns the text form of the value at path, or "" when absent.
func (r *Result) String(path string) string {
	v, ok := r.Get(path)
	if !ok {
		return ""
	}
	return v.String()
}

func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

func (r *Result) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.entries))
	for i, entry := range r.entries {
		keys[i] = entry.Path
	}
	return keys
}

// All yields entries in input order.
func (r *Result) All() iter.Seq2[string, value.Value] {
	return func(yield func(string, value.Value) bool) {
		if r == nil {
			return
		}
		for _, entry := range r.entries {
			if !yield(entry.Path, entry.Value) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries.
func (r *Result) Entries() []Entry {
	if r == nil {
		return nil
	}
	return append([]Entry(nil), r.entries...)
}

// MarshalJSON emits a flat object keyed by path.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(entry.Path)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		data, err := entry.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON flattens a nested JSON object with the default separator.
// JSON null leaves the result empty.
func (r *Result) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Result{}
		return nil
	}
	parsed, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
