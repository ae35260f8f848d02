package flat

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jacoelho/esq/value"
)

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Entry
	}{
		{
			name:  "nested_objects",
			input: `{"a":{"b":1,"c":"x"}}`,
			want: []Entry{
				{Path: "a.b", Value: value.Int(1)},
				{Path: "a.c", Value: value.String("x")},
			},
		},
		{
			name:  "array_of_objects",
			input: `{"obj":[{"a":1},{"a":2}]}`,
			want: []Entry{
				{Path: "obj.0.a", Value: value.Int(1)},
				{Path: "obj.1.a", Value: value.Int(2)},
			},
		},
		{
			name:  "int_float_null",
			input: `{"i":1,"f":1.0,"n":null,"b":true}`,
			want: []Entry{
				{Path: "i", Value: value.Int(1)},
				{Path: "f", Value: value.Float(1)},
				{Path: "n", Value: value.Null()},
				{Path: "b", Value: value.Bool(true)},
			},
		},
		{
			name:  "sibling_after_array",
			input: `{"list":[1,2],"after":"x","obj":{"inner":[true]},"last":0}`,
			want: []Entry{
				{Path: "list.0", Value: value.Int(1)},
				{Path: "list.1", Value: value.Int(2)},
				{Path: "after", Value: value.String("x")},
				{Path: "obj.inner.0", Value: value.Bool(true)},
				{Path: "last", Value: value.Int(0)},
			},
		},
		{
			name:  "nested_arrays",
			input: `{"m":[[1,2],[3]],"z":1}`,
			want: []Entry{
				{Path: "m.0.0", Value: value.Int(1)},
				{Path: "m.0.1", Value: value.Int(2)},
				{Path: "m.1.0", Value: value.Int(3)},
				{Path: "z", Value: value.Int(1)},
			},
		},
		{
			name:  "empty_containers",
			input: `{"e":[],"o":{},"l":[{},[]],"x":1}`,
			want: []Entry{
				{Path: "x", Value: value.Int(1)},
			},
		},
		{
			name:  "array_of_mixed",
			input: `{"a":[{"b":[1]},2,{"c":3}]}`,
			want: []Entry{
				{Path: "a.0.b.0", Value: value.Int(1)},
				{Path: "a.1", Value: value.Int(2)},
				{Path: "a.2.c", Value: value.Int(3)},
			},
		},
		{
			name:  "big_integer_falls_back_to_float",
			input: `{"n":18446744073709551616}`,
			want: []Entry{
				{Path: "n", Value: value.Float(18446744073709551616)},
			},
		},
		{
			name:  "empty_object",
			input: `{}`,
			want:  []Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Unmarshal([]byte(tt.input))
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			got := res.Entries()
			if len(got) != len(tt.want) {
				t.Fatalf("Entries() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i].Path != tt.want[i].Path || !got[i].Value.Equal(tt.want[i].Value) {
					t.Errorf("entry %d = %s=%v (%s), want %s=%v (%s)",
						i, got[i].Path, got[i].Value, got[i].Value.Kind(),
						tt.want[i].Path, tt.want[i].Value, tt.want[i].Value.Kind())
				}
			}
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "truncated_value", input: `{"a":1`, want: ErrUnexpectedEnd},
		{name: "truncated_nested", input: `{"a":{"b":[1,`, want: ErrUnexpectedEnd},
		{name: "truncated_string", input: `{"a":"ab`, want: ErrUnexpectedEnd},
		{name: "empty_input", input: ``, want: ErrUnexpectedEnd},
		{name: "duplicate_key", input: `{"a":1,"a":2}`, want: ErrDuplicateKey},
		{name: "colliding_paths", input: `{"a.b":1,"a":{"b":2}}`, want: ErrDuplicateKey},
		{name: "malformed", input: `{"a":1]`, want: ErrMalformed},
		{name: "array_root", input: `[1,2]`, want: ErrNotObject},
		{name: "scalar_root", input: `"x"`, want: ErrNotObject},
		{name: "trailing_text", input: `{"a":1} trailing`, want: ErrMalformed},
		{name: "trailing_object", input: `{"a":1}{"b":2}`, want: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Unmarshal([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Unmarshal(%s) error = %v, want %v", tt.input, err, tt.want)
			}
			if res != nil {
				t.Errorf("Unmarshal(%s) returned partial result %v", tt.input, res.Keys())
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("error %T is not *DecodeError", err)
			}
		})
	}
}

func TestUnmarshal_TrailingWhitespace(t *testing.T) {
	t.Parallel()

	res, err := Unmarshal([]byte("{\"a\":1}\n\t "))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := res.String("a"); got != "1" {
		t.Errorf("String(a) = %q, want 1", got)
	}
}

func TestUnmarshal_DuplicateReportsPath(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"x":{"a.b":1,"a":{"b":2}}}`))

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if decodeErr.Path != "x.a.b" {
		t.Errorf("Path = %q, want x.a.b", decodeErr.Path)
	}
}

func TestUnmarshal_Separator(t *testing.T) {
	t.Parallel()

	res, err := Unmarshal([]byte(`{"a":[{"b":1}]}`), WithSeparator("_"))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !slices.Equal(res.Keys(), []string{"a_0_b"}) {
		t.Errorf("Keys() = %v, want [a_0_b]", res.Keys())
	}
}

func TestUnmarshal_Times(t *testing.T) {
	t.Parallel()

	res, err := Unmarshal([]byte(`{"at":"2024-01-02T03:04:05Z","name":"x"}`), WithTimes())
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	at, _ := res.Get("at")
	got, ok := at.Time()
	if !ok || !got.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("at = %v (%s), want time", at, at.Kind())
	}
	if name, _ := res.Get("name"); name.Kind() != value.KindString {
		t.Errorf("name kind = %s, want string", name.Kind())
	}
}

func TestDecode_StopsAtMatchingClose(t *testing.T) {
	t.Parallel()

	input := `{"hits":[{"_id":"1","_source":{"a":{"b":1}},"_score":2.5}]}`
	r := NewReader(strings.NewReader(input))

	// Walk to the _source object.
	for {
		tok, err := r.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if tok.Kind == TokenName && tok.Name == "_source" {
			if _, err := r.Next(); err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			break
		}
	}

	res, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !slices.Equal(res.Keys(), []string{"a.b"}) {
		t.Errorf("Keys() = %v, want [a.b]", res.Keys())
	}

	tok, err := r.Next()
	if err != nil {
		t.Fatalf("Next() after Decode error = %v", err)
	}
	if tok.Kind != TokenName || tok.Name != "_score" {
		t.Errorf("token after Decode = %+v, want name _score", tok)
	}
}

func TestUnmarshal_Idempotent(t *testing.T) {
	t.Parallel()

	input := []byte(`{"a":[{"b":1,"c":[true,null]}],"d":"x"}`)

	first, err := Unmarshal(input)
	if err != nil {
		t.Fatalf("first Unmarshal() error = %v", err)
	}
	second, err := Unmarshal(input)
	if err != nil {
		t.Fatalf("second Unmarshal() error = %v", err)
	}

	a, _ := first.MarshalJSON()
	b, _ := second.MarshalJSON()
	if string(a) != string(b) {
		t.Errorf("results differ: %s vs %s", a, b)
	}
}

func TestFlattenMap(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	m := value.NewMap().
		Set("created", ts).
		Set("blob", []byte{0xde, 0xad}).
		Set("tags", []string{"a", "b"}).
		Set("doc", struct {
			Name string `json:"name"`
		}{Name: "n"}).
		Set("empty", value.NewMap())

	res, err := FlattenMap(m)
	if err != nil {
		t.Fatalf("FlattenMap() error = %v", err)
	}

	want := []string{"created", "blob", "tags.0", "tags.1", "doc.name"}
	if !slices.Equal(res.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", res.Keys(), want)
	}

	created, _ := res.Get("created")
	if got, ok := created.Time(); !ok || !got.Equal(ts) {
		t.Errorf("created = %v (%s), want time", created, created.Kind())
	}
	blob, _ := res.Get("blob")
	if b, ok := blob.Bytes(); !ok || len(b) != 2 {
		t.Errorf("blob = %v (%s), want bytes", blob, blob.Kind())
	}
	if got := res.String("doc.name"); got != "n" {
		t.Errorf("doc.name = %q, want n", got)
	}
}

func TestFlattenMap_Nil(t *testing.T) {
	t.Parallel()

	if _, err := FlattenMap(nil); !errors.Is(err, ErrNotObject) {
		t.Errorf("FlattenMap(nil) error = %v, want ErrNotObject", err)
	}
}
