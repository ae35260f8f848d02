package flat

import (
	"encoding/json"
	"testing"

	"github.com/jacoelho/esq/value"
)

func TestResult_JSON(t *testing.T) {
	t.Parallel()

	var doc struct {
		ID     string  `json:"_id"`
		Source *Result `json:"_source"`
	}

	input := `{"_id":"1","_source":{"user":{"name":"ann","tags":["a","b"]},"n":1.5}}`
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if doc.Source.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", doc.Source.Len())
	}
	if got := doc.Source.String("user.tags.1"); got != "b" {
		t.Errorf("user.tags.1 = %q, want b", got)
	}

	data, err := json.Marshal(doc.Source)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"user.name":"ann","user.tags.0":"a","user.tags.1":"b","n":1.5}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestResult_MarshalKeepsFloatKind(t *testing.T) {
	t.Parallel()

	res, err := Unmarshal([]byte(`{"f":1.0,"i":1}`))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `{"f":1.0,"i":1}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	if v, _ := back.Get("f"); v.Kind() != value.KindFloat {
		t.Errorf("f kind = %s, want float", v.Kind())
	}
}

func TestResult_NilSafe(t *testing.T) {
	t.Parallel()

	var r *Result
	if r.Len() != 0 || r.Keys() != nil || r.String("x") != "" {
		t.Error("nil Result accessors should return zero values")
	}
	if _, ok := r.Get("x"); ok {
		t.Error("nil Result Get ok = true")
	}
	for range r.All() {
		t.Error("nil Result All yielded")
	}
}

func TestResult_UnmarshalNull(t *testing.T) {
	t.Parallel()

	var doc struct {
		Source Result `json:"_source"`
	}
	if err := json.Unmarshal([]byte(`{"_source":null}`), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc.Source.Len() != 0 {
		t.Errorf("Len() = %d, want 0", doc.Source.Len())
	}
}
