package value

import (
	"errors"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestMap_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	input := `
query:
  bool:
    must:
      - term:
          status: active
      - range:
          age:
            gte: 18
size: 10
ratio: 0.5
explain: false
after: null
`

	var m Map
	if err := yaml.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if keys := m.Keys(); len(keys) != 5 || keys[0] != "query" || keys[4] != "after" {
		t.Errorf("Keys() = %v, want document order", keys)
	}

	size, _ := m.Lookup("size")
	if size.Kind() != KindInt {
		t.Errorf("size kind = %s, want int", size.Kind())
	}
	ratio, _ := m.Lookup("ratio")
	if ratio.Kind() != KindFloat {
		t.Errorf("ratio kind = %s, want float", ratio.Kind())
	}
	after, _ := m.Lookup("after")
	if !after.IsNull() {
		t.Errorf("after = %v, want null", after)
	}

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	want := `{"query":{"bool":{"must":[{"term":{"status":"active"}},{"range":{"age":{"gte":18}}}]}},"size":10,"ratio":0.5,"explain":false,"after":null}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}
}

func TestMap_UnmarshalYAMLRejectsSequence(t *testing.T) {
	t.Parallel()

	var m Map
	err := yaml.Unmarshal([]byte("- a\n- b\n"), &m)
	if err == nil {
		t.Fatal("Unmarshal() expected error for sequence document")
	}
	if !errors.Is(err, ErrNotObject) {
		t.Logf("error does not wrap ErrNotObject: %v", err)
	}
}
