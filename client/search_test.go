package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/query"
)

const aggregationResponse = `{
  "took": 24,
  "timed_out": false,
  "_shards": {"total": 6, "successful": 6, "skipped": 0, "failed": 0},
  "hits": {"total": 3, "max_score": 0, "hits": []},
  "aggregations": {
    "test": {
      "doc_count_error_upper_bound": 0,
      "sum_other_doc_count": 0,
      "buckets": [
        {
          "key": "one",
          "doc_count": 2,
          "test_inner": {
            "doc_count_error_upper_bound": 0,
            "sum_other_doc_count": 0,
            "buckets": [{"key": "two", "doc_count": 1}]
          }
        }
      ]
    }
  }
}`

const hitsResponse = `{
  "took": 3,
  "timed_out": false,
  "hits": {
    "total": {"value": 2, "relation": "eq"},
    "max_score": 1.5,
    "hits": [
      {"_index": "sample", "_id": "1", "_score": 1.5, "_source": {"name": "a", "tags": ["x", "y"], "owner": {"id": 7}}},
      {"_index": "sample", "_id": "2", "_score": 0.5, "_source": {"name": "b", "tags": [], "owner": {"id": 8}}}
    ]
  }
}`

func TestSearch_Method(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      any
		wantMethod string
		wantBody   string
	}{
		{name: "nil query", query: nil, wantMethod: http.MethodGet},
		{
			name:       "builder",
			query:      query.Search().Query(query.MatchAll()).Size(10),
			wantMethod: http.MethodPost,
			wantBody:   `{"query":{"match_all":{}},"size":10}`,
		},
		{
			name:       "raw json",
			query:      json.RawMessage(`{"size":0}`),
			wantMethod: http.MethodPost,
			wantBody:   `{"size":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var method, body string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				data, _ := io.ReadAll(r.Body)
				body = string(data)
				writeJSON(w, http.StatusOK, hitsResponse)
			})

			if _, err := c.Search(context.Background(), "sample", tt.query, nil); err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestSearch_Hits(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hitsResponse)
	})

	result, err := c.Search(context.Background(), "sample", nil, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Total.Value != 2 || result.Total.Relation != "eq" {
		t.Errorf("Total = %+v, want 2 eq", result.Total)
	}
	if result.MaxScore != 1.5 {
		t.Errorf("MaxScore = %v, want 1.5", result.MaxScore)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("len(Hits) = %d, want 2", len(result.Hits))
	}

	flattened, err := result.Hits[0].Flat()
	if err != nil {
		t.Fatalf("Flat() error = %v", err)
	}
	want := []string{"name", "tags.0", "tags.1", "owner.id"}
	if got := flattened.Keys(); !equalStrings(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := flattened.String("owner.id"); got != "7" {
		t.Errorf("owner.id = %q, want 7", got)
	}

	second, err := result.Hits[1].Flat()
	if err != nil {
		t.Fatalf("Flat() error = %v", err)
	}
	if got := second.Keys(); !equalStrings(got, []string{"name", "owner.id"}) {
		t.Errorf("Keys() = %v, want [name owner.id]", got)
	}
}

func TestSearch_FlatOptions(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hitsResponse)
	})
	c.flatOptions = []flat.Option{flat.WithSeparator("/")}

	result, err := c.Search(context.Background(), "sample", nil, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	flattened, err := result.Hits[0].Flat()
	if err != nil {
		t.Fatalf("Flat() error = %v", err)
	}
	if _, ok := flattened.Get("owner/id"); !ok {
		t.Errorf("Keys() = %v, want owner/id", flattened.Keys())
	}
}

const topHitsResponse = `{
  "took": 4,
  "hits": {"total": 1, "hits": [{"_id": "1", "_source": {"owner": {"id": 7}}}]},
  "aggregations": {
    "latest": {"hits": {"total": 1, "hits": [{"_id": "1", "_source": {"owner": {"id": 7}}}]}},
    "owners": {"buckets": [{"key": 7, "doc_count": 1,
      "top": {"hits": {"total": 1, "hits": [{"_id": "1", "_source": {"owner": {"id": 7}}}]}}}]}
  }
}`

func TestSearch_FlatOptionsReachAggregationHits(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, topHitsResponse)
	})
	c.flatOptions = []flat.Option{flat.WithSeparator("/")}

	result, err := c.Search(context.Background(), "sample", nil, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	hit, err := result.Hits[0].Flat()
	if err != nil {
		t.Fatalf("Flat() error = %v", err)
	}

	latest := result.Aggregations["latest"].Hits
	owners := result.Aggregations["owners"].Buckets
	if len(latest) != 1 || len(owners) != 1 || len(owners[0].Hits) != 1 {
		t.Fatalf("latest = %d hits, owners = %+v", len(latest), owners)
	}
	top := owners[0].Aggregations["top"].Hits
	if len(top) != 1 {
		t.Fatalf("len(top) = %d, want 1", len(top))
	}

	for name, res := range map[string]*flat.Result{
		"hit":    hit,
		"latest": latest[0],
		"bucket": owners[0].Hits[0],
		"sub":    top[0],
	} {
		if _, ok := res.Get("owner/id"); !ok {
			t.Errorf("%s Keys() = %v, want owner/id", name, res.Keys())
		}
	}
}

func TestSearch_Aggregations(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, aggregationResponse)
	})

	result, err := c.Search(context.Background(), "test", query.Search(), nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if result.Total.Value != 3 {
		t.Errorf("Total = %d, want 3", result.Total.Value)
	}
	agg, ok := result.Aggregations["test"]
	if !ok {
		t.Fatalf("Aggregations = %v, want test", result.Aggregations)
	}
	if len(agg.Buckets) != 1 {
		t.Fatalf("len(Buckets) = %d, want 1", len(agg.Buckets))
	}

	bucket := agg.Buckets[0]
	if bucket.Key != "one" || bucket.DocCount != 2 {
		t.Errorf("bucket = %s/%d, want one/2", bucket.Key, bucket.DocCount)
	}

	inner, ok := bucket.Aggregations["test_inner"]
	if !ok || len(inner.Buckets) != 1 {
		t.Fatalf("test_inner = %+v", inner)
	}
	if inner.Buckets[0].Key != "two" || inner.Buckets[0].DocCount != 1 {
		t.Errorf("inner bucket = %s/%d, want two/1", inner.Buckets[0].Key, inner.Buckets[0].DocCount)
	}
}

func TestAggregation_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	data := `{
		"avg_price": {"value": 12.5, "value_as_string": "12.5"},
		"empty": {"value": null},
		"ranges": {"buckets": {"cheap": {"doc_count": 3}, "expensive": {"key": "pricey", "doc_count": 1}}},
		"years": {"buckets": [{"key": 2020, "key_as_string": "2020", "doc_count": 4,
			"latest": {"hits": {"total": 4, "hits": [{"_id": "a", "_source": {"title": "t", "meta": {"n": 1}}}]}}}]}
	}`

	var aggs map[string]*Aggregation
	if err := json.Unmarshal([]byte(data), &aggs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if v := aggs["avg_price"].Value; v == nil || *v != 12.5 {
		t.Errorf("avg_price = %v, want 12.5", v)
	}
	if aggs["avg_price"].ValueAsString != "12.5" {
		t.Errorf("avg_price as string = %q", aggs["avg_price"].ValueAsString)
	}
	if aggs["empty"].Value != nil {
		t.Errorf("empty = %v, want nil", *aggs["empty"].Value)
	}

	ranges := aggs["ranges"].Buckets
	if len(ranges) != 2 || ranges[0].Key != "cheap" || ranges[1].Key != "pricey" {
		t.Errorf("ranges = %+v", ranges)
	}

	years := aggs["years"].Buckets
	if len(years) != 1 {
		t.Fatalf("len(years) = %d, want 1", len(years))
	}
	if years[0].Key != "2020" {
		t.Errorf("Key = %q, want 2020", years[0].Key)
	}
	if n, ok := years[0].RawKey.Int(); !ok || n != 2020 {
		t.Errorf("RawKey = %v, want int 2020", years[0].RawKey)
	}
	if len(years[0].Hits) != 1 {
		t.Fatalf("len(Hits) = %d, want 1", len(years[0].Hits))
	}
	if got := years[0].Hits[0].String("meta.n"); got != "1" {
		t.Errorf("meta.n = %q, want 1", got)
	}
}

type user struct {
	ID    string  `json:"-"`
	Score float64 `json:"-"`
	Name  string  `json:"name"`
}

func (u *user) Key() string            { return u.ID }
func (u *user) SetKey(key string)      { u.ID = key }
func (u *user) SetScore(score float64) { u.Score = score }

func TestSources(t *testing.T) {
	t.Parallel()

	var result SearchResult
	if err := json.Unmarshal([]byte(hitsResponse), &result); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	users, err := Sources[user](&result)
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].ID != "1" || users[0].Score != 1.5 || users[0].Name != "a" {
		t.Errorf("users[0] = %+v", users[0])
	}
	if users[1].ID != "2" || users[1].Name != "b" {
		t.Errorf("users[1] = %+v", users[1])
	}
}

func TestTotal_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data string
		want Total
	}{
		{data: `5`, want: Total{Value: 5, Relation: "eq"}},
		{data: `{"value":10000,"relation":"gte"}`, want: Total{Value: 10000, Relation: "gte"}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			t.Parallel()

			var got Total
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Total = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
