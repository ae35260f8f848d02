package query

import "github.com/jacoelho/esq/value"

// SortOrder is the direction of a sort clause.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SearchRequest assembles a search body. Unset parts are omitted.
type SearchRequest struct {
	query   *value.Map
	size    int
	sizeSet bool
	from    int
	sort    []value.Value
	source  []string
	aggs    *value.Map
}

func Search() *SearchRequest {
	return &SearchRequest{aggs: value.NewMap()}
}

func (s *SearchRequest) Query(q *value.Map) *SearchRequest {
	s.query = q
	return s
}

// Size sets the number of hits to return; zero is sent when set explicitly.
func (s *SearchRequest) Size(n int) *SearchRequest {
	s.size = n
	s.sizeSet = true
	return s
}

// From is sent only when positive.
func (s *SearchRequest) From(n int) *SearchRequest {
	s.from = n
	return s
}

func (s *SearchRequest) Sort(field string, order SortOrder) *SearchRequest {
	s.sort = append(s.sort, value.FromMap(value.MapOf(field, value.MapOf("order", string(order)))))
	return s
}

// Source restricts the returned document fields.
func (s *SearchRequest) Source(fields ...string) *SearchRequest {
	s.source = append(s.source, fields...)
	return s
}

func (s *SearchRequest) Aggregation(name string, agg *value.Map) *SearchRequest {
	s.aggs.Set(name, agg)
	return s
}

func (s *SearchRequest) Map() *value.Map {
	return value.NewMap().
		Add("query", s.query, s.query != nil).
		Add("size", s.size, s.sizeSet).
		Add("from", s.from, s.from > 0).
		Add("sort", value.List(s.sort...), len(s.sort) > 0).
		Add("_source", s.source, len(s.source) > 0).
		Add("aggs", s.aggs, s.aggs.Len() > 0)
}

func (s *SearchRequest) MarshalJSON() ([]byte, error) {
	return s.Map().MarshalJSON()
}
