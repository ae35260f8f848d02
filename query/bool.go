package query

import "github.com/jacoelho/esq/value"

// BoolQuery combines clauses. Empty clause lists are left out of the body.
type BoolQuery struct {
	must               []value.Value
	filter             []value.Value
	should             []value.Value
	mustNot            []value.Value
	minimumShouldMatch any
	boost              float64
}

func Bool() *BoolQuery {
	return &BoolQuery{}
}

func (b *BoolQuery) Must(queries ...*value.Map) *BoolQuery {
	b.must = appendQueries(b.must, queries)
	return b
}

// Filter clauses must match but do not contribute to scoring.
func (b *BoolQuery) Filter(queries ...*value.Map) *BoolQuery {
	b.filter = appendQueries(b.filter, queries)
	return b
}

func (b *BoolQuery) Should(queries ...*value.Map) *BoolQuery {
	b.should = appendQueries(b.should, queries)
	return b
}

func (b *BoolQuery) MustNot(queries ...*value.Map) *BoolQuery {
	b.mustNot = appendQueries(b.mustNot, queries)
	return b
}

// MinimumShouldMatch accepts a count or a percentage string such as "75%".
func (b *BoolQuery) MinimumShouldMatch(v any) *BoolQuery {
	b.minimumShouldMatch = v
	return b
}

func (b *BoolQuery) Boost(boost float64) *BoolQuery {
	b.boost = boost
	return b
}

func (b *BoolQuery) Map() *value.Map {
	inner := value.NewMap().
		Add("must", value.List(b.must...), len(b.must) > 0).
		Add("filter", value.List(b.filter...), len(b.filter) > 0).
		Add("should", value.List(b.should...), len(b.should) > 0).
		Add("must_not", value.List(b.mustNot...), len(b.mustNot) > 0).
		AddFunc("minimum_should_match", b.minimumShouldMatch, value.NotNull).
		Add("boost", b.boost, b.boost != 0)
	return value.MapOf("bool", inner)
}

func (b *BoolQuery) MarshalJSON() ([]byte, error) {
	return b.Map().MarshalJSON()
}

func appendQueries(dst []value.Value, queries []*value.Map) []value.Value {
	for _, q := range queries {
		if q != nil {
			dst = append(dst, value.FromMap(q))
		}
	}
	return dst
}
