package query

import "github.com/jacoelho/esq/value"

// MetricKind names a single-value metric aggregation.
type MetricKind string

const (
	Avg         MetricKind = "avg"
	Sum         MetricKind = "sum"
	Min         MetricKind = "min"
	Max         MetricKind = "max"
	Cardinality MetricKind = "cardinality"
	ValueCount  MetricKind = "value_count"
)

// TermsAgg buckets documents by the distinct values of field. A size of zero
// keeps the server default.
func TermsAgg(field string, size int) *value.Map {
	inner := value.MapOf("field", field).Add("size", size, size > 0)
	return value.MapOf("terms", inner)
}

// TopHits returns the best matching documents of each bucket, optionally
// restricted to the given source fields.
func TopHits(size int, source ...string) *value.Map {
	inner := value.NewMap().
		Add("size", size, size > 0).
		Add("_source", source, len(source) > 0)
	return value.MapOf("top_hits", inner)
}

func Metric(kind MetricKind, field string) *value.Map {
	return value.MapOf(string(kind), value.MapOf("field", field))
}

// WithSubAggregations nests subs under agg and returns agg.
func WithSubAggregations(agg *value.Map, subs *value.Map) *value.Map {
	if subs.Len() == 0 {
		return agg
	}
	return agg.Set("aggs", subs)
}
