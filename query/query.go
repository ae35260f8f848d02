// Package query builds search request bodies as ordered maps.
//
// Every builder returns a *value.Map so results compose freely and encode
// with their keys in construction order.
package query

import (
	"errors"

	"github.com/jacoelho/esq/value"
)

var ErrMissingLookupField = errors.New("query: terms lookup requires index, id and path")

// Option adjusts a leaf query.
type Option func(*value.Map)

// Boost weights the query's relevance score.
func Boost(boost float64) Option {
	return func(m *value.Map) {
		m.Set("boost", boost)
	}
}

// Term matches documents containing the exact term in field.
func Term(field string, v any, opts ...Option) *value.Map {
	if len(opts) == 0 {
		return value.MapOf("term", value.MapOf(field, v))
	}
	inner := value.MapOf("value", v)
	apply(inner, opts)
	return value.MapOf("term", value.MapOf(field, inner))
}

// Terms matches documents whose field holds any of values.
func Terms[T any](field string, values []T, opts ...Option) *value.Map {
	items := make([]value.Value, len(values))
	for i, v := range values {
		items[i] = value.Of(v)
	}
	inner := value.MapOf(field, value.List(items...))
	apply(inner, opts)
	return value.MapOf("terms", inner)
}

// Lookup points a terms query at the values stored in another document.
type Lookup struct {
	Index   string
	ID      any
	Path    string
	Type    string
	Routing string
}

// TermsLookup fetches term values from the field at Path of the referenced
// document.
func TermsLookup(field string, lookup Lookup, opts ...Option) (*value.Map, error) {
	if lookup.Index == "" || lookup.ID == nil || lookup.Path == "" {
		return nil, ErrMissingLookupField
	}

	ref := value.NewMap().
		Set("index", lookup.Index).
		Set("id", lookup.ID).
		Set("path", lookup.Path).
		AddFunc("type", lookup.Type, value.NotZero).
		AddFunc("routing", lookup.Routing, value.NotZero)

	inner := value.MapOf(field, ref)
	apply(inner, opts)
	return value.MapOf("terms", inner), nil
}

// Match runs a full text query against field.
func Match(field, text string, opts ...Option) *value.Map {
	if len(opts) == 0 {
		return value.MapOf("match", value.MapOf(field, text))
	}
	inner := value.MapOf("query", text)
	apply(inner, opts)
	return value.MapOf("match", value.MapOf(field, inner))
}

func MatchAll() *value.Map {
	return value.MapOf("match_all", value.NewMap())
}

// Bounds limits a range query. Nil bounds are omitted.
type Bounds struct {
	GT     any
	GTE    any
	LT     any
	LTE    any
	Format string
}

func Range(field string, bounds Bounds, opts ...Option) *value.Map {
	inner := value.NewMap().
		AddFunc("gt", bounds.GT, value.NotNull).
		AddFunc("gte", bounds.GTE, value.NotNull).
		AddFunc("lt", bounds.LT, value.NotNull).
		AddFunc("lte", bounds.LTE, value.NotNull).
		AddFunc("format", bounds.Format, value.NotZero)
	apply(inner, opts)
	return value.MapOf("range", value.MapOf(field, inner))
}

// Exists matches documents with an indexed value for field.
func Exists(field string) *value.Map {
	return value.MapOf("exists", value.MapOf("field", field))
}

func apply(m *value.Map, opts []Option) {
	for _, opt := range opts {
		opt(m)
	}
}
