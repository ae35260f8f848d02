package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/value"
)

// Aggregation is a decoded aggregation result. Bucket aggregations fill
// Buckets, metric aggregations fill Value and top hits aggregations fill
// Hits. Members holding objects that are not recognised are decoded as
// sub-aggregations.
type Aggregation struct {
	DocCountErrorUpperBound int64
	SumOtherDocCount        int64
	Value                   *float64
	ValueAsString           string
	Buckets                 []*Bucket
	Hits                    []*flat.Result
	Aggregations            map[string]*Aggregation

	sources []json.RawMessage
}

func (a *Aggregation) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("client: aggregation: %w", err)
	}

	out := Aggregation{}
	for _, name := range sortedKeys(members) {
		raw := members[name]

		var err error
		switch name {
		case "doc_count_error_upper_bound":
			err = json.Unmarshal(raw, &out.DocCountErrorUpperBound)
		case "sum_other_doc_count":
			err = json.Unmarshal(raw, &out.SumOtherDocCount)
		case "value":
			err = json.Unmarshal(raw, &out.Value)
		case "value_as_string":
			err = json.Unmarshal(raw, &out.ValueAsString)
		case "buckets":
			out.Buckets, err = decodeBuckets(raw)
		case "hits":
			out.sources, err = topHitSources(raw)
		case "meta":
		default:
			if isObject(raw) {
				err = addSubAggregation(&out.Aggregations, name, raw)
			}
		}
		if err != nil {
			return fmt.Errorf("client: aggregation %s: %w", name, err)
		}
	}

	var err error
	if out.Hits, err = flattenSources(out.sources, nil); err != nil {
		return fmt.Errorf("client: aggregation hits: %w", err)
	}

	*a = out
	return nil
}

// Bucket is one bucket of a bucket aggregation. Hits collects the flattened
// sources of any top hits sub-aggregation.
type Bucket struct {
	Key          string
	RawKey       value.Value
	KeyAsString  string
	DocCount     int64
	Hits         []*flat.Result
	Aggregations map[string]*Aggregation

	sources []json.RawMessage
}

func (b *Bucket) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("client: bucket: %w", err)
	}

	out := Bucket{}
	for _, name := range sortedKeys(members) {
		raw := members[name]

		var err error
		switch name {
		case "key":
			err = json.Unmarshal(raw, &out.RawKey)
			out.Key = out.RawKey.String()
		case "key_as_string":
			err = json.Unmarshal(raw, &out.KeyAsString)
		case "doc_count":
			err = json.Unmarshal(raw, &out.DocCount)
		case "hits":
			out.sources, err = topHitSources(raw)
		default:
			if isObject(raw) {
				err = addSubAggregation(&out.Aggregations, name, raw)
			}
		}
		if err != nil {
			return fmt.Errorf("client: bucket %s: %w", name, err)
		}
	}

	var err error
	if out.Hits, err = flattenSources(out.sources, nil); err != nil {
		return fmt.Errorf("client: bucket hits: %w", err)
	}
	for _, name := range sortedKeys(out.Aggregations) {
		out.Hits = append(out.Hits, out.Aggregations[name].Hits...)
	}

	*b = out
	return nil
}

// reflatten rebuilds Hits of the aggregation tree with opts.
func (a *Aggregation) reflatten(opts []flat.Option) error {
	hits, err := flattenSources(a.sources, opts)
	if err != nil {
		return err
	}
	a.Hits = hits
	for _, bucket := range a.Buckets {
		if err := bucket.reflatten(opts); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(a.Aggregations) {
		if err := a.Aggregations[name].reflatten(opts); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bucket) reflatten(opts []flat.Option) error {
	hits, err := flattenSources(b.sources, opts)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(b.Aggregations) {
		sub := b.Aggregations[name]
		if err := sub.reflatten(opts); err != nil {
			return err
		}
		hits = append(hits, sub.Hits...)
	}
	b.Hits = hits
	return nil
}

// decodeBuckets accepts the array form and the keyed object form, which is
// returned in key order.
func decodeBuckets(raw json.RawMessage) ([]*Bucket, error) {
	if !isObject(raw) {
		var buckets []*Bucket
		err := json.Unmarshal(raw, &buckets)
		return buckets, err
	}

	var keyed map[string]*Bucket
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, err
	}
	buckets := make([]*Bucket, 0, len(keyed))
	for _, key := range sortedKeys(keyed) {
		bucket := keyed[key]
		if bucket.Key == "" {
			bucket.Key = key
			bucket.RawKey = value.String(key)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

func topHitSources(raw json.RawMessage) ([]json.RawMessage, error) {
	var wrapper struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}

	var out []json.RawMessage
	for _, hit := range wrapper.Hits {
		if len(hit.Source) > 0 && !bytes.Equal(hit.Source, []byte("null")) {
			out = append(out, hit.Source)
		}
	}
	return out, nil
}

func flattenSources(sources []json.RawMessage, opts []flat.Option) ([]*flat.Result, error) {
	if sources == nil {
		return nil, nil
	}
	out := make([]*flat.Result, 0, len(sources))
	for _, source := range sources {
		result, err := flat.Unmarshal(source, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

func addSubAggregation(dst *map[string]*Aggregation, name string, raw json.RawMessage) error {
	var sub Aggregation
	if err := json.Unmarshal(raw, &sub); err != nil {
		return err
	}
	if *dst == nil {
		*dst = make(map[string]*Aggregation)
	}
	(*dst)[name] = &sub
	return nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
