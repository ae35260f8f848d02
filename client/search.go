package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/value"
)

// Total is the hit count. Both the plain number and the
// {"value":n,"relation":"eq"} forms are accepted.
type Total struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation,omitempty"`
}

func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("client: total: %w", err)
		}
		*t = Total{Value: n, Relation: "eq"}
		return nil
	}

	type plain Total
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*t = Total(decoded)
	return nil
}

// Hit is one search result. Source holds the raw document.
type Hit struct {
	Index     string               `json:"_index"`
	Type      string               `json:"_type,omitempty"`
	ID        string               `json:"_id"`
	Score     float64              `json:"_score"`
	Source    json.RawMessage      `json:"_source,omitempty"`
	InnerHits map[string]InnerHits `json:"inner_hits,omitempty"`

	flatOptions []flat.Option
}

type InnerHits struct {
	Hits struct {
		Total Total `json:"total"`
		Hits  []Hit `json:"hits"`
	} `json:"hits"`
}

// Flat flattens the hit source into dotted paths.
func (h *Hit) Flat() (*flat.Result, error) {
	if len(h.Source) == 0 {
		return nil, fmt.Errorf("client: hit %s has no source", h.ID)
	}
	return flat.Unmarshal(h.Source, h.flatOptions...)
}

// Decode unmarshals the hit source into v.
func (h *Hit) Decode(v any) error {
	if len(h.Source) == 0 {
		return fmt.Errorf("client: hit %s has no source", h.ID)
	}
	return json.Unmarshal(h.Source, v)
}

type Suggestion struct {
	Text    string             `json:"text"`
	Offset  int                `json:"offset"`
	Length  int                `json:"length"`
	Options []SuggestionOption `json:"options"`
}

type SuggestionOption struct {
	Text        string  `json:"text"`
	Highlighted string  `json:"highlighted,omitempty"`
	Score       float64 `json:"score"`
}

type SearchResult struct {
	Took         int64                   `json:"took"`
	TimedOut     bool                    `json:"timed_out"`
	ScrollID     string                  `json:"_scroll_id,omitempty"`
	Total        Total                   `json:"-"`
	MaxScore     float64                 `json:"-"`
	Hits         []Hit                   `json:"-"`
	Aggregations map[string]*Aggregation `json:"aggregations,omitempty"`
	Suggestions  map[string][]Suggestion `json:"suggest,omitempty"`
}

func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type plain SearchResult
	var wire struct {
		plain
		Hits struct {
			Total    Total    `json:"total"`
			MaxScore *float64 `json:"max_score"`
			Hits     []Hit    `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = SearchResult(wire.plain)
	r.Total = wire.Hits.Total
	r.Hits = wire.Hits.Hits
	if wire.Hits.MaxScore != nil {
		r.MaxScore = *wire.Hits.MaxScore
	}
	return nil
}

// Keyed documents receive their hit id when decoded by Sources.
type Keyed interface {
	Key() string
	SetKey(key string)
}

// Scored documents receive their hit score when decoded by Sources.
type Scored interface {
	SetScore(score float64)
}

// Sources decodes every hit source into a T.
func Sources[T any](r *SearchResult) ([]T, error) {
	out := make([]T, 0, len(r.Hits))
	for i := range r.Hits {
		hit := &r.Hits[i]

		var doc T
		if err := hit.Decode(&doc); err != nil {
			return nil, fmt.Errorf("client: hit %s: %w", hit.ID, err)
		}
		if keyed, ok := any(&doc).(Keyed); ok {
			keyed.SetKey(hit.ID)
		}
		if scored, ok := any(&doc).(Scored); ok {
			scored.SetScore(hit.Score)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Search runs query against index, which may be empty or a comma separated
// list. A nil query sends a GET without a body.
func (c *Client) Search(ctx context.Context, index string, query any, params value.Table) (*SearchResult, error) {
	r := request{
		op:     "search",
		method: http.MethodGet,
		path:   indexPath(index, "_search"),
		params: params,
	}
	if query != nil {
		body, err := encodeBody(query)
		if err != nil {
			return nil, err
		}
		r.method = http.MethodPost
		r.body = body
		r.contentType = mediaTypeJSON
	}

	var result SearchResult
	if _, err := c.call(ctx, r, &result); err != nil {
		return nil, err
	}
	c.attachFlatOptions(result.Hits)
	if len(c.flatOptions) > 0 {
		for _, name := range sortedKeys(result.Aggregations) {
			if err := result.Aggregations[name].reflatten(c.flatOptions); err != nil {
				return nil, fmt.Errorf("client: aggregation %s: %w", name, err)
			}
		}
	}
	return &result, nil
}

func (c *Client) attachFlatOptions(hits []Hit) {
	for i := range hits {
		hits[i].flatOptions = c.flatOptions
		for name, inner := range hits[i].InnerHits {
			c.attachFlatOptions(inner.Hits.Hits)
			hits[i].InnerHits[name] = inner
		}
	}
}
