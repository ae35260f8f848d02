package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/value"
)

const defaultDocType = "_doc"

type GetResult struct {
	Index   string          `json:"_index"`
	Type    string          `json:"_type,omitempty"`
	ID      string          `json:"_id"`
	Version int64           `json:"_version"`
	Found   bool            `json:"found"`
	Source  json.RawMessage `json:"_source,omitempty"`
	Fields  map[string]any  `json:"fields,omitempty"`

	flatOptions []flat.Option
}

func (r *GetResult) Flat() (*flat.Result, error) {
	if len(r.Source) == 0 {
		return nil, fmt.Errorf("client: document %s has no source", r.ID)
	}
	return flat.Unmarshal(r.Source, r.flatOptions...)
}

func (r *GetResult) Decode(v any) error {
	if len(r.Source) == 0 {
		return fmt.Errorf("client: document %s has no source", r.ID)
	}
	return json.Unmarshal(r.Source, v)
}

// Get fetches a document. A missing document is reported through Found
// rather than an error. An empty docType means "_doc".
func (c *Client) Get(ctx context.Context, index, docType, id string, params value.Table) (*GetResult, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	if docType == "" {
		docType = defaultDocType
	}

	var result GetResult
	_, err := c.call(ctx, request{
		op:     "get_doc",
		method: http.MethodGet,
		path:   indexPath(index, docType, id),
		params: params,
		accept: []int{http.StatusNotFound},
	}, &result)
	if err != nil {
		return nil, err
	}
	result.flatOptions = c.flatOptions
	return &result, nil
}

// GetSource decodes only the document source into v.
func (c *Client) GetSource(ctx context.Context, index, docType, id string, params value.Table, v any) error {
	if index == "" {
		return ErrMissingIndex
	}
	if docType == "" {
		docType = defaultDocType
	}

	_, err := c.call(ctx, request{
		op:     "get_source",
		method: http.MethodGet,
		path:   indexPath(index, docType, id, "_source"),
		params: params,
	}, v)
	return err
}
