package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jacoelho/esq/value"
)

type BulkAction string

const (
	BulkIndex  BulkAction = "index"
	BulkCreate BulkAction = "create"
	BulkDelete BulkAction = "delete"
	BulkUpdate BulkAction = "update"
)

func (a BulkAction) valid() bool {
	switch a {
	case BulkIndex, BulkCreate, BulkDelete, BulkUpdate:
		return true
	default:
		return false
	}
}

// hasDocument reports whether the action line is followed by a source line.
func (a BulkAction) hasDocument() bool {
	return a != BulkDelete
}

// BulkRequest is one action of a bulk call. Empty ID, Index and Type are
// omitted from the action line.
type BulkRequest struct {
	Action   BulkAction
	ID       any
	Index    string
	Type     string
	Document any
}

// MarshalNDJSON writes the action line and, except for deletes, the document
// line. Both lines end with a newline.
func (r BulkRequest) MarshalNDJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.writeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r BulkRequest) writeTo(buf *bytes.Buffer) error {
	if !r.Action.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, r.Action)
	}

	meta := value.NewMap().
		AddFunc("_id", r.ID, value.NotZero).
		AddFunc("_index", r.Index, value.NotZero).
		AddFunc("_type", r.Type, value.NotZero)
	header, err := value.MapOf(string(r.Action), meta).MarshalJSON()
	if err != nil {
		return fmt.Errorf("client: bulk %s: %w", r.Action, err)
	}
	buf.Write(header)
	buf.WriteByte('\n')

	if !r.Action.hasDocument() {
		return nil
	}
	doc, err := json.Marshal(r.Document)
	if err != nil {
		return fmt.Errorf("client: bulk %s: document: %w", r.Action, err)
	}
	buf.Write(doc)
	buf.WriteByte('\n')
	return nil
}

// BulkResult answers a bulk call. Errors is true when any item failed.
type BulkResult struct {
	Took   time.Duration
	Errors bool
	Items  []BulkResultItem
}

func (r *BulkResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Took   int64            `json:"took"`
		Errors bool             `json:"errors"`
		Items  []BulkResultItem `json:"items"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = BulkResult{
		Took:   time.Duration(wire.Took) * time.Millisecond,
		Errors: wire.Errors,
		Items:  wire.Items,
	}
	return nil
}

// Failed returns the items carrying an error.
func (r *BulkResult) Failed() []BulkResultItem {
	var out []BulkResultItem
	for _, item := range r.Items {
		if item.Error != nil {
			out = append(out, item)
		}
	}
	return out
}

type BulkResultItem struct {
	Action  BulkAction
	ID      string
	Index   string
	Type    string
	Version int64
	Status  int
	Error   *ErrorDetail
}

// UnmarshalJSON reads the {"<action>": {...}} wrapper used by bulk responses.
func (i *BulkResultItem) UnmarshalJSON(data []byte) error {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if len(wrapper) != 1 {
		return fmt.Errorf("client: bulk item: expected one action, got %d", len(wrapper))
	}

	for name, raw := range wrapper {
		action := BulkAction(name)
		if !action.valid() {
			return fmt.Errorf("%w: %q", ErrInvalidAction, name)
		}

		var body struct {
			ID      string       `json:"_id"`
			Index   string       `json:"_index"`
			Type    string       `json:"_type"`
			Version int64        `json:"_version"`
			Status  int          `json:"status"`
			Error   *ErrorDetail `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("client: bulk item %s: %w", name, err)
		}
		*i = BulkResultItem{
			Action:  action,
			ID:      body.ID,
			Index:   body.Index,
			Type:    body.Type,
			Version: body.Version,
			Status:  body.Status,
			Error:   body.Error,
		}
	}
	return nil
}

// Bulk sends actions as a single NDJSON body. index, when set, is the default
// index for actions that do not name one.
func (c *Client) Bulk(ctx context.Context, index string, actions []BulkRequest, params value.Table) (*BulkResult, error) {
	if len(actions) == 0 {
		return &BulkResult{}, nil
	}

	var buf bytes.Buffer
	for _, action := range actions {
		if err := action.writeTo(&buf); err != nil {
			return nil, err
		}
	}

	var result BulkResult
	_, err := c.call(ctx, request{
		op:          "bulk",
		method:      http.MethodPost,
		path:        indexPath(index, "_bulk"),
		params:      params,
		body:        buf.Bytes(),
		contentType: mediaTypeNDJSON,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkDocuments applies one action to every document. Documents implementing
// Keyed send their key as the id. For deletes a document that is not Keyed
// is itself the key.
func (c *Client) BulkDocuments(ctx context.Context, index, docType string, action BulkAction, docs []any, params value.Table) (*BulkResult, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	if !action.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	actions := make([]BulkRequest, 0, len(docs))
	for n, doc := range docs {
		r := BulkRequest{Action: action, Index: index, Type: docType}

		var key any
		if keyed, ok := doc.(Keyed); ok {
			key = keyed.Key()
		} else if action == BulkDelete {
			key = doc
		}

		if action == BulkDelete {
			if !value.NotZero(value.Of(key)) {
				return nil, fmt.Errorf("%w: document %d", ErrMissingKey, n)
			}
		} else {
			r.Document = doc
		}
		r.ID = key
		actions = append(actions, r)
	}

	return c.Bulk(ctx, index, actions, params)
}
