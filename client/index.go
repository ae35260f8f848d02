package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// AcknowledgeResult answers index management calls. Members other than
// acknowledged are kept in Properties.
type AcknowledgeResult struct {
	Acknowledged bool
	Properties   map[string]any
}

func (r *AcknowledgeResult) UnmarshalJSON(data []byte) error {
	var members map[string]any
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	out := AcknowledgeResult{Properties: members}
	if ack, ok := members["acknowledged"].(bool); ok {
		out.Acknowledged = ack
	}
	delete(members, "acknowledged")

	*r = out
	return nil
}

// IndexResult describes one index as returned by GetIndex.
type IndexResult struct {
	Aliases  map[string]json.RawMessage `json:"aliases"`
	Mappings json.RawMessage            `json:"mappings"`
	Settings map[string]IndexSettings   `json:"settings"`
}

// IndexSettings holds the well known settings; the rest stay in Properties.
type IndexSettings struct {
	CreationDate     UnixMillis
	NumberOfShards   int
	NumberOfReplicas int
	UUID             string
	Properties       map[string]json.RawMessage
}

func (s *IndexSettings) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	out := IndexSettings{Properties: make(map[string]json.RawMessage)}
	for name, raw := range members {
		var err error
		switch name {
		case "creation_date":
			err = json.Unmarshal(raw, &out.CreationDate)
		case "number_of_shards":
			out.NumberOfShards, err = looseInt(raw)
		case "number_of_replicas":
			out.NumberOfReplicas, err = looseInt(raw)
		case "uuid":
			err = json.Unmarshal(raw, &out.UUID)
		default:
			out.Properties[name] = raw
		}
		if err != nil {
			return fmt.Errorf("client: settings %s: %w", name, err)
		}
	}

	*s = out
	return nil
}

// UnixMillis is a timestamp sent as milliseconds since the epoch, either as a
// number or a numeric string.
type UnixMillis struct {
	time.Time
}

func (u *UnixMillis) UnmarshalJSON(data []byte) error {
	ms, err := looseInt64(data)
	if err != nil {
		return err
	}
	u.Time = time.UnixMilli(ms).UTC()
	return nil
}

func looseInt(raw json.RawMessage) (int, error) {
	n, err := looseInt64(raw)
	return int(n), err
}

func looseInt64(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	var n int64
	err := json.Unmarshal(raw, &n)
	return n, err
}

// CreateIndex creates index with optional settings and mappings.
func (c *Client) CreateIndex(ctx context.Context, index string, settings any) (*AcknowledgeResult, error) {
	r := request{op: "create_index", method: http.MethodPut, path: indexPath(index)}
	if settings != nil {
		body, err := encodeBody(settings)
		if err != nil {
			return nil, err
		}
		r.body = body
		r.contentType = mediaTypeJSON
	}
	return c.acknowledge(ctx, index, r)
}

func (c *Client) DeleteIndex(ctx context.Context, index string) (*AcknowledgeResult, error) {
	return c.acknowledge(ctx, index, request{op: "delete_index", method: http.MethodDelete, path: indexPath(index)})
}

func (c *Client) OpenIndex(ctx context.Context, index string) (*AcknowledgeResult, error) {
	return c.acknowledge(ctx, index, request{op: "open_index", method: http.MethodPost, path: indexPath(index, "_open")})
}

func (c *Client) CloseIndex(ctx context.Context, index string) (*AcknowledgeResult, error) {
	return c.acknowledge(ctx, index, request{op: "close_index", method: http.MethodPost, path: indexPath(index, "_close")})
}

func (c *Client) acknowledge(ctx context.Context, index string, r request) (*AcknowledgeResult, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	var result AcknowledgeResult
	if _, err := c.call(ctx, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIndex returns the description of every index matching index.
func (c *Client) GetIndex(ctx context.Context, index string) (map[string]IndexResult, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	var result map[string]IndexResult
	_, err := c.call(ctx, request{op: "get_index", method: http.MethodGet, path: indexPath(index)}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IndexExists reports true on 200 and false on 404. Other statuses are errors.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	if index == "" {
		return false, ErrMissingIndex
	}
	status, err := c.call(ctx, request{
		op:     "index_exists",
		method: http.MethodHead,
		path:   indexPath(index),
		accept: []int{http.StatusNotFound},
	}, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}
