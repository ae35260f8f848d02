package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoHostProvider        = errors.New("client: a host provider is required")
	ErrMissingIndex          = errors.New("client: an index is required")
	ErrMissingKey            = errors.New("client: no key was provided for delete")
	ErrInvalidAction         = errors.New("client: invalid bulk action")
	ErrUnexpectedContentType = errors.New("client: unexpected response content type")
)

// HTTPError is returned for non-success responses.
type HTTPError struct {
	StatusCode int
	Response   *ErrorResult // nil when the body is not an error document
	Body       []byte
}

func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: status, Body: body}

	var result ErrorResult
	if len(body) > 0 && json.Unmarshal(body, &result) == nil && result.Error != nil {
		httpErr.Response = &result
	}
	return httpErr
}

func (e *HTTPError) Error() string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Response == nil || e.Response.Error == nil {
		return "client: " + status
	}
	return fmt.Sprintf("client: %s, %s", status, e.Response.Error)
}

// ErrorResult is the error document returned by the server.
type ErrorResult struct {
	Error  *RootError `json:"error"`
	Status int        `json:"status"`
}

type ErrorDetail struct {
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	StackTrace string `json:"stack_trace,omitempty"`
}

func (d ErrorDetail) String() string {
	if d.Type == "" {
		return d.Reason
	}
	return d.Type + ": " + d.Reason
}

// RootError also accepts the bare string errors sent by old server versions.
type RootError struct {
	ErrorDetail
	RootCause []ErrorDetail `json:"root_cause,omitempty"`
	CausedBy  *ErrorDetail  `json:"caused_by,omitempty"`
}

func (e *RootError) UnmarshalJSON(data []byte) error {
	var reason string
	if err := json.Unmarshal(data, &reason); err == nil {
		*e = RootError{ErrorDetail: ErrorDetail{Reason: reason}}
		return nil
	}

	type plain RootError
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = RootError(decoded)
	return nil
}
