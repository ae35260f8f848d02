package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jacoelho/esq/hosts"
	"github.com/jacoelho/esq/value"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	urls, err := hosts.Parse(server.URL)
	if err != nil {
		t.Fatalf("hosts.Parse(%q) error = %v", server.URL, err)
	}
	provider, err := hosts.New(urls...)
	if err != nil {
		t.Fatalf("hosts.New() error = %v", err)
	}

	c, err := New(Options{Hosts: provider, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_RequiresHosts(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); !errors.Is(err, ErrNoHostProvider) {
		t.Fatalf("New() error = %v, want ErrNoHostProvider", err)
	}
}

func TestCall_Headers(t *testing.T) {
	t.Parallel()

	var (
		contentType string
		opaqueID    string
		rawQuery    string
		method      string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		opaqueID = r.Header.Get("X-Opaque-Id")
		rawQuery = r.URL.RawQuery
		method = r.Method
		writeJSON(w, http.StatusOK, `{"took":1,"hits":{"total":0,"hits":[]}}`)
	})

	_, err := c.Search(context.Background(), "sample", value.MapOf("size", 0), nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if method != http.MethodPost {
		t.Errorf("method = %q, want POST", method)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json without charset", contentType)
	}
	if _, err := uuid.Parse(opaqueID); err != nil {
		t.Errorf("X-Opaque-Id = %q, not a uuid: %v", opaqueID, err)
	}
	if rawQuery != "" {
		t.Errorf("RawQuery = %q, want empty", rawQuery)
	}
}

func TestCall_QueryString(t *testing.T) {
	t.Parallel()

	var rawQuery, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		path = r.URL.Path
		writeJSON(w, http.StatusOK, `{"hits":{"hits":[]}}`)
	})

	params := value.TableOf("a", true, "b", 2, "c", "test")
	if _, err := c.Search(context.Background(), "one,two", nil, params); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if rawQuery != "a=true&b=2&c=test" {
		t.Errorf("RawQuery = %q, want a=true&b=2&c=test", rawQuery)
	}
	if path != "/one,two/_search" {
		t.Errorf("Path = %q, want /one,two/_search", path)
	}
}

func TestCall_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantMsg string
		typed   bool
	}{
		{
			name:    "error document",
			body:    `{"error":{"root_cause":[],"type":"index_not_found_exception","reason":"no such index"},"status":404}`,
			wantMsg: "client: 404 Not Found, index_not_found_exception: no such index",
			typed:   true,
		},
		{
			name:    "string error",
			body:    `{"error":"IndexMissingException[[x] missing]","status":404}`,
			wantMsg: "client: 404 Not Found, IndexMissingException[[x] missing]",
			typed:   true,
		},
		{
			name:    "no document",
			body:    `not json`,
			wantMsg: "client: 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, tt.body)
			})

			_, err := c.Search(context.Background(), "x", nil, nil)
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("Search() error = %v, want *HTTPError", err)
			}
			if httpErr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", httpErr.Error(), tt.wantMsg)
			}
			if (httpErr.Response != nil) != tt.typed {
				t.Errorf("Response = %v, want typed = %v", httpErr.Response, tt.typed)
			}
			if string(httpErr.Body) != tt.body {
				t.Errorf("Body = %q, want %q", httpErr.Body, tt.body)
			}
		})
	}
}

func TestCall_RejectsNonJSON(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html></html>")
	})

	_, err := c.Search(context.Background(), "x", nil, nil)
	if !errors.Is(err, ErrUnexpectedContentType) {
		t.Fatalf("Search() error = %v, want ErrUnexpectedContentType", err)
	}
}

func TestCall_ContextCanceled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Search(ctx, "x", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() error = %v, want context.Canceled", err)
	}
}

func TestNewFromEnv(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"acknowledged":true}`)
	}))
	defer server.Close()

	t.Setenv("ESQ_HOSTS", server.URL+","+server.URL)
	t.Setenv("ESQ_TIMEOUT", "5s")
	t.Setenv("ESQ_RATE_LIMIT", "100")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Timeout.String() != "5s" || cfg.RateLimit != 100 {
		t.Errorf("LoadEnv() = %+v", cfg)
	}

	c, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	if _, ok := c.hosts.(*hosts.Pool); !ok {
		t.Errorf("hosts = %T, want *hosts.Pool", c.hosts)
	}

	result, err := c.DeleteIndex(context.Background(), "sample")
	if err != nil {
		t.Fatalf("DeleteIndex() error = %v", err)
	}
	if !result.Acknowledged {
		t.Error("Acknowledged = false, want true")
	}
}

func TestIndexPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		segments []string
		want     string
	}{
		{segments: []string{"", "_search"}, want: "_search"},
		{segments: []string{"sample", "_doc", "a b"}, want: "sample/_doc/a%20b"},
		{segments: []string{"sample", "_doc", "a/b"}, want: "sample/_doc/a%2Fb"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.segments, "|"), func(t *testing.T) {
			t.Parallel()

			if got := indexPath(tt.segments...); got != tt.want {
				t.Errorf("indexPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
