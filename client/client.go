// Package client talks to an Elasticsearch compatible search service over
// HTTP.
//
// Request bodies are encoded with encoding/json, so the ordered builders from
// the query and value packages can be passed directly. Hit sources are kept
// raw and flattened on demand with the flat package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"

	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/hosts"
	"github.com/jacoelho/esq/internal/httpclient"
	"github.com/jacoelho/esq/internal/ratelimit"
	"github.com/jacoelho/esq/internal/sanitizer"
	"github.com/jacoelho/esq/value"
)

const (
	// Sent without a charset parameter, which some server versions reject.
	mediaTypeJSON   = "application/json"
	mediaTypeNDJSON = "application/x-ndjson"

	headerOpaqueID = "X-Opaque-Id"

	defaultTimeout = 30 * time.Second
)

var jsonMediaType = contenttype.NewMediaType(mediaTypeJSON)

// Options configure a Client. Hosts is required.
type Options struct {
	Hosts      hosts.Provider
	HTTPClient *http.Client
	Logger     *slog.Logger

	// RateLimit caps requests per second; zero disables throttling.
	RateLimit float64

	// FlatOptions apply whenever hit sources are flattened.
	FlatOptions []flat.Option

	// DumpBodies logs redacted request and response dumps at debug level.
	DumpBodies bool
}

// Client is safe for concurrent use.
type Client struct {
	hosts       hosts.Provider
	http        *http.Client
	log         *slog.Logger
	limiter     *ratelimit.Limiter
	flatOptions []flat.Option
	dumpBodies  bool
}

func New(opts Options) (*Client, error) {
	if opts.Hosts == nil {
		return nil, ErrNoHostProvider
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Options{Timeout: defaultTimeout})
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		hosts:       opts.Hosts,
		http:        httpClient,
		log:         logger,
		limiter:     ratelimit.New(opts.RateLimit),
		flatOptions: opts.FlatOptions,
		dumpBodies:  opts.DumpBodies,
	}, nil
}

// EnvConfig is read by NewFromEnv. Hosts is a comma separated list.
type EnvConfig struct {
	Hosts     string        `env:"ESQ_HOSTS,default=http://localhost:9200"`
	Timeout   time.Duration `env:"ESQ_TIMEOUT,default=30s"`
	RateLimit float64       `env:"ESQ_RATE_LIMIT,default=0"`
}

// LoadEnv decodes EnvConfig from the environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return EnvConfig{}, fmt.Errorf("client: environment: %w", err)
	}
	return cfg, nil
}

// NewFromEnv builds a client from ESQ_HOSTS, ESQ_TIMEOUT and ESQ_RATE_LIMIT.
func NewFromEnv() (*Client, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	urls, err := hosts.Parse(strings.Split(cfg.Hosts, ",")...)
	if err != nil {
		return nil, err
	}
	provider, err := hosts.New(urls...)
	if err != nil {
		return nil, err
	}

	return New(Options{
		Hosts:      provider,
		HTTPClient: httpclient.New(httpclient.Options{Timeout: cfg.Timeout}),
		RateLimit:  cfg.RateLimit,
	})
}

type request struct {
	op          string
	method      string
	path        string
	params      value.Table
	body        []byte
	contentType string

	// accept lists non-2xx statuses decoded like a success.
	accept []int
}

// call sends r and decodes a JSON response into out, which may be nil.
func (c *Client) call(ctx context.Context, r request, out any) (int, error) {
	resp, body, err := c.send(ctx, r)
	if err != nil {
		return 0, err
	}

	if !successful(resp.StatusCode, r.accept) {
		return resp.StatusCode, newHTTPError(resp.StatusCode, body)
	}
	if out == nil || r.method == http.MethodHead {
		return resp.StatusCode, nil
	}

	mediaType, err := contenttype.GetMediaType(&http.Request{Header: resp.Header})
	if err != nil || !mediaType.Matches(jsonMediaType) {
		return resp.StatusCode, fmt.Errorf("%w: %q", ErrUnexpectedContentType, resp.Header.Get("Content-Type"))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("client: %s: decode response: %w", r.op, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, []byte, error) {
	base, err := c.hosts.Next()
	if err != nil {
		return nil, nil, fmt.Errorf("client: %s: %w", r.op, err)
	}

	target := base.JoinPath(r.path)
	if len(r.params) > 0 {
		target.RawQuery = r.params.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("client: %s: %w", r.op, err)
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), body)
	if err != nil {
		return nil, nil, fmt.Errorf("client: %s: %w", r.op, err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", mediaTypeJSON)

	opaqueID := uuid.New().String()
	req.Header.Set(headerOpaqueID, opaqueID)

	c.dumpRequest(ctx, req, target)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelDebug, "request failed",
			slog.String("op", r.op),
			slog.String("method", r.method),
			slog.String("url", sanitizer.RedactURL(target)),
			slog.String("opaque_id", opaqueID),
			slog.String("err", err.Error()),
		)
		return nil, nil, fmt.Errorf("client: %s: %w", r.op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("client: %s: read response: %w", r.op, err)
	}

	c.log.LogAttrs(ctx, slog.LevelDebug, "request",
		slog.String("op", r.op),
		slog.String("method", r.method),
		slog.String("url", sanitizer.RedactURL(target)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("opaque_id", opaqueID),
	)
	c.dumpResponse(ctx, resp, respBody, target)

	return resp, respBody, nil
}

func (c *Client) dumpRequest(ctx context.Context, req *http.Request, target *url.URL) {
	if !c.dumpBodies || !c.log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	dump, err := sanitizer.DumpRequest(req, secretsOf(target), req.Header.Get(headerOpaqueID))
	if err != nil {
		c.log.DebugContext(ctx, "dump request failed", slog.String("err", err.Error()))
		return
	}
	c.log.DebugContext(ctx, "request dump", slog.String("dump", string(dump)))
}

func (c *Client) dumpResponse(ctx context.Context, resp *http.Response, body []byte, target *url.URL) {
	if !c.dumpBodies || !c.log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	dump, err := sanitizer.DumpResponse(resp, body, secretsOf(target), resp.Request.Header.Get(headerOpaqueID))
	if err != nil {
		c.log.DebugContext(ctx, "dump response failed", slog.String("err", err.Error()))
		return
	}
	c.log.DebugContext(ctx, "response dump", slog.String("dump", string(dump)))
}

func secretsOf(u *url.URL) []string {
	if u.User == nil {
		return nil
	}
	if password, ok := u.User.Password(); ok {
		return []string{password}
	}
	return nil
}

func successful(status int, accept []int) bool {
	if status >= 200 && status < 300 {
		return true
	}
	for _, s := range accept {
		if s == status {
			return true
		}
	}
	return false
}

// encodeBody marshals a request body. Raw JSON passes through untouched.
func encodeBody(v any) ([]byte, error) {
	switch current := v.(type) {
	case json.RawMessage:
		return current, nil
	case []byte:
		return current, nil
	case string:
		return []byte(current), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("client: encode body: %w", err)
		}
		return data, nil
	}
}

// indexPath joins non-empty path segments, escaping each one.
func indexPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, url.PathEscape(s))
		}
	}
	return strings.Join(parts, "/")
}
