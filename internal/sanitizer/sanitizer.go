// Package sanitizer removes credentials from request and response dumps
// before they are logged.
package sanitizer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}

// RedactURL renders u with any password replaced.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Redacted()
}

// DumpRequest dumps req with credential headers masked and each secret
// replaced by a salted hash. The request body is restored for sending.
func DumpRequest(req *http.Request, secrets []string, salt string) ([]byte, error) {
	clone := req.Clone(req.Context())
	maskHeaders(clone.Header)
	if clone.URL != nil && clone.URL.User != nil {
		clone.URL.User = url.User(clone.URL.User.Username())
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("sanitizer: request body: %w", err)
		}
		clone.Body = body
	}

	dump, err := httputil.DumpRequestOut(clone, clone.Body != nil)
	if err != nil {
		return nil, fmt.Errorf("sanitizer: dump request: %w", err)
	}
	return Redact(dump, secrets, salt), nil
}

// DumpResponse dumps resp using the already read body.
func DumpResponse(resp *http.Response, body []byte, secrets []string, salt string) ([]byte, error) {
	clone := new(http.Response)
	*clone = *resp
	clone.Header = resp.Header.Clone()
	maskHeaders(clone.Header)
	clone.Body = io.NopCloser(bytes.NewReader(body))

	dump, err := httputil.DumpResponse(clone, true)
	if err != nil {
		return nil, fmt.Errorf("sanitizer: dump response: %w", err)
	}
	return Redact(dump, secrets, salt), nil
}

// Redact replaces every occurrence of each secret with [S256:hash].
func Redact(data []byte, secrets []string, salt string) []byte {
	out := data
	copied := false
	for _, s := range secrets {
		if s == "" || !bytes.Contains(out, []byte(s)) {
			continue
		}
		if !copied {
			out = bytes.Clone(data)
			copied = true
		}
		out = bytes.ReplaceAll(out, []byte(s), hashToken(s, salt))
	}
	return out
}

func maskHeaders(h http.Header) {
	for _, name := range sensitiveHeaders {
		if h.Get(name) != "" {
			h.Set(name, redacted)
		}
	}
}

func hashToken(secret, salt string) []byte {
	sum := sha256.Sum256([]byte(salt + secret))
	return []byte("[S256:" + hex.EncodeToString(sum[:8]) + "]")
}
