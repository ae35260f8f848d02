// Package hosts selects the server each request is sent to.
package hosts

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	ErrNoHosts     = errors.New("hosts: no hosts available")
	ErrInvalidHost = errors.New("hosts: invalid host")
)

// Provider returns the base URL for the next request.
type Provider interface {
	Next() (*url.URL, error)
}

// Single always returns the same host.
type Single struct {
	host *url.URL
}

func NewSingle(host *url.URL) *Single {
	return &Single{host: host}
}

func (s *Single) Next() (*url.URL, error) {
	if s.host == nil {
		return nil, ErrNoHosts
	}
	u := *s.host
	return &u, nil
}

// startOffset picks the first host of a new pool so that many clients do not
// all start on the same server.
var startOffset = rand.IntN

// Pool rotates through its hosts. It is safe for concurrent use and its host
// list can be replaced at any time.
type Pool struct {
	mu      sync.RWMutex
	hosts   []*url.URL
	counter atomic.Uint64
}

func NewPool(hosts ...*url.URL) *Pool {
	p := &Pool{hosts: cloneURLs(hosts)}
	if len(hosts) > 0 {
		p.counter.Store(uint64(startOffset(len(hosts))))
	}
	return p
}

// Next returns ErrNoHosts while the pool is empty.
func (p *Pool) Next() (*url.URL, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.hosts) == 0 {
		return nil, ErrNoHosts
	}

	i := (p.counter.Add(1) - 1) % uint64(len(p.hosts))
	u := *p.hosts[i]
	return &u, nil
}

// Replace swaps the host list.
func (p *Pool) Replace(hosts ...*url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hosts = cloneURLs(hosts)
}

// Hosts returns a copy of the current host list.
func (p *Pool) Hosts() []*url.URL {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return cloneURLs(p.hosts)
}

// New returns a Single for one host and a Pool for several.
func New(hosts ...*url.URL) (Provider, error) {
	switch len(hosts) {
	case 0:
		return nil, ErrNoHosts
	case 1:
		return NewSingle(hosts[0]), nil
	default:
		return NewPool(hosts...), nil
	}
}

// Parse validates raw host URLs. Paths are normalized to end with a slash so
// request paths resolve beneath them.
func Parse(raw ...string) ([]*url.URL, error) {
	out := make([]*url.URL, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}

		u, err := url.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidHost, r, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidHost, r)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("%w %q: missing host", ErrInvalidHost, r)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		u.RawQuery = ""
		u.Fragment = ""
		out = append(out, u)
	}
	return out, nil
}

func cloneURLs(hosts []*url.URL) []*url.URL {
	out := make([]*url.URL, 0, len(hosts))
	for _, h := range hosts {
		if h == nil {
			continue
		}
		u := *h
		out = append(out, &u)
	}
	return out
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
