// Package httpclient builds the HTTP client used to talk to the cluster.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Options tune the transport. Zero values fall back to defaults.
type Options struct {
	TLSConfig       *tls.Config
	Timeout         time.Duration
	MaxConnsPerHost int
}

const defaultMaxConnsPerHost = 50

// New returns a client with keep-alive pooling sized for a handful of nodes.
func New(opts Options) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	maxConns := opts.MaxConnsPerHost
	if maxConns <= 0 {
		maxConns = defaultMaxConnsPerHost
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       opts.TLSConfig,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   maxConns,
		MaxConnsPerHost:       maxConns,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}
