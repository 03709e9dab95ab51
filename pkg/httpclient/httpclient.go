// Package httpclient provides a shared, pooled HTTP client factory.
// The fuzz executor, header analyzer, and scan executor client all draw
// from the same connection pool instead of building ad-hoc clients.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/seclab/seclab/pkg/duration"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: 30s).
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification.
	// Defaults to true; scan targets frequently use self-signed certs.
	InsecureSkipVerify bool

	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string

	// MaxIdleConns is the maximum idle connections across all hosts.
	MaxIdleConns int

	// MaxConnsPerHost is the maximum connections per host.
	MaxConnsPerHost int

	// IdleConnTimeout is how long idle connections stay pooled.
	IdleConnTimeout time.Duration

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration

	// FollowRedirects enables redirect following. Off by default:
	// the engine needs to see the redirect response itself.
	FollowRedirects bool
}

// DefaultConfig returns defaults tuned for security-testing workloads.
func DefaultConfig() Config {
	return Config{
		Timeout:             duration.HTTPFuzzing,
		InsecureSkipVerify:  true,
		MaxIdleConns:        100,
		MaxConnsPerHost:     25,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns a shared, pre-configured HTTP client safe for
// concurrent use. Prefer this over creating per-component clients.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates an HTTP client with the given configuration. Zero values
// are filled with defaults.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPFuzzing
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 25
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = 10 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		DialContext:           dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		// Malformed proxy URLs are ignored; the client works without one.
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}
