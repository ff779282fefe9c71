package httptp

import (
	"net/http"
	"time"
)

// Options configures the HTTP transport.
//
// Defaults:
// - Client:           http.DefaultClient
// - Timeout:          30s (used only if the context has no deadline)
// - MaxResponseBytes: 16 MiB
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	Client           *http.Client
	Header           http.Header
	Timeout          time.Duration
	MaxResponseBytes int64
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Client:           http.DefaultClient,
		Header:           make(http.Header),
		Timeout:          30 * time.Second,
		MaxResponseBytes: 16 << 20,
	}
}

func WithHTTPClient(c *http.Client) Option { return func(o *Options) { o.Client = c } }
func WithTimeout(d time.Duration) Option   { return func(o *Options) { o.Timeout = d } }
func WithMaxResponseBytes(n int64) Option  { return func(o *Options) { o.MaxResponseBytes = n } }
func WithHeader(key, value string) Option  { return func(o *Options) { o.Header.Add(key, value) } }
func WithBearerToken(token string) Option {
	return func(o *Options) { o.Header.Set("Authorization", "Bearer "+token) }
}
