package wstp

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Options configures the websocket transport.
//
// Defaults:
// - Dialer:     websocket.DefaultDialer
// - Protocols:  graphql-transport-ws, graphql-ws
// - AckTimeout: 10s
// - Buffer:     16 payloads
type Options struct {
	Dialer      *websocket.Dialer
	Header      http.Header
	Protocols   []string
	InitPayload map[string]any
	AckTimeout  time.Duration
	Buffer      int
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Dialer:     websocket.DefaultDialer,
		Header:     make(http.Header),
		Protocols:  []string{ProtocolGraphQLTransportWS, ProtocolGraphQLWS},
		AckTimeout: 10 * time.Second,
		Buffer:     16,
	}
}

func WithDialer(d *websocket.Dialer) Option    { return func(o *Options) { o.Dialer = d } }
func WithHeader(key, value string) Option      { return func(o *Options) { o.Header.Add(key, value) } }
func WithProtocols(protocols ...string) Option { return func(o *Options) { o.Protocols = protocols } }
func WithInitPayload(payload map[string]any) Option {
	return func(o *Options) { o.InitPayload = payload }
}
func WithAckTimeout(d time.Duration) Option { return func(o *Options) { o.AckTimeout = d } }
func WithBuffer(n int) Option               { return func(o *Options) { o.Buffer = n } }
