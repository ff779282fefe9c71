// Package wstp runs GraphQL subscriptions over websockets. Both the
// graphql-transport-ws protocol and the older graphql-ws (subscriptions-
// transport-ws) protocol are spoken; the server picks one during the
// handshake.
package wstp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hanpama/qlient/internal/eventbus"
	"github.com/hanpama/qlient/internal/events"
	"github.com/hanpama/qlient/internal/reqid"
	"github.com/hanpama/qlient/internal/transport"
)

// Transport opens one websocket connection per subscription.
type Transport struct {
	endpoint string
	opts     *Options
}

var _ transport.Subscriber = (*Transport)(nil)

// New accepts ws(s) URLs and, for convenience, http(s) URLs which are
// rewritten to the matching websocket scheme.
func New(endpoint string, opts ...Option) (*Transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	for _, p := range o.Protocols {
		if _, ok := dialectFor(p); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, p)
		}
	}
	return &Transport{endpoint: u.String(), opts: o}, nil
}

func (t *Transport) Endpoint() string { return t.endpoint }

// Subscribe connects, waits for the server to acknowledge and starts the
// subscription. Errors reported by the server after that point arrive as a
// final payload holding an errors list.
func (t *Transport) Subscribe(ctx context.Context, r *transport.Request) (<-chan []byte, error) {
	ctx, rid := reqid.Ensure(ctx)
	header := t.opts.Header.Clone()
	header.Set(reqid.Header, rid)

	dialer := *t.opts.Dialer
	dialer.Subprotocols = t.opts.Protocols
	conn, resp, err := dialer.DialContext(ctx, t.endpoint, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("wstp: dial: %w", err)
	}

	protocol := conn.Subprotocol()
	if protocol == "" && len(t.opts.Protocols) > 0 {
		protocol = t.opts.Protocols[0]
	}
	d, ok := dialectFor(protocol)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, protocol)
	}

	s := &stream{
		conn:     conn,
		dialect:  d,
		protocol: protocol,
		url:      t.endpoint,
		id:       uuid.NewString(),
		out:      make(chan []byte, t.opts.Buffer),
		start:    time.Now(),
	}
	if err := s.handshake(t.opts); err != nil {
		conn.Close()
		return nil, err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("wstp: encode request: %w", err)
	}
	if err := s.write(message{Type: d.subscribe, ID: s.id, Payload: payload}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("wstp: subscribe: %w", err)
	}

	eventbus.Publish(ctx, events.SubscriptionStart{URL: s.url, Protocol: protocol, ID: s.id, OperationName: r.OperationName})
	go s.run(ctx)
	return s.out, nil
}

type stream struct {
	conn     *websocket.Conn
	wmu      sync.Mutex
	dialect  dialect
	protocol string
	url      string
	id       string
	out      chan []byte
	start    time.Time
	messages int
}

func (s *stream) write(m message) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.conn.WriteJSON(m)
}

func (s *stream) handshake(o *Options) error {
	var init json.RawMessage
	if o.InitPayload != nil {
		b, err := json.Marshal(o.InitPayload)
		if err != nil {
			return fmt.Errorf("wstp: encode init payload: %w", err)
		}
		init = b
	}
	if err := s.write(message{Type: msgConnectionInit, Payload: init}); err != nil {
		return fmt.Errorf("wstp: connection_init: %w", err)
	}
	if o.AckTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(o.AckTimeout))
	}
	for {
		var m message
		if err := s.conn.ReadJSON(&m); err != nil {
			return fmt.Errorf("wstp: waiting for connection_ack: %w", err)
		}
		switch m.Type {
		case msgConnectionAck:
			return s.conn.SetReadDeadline(time.Time{})
		case msgKeepAlive, msgPong:
		case msgPing:
			if err := s.write(message{Type: msgPong}); err != nil {
				return fmt.Errorf("wstp: pong: %w", err)
			}
		default:
			return fmt.Errorf("%w: got %q", ErrConnectionRejected, m.Type)
		}
	}
}

func (s *stream) run(ctx context.Context) {
	done := make(chan struct{})
	var runErr error
	defer func() {
		close(done)
		s.conn.Close()
		close(s.out)
		eventbus.Publish(ctx, events.SubscriptionFinish{
			URL: s.url, Protocol: s.protocol, ID: s.id,
			Messages: s.messages, Err: runErr, Duration: time.Since(s.start),
		})
	}()

	// Stop the server side when the caller goes away. Closing the
	// connection unblocks the read loop below.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.write(message{Type: s.dialect.stop, ID: s.id})
			if s.protocol == ProtocolGraphQLWS {
				_ = s.write(message{Type: msgTerminate})
			}
			s.conn.Close()
		case <-done:
		}
	}()

	for {
		var m message
		if err := s.conn.ReadJSON(&m); err != nil {
			if ctx.Err() == nil {
				runErr = err
				s.deliver(ctx, errorResponse("wstp: connection lost: "+err.Error()))
			}
			return
		}
		switch m.Type {
		case msgNext, msgData:
			if m.ID != s.id {
				continue
			}
			s.messages++
			if !s.deliver(ctx, m.Payload) {
				return
			}
		case msgError, msgConnectionError:
			if m.ID != "" && m.ID != s.id {
				continue
			}
			runErr = ErrSubscriptionFailed
			s.deliver(ctx, errorsPayload(m.Payload))
			return
		case msgComplete:
			if m.ID == s.id || m.ID == "" {
				return
			}
		case msgPing:
			if err := s.write(message{Type: msgPong}); err != nil {
				runErr = err
				return
			}
		case msgKeepAlive, msgPong:
		}
	}
}

func (s *stream) deliver(ctx context.Context, payload []byte) bool {
	select {
	case s.out <- payload:
		return true
	case <-ctx.Done():
		return false
	}
}
