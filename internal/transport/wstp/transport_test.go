package wstp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlient/internal/reqid"
	"github.com/hanpama/qlient/internal/transport"
)

// fakeServer speaks just enough of either protocol to drive one
// subscription. script runs after the subscribe message was received.
func fakeServer(t *testing.T, protocols []string, script func(conn *websocket.Conn, proto, id string)) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{Subprotocols: protocols}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var init message
		if err := conn.ReadJSON(&init); err != nil || init.Type != msgConnectionInit {
			t.Errorf("expected connection_init, got %+v (%v)", init, err)
			return
		}
		if r.Header.Get(reqid.Header) == "" {
			t.Errorf("missing %s header", reqid.Header)
		}
		_ = conn.WriteJSON(message{Type: msgKeepAlive})
		_ = conn.WriteJSON(message{Type: msgConnectionAck})

		var sub message
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		var req transport.Request
		_ = json.Unmarshal(sub.Payload, &req)
		if !strings.HasPrefix(req.Query, "subscription") {
			t.Errorf("unexpected query %q", req.Query)
		}
		script(conn, conn.Subprotocol(), sub.ID)
	}))
}

func wsURL(s *httptest.Server) string { return "ws" + strings.TrimPrefix(s.URL, "http") }

func collect(t *testing.T, ch <-chan []byte) []string {
	t.Helper()
	var out []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, string(p))
		case <-timeout:
			t.Fatal("subscription did not finish")
		}
	}
}

var req = &transport.Request{Query: "subscription { reviewAdded { stars } }"}

func TestGraphQLTransportWS(t *testing.T) {
	srv := fakeServer(t, []string{ProtocolGraphQLTransportWS}, func(conn *websocket.Conn, proto, id string) {
		if proto != ProtocolGraphQLTransportWS {
			t.Errorf("negotiated %q", proto)
		}
		_ = conn.WriteJSON(message{Type: msgPing})
		var pong message
		if err := conn.ReadJSON(&pong); err != nil || pong.Type != msgPong {
			t.Errorf("expected pong, got %+v (%v)", pong, err)
		}
		_ = conn.WriteJSON(message{Type: msgNext, ID: id, Payload: json.RawMessage(`{"data":{"reviewAdded":{"stars":4}}}`)})
		_ = conn.WriteJSON(message{Type: msgNext, ID: "other", Payload: json.RawMessage(`{"data":{}}`)})
		_ = conn.WriteJSON(message{Type: msgNext, ID: id, Payload: json.RawMessage(`{"data":{"reviewAdded":{"stars":5}}}`)})
		_ = conn.WriteJSON(message{Type: msgComplete, ID: id})
	})
	defer srv.Close()

	tp, err := New(wsURL(srv))
	require.NoError(t, err)
	ch, err := tp.Subscribe(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{
		`{"data":{"reviewAdded":{"stars":4}}}`,
		`{"data":{"reviewAdded":{"stars":5}}}`,
	}, collect(t, ch))
}

func TestLegacyGraphQLWS(t *testing.T) {
	srv := fakeServer(t, []string{ProtocolGraphQLWS}, func(conn *websocket.Conn, proto, id string) {
		if proto != ProtocolGraphQLWS {
			t.Errorf("negotiated %q", proto)
		}
		_ = conn.WriteJSON(message{Type: msgKeepAlive})
		_ = conn.WriteJSON(message{Type: msgData, ID: id, Payload: json.RawMessage(`{"data":{"reviewAdded":{"stars":1}}}`)})
		_ = conn.WriteJSON(message{Type: msgComplete, ID: id})
	})
	defer srv.Close()

	// http URLs are accepted and rewritten
	tp, err := New(srv.URL)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(tp.Endpoint(), "ws://"))
	ch, err := tp.Subscribe(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{`{"data":{"reviewAdded":{"stars":1}}}`}, collect(t, ch))
}

func TestServerError(t *testing.T) {
	srv := fakeServer(t, []string{ProtocolGraphQLTransportWS}, func(conn *websocket.Conn, _, id string) {
		_ = conn.WriteJSON(message{Type: msgError, ID: id, Payload: json.RawMessage(`[{"message":"not allowed"}]`)})
	})
	defer srv.Close()

	tp, err := New(wsURL(srv))
	require.NoError(t, err)
	ch, err := tp.Subscribe(context.Background(), req)
	require.NoError(t, err)
	got := collect(t, ch)
	require.Len(t, got, 1)
	require.JSONEq(t, `{"errors":[{"message":"not allowed"}]}`, got[0])
}

func TestCancelStopsSubscription(t *testing.T) {
	stopped := make(chan string, 1)
	srv := fakeServer(t, []string{ProtocolGraphQLTransportWS}, func(conn *websocket.Conn, _, id string) {
		_ = conn.WriteJSON(message{Type: msgNext, ID: id, Payload: json.RawMessage(`{"data":{}}`)})
		var m message
		if err := conn.ReadJSON(&m); err == nil && m.ID == id {
			stopped <- m.Type
		}
	})
	defer srv.Close()

	tp, err := New(wsURL(srv))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := tp.Subscribe(ctx, req)
	require.NoError(t, err)

	first := <-ch
	require.Equal(t, `{"data":{}}`, string(first))
	cancel()
	collect(t, ch)

	select {
	case typ := <-stopped:
		require.Equal(t, msgComplete, typ)
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the complete message")
	}
}

func TestConnectionRejected(t *testing.T) {
	up := websocket.Upgrader{Subprotocols: []string{ProtocolGraphQLTransportWS}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var init message
		_ = conn.ReadJSON(&init)
		_ = conn.WriteJSON(message{Type: msgConnectionError, Payload: json.RawMessage(`{"message":"bad token"}`)})
	}))
	defer srv.Close()

	tp, err := New(wsURL(srv), WithInitPayload(map[string]any{"token": "x"}))
	require.NoError(t, err)
	_, err = tp.Subscribe(context.Background(), req)
	require.ErrorIs(t, err, ErrConnectionRejected)
}

func TestNewValidation(t *testing.T) {
	_, err := New("localhost:4000")
	require.ErrorIs(t, err, ErrInvalidEndpoint)
	_, err = New("ftp://example.com")
	require.ErrorIs(t, err, ErrInvalidEndpoint)
	_, err = New("wss://example.com/graphql", WithProtocols("mqtt"))
	require.ErrorIs(t, err, ErrUnsupportedProtocol)
}
