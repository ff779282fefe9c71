package wstp

import "encoding/json"

// Subprotocols understood by the transport.
const (
	ProtocolGraphQLTransportWS = "graphql-transport-ws"
	ProtocolGraphQLWS          = "graphql-ws"
)

// message types of both protocols
const (
	msgConnectionInit  = "connection_init"
	msgConnectionAck   = "connection_ack"
	msgConnectionError = "connection_error"
	msgKeepAlive       = "ka"
	msgPing            = "ping"
	msgPong            = "pong"
	msgSubscribe       = "subscribe"
	msgStart           = "start"
	msgNext            = "next"
	msgData            = "data"
	msgError           = "error"
	msgComplete        = "complete"
	msgStop            = "stop"
	msgTerminate       = "connection_terminate"
)

type message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// dialect maps the logical steps of a subscription to the message types of
// one subprotocol.
type dialect struct {
	subscribe string
	stop      string
}

func dialectFor(protocol string) (dialect, bool) {
	switch protocol {
	case ProtocolGraphQLTransportWS:
		return dialect{subscribe: msgSubscribe, stop: msgComplete}, true
	case ProtocolGraphQLWS:
		return dialect{subscribe: msgStart, stop: msgStop}, true
	}
	return dialect{}, false
}

// errorsPayload turns the payload of an error message into a GraphQL
// response object. graphql-transport-ws sends a list of errors, graphql-ws a
// single error object.
func errorsPayload(raw json.RawMessage) []byte {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		list = []json.RawMessage{raw}
	}
	b, _ := json.Marshal(map[string]any{"errors": list})
	return b
}

func errorResponse(msg string) []byte {
	b, _ := json.Marshal(map[string]any{
		"errors": []map[string]any{{"message": msg}},
	})
	return b
}
