package wstp

import "errors"

var (
	// ErrInvalidEndpoint indicates the endpoint is not an absolute ws, wss,
	// http or https URL.
	ErrInvalidEndpoint = errors.New("wstp: endpoint must be an absolute ws(s) or http(s) URL")
	// ErrConnectionRejected indicates the server answered connection_init
	// with something other than connection_ack.
	ErrConnectionRejected = errors.New("wstp: server rejected the connection")
	// ErrUnsupportedProtocol indicates a subprotocol this package cannot speak.
	ErrUnsupportedProtocol = errors.New("wstp: unsupported subprotocol")
	// ErrSubscriptionFailed marks a stream the server ended with an error
	// message.
	ErrSubscriptionFailed = errors.New("wstp: server ended the subscription with an error")
)
