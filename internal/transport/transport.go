// Package transport defines how documents reach a GraphQL server. The
// engine never does I/O itself; clients hand requests to a Transport.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/hanpama/qlient/internal/operation"
)

// Request is the standard GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// NewRequest builds the request sending doc.
func NewRequest(doc *operation.Document) *Request {
	r := &Request{Query: doc.Query(), OperationName: doc.Name()}
	if vars := doc.VariableValues(); len(vars) > 0 {
		r.Variables = vars
	}
	return r
}

// Transport sends a request and returns the raw response body.
type Transport interface {
	Send(ctx context.Context, r *Request) ([]byte, error)
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, r *Request) ([]byte, error)

func (f Func) Send(ctx context.Context, r *Request) ([]byte, error) { return f(ctx, r) }

// Subscriber starts a subscription. Each received payload is a complete
// GraphQL response object. The channel is closed when the stream ends or
// ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, r *Request) (<-chan []byte, error)
}

// ErrNotSupported is returned by clients configured without a Subscriber.
var ErrNotSupported = errors.New("transport: operation kind not supported")

// StatusError reports a non-2xx HTTP status. Body holds what the server
// returned; GraphQL servers often put an errors object there.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: unexpected status %s", e.Status)
}
