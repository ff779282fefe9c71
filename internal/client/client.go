// Package client ties schema loading, document synthesis and transports
// together.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hanpama/qlient/internal/eventbus"
	"github.com/hanpama/qlient/internal/events"
	"github.com/hanpama/qlient/internal/introspection"
	"github.com/hanpama/qlient/internal/language"
	"github.com/hanpama/qlient/internal/operation"
	"github.com/hanpama/qlient/internal/proxy"
	"github.com/hanpama/qlient/internal/registry"
	"github.com/hanpama/qlient/internal/reqid"
	"github.com/hanpama/qlient/internal/response"
	"github.com/hanpama/qlient/internal/schema"
	"github.com/hanpama/qlient/internal/selection"
	"github.com/hanpama/qlient/internal/transport"
)

var (
	// ErrNoTransport indicates a client built without a transport was asked
	// to send something.
	ErrNoTransport = errors.New("client: no transport configured")
	// ErrWrongKind indicates a subscription passed to Execute or another
	// kind passed to Subscribe.
	ErrWrongKind = errors.New("client: operation kind not valid for this call")
)

// Client is safe for concurrent use once New returns.
type Client struct {
	transport  transport.Transport
	subscriber transport.Subscriber
	schema     *schema.Schema
	validation *language.Schema
	proxy      *proxy.Proxy
	plugins    []Plugin
	log        *slog.Logger
}

// New prepares a client. Unless a schema is supplied through options, the
// schema is introspected through tp.
func New(ctx context.Context, tp transport.Transport, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	s := o.Schema
	switch {
	case s != nil:
	case o.SchemaFile != "":
		loaded, err := introspection.LoadFile(o.SchemaFile)
		if err != nil {
			return nil, err
		}
		s = loaded
	case tp != nil:
		fetched, _, err := introspection.Fetch(ctx, tp, o.IntrospectionQuery)
		if err != nil {
			return nil, err
		}
		s = fetched
	default:
		return nil, ErrNoTransport
	}

	c := &Client{
		transport:  tp,
		subscriber: o.Subscriber,
		schema:     s,
		proxy:      proxy.New(registry.New(s), selection.NewBuilder(s)),
		plugins:    o.Plugins,
		log:        o.Logger,
	}
	if o.Validate {
		as, err := s.AST()
		if err != nil {
			return nil, fmt.Errorf("client: prepare validation: %w", err)
		}
		c.validation = as
	}
	c.log.Debug("client ready",
		"query_fields", len(c.proxy.Registry().Names(operation.Query)),
		"mutation_fields", len(c.proxy.Registry().Names(operation.Mutation)),
		"subscription_fields", len(c.proxy.Registry().Names(operation.Subscription)),
	)
	return c, nil
}

func (c *Client) Schema() *schema.Schema { return c.schema }
func (c *Client) Proxy() *proxy.Proxy    { return c.proxy }

func (c *Client) Query() *proxy.Namespace        { return c.proxy.Query() }
func (c *Client) Mutation() *proxy.Namespace     { return c.proxy.Mutation() }
func (c *Client) Subscription() *proxy.Namespace { return c.proxy.Subscription() }

// Build synthesizes a document without sending it.
func (c *Client) Build(kind operation.Kind, field string, kwargs map[string]any) (*operation.Document, error) {
	return c.proxy.Invoke(kind, field, kwargs)
}

// Call builds and executes a query or mutation.
func (c *Client) Call(ctx context.Context, kind operation.Kind, field string, kwargs map[string]any) (*response.Envelope, error) {
	doc, err := c.Build(kind, field, kwargs)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, doc)
}

// Execute sends a query or mutation and waits for the reply. Transport
// failures are returned as errors; GraphQL errors are part of the envelope.
func (c *Client) Execute(ctx context.Context, doc *operation.Document) (env *response.Envelope, err error) {
	if c.transport == nil {
		return nil, ErrNoTransport
	}
	if doc.Kind() == operation.Subscription {
		return nil, fmt.Errorf("%w: use Subscribe for %s", ErrWrongKind, doc.Kind())
	}
	if err := c.validate(doc); err != nil {
		return nil, err
	}
	ctx, rid := reqid.Ensure(ctx)

	start := time.Now()
	eventbus.Publish(ctx, events.OperationStart{Query: doc.Query(), OperationName: doc.Name(), OperationType: string(doc.Kind())})
	defer func() {
		finish := events.OperationFinish{
			Query: doc.Query(), OperationName: doc.Name(), OperationType: string(doc.Kind()),
			Duration: time.Since(start),
		}
		if err != nil {
			finish.Errors = []error{err}
		} else {
			for _, e := range env.Errors() {
				finish.Errors = append(finish.Errors, e)
			}
		}
		eventbus.Publish(ctx, finish)
	}()

	req := transport.NewRequest(doc)
	if err := applyPre(ctx, c.plugins, req); err != nil {
		return nil, fmt.Errorf("client: plugin: %w", err)
	}
	c.log.Debug("sending operation", "request_id", rid, "kind", doc.Kind(), "field", doc.Root().Name, "operation", doc.Name(), "variables", len(req.Variables))

	body, sendErr := c.transport.Send(ctx, req)
	if sendErr != nil {
		env, ok := recoverStatus(doc, body, sendErr)
		if !ok {
			c.log.Debug("operation failed", "request_id", rid, "error", sendErr)
			return nil, sendErr
		}
		c.log.Debug("non-2xx status carried a GraphQL response", "request_id", rid, "error", sendErr)
		return c.finish(ctx, env)
	}
	return c.finish(ctx, response.Wrap(doc, body))
}

func (c *Client) finish(ctx context.Context, env *response.Envelope) (*response.Envelope, error) {
	if err := applyPost(ctx, c.plugins, env); err != nil {
		return nil, fmt.Errorf("client: plugin: %w", err)
	}
	if env.HasErrors() {
		c.log.Debug("operation returned errors", "count", len(env.Errors()))
	}
	return env, nil
}

// recoverStatus keeps GraphQL responses servers send with a non-2xx status.
func recoverStatus(doc *operation.Document, body []byte, err error) (*response.Envelope, bool) {
	var se *transport.StatusError
	if !errors.As(err, &se) || len(body) == 0 {
		return nil, false
	}
	env := response.Wrap(doc, body)
	var mre *response.MalformedResponseError
	if errors.As(env.Err(), &mre) {
		return nil, false
	}
	return env, true
}

func (c *Client) validate(doc *operation.Document) error {
	if c.validation == nil {
		return nil
	}
	if _, errs := language.ValidateQuery(c.validation, doc.Query()); len(errs) > 0 {
		c.log.Warn("document failed validation", "query", doc.Query(), "errors", len(errs))
		return fmt.Errorf("client: invalid document: %w", errs)
	}
	return nil
}

// Pending is the result of Go.
type Pending struct {
	done chan struct{}
	env  *response.Envelope
	err  error
}

// Go executes doc on a new goroutine.
func (c *Client) Go(ctx context.Context, doc *operation.Document) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.env, p.err = c.Execute(ctx, doc)
	}()
	return p
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the operation finished.
func (p *Pending) Wait() (*response.Envelope, error) {
	<-p.done
	return p.env, p.err
}

// Subscribe starts a subscription. Every payload is delivered as an
// envelope; the channel closes when the stream ends or ctx is done.
func (c *Client) Subscribe(ctx context.Context, doc *operation.Document) (<-chan *response.Envelope, error) {
	if c.subscriber == nil {
		return nil, transport.ErrNotSupported
	}
	if doc.Kind() != operation.Subscription {
		return nil, fmt.Errorf("%w: use Execute for %s", ErrWrongKind, doc.Kind())
	}
	if err := c.validate(doc); err != nil {
		return nil, err
	}
	ctx, rid := reqid.Ensure(ctx)
	req := transport.NewRequest(doc)
	if err := applyPre(ctx, c.plugins, req); err != nil {
		return nil, fmt.Errorf("client: plugin: %w", err)
	}
	c.log.Debug("starting subscription", "request_id", rid, "field", doc.Root().Name, "operation", doc.Name())

	payloads, err := c.subscriber.Subscribe(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make(chan *response.Envelope)
	go func() {
		defer close(out)
		for p := range payloads {
			env := response.Wrap(doc, p)
			if err := applyPost(ctx, c.plugins, env); err != nil {
				c.log.Warn("plugin rejected subscription payload", "request_id", rid, "error", err)
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				// drain so the transport can finish
				for range payloads {
				}
				return
			}
		}
	}()
	return out, nil
}
