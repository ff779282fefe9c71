// Package httptp sends GraphQL requests as JSON over HTTP POST.
package httptp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hanpama/qlient/internal/eventbus"
	"github.com/hanpama/qlient/internal/events"
	"github.com/hanpama/qlient/internal/reqid"
	"github.com/hanpama/qlient/internal/transport"
)

const (
	contentType = "application/json; charset=utf-8"
	accept      = "application/graphql-response+json, application/json;q=0.9"
)

// Transport is safe for concurrent use.
type Transport struct {
	endpoint string
	opts     *Options
}

var _ transport.Transport = (*Transport)(nil)

func New(endpoint string, opts ...Option) (*Transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Client == nil {
		o.Client = http.DefaultClient
	}
	return &Transport{endpoint: endpoint, opts: o}, nil
}

func (t *Transport) Endpoint() string { return t.endpoint }

// Send posts r and returns the body. A non-2xx status yields the body
// together with a *transport.StatusError.
func (t *Transport) Send(ctx context.Context, r *transport.Request) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("httptp: encode request: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok && t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}
	ctx, rid := reqid.Ensure(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("httptp: %w", err)
	}
	for k, vs := range t.opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", accept)
	req.Header.Set(reqid.Header, rid)

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: req})
	status := 0
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: req, Status: status, Err: err, Duration: time.Since(start)})
	}()

	resp, err := t.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httptp: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := t.readBody(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &transport.StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
		return body, err
	}
	return body, nil
}

func (t *Transport) readBody(r io.Reader) ([]byte, error) {
	if t.opts.MaxResponseBytes <= 0 {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("httptp: read body: %w", err)
		}
		return b, nil
	}
	b, err := io.ReadAll(io.LimitReader(r, t.opts.MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("httptp: read body: %w", err)
	}
	if int64(len(b)) > t.opts.MaxResponseBytes {
		return nil, ErrResponseTooLarge
	}
	return b, nil
}
