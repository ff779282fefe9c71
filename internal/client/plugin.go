package client

import (
	"context"

	"github.com/hanpama/qlient/internal/response"
	"github.com/hanpama/qlient/internal/transport"
)

// Plugin observes or adjusts traffic. Pre runs before the request is sent
// and may modify it; Post runs on every envelope, including each payload of
// a subscription. Plugins run in registration order and an error aborts the
// call.
type Plugin interface {
	Pre(ctx context.Context, r *transport.Request) error
	Post(ctx context.Context, env *response.Envelope) error
}

// Hooks adapts plain functions to Plugin. Nil hooks are skipped.
type Hooks struct {
	PreFunc  func(ctx context.Context, r *transport.Request) error
	PostFunc func(ctx context.Context, env *response.Envelope) error
}

func (h Hooks) Pre(ctx context.Context, r *transport.Request) error {
	if h.PreFunc == nil {
		return nil
	}
	return h.PreFunc(ctx, r)
}

func (h Hooks) Post(ctx context.Context, env *response.Envelope) error {
	if h.PostFunc == nil {
		return nil
	}
	return h.PostFunc(ctx, env)
}

func applyPre(ctx context.Context, plugins []Plugin, r *transport.Request) error {
	for _, p := range plugins {
		if err := p.Pre(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func applyPost(ctx context.Context, plugins []Plugin, env *response.Envelope) error {
	for _, p := range plugins {
		if err := p.Post(ctx, env); err != nil {
			return err
		}
	}
	return nil
}
