// Package reqid carries a per-request correlation id through contexts. The
// id travels to servers in the X-Request-Id header.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header the id is sent in.
const Header = "X-Request-Id"

type key struct{}

// NewContext returns a copy of parent carrying a fresh random id.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, key{}, id), id
}

// WithID stores a caller-chosen id, for example one received from upstream.
func WithID(parent context.Context, id string) context.Context {
	return context.WithValue(parent, key{}, id)
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok && id != ""
}

// Ensure returns ctx unchanged when it already carries an id.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	return NewContext(ctx)
}
