package introspection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hanpama/qlient/internal/response"
	"github.com/hanpama/qlient/internal/schema"
	"github.com/hanpama/qlient/internal/transport"
)

// Fetch runs query (Query when empty) through tp and builds the schema.
// The raw response body is returned as well so callers can store it.
func Fetch(ctx context.Context, tp transport.Transport, query string) (*schema.Schema, []byte, error) {
	if query == "" {
		query = Query
	}
	body, err := tp.Send(ctx, &transport.Request{Query: query, OperationName: OperationName})
	if err != nil {
		var se *transport.StatusError
		if !errors.As(err, &se) || len(body) == 0 {
			return nil, nil, fmt.Errorf("introspection: %w", err)
		}
	}
	env := response.Wrap(nil, body)
	if env.HasErrors() {
		return nil, body, fmt.Errorf("introspection: %w", env.Err())
	}
	if err != nil {
		return nil, body, fmt.Errorf("introspection: %w", err)
	}
	s, err := schema.FromIntrospection(body)
	if err != nil {
		return nil, body, err
	}
	return s, body, nil
}

// LoadFile builds a schema from an introspection result saved on disk.
func LoadFile(path string) (*schema.Schema, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("introspection: %w", err)
	}
	s, err := schema.FromIntrospection(payload)
	if err != nil {
		return nil, fmt.Errorf("introspection: %s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes s as an introspection response ({"data":{"__schema":...}}).
func Marshal(s *schema.Schema) ([]byte, error) {
	payload := map[string]any{
		"data": map[string]any{"__schema": Export(s)},
	}
	return json.MarshalIndent(payload, "", "  ")
}

// WriteFile stores s in the form LoadFile reads.
func WriteFile(path string, s *schema.Schema) error {
	b, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("introspection: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("introspection: %w", err)
	}
	return nil
}
