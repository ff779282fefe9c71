package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("QLIENT_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "qlient.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: https://example.com/graphql
timeout: 5s
headers:
  Authorization: Bearer ${QLIENT_TEST_TOKEN}
protocols: [graphql-ws]
validate: true
log_level: debug
otel:
  endpoint: localhost:4317
  service: qlient
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/graphql", cfg.Endpoint)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "Bearer s3cret", cfg.Headers["Authorization"])
	require.Equal(t, slog.LevelDebug, cfg.Level())
	require.Equal(t, "https://example.com/graphql", cfg.SubscriptionEndpoint())
	require.Len(t, cfg.HTTPOptions(), 2)
	require.Len(t, cfg.WSOptions(), 2)
	require.Len(t, cfg.ClientOptions(), 1)
}

func TestParseSchemaFileOnly(t *testing.T) {
	cfg, err := Parse([]byte("schema_file: schema.json\n"))
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, cfg.Level())
	require.Len(t, cfg.ClientOptions(), 1)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ``},
		{"unknown key", "endpoint: https://example.com\nendpiont: x\n"},
		{"bad url", "endpoint: not a url\n"},
		{"bad protocol", "endpoint: https://example.com\nprotocols: [mqtt]\n"},
		{"bad level", "endpoint: https://example.com\nlog_level: loud\n"},
		{"otel without service", "endpoint: https://example.com\notel:\n  endpoint: localhost:4317\n"},
		{"negative timeout", "endpoint: https://example.com\ntimeout: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestValidationErrorsAreExposed(t *testing.T) {
	_, err := Parse([]byte("log_level: loud\n"))
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field()] = true
	}
	require.True(t, fields["Endpoint"])
	require.True(t, fields["LogLevel"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
