package introspection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlient/internal/language"
	"github.com/hanpama/qlient/internal/schema"
	"github.com/hanpama/qlient/internal/schematest"
	"github.com/hanpama/qlient/internal/transport"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "films_introspection.json"))
	require.NoError(t, err)
	return b
}

func TestQueriesParse(t *testing.T) {
	for name, q := range map[string]string{"full": Query, "legacy": LegacyQuery} {
		t.Run(name, func(t *testing.T) {
			doc, err := language.ParseQuery(q)
			require.NoError(t, err)
			require.Len(t, doc.Operations, 1)
			require.Equal(t, OperationName, doc.Operations[0].Name)
			require.Len(t, doc.Fragments, 3)
		})
	}
	for _, field := range []string{"isOneOf", "specifiedByURL", "isRepeatable", "args(includeDeprecated: true)"} {
		require.Contains(t, Query, field)
		require.NotContains(t, LegacyQuery, field)
	}
	require.Contains(t, LegacyQuery, "fields(includeDeprecated: true)")
}

func TestExportRoundTrip(t *testing.T) {
	fromFixture, err := schema.FromIntrospection(fixture(t))
	require.NoError(t, err)

	for name, s := range map[string]*schema.Schema{
		"introspection": fromFixture,
		"sdl":           schematest.StarWars(t),
	} {
		t.Run(name, func(t *testing.T) {
			b, err := Marshal(s)
			require.NoError(t, err)
			back, err := schema.FromIntrospection(b)
			require.NoError(t, err)
			if diff := cmp.Diff(schema.Render(s), schema.Render(back)); diff != "" {
				t.Errorf("export round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportShape(t *testing.T) {
	s := schematest.StarWars(t)
	is := Export(s)
	require.Equal(t, "Query", is.QueryType.Name)
	require.Equal(t, "Subscription", is.SubscriptionType.Name)

	var human *schema.IntrospectionType
	for i := 1; i < len(is.Types); i++ {
		require.Less(t, is.Types[i-1].Name, is.Types[i].Name)
	}
	for _, it := range is.Types {
		if it.Name == "Human" {
			human = it
		}
	}
	require.NotNil(t, human)
	require.Equal(t, "Node", *human.Interfaces[0].Name)
	require.Equal(t, "INTERFACE", human.Interfaces[0].Kind)

	height := human.Fields[2]
	require.Equal(t, "height", height.Name)
	require.Equal(t, "ENUM", height.Args[0].Type.Kind)
	require.Equal(t, "METER", *height.Args[0].DefaultValue)
	require.Nil(t, human.EnumValues)
}

func TestFetch(t *testing.T) {
	payload := fixture(t)
	tp := transport.Func(func(_ context.Context, r *transport.Request) ([]byte, error) {
		require.Equal(t, Query, r.Query)
		require.Equal(t, OperationName, r.OperationName)
		return payload, nil
	})
	s, raw, err := Fetch(context.Background(), tp, "")
	require.NoError(t, err)
	require.Equal(t, payload, raw)
	require.Equal(t, "Root", s.QueryType)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		sendErr error
		want    string
	}{
		{"graphql errors", `{"errors":[{"message":"introspection disabled"}]}`, nil, "introspection disabled"},
		{"status with errors", `{"errors":[{"message":"forbidden"}]}`, &transport.StatusError{StatusCode: 403, Status: "403 Forbidden"}, "forbidden"},
		{"status without body", ``, &transport.StatusError{StatusCode: 502, Status: "502 Bad Gateway"}, "502"},
		{"network", ``, errors.New("connection refused"), "connection refused"},
		{"not a schema", `{"data":{"greeting":"hi"}}`, nil, "schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := transport.Func(func(context.Context, *transport.Request) ([]byte, error) {
				var body []byte
				if tt.body != "" {
					body = []byte(tt.body)
				}
				return body, tt.sendErr
			})
			s, _, err := Fetch(context.Background(), tp, LegacyQuery)
			require.Nil(t, s)
			require.Error(t, err)
			require.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestWriteAndLoadFile(t *testing.T) {
	s := schematest.StarWars(t)
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, WriteFile(path, s))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, schema.Render(s), schema.Render(loaded))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
