package response

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/qlient/internal/operation"
)

func filmDocument() *operation.Document {
	root := &operation.Field{
		Name:       "film",
		Arguments:  []operation.Argument{{Name: "id", Variable: "id"}},
		Selections: []operation.Selection{&operation.Field{Name: "id"}},
	}
	return operation.NewDocument(operation.Query, "Film", []operation.Variable{{Name: "id", Type: "ID", Value: "X"}}, root)
}

func TestWrapRoundTrip(t *testing.T) {
	doc := filmDocument()
	env := Wrap(doc, []byte(`{"data": {"film": {"id": "X"}}, "errors": []}`))

	id, ok := env.Get("film", "id")
	require.True(t, ok)
	require.Equal(t, "X", id)
	require.Empty(t, env.Errors())
	require.False(t, env.HasErrors())
	require.NoError(t, env.Err())

	require.Same(t, doc, env.Document())
	require.Equal(t, doc.Query(), env.Query())
	require.Equal(t, map[string]any{"id": "X"}, env.Variables())
	require.Equal(t, "Film", env.OperationName())
}

func TestWrapInputForms(t *testing.T) {
	payload := `{"data":{"film":{"id":"X"}}}`
	for name, raw := range map[string]any{
		"bytes":   []byte(payload),
		"raw":     json.RawMessage(payload),
		"string":  payload,
		"decoded": map[string]any{"data": map[string]any{"film": map[string]any{"id": "X"}}},
	} {
		t.Run(name, func(t *testing.T) {
			env := Wrap(nil, raw)
			require.False(t, env.HasErrors())
			require.Equal(t, map[string]any{"film": map[string]any{"id": "X"}}, env.Data())
			require.Empty(t, env.Query())
		})
	}
}

func TestWrapErrors(t *testing.T) {
	env := Wrap(nil, `{
		"data": {"film": null},
		"errors": [{
			"message": "film not found",
			"path": ["film"],
			"locations": [{"line": 1, "column": 20}],
			"extensions": {"code": "NOT_FOUND"}
		}],
		"extensions": {"cost": 3}
	}`)
	require.True(t, env.HasErrors())
	require.Len(t, env.Errors(), 1)
	e := env.Errors()[0]
	require.Equal(t, "film not found", e.Message)
	require.Equal(t, ast.Path{ast.PathName("film")}, e.Path)
	require.Equal(t, "NOT_FOUND", e.Extensions["code"])
	require.Equal(t, map[string]any{"cost": float64(3)}, env.Extensions())

	v, ok := env.Get("film")
	require.True(t, ok)
	require.Nil(t, v)
	_, ok = env.Get("film", "id")
	require.False(t, ok)
	require.Error(t, env.Err())
}

func TestWrapErrorsOnly(t *testing.T) {
	env := Wrap(nil, `{"errors":[{"message":"a"},{"message":"b"}]}`)
	require.Nil(t, env.Data())
	_, ok := env.Get()
	require.False(t, ok)
	require.Contains(t, env.Err().Error(), "a")
	require.Contains(t, env.Err().Error(), "b")
}

func TestWrapMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"invalid json", `{"data":`},
		{"array", `[1,2]`},
		{"number", `42`},
		{"null", `null`},
		{"no data or errors", `{"result":{}}`},
		{"bad errors", `{"errors":"boom"}`},
		{"unsupported type", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Wrap(nil, tt.raw)
			require.Nil(t, env.Data())
			require.Len(t, env.Errors(), 1)
			require.Equal(t, CodeMalformedResponse, env.Errors()[0].Extensions["code"])

			var mre *MalformedResponseError
			require.True(t, errors.As(env.Err(), &mre), "got %v", env.Err())
			require.NotEmpty(t, mre.Reason)
		})
	}
}

func TestGetAndDecode(t *testing.T) {
	env := Wrap(nil, `{"data":{"allFilms":{"films":[{"title":"A New Hope","episodeID":4},{"title":"The Empire Strikes Back","episodeID":5}]}}}`)

	title, ok := env.Get("allFilms", "films", 1, "title")
	require.True(t, ok)
	require.Equal(t, "The Empire Strikes Back", title)

	_, ok = env.Get("allFilms", "films", 2)
	require.False(t, ok)
	_, ok = env.Get("allFilms", 0)
	require.False(t, ok)
	_, ok = env.Get("allFilms", 1.5)
	require.False(t, ok)

	var out struct {
		AllFilms struct {
			Films []struct {
				Title     string `json:"title"`
				EpisodeID int    `json:"episodeID"`
			} `json:"films"`
		} `json:"allFilms"`
	}
	require.NoError(t, env.Decode(&out))
	require.Len(t, out.AllFilms.Films, 2)
	require.Equal(t, 4, out.AllFilms.Films[0].EpisodeID)

	var bad struct {
		AllFilms string `json:"allFilms"`
	}
	require.Error(t, env.Decode(&bad))
}
