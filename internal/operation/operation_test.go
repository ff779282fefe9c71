package operation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func TestDocumentText(t *testing.T) {
	root := &Field{
		Name:      "film",
		Arguments: []Argument{{Name: "id", Variable: "id"}},
		Selections: []Selection{
			&Field{Name: "id"},
			&Field{Alias: "heading", Name: "title", Directives: []Directive{{Name: "include", Arguments: []Argument{{Name: "if", Variable: "heading_include_if"}}}}},
			&Field{
				Name:      "characterConnection",
				Arguments: []Argument{{Name: "first", Variable: "characterConnection_first"}},
				Selections: []Selection{
					&InlineFragment{TypeCondition: "Human", Selections: []Selection{&Field{Name: "homePlanet"}}},
				},
			},
		},
	}
	vars := []Variable{
		{Name: "id", Type: "ID", Value: "ZmlsbXM6MQ=="},
		{Name: "heading_include_if", Type: "Boolean!", Value: true},
		{Name: "characterConnection_first", Type: "Int", Value: 3},
	}
	doc := NewDocument(Query, "FilmPage", vars, root)

	want := `query FilmPage($id: ID, $heading_include_if: Boolean!, $characterConnection_first: Int) { film(id: $id) { id heading: title @include(if: $heading_include_if) characterConnection(first: $characterConnection_first) { ... on Human { homePlanet } } } }`
	require.Equal(t, want, doc.Query())
	require.Equal(t, map[string]any{
		"id":                        "ZmlsbXM6MQ==",
		"heading_include_if":        true,
		"characterConnection_first": 3,
	}, doc.VariableValues())

	parsed, err := parser.ParseQuery(&ast.Source{Input: doc.Query()})
	require.NoError(t, err)
	require.Len(t, parsed.Operations, 1)
	require.Equal(t, "FilmPage", parsed.Operations[0].Name)
	require.Len(t, parsed.Operations[0].VariableDefinitions, 3)
}

func TestDocumentWithoutVariables(t *testing.T) {
	doc := NewDocument(Subscription, "", nil, &Field{Name: "reviewAdded", Selections: []Selection{&Field{Name: "stars"}}})
	require.Equal(t, "subscription { reviewAdded { stars } }", doc.Query())
	require.Empty(t, doc.VariableValues())
}

func TestDocumentIsImmutable(t *testing.T) {
	vars := []Variable{{Name: "id", Type: "ID!", Value: "1"}}
	doc := NewDocument(Mutation, "", vars, &Field{Name: "delete", Arguments: []Argument{{Name: "id", Variable: "id"}}})
	vars[0].Name = "changed"
	got := doc.Variables()
	got[0].Value = "2"
	require.Equal(t, "mutation($id: ID!) { delete(id: $id) }", doc.Query())
	require.Equal(t, "1", doc.VariableValues()["id"])
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("mutation")
	require.NoError(t, err)
	require.Equal(t, Mutation, k)
	_, err = ParseKind("Query")
	require.Error(t, err)
}
