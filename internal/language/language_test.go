package language

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery(`{ film(id: "1") { title } }`)
	require.NoError(t, err)
	require.Len(t, doc.Operations, 1)
	f, ok := doc.Operations[0].SelectionSet[0].(*Field)
	require.True(t, ok)
	require.Equal(t, "film", f.Name)
	require.Equal(t, StringValue, f.Arguments[0].Value.Kind)

	_, err = ParseQuery(`{ film(`)
	require.Error(t, err)
}

func TestValidateQuery(t *testing.T) {
	s := gqlparser.MustLoadSchema(&ast.Source{Input: `type Query { film(id: ID): Film } type Film { title: String }`})

	_, errs := ValidateQuery(s, `query($id: ID) { film(id: $id) { title } }`)
	require.Empty(t, errs)

	_, errs = ValidateQuery(s, `query($id: ID) { film(id: $id) { budget } }`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, "budget")
}
